package httptransport

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkvault/pkg/platform/httputil"
	"zkvault/pkg/testutil"
)

type echoHandler struct{}

func (echoHandler) Register(r chi.Router) {
	r.Post("/v1/echo", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"request_id": r.Header.Get("X-Request-ID")})
	})
	r.Get("/v1/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func newTestRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewRouter(logger, nil, echoHandler{})
}

func TestRouter(t *testing.T) {
	r := newTestRouter()

	t.Run("request id is echoed", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/echo", map[string]string{})
		req.Header.Set("X-Request-ID", "abc")
		rr := testutil.DoRequest(r, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "abc", rr.Header().Get("X-Request-ID"))
	})

	t.Run("non json body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/echo", strings.NewReader("hi"))
		req.Header.Set("Content-Type", "text/plain")
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnsupportedMediaType, "bad_request")
	})

	t.Run("panics become 500", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodGet, "/v1/panic", nil))
		testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
	})

	t.Run("unknown route", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodGet, "/v1/nope", nil))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("health and metrics", func(t *testing.T) {
		rr := testutil.DoRequest(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		rr = testutil.DoRequest(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
