package handler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkvault/internal/audit"
	"zkvault/pkg/testutil"
)

func TestAuditRoutes(t *testing.T) {
	ctx := context.Background()
	store := audit.NewInMemoryStore(4)
	for i := range 6 {
		origin := "https://shop.example"
		if i%2 == 1 {
			origin = "https://news.example"
		}
		require.NoError(t, store.Append(ctx, audit.Event{ID: fmt.Sprint(i), Action: audit.EventPermissionGranted, Origin: origin}))
	}

	r := chi.NewRouter()
	New(store, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))).Register(r)

	t.Run("recent events are bounded by retention", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodGet, "/v1/audit", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		got := testutil.UnmarshalResponse[listResponse](t, rr)
		assert.Equal(t, []string{"2", "3", "4", "5"}, eventIDs(got.Events))
	})

	t.Run("limit", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodGet, "/v1/audit?limit=1", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []string{"5"}, eventIDs(testutil.UnmarshalResponse[listResponse](t, rr).Events))
	})

	t.Run("by origin", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodGet, "/v1/audit?origin=https://shop.example", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []string{"2", "4"}, eventIDs(testutil.UnmarshalResponse[listResponse](t, rr).Events))
	})

	t.Run("unknown origin is empty", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodGet, "/v1/audit?origin=https://other.example", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, testutil.UnmarshalResponse[listResponse](t, rr).Events)
	})

	t.Run("bad limit", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodGet, "/v1/audit?limit=-1", nil))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}

func eventIDs(events []audit.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}
