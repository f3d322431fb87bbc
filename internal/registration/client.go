// Package registration delivers an approved attestation to a relying-party
// backend and classifies the outcome.
package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-jwt/jwt/v5"

	"zkvault/internal/attestation/models"
	"zkvault/internal/registration/metrics"
	"zkvault/pkg/domain"
	pstrings "zkvault/pkg/platform/strings"
	"zkvault/pkg/requestcontext"
)

const maxResponseBytes = 1 << 20

// Backends reporting one of these in their error body already know the user.
var alreadyRegistered = regexp.MustCompile(`(?i)already (used|registered|exists)`)

var payloadKeys = map[domain.ClaimType]string{
	domain.ClaimCountry:     "countryProof",
	domain.ClaimEmailDomain: "emailDomainProof",
	domain.ClaimAge:         "ageProof",
}

type Status string

const (
	StatusRegistered Status = "registered"
	StatusSkipped    Status = "skipped"
)

// Result is a non-fatal registration outcome.
type Result struct {
	Status         Status          `json:"status"`
	User           json.RawMessage `json:"user,omitempty"`
	Token          string          `json:"token,omitempty"`
	TokenExpiresAt *time.Time      `json:"tokenExpiresAt,omitempty"`
	Reason         string          `json:"reason,omitempty"`
}

// IdentityProvider yields the stable pseudonymous identity handle.
type IdentityProvider interface {
	IdentityHandle(ctx context.Context) (string, error)
}

type Client struct {
	httpClient      *http.Client
	identity        IdentityProvider
	allowHTTP       map[string]bool
	maxRetries      uint64
	initialInterval time.Duration
	logger          *slog.Logger
	metrics         *metrics.Metrics
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAllowHTTPHosts replaces the hosts that may be reached over plain http.
func WithAllowHTTPHosts(hosts ...string) Option {
	return func(cl *Client) {
		hosts = pstrings.DedupeHosts(hosts)
		cl.allowHTTP = make(map[string]bool, len(hosts))
		for _, h := range hosts {
			cl.allowHTTP[h] = true
		}
	}
}

func WithMaxRetries(n uint64) Option {
	return func(cl *Client) {
		cl.maxRetries = n
	}
}

func WithInitialInterval(d time.Duration) Option {
	return func(cl *Client) {
		cl.initialInterval = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

func New(identity IdentityProvider, opts ...Option) *Client {
	cl := &Client{
		httpClient:      &http.Client{Timeout: 15 * time.Second},
		identity:        identity,
		maxRetries:      2,
		initialInterval: 500 * time.Millisecond,
		logger:          slog.Default(),
	}
	WithAllowHTTPHosts("localhost", "127.0.0.1", "::1")(cl)
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// ValidateBackendURL accepts absolute https URLs, and http URLs whose host
// is on the local allowlist.
func (c *Client) ValidateBackendURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || u.User != nil {
		return nil, &RegistrationError{Kind: KindInvalidBackendURL, Cause: errors.New("backend url must be absolute")}
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		return u, nil
	case "http":
		if c.allowHTTP[strings.ToLower(u.Hostname())] {
			return u, nil
		}
		return nil, &RegistrationError{Kind: KindInvalidBackendURL, Cause: errors.New("http is only allowed for local hosts")}
	default:
		return nil, &RegistrationError{Kind: KindInvalidBackendURL, Cause: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
}

type errorBody struct {
	Error string `json:"error"`
}

type successBody struct {
	User  json.RawMessage `json:"user"`
	Token string          `json:"token"`
}

// Register posts att to backendURL. A backend that reports the user as
// already registered yields StatusSkipped; every other failure is a
// *RegistrationError.
func (c *Client) Register(ctx context.Context, att *models.Attestation, backendURL string) (*Result, error) {
	started := time.Now()
	result, err := c.register(ctx, att, backendURL)
	outcome := "failed"
	if err == nil {
		outcome = string(result.Status)
	}
	c.metrics.ObserveOutcome(outcome, time.Since(started))
	logAttrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"claim_type", att.ClaimType,
		"outcome", outcome,
	}
	if err != nil {
		c.logger.WarnContext(ctx, "registration failed", append(logAttrs, "kind", KindOf(err))...)
	} else {
		c.logger.InfoContext(ctx, "registration completed", logAttrs...)
	}
	return result, err
}

func (c *Client) register(ctx context.Context, att *models.Attestation, backendURL string) (*Result, error) {
	target, err := c.ValidateBackendURL(backendURL)
	if err != nil {
		return nil, err
	}
	payload, err := c.payload(ctx, att)
	if err != nil {
		return nil, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)

	var result *Result
	op := func() error {
		c.metrics.IncrementAttempts()
		r, err := c.post(ctx, target.String(), payload)
		if err != nil {
			return err
		}
		result = r
		return nil
	}
	if err := backoff.Retry(op, retry); err != nil {
		var re *RegistrationError
		if errors.As(err, &re) {
			return nil, re
		}
		return nil, &RegistrationError{Kind: KindTransport, Cause: err}
	}
	return result, nil
}

func (c *Client) payload(ctx context.Context, att *models.Attestation) ([]byte, error) {
	key, ok := payloadKeys[att.ClaimType]
	if !ok {
		return nil, &RegistrationError{Kind: KindRejected, Cause: fmt.Errorf("unsupported claim type %q", att.ClaimType)}
	}
	identity, err := c.identity.IdentityHandle(ctx)
	if err != nil {
		return nil, &RegistrationError{Kind: KindTransport, Cause: errors.New("identity handle unavailable")}
	}
	proof := models.PublicFields(att)
	proof["identityHash"] = identity
	proof["proofHash"] = att.ProofHash()
	return json.Marshal(map[string]any{key: proof})
}

// post makes one attempt. An already-registered error body is a skip at any
// non-2xx status. Otherwise transport errors and 5xx are retryable and every
// other failure is wrapped in backoff.Permanent.
func (c *Client) post(ctx context.Context, target string, payload []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(&RegistrationError{Kind: KindInvalidBackendURL, Cause: err})
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(&RegistrationError{Kind: KindTransport, Cause: ctx.Err()})
		}
		return nil, &RegistrationError{Kind: KindTransport, Cause: errors.New("backend unreachable")}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &RegistrationError{Kind: KindTransport, StatusCode: resp.StatusCode, Cause: errors.New("failed to read response")}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && alreadyRegistered.MatchString(eb.Error) {
			return &Result{Status: StatusSkipped, Reason: eb.Error}, nil
		}
		if resp.StatusCode >= 500 {
			return nil, &RegistrationError{Kind: KindRejected, StatusCode: resp.StatusCode}
		}
		return nil, backoff.Permanent(&RegistrationError{Kind: KindRejected, StatusCode: resp.StatusCode})
	}

	var sb successBody
	if err := json.Unmarshal(body, &sb); err != nil || len(sb.User) == 0 || string(sb.User) == "null" || sb.Token == "" {
		return nil, backoff.Permanent(&RegistrationError{
			Kind:       KindMalformedResponse,
			StatusCode: resp.StatusCode,
			Cause:      errors.New("response must carry user and token"),
		})
	}
	return &Result{
		Status:         StatusRegistered,
		User:           sb.User,
		Token:          sb.Token,
		TokenExpiresAt: tokenExpiry(sb.Token),
	}, nil
}

// tokenExpiry reads exp from a JWT without verifying it; the broker is not
// the token's audience. Opaque tokens yield nil.
func tokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.UTC()
	return &t
}
