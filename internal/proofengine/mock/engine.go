// Package mock is a deterministic proof engine for development and tests. It
// applies the same admission rules as the real prover but its proofs are
// hashes, not zero-knowledge proofs.
package mock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"zkvault/internal/attestation/models"
	"zkvault/internal/proofengine"
	"zkvault/pkg/domain"
	"zkvault/pkg/requestcontext"
)

// Countries the prover has bounds for.
var Countries = map[string]string{
	"US": "United States",
	"GB": "United Kingdom",
	"CA": "Canada",
	"AU": "Australia",
	"DE": "Germany",
	"FR": "France",
	"JP": "Japan",
	"IN": "India",
	"BR": "Brazil",
	"CN": "China",
}

type Engine struct {
	latency time.Duration
}

type Option func(*Engine)

// WithLatency delays every generation, standing in for proving time.
func WithLatency(d time.Duration) Option {
	return func(e *Engine) {
		e.latency = d
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Generate(ctx context.Context, claim domain.ClaimType, evidence models.Evidence) (*proofengine.Result, error) {
	if evidence == nil || evidence.ClaimType() != claim {
		return nil, fmt.Errorf("evidence does not match claim type %s", claim)
	}
	if e.latency > 0 {
		timer := time.NewTimer(e.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	var public map[string]any
	switch ev := evidence.(type) {
	case *models.CountryEvidence:
		code := strings.ToUpper(strings.TrimSpace(ev.CountryCode))
		name, ok := Countries[code]
		if !ok {
			return proofengine.Failed("unsupported country"), nil
		}
		public = map[string]any{"countryCode": code, "countryName": name}
	case *models.DKIMEvidence:
		if ev.Triple == nil || ev.Triple.Domain == "" {
			return proofengine.Failed("missing email domain"), nil
		}
		if !ev.Triple.DKIMPassed() {
			return proofengine.Failed("dkim verification did not pass"), nil
		}
		public = map[string]any{
			"domain":     ev.Triple.Domain,
			"domainHash": hexSHA256(ev.Triple.Domain),
			"commitment": hexSHA256(ev.Triple.DKIMSignature),
		}
	case *models.AgeEvidence:
		if ev.MinimumAge <= 0 || ev.BirthDate.IsZero() {
			return proofengine.Failed("invalid age evidence"), nil
		}
		if AgeOn(ev.BirthDate, requestcontext.Now(ctx)) < ev.MinimumAge {
			return proofengine.Failed("minimum age not met"), nil
		}
		public = map[string]any{"minimumAge": ev.MinimumAge}
	case *models.EmailEvidence:
		return nil, fmt.Errorf("email evidence must be parsed before generation")
	default:
		return nil, fmt.Errorf("unsupported evidence %T", evidence)
	}

	return &proofengine.Result{
		Success:     true,
		PublicClaim: public,
		ProofBytes:  proof(claim, public),
	}, nil
}

// AgeOn returns the age in whole years of someone born on birth, at now.
func AgeOn(birth, now time.Time) int {
	birth, now = birth.UTC(), now.UTC()
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

func proof(claim domain.ClaimType, public map[string]any) []byte {
	encoded, _ := json.Marshal(public)
	sum := sha256.Sum256(append([]byte("zkvault-mock-proof:"+string(claim)+":"), encoded...))
	return sum[:]
}

func hexSHA256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
