package dkim

import "strings"

// EvidenceTriple is the claim-ready output of Parse. It is ephemeral: callers
// must Scrub it once the proof engine call returns.
type EvidenceTriple struct {
	Domain        string
	DKIMSignature string
	AuthResults   string
}

// DKIMPassed reports whether the receiving server recorded dkim=pass.
func (t *EvidenceTriple) DKIMPassed() bool {
	return strings.Contains(strings.ToLower(t.AuthResults), "dkim=pass")
}

// SigningDomain returns the d= tag of the signature, lower-cased.
func (t *EvidenceTriple) SigningDomain() string {
	tags, err := parseTags(t.DKIMSignature)
	if err != nil {
		return ""
	}
	return strings.ToLower(tags["d"])
}

// Scrub drops the signature and authentication results. Domain is kept since
// it is the public part of the claim.
func (t *EvidenceTriple) Scrub() {
	if t == nil {
		return
	}
	t.DKIMSignature = ""
	t.AuthResults = ""
}
