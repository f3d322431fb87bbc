// Package dkim extracts DKIM-bearing evidence from a raw email. It checks the
// signature's structure only; cryptographic verification happens inside the
// proof engine, gated on the receiving server's dkim=pass verdict.
package dkim

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"strings"
)

var (
	domainPattern     = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]*[a-z0-9])?)*\.[a-z]{2,}$`)
	headerNamePattern = regexp.MustCompile(`^[!-9;-~]+$`)

	recipientHeaders = []string{"to", "delivered-to"}
	algorithms       = map[string]bool{"rsa-sha256": true, "rsa-sha1": true}
	requiredTags     = []string{"v", "a", "d", "b"}
)

// Parser parses raw email into an EvidenceTriple.
type Parser struct {
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger. Only the resulting domain is ever logged.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse is Parser.Parse without logging.
func Parse(raw []byte) (*EvidenceTriple, error) {
	return parse(raw)
}

// Parse validates raw and returns the evidence triple, or an *EvidenceError.
func (p *Parser) Parse(ctx context.Context, raw []byte) (*EvidenceTriple, error) {
	triple, err := parse(raw)
	if err != nil {
		if p.logger != nil {
			p.logger.DebugContext(ctx, "evidence rejected", "kind", KindOf(err))
		}
		return nil, err
	}
	if p.logger != nil {
		p.logger.DebugContext(ctx, "evidence parsed", "domain", triple.Domain)
	}
	return triple, nil
}

func parse(raw []byte) (*EvidenceTriple, error) {
	fields := parseHeaders(headerBlock(raw))
	if len(fields) == 0 {
		return nil, newError(KindNotAnEmail)
	}

	signature, ok := fields.get("dkim-signature")
	if !ok || signature == "" {
		return nil, newError(KindMissingDkimSignature)
	}
	authResults, _ := fields.get("authentication-results")

	domain := claimedDomain(fields)
	if domain == "" {
		return nil, newError(KindMissingDomain)
	}

	if err := validateSignature(signature); err != nil {
		return nil, err
	}

	return &EvidenceTriple{
		Domain:        domain,
		DKIMSignature: signature,
		AuthResults:   authResults,
	}, nil
}

// headerBlock returns everything before the first blank line, or the whole
// input when there is none.
func headerBlock(raw []byte) []byte {
	end := len(raw)
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		end = i
	}
	if i := bytes.Index(raw[:end], []byte("\n\n")); i >= 0 {
		end = i
	}
	return raw[:end]
}

type header struct {
	name  string
	value string
}

type headers []header

func (h headers) get(name string) (string, bool) {
	for _, f := range h {
		if f.name == name {
			return f.value, true
		}
	}
	return "", false
}

func (h headers) all(name string) []string {
	var out []string
	for _, f := range h {
		if f.name == name {
			out = append(out, f.value)
		}
	}
	return out
}

// parseHeaders splits the block into fields, unfolding continuation lines
// into a single space. Lines that are neither a field nor a continuation are
// ignored.
func parseHeaders(block []byte) headers {
	var (
		out     headers
		current *strings.Builder
		name    string
	)
	flush := func() {
		if current != nil {
			out = append(out, header{name: name, value: strings.TrimSpace(current.String())})
			current = nil
		}
	}

	for _, line := range strings.Split(string(block), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if current != nil {
				current.WriteByte(' ')
				current.WriteString(strings.TrimLeft(line, " \t"))
			}
			continue
		}
		flush()
		colon := strings.IndexByte(line, ':')
		if colon <= 0 || !headerNamePattern.MatchString(line[:colon]) {
			continue
		}
		name = strings.ToLower(line[:colon])
		current = &strings.Builder{}
		current.WriteString(line[colon+1:])
	}
	flush()
	return out
}

// claimedDomain prefers recipient headers over From.
func claimedDomain(fields headers) string {
	for _, name := range recipientHeaders {
		for _, value := range fields.all(name) {
			if d := firstDomain(value); d != "" {
				return d
			}
		}
	}
	for _, value := range fields.all("from") {
		if d := firstDomain(value); d != "" {
			return d
		}
	}
	return ""
}

func firstDomain(value string) string {
	for _, addr := range strings.Split(value, ",") {
		if d := addressDomain(addr); d != "" {
			return d
		}
	}
	return ""
}

// addressDomain handles both "user@domain" and "Name <user@domain>".
func addressDomain(addr string) string {
	addr = strings.TrimSpace(addr)
	if open := strings.IndexByte(addr, '<'); open >= 0 {
		rest := addr[open+1:]
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return ""
		}
		addr = rest[:end]
	}
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return ""
	}
	domain := strings.ToLower(strings.TrimSpace(addr[at+1:]))
	if !domainPattern.MatchString(domain) {
		return ""
	}
	return domain
}

func validateSignature(signature string) error {
	tags, err := parseTags(signature)
	if err != nil {
		return err
	}
	for _, name := range requiredTags {
		if tags[name] == "" {
			return newError(KindMalformedDkimSignature)
		}
	}
	if tags["v"] != "1" {
		return newError(KindUnsupportedDkimVersion)
	}
	if !algorithms[strings.ToLower(tags["a"])] {
		return newError(KindUnsupportedDkimAlgorithm)
	}
	return nil
}

// parseTags reads the tag=value list. Whitespace inside values is dropped
// since b= and bh= are commonly folded.
func parseTags(signature string) (map[string]string, error) {
	tags := make(map[string]string)
	for _, part := range strings.Split(signature, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq <= 0 {
			return nil, newError(KindMalformedDkimSignature)
		}
		name := strings.TrimSpace(part[:eq])
		if _, dup := tags[name]; dup {
			return nil, newError(KindMalformedDkimSignature)
		}
		tags[name] = strings.Join(strings.Fields(part[eq+1:]), "")
	}
	return tags, nil
}
