package domain

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	dErrors "zkvault/pkg/domain-errors"
)

// Origin is the scheme://host[:port] of a requesting site, the unit of
// permission isolation.
// Invariant: lower-case, http or https, default port omitted, no path,
// query, fragment or userinfo.
type Origin string

var (
	defaultPorts = map[string]string{"http": "80", "https": "443"}
	hostPattern  = regexp.MustCompile(`^[a-z0-9_-]+(\.[a-z0-9_-]+)*$`)
)

// ParseOrigin normalises external input into an Origin. A single trailing
// slash is tolerated since browsers sometimes serialise origins with one.
//
// Errors: returns CodeInvalidInput for anything that is not a bare origin.
func ParseOrigin(s string) (Origin, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "origin cannot be empty")
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "origin is not a valid URL")
	}
	scheme := strings.ToLower(u.Scheme)
	defaultPort, ok := defaultPorts[scheme]
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "origin scheme must be http or https")
	}
	if u.Opaque != "" || u.User != nil || u.RawQuery != "" || u.ForceQuery || u.Fragment != "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "origin must not carry credentials, query or fragment")
	}
	if u.Path != "" && u.Path != "/" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "origin must not carry a path")
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "origin must have a host")
	}
	if !hostPattern.MatchString(host) && (!strings.Contains(host, ":") || net.ParseIP(host) == nil) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "origin host is not a valid hostname or address")
	}

	port := u.Port()
	switch {
	case port != "" && port != defaultPort:
		host = net.JoinHostPort(host, port)
	case strings.Contains(host, ":"):
		host = "[" + host + "]"
	}
	return Origin(scheme + "://" + host), nil
}

func (o Origin) String() string {
	return string(o)
}
