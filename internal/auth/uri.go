package auth

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildURI assembles a morphik://<name>:<token>@<host> connection string:
// the form returned to callers after token issuance, embedding the bearer
// token so SDKs never need a separate auth step.
func BuildURI(name, token, host string) string {
	name = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
	return fmt.Sprintf("morphik://%s:%s@%s", name, token, host)
}

// ParseURI extracts the embedded bearer token and host from a morphik://
// URI. The developer name is informational only and is not validated
// against the token's own entity_id claim.
func ParseURI(uri string) (token, host string, err error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("parse uri: %w", err)
	}
	if parsed.Scheme != "morphik" {
		return "", "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.User == nil {
		return "", "", fmt.Errorf("missing credentials in uri")
	}
	token, ok := parsed.User.Password()
	if !ok || token == "" {
		return "", "", fmt.Errorf("missing token in uri")
	}
	if parsed.Host == "" {
		return "", "", fmt.Errorf("missing host in uri")
	}
	return token, parsed.Host, nil
}
