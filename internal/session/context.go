// Package session carries the dashboard session ID that scopes
// client-held booking mappings.
package session

import (
	"context"
	"regexp"
	"strings"
)

type ctxKey string

const sessionKey ctxKey = "videobooker.session_id"

// Header is the request header carrying the session ID.
const Header = "X-Session-Id"

// DefaultID is used when a request carries no session header.
const DefaultID = "default"

var validID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// WithID stores the session id in context.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// IDFromContext extracts the session id if present.
func IDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(sessionKey)
	if val == nil {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}

// IDOrDefault returns the session id from ctx, or DefaultID.
func IDOrDefault(ctx context.Context) string {
	if id, ok := IDFromContext(ctx); ok {
		return id
	}
	return DefaultID
}

// Normalize trims raw and validates it. Blank input yields DefaultID.
func Normalize(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultID, true
	}
	return raw, validID.MatchString(raw)
}
