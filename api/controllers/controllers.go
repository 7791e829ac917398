package controllers

import (
	"context"
	"net/http"

	"github.com/tokopos/terminal-api/api/middleware"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
)

// upstreamTokenSource resolves the upstream bearer token bound to a terminal
// session. Implemented by the session manager.
type upstreamTokenSource interface {
	UpstreamToken(ctx context.Context, sessionID string) (string, error)
}

// sessionToken pulls the session id from the request context and exchanges it
// for the upstream token.
func sessionToken(r *http.Request, tokens upstreamTokenSource) (string, string, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing")
	}
	token, err := tokens.UpstreamToken(r.Context(), sessionID)
	if err != nil {
		return "", "", err
	}
	return sessionID, token, nil
}
