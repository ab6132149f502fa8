package transport

import (
	"net/http"
)

// Authenticator attaches credentials to an outgoing request.
type Authenticator interface {
	Apply(req *http.Request, token string)
}

// NoAuth sends requests without credentials.
type NoAuth struct{}

// Apply leaves req unchanged.
func (NoAuth) Apply(*http.Request, string) {}

// BearerAuth sends the token as an OAuth bearer token, the way Notion
// integration tokens are presented.
type BearerAuth struct{}

// Apply sets the Authorization header.
func (BearerAuth) Apply(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}
