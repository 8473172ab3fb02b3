// Package session supplies the current access token and account identifier
// to the rest of the service. The engine only reads them; token lifecycle is
// owned entirely by this package.
package session

import "context"

// Provider exposes the ambient auth state every gateway request carries.
type Provider interface {
	// Token returns the current access token.
	Token(ctx context.Context) (string, error)

	// AccountID returns the operator's account identifier.
	AccountID(ctx context.Context) (string, error)
}

// Static is a fixed-credentials provider, used in tests and for local
// development against a stub gateway.
type Static struct {
	AccessToken string
	Account     string
}

func (s Static) Token(_ context.Context) (string, error)     { return s.AccessToken, nil }
func (s Static) AccountID(_ context.Context) (string, error) { return s.Account, nil }
