package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AbdullahAsendar/chimney-sub000/pkg/logger"
)

// renewLeeway renews the access token this long before its expiry.
const renewLeeway = time.Minute

// accessClaims are the claims the auth service puts on access tokens.
// The token is verified upstream; here it is only decoded for account
// discovery and expiry tracking.
type accessClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"accountId"`
}

// RefreshProvider exchanges a long-lived refresh token for access tokens and
// discovers the operator account from the token claims.
type RefreshProvider struct {
	authURL      string
	refreshToken string
	client       *http.Client

	mu        sync.Mutex
	token     string
	accountID string
	expiresAt time.Time
}

// NewRefreshProvider creates a provider that exchanges refreshToken against
// the auth service at authURL.
func NewRefreshProvider(authURL, refreshToken string, client *http.Client) *RefreshProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RefreshProvider{
		authURL:      authURL,
		refreshToken: refreshToken,
		client:       client,
	}
}

// Token returns a current access token, exchanging the refresh token when
// none is held or the held one is about to expire.
func (p *RefreshProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureLocked(ctx); err != nil {
		return "", err
	}
	return p.token, nil
}

// AccountID returns the account discovered from the access token claims.
func (p *RefreshProvider) AccountID(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureLocked(ctx); err != nil {
		return "", err
	}
	return p.accountID, nil
}

func (p *RefreshProvider) ensureLocked(ctx context.Context) error {
	if p.token != "" && time.Until(p.expiresAt) > renewLeeway {
		return nil
	}
	return p.exchangeLocked(ctx)
}

func (p *RefreshProvider) exchangeLocked(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{"refreshToken": p.refreshToken})
	if err != nil {
		return fmt.Errorf("marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.authURL+"/api/v1/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("exchange refresh token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("exchange refresh token: status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	if payload.AccessToken == "" {
		return fmt.Errorf("refresh response carries no access token")
	}

	claims := &accessClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(payload.AccessToken, claims); err != nil {
		return fmt.Errorf("decode access token claims: %w", err)
	}

	accountID := claims.AccountID
	if accountID == "" {
		accountID = claims.Subject
	}
	if accountID == "" {
		return fmt.Errorf("access token carries no account identifier")
	}

	expiresAt := time.Now().Add(renewLeeway * 2)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	p.token = payload.AccessToken
	p.accountID = accountID
	p.expiresAt = expiresAt

	logger.Debug(ctx, "access token renewed", "account_id", accountID, "expires_at", expiresAt)
	return nil
}
