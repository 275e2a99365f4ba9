package gdocs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
)

// ErrMissingCredentials reports an empty service-account email or key.
var ErrMissingCredentials = errors.New("service account email and private key are required")

// Scopes requested for the service account: document edit and drive files.
var Scopes = []string{docs.DocumentsScope, drive.DriveScope}

// Credentials identify the service account.
type Credentials struct {
	Email      string
	PrivateKey string // PEM, literal "\n" sequences allowed
	ProjectID  string // carried for completeness; unused by the API calls
}

// NormalizePrivateKey converts literal "\n" escape sequences to newlines and
// strips surrounding quotes left by .env-style secret stores.
func NormalizePrivateKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) >= 2 && key[0] == '"' && key[len(key)-1] == '"' {
		key = key[1 : len(key)-1]
	}
	return strings.ReplaceAll(key, `\n`, "\n")
}

// jwtConfig builds the two-legged JWT flow for creds.
func (c Credentials) jwtConfig() *jwt.Config {
	return &jwt.Config{
		Email:      c.Email,
		PrivateKey: []byte(NormalizePrivateKey(c.PrivateKey)),
		Scopes:     Scopes,
		TokenURL:   google.JWTTokenURL,
	}
}

// authorizeJWT fetches a first token so credential problems surface here
// rather than on the first API call. The returned client refreshes tokens on
// its own.
func authorizeJWT(ctx context.Context, creds Credentials) (*http.Client, error) {
	if creds.Email == "" || creds.PrivateKey == "" {
		return nil, ErrMissingCredentials
	}
	// Token refreshes outlive ctx, so the source gets a background context.
	ts := creds.jwtConfig().TokenSource(context.WithoutCancel(ctx))
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("fetching token for %s: %w", creds.Email, err)
	}
	return oauth2.NewClient(context.WithoutCancel(ctx), ts), nil
}
