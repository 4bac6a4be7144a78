package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Tokens is the access/refresh pair issued by the backend.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (t Tokens) OAuth2() *oauth2.Token {
	return &oauth2.Token{AccessToken: t.Access, RefreshToken: t.Refresh, TokenType: "Bearer"}
}

// SetBearer sets the Authorization header for access. It is a no-op when access is empty.
func SetBearer(req *http.Request, access string) {
	if access == "" {
		return
	}
	(&oauth2.Token{AccessToken: access, TokenType: "Bearer"}).SetAuthHeader(req)
}

// Claims are the fields of a backend access token this client looks at.
type Claims struct {
	UserID any `json:"user_id"`
	jwt.RegisteredClaims
}

// ParseClaims decodes an access token WITHOUT verifying it. The result is only
// fit for logging; the backend remains the authority on token validity.
func ParseClaims(access string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return nil, fmt.Errorf("[session ParseClaims] %w", err)
	}
	return claims, nil
}

func (c *Claims) Subject() string {
	if c.UserID != nil {
		return fmt.Sprint(c.UserID)
	}
	return c.RegisteredClaims.Subject
}

// ExpiresIn is the time left before exp, or zero when exp is absent or past.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	d := c.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
