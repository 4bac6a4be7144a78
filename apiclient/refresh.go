package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/careergap-web/internal/errors"
	"github.com/jrsteele09/careergap-web/session"
	"github.com/rs/zerolog/log"
)

const refreshPath = "token/refresh/"

var timeNow = time.Now

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// refresh obtains a new access token for a request that was sent with
// sentToken and rejected. Concurrent callers holding the same refresh token
// share a single backend call, and the new token is in the store before any
// of them is released.
func (c *Client) refresh(ctx context.Context, store session.Store, refreshToken, sentToken string) (string, error) {
	// The shared call must outlive any single waiter's cancellation
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.DefaultTimeout)
	defer cancel()

	v, err, shared := c.refreshes.Do(refreshToken, func() (any, error) {
		// A flight that finished just before this one may already have stored a token
		if current, err := session.AccessToken(ctx, store); err == nil && current != "" && current != sentToken {
			tokenRefreshTotal.WithLabelValues(refreshReused).Inc()
			return current, nil
		}

		access, err := c.exchangeRefreshToken(ctx, refreshToken)
		if err != nil {
			tokenRefreshTotal.WithLabelValues(refreshFailure).Inc()
			return "", err
		}
		tokenRefreshTotal.WithLabelValues(refreshSuccess).Inc()

		if err := session.SetAccessToken(ctx, store, access); err != nil {
			return "", errors.Wrapf(err, "[apiclient refresh] store access token")
		}
		return access, nil
	})
	if err != nil {
		return "", err
	}

	access := v.(string)
	if claims, err := session.ParseClaims(access); err == nil {
		log.Debug().
			Str("user_id", claims.Subject()).
			Dur("expires_in", claims.ExpiresIn(timeNow())).
			Bool("shared", shared).
			Msg("access token refreshed")
	}
	return access, nil
}

// exchangeRefreshToken is a plain POST: no bearer is attached and a 401 is
// not recovered.
func (c *Client) exchangeRefreshToken(ctx context.Context, refreshToken string) (string, error) {
	req, err := JSONRequest(http.MethodPost, refreshPath, refreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", err
	}

	resp, err := c.send(ctx, req, "")
	if err != nil {
		return "", err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return "", newAPIError(resp, "Token refresh failed")
	}

	var out refreshResponse
	if err := resp.Decode(&out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", fmt.Errorf("[apiclient refresh] response has no access token: %w", errors.ErrRefreshFailed)
	}
	return out.Access, nil
}
