// Package guard decides whether a navigation may render a protected page.
// It only checks that an access token is present; expiry and signature are
// left to the backend, which answers an expired token with a 401.
package guard

import (
	"net/url"
	"strings"
)

const (
	LoginPath          = "/login"
	DefaultLandingPath = "/dashboard"
	NextParam          = "next"
)

type Outcome int

const (
	Allow Outcome = iota
	Redirect
)

type Decision struct {
	Outcome  Outcome
	Location string // set when Outcome is Redirect
}

// Evaluate allows the navigation when accessToken is non-empty, otherwise it
// redirects to the login page carrying the requested path and query as next.
func Evaluate(path, rawQuery, accessToken string) Decision {
	if accessToken != "" {
		return Decision{Outcome: Allow}
	}
	return Decision{Outcome: Redirect, Location: LoginURL(requestURI(path, rawQuery))}
}

// LoginURL is the login page that returns to next after authentication.
func LoginURL(next string) string {
	if next == "" {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{NextParam: {next}}.Encode()
}

// NextDestination returns the post-login destination carried in query, or
// the default landing page when it is absent or not a local path.
func NextDestination(query url.Values) string {
	return SafeNext(query.Get(NextParam), DefaultLandingPath)
}

// SafeNext accepts only local absolute paths so that a crafted next cannot
// send the user to another site.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	if u.Path == LoginPath {
		return fallback
	}
	return next
}

func requestURI(path, rawQuery string) string {
	if path == "" {
		path = "/"
	}
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}
