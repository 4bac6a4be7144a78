package guard_test

import (
	"net/url"
	"testing"

	"github.com/jrsteele09/careergap-web/guard"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		rawQuery string
		token    string
		want     guard.Decision
	}{
		{"token present", "/dashboard", "", "A1", guard.Decision{Outcome: guard.Allow}},
		{"any non-empty token", "/analysis", "", "not-even-a-jwt", guard.Decision{Outcome: guard.Allow}},
		{"no token", "/dashboard", "", "", guard.Decision{Outcome: guard.Redirect, Location: "/login?next=%2Fdashboard"}},
		{"query preserved", "/jobs/4/edit", "tab=details", "", guard.Decision{Outcome: guard.Redirect, Location: "/login?next=%2Fjobs%2F4%2Fedit%3Ftab%3Ddetails"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, guard.Evaluate(tt.path, tt.rawQuery, tt.token))
		})
	}
}

func TestNextDestination(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"absent", "", "/dashboard"},
		{"local path", "next=%2Fanalysis", "/analysis"},
		{"local path with query", "next=%2Fjobs%2F4%2Fedit%3Ftab%3Ddetails", "/jobs/4/edit?tab=details"},
		{"absolute url", "next=https%3A%2F%2Fevil.example.com", "/dashboard"},
		{"protocol relative", "next=%2F%2Fevil.example.com", "/dashboard"},
		{"backslash trick", "next=%2F%5Cevil.example.com", "/dashboard"},
		{"relative path", "next=dashboard", "/dashboard"},
		{"login loop", "next=%2Flogin", "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			require.Equal(t, tt.want, guard.NextDestination(q))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	d := guard.Evaluate("/resume-generator", "", "")
	require.Equal(t, guard.Redirect, d.Outcome)

	u, err := url.Parse(d.Location)
	require.NoError(t, err)
	require.Equal(t, guard.LoginPath, u.Path)
	require.Equal(t, "/resume-generator", guard.NextDestination(u.Query()))
}
