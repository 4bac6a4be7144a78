package apiclient

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	refreshSuccess = "success"
	refreshFailure = "failure"
	// refreshMissing counts 401s that could not be recovered for lack of a refresh token
	refreshMissing = "missing_refresh_token"
	// refreshReused counts 401s retried with a token another request already refreshed
	refreshReused = "reused"
)

var (
	tokenRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "careergap_token_refresh_total",
		Help: "Token refresh attempts by outcome",
	}, []string{"outcome"})

	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "careergap_api_requests_total",
		Help: "Requests sent to the CareerGap backend",
	}, []string{"method", "status_class"})
)

func observeRequest(method string, status int) {
	apiRequestsTotal.WithLabelValues(method, statusClass(status)).Inc()
}

func statusClass(status int) string {
	if status <= 0 {
		return "network_error"
	}
	return fmt.Sprintf("%dxx", status/100)
}
