package router

import (
	"net/http"
	"strings"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/config"
)

// middlewareMaintenance rejects routes listed under app.maintenance.endpoints
// with 503, letting operators fence off an endpoint without a deploy.
func middlewareMaintenance(cfg config.Config) Middleware {
	blocked := make(map[string]struct{})
	if cfg != nil {
		for _, endpoint := range cfg.GetArray("app.maintenance.endpoints") {
			if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
				blocked[endpoint] = struct{}{}
			}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, down := blocked[routePattern(r)]; down {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
