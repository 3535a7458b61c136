package api

import (
	"net/http"
	"os"
	"strings"
)

// Origins allowed to use the form endpoints, beyond any localhost port.
const defaultAllowedOrigins = "https://wchen.ai,https://www.wchen.ai"

// AllowedOriginsFromEnv reads the origin allow-list from
// ALLOWED_ORIGINS (comma-separated), falling back to the production
// origins. The result is never empty; setCORSHeaders relies on a
// primary origin existing.
func AllowedOriginsFromEnv() []string {
	raw := os.Getenv("ALLOWED_ORIGINS")
	if raw == "" {
		raw = defaultAllowedOrigins
	}
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return strings.Split(defaultAllowedOrigins, ",")
	}
	return origins
}

// allowedOrigin reports whether a declared origin may use the form
// endpoints. A missing origin is rejected. Any localhost origin is
// allowed so local development works without configuration.
func (api *API) allowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range api.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return strings.HasPrefix(origin, "http://localhost:")
}

// setCORSHeaders mirrors an allowed origin back to the client. Rejected
// requests get the primary origin instead, which keeps the response
// well-formed without widening access.
func (api *API) setCORSHeaders(w http.ResponseWriter, origin string) {
	corsOrigin := api.AllowedOrigins[0]
	if api.allowedOrigin(origin) {
		corsOrigin = origin
	}
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", corsOrigin)
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}
