// Package rbac guards routes by the role carried in the access token.
package rbac

import (
	"net/http"

	"github.com/elchascon/botilleria/pkg/middleware"
	"github.com/elchascon/botilleria/pkg/response"
)

// HasRole allows only users whose role is one of roles. AuthMiddleware must run first.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok || !allowed[role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
