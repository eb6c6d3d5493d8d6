package middleware

import (
	"net/http"
	"strings"

	"github.com/2beens/gymprogress/internal/telemetry/tracing"
	"github.com/2beens/gymprogress/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const (
	AdminTokenHeader = "X-GYMPROGRESS-TOKEN"
	adminPathPrefix  = "/progress/admin/"
)

type AuthMiddlewareHandler struct {
	adminTokenHash string
}

// NewAuthMiddlewareHandler takes the bcrypt hash of the admin token. With an
// empty hash every admin request is refused.
func NewAuthMiddlewareHandler(adminTokenHash string) *AuthMiddlewareHandler {
	if adminTokenHash == "" {
		log.Warnln("admin token hash not set, admin endpoints are disabled")
	}
	return &AuthMiddlewareHandler{
		adminTokenHash: adminTokenHash,
	}
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if !strings.HasPrefix(r.URL.Path, adminPathPrefix) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := r.Header.Get(AdminTokenHeader)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			if !pkg.CheckTokenHash(authToken, h.adminTokenHash) {
				log.Warnf("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
