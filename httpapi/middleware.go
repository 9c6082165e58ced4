package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"estately/portal"
)

type ctxKey int

const (
	ctxKeyUserID ctxKey = iota
	ctxKeyRole
)

func userID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyUserID).(string)
	return id
}

func userRole(ctx context.Context) portal.Role {
	role, _ := ctx.Value(ctxKeyRole).(portal.Role)
	return role
}

// requireAuth validates the bearer token and stores the identity in the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody("missing bearer token"))
			return
		}

		id, role, err := s.identity.VerifyToken(token)
		if err != nil {
			s.logger.Debug("token rejected", zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, errorBody("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, id)
		ctx = context.WithValue(ctx, ctxKeyRole, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole gates a route group on the authenticated role.
func (s *Server) requireRole(role portal.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userRole(r.Context()) != role {
				writeJSON(w, http.StatusForbidden, errorBody("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
