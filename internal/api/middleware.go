package api

import (
	"context"
	"errors"
	"net/http"

	"shopoholic/internal/auth"
	"shopoholic/internal/domain"
	"shopoholic/internal/models"
	"shopoholic/internal/repository"
)

type ctxKey struct{}

// UserFrom - пользователь, подтвержденный RequireAuth
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxKey{}).(*models.User)
	return u
}

// RequireAuth проверяет токен и что пользователь из него все еще существует.
// Роль берется из базы, а не из токена.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.GetTokenFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		claims, err := s.Tokens.ValidateToken(token)
		if err != nil {
			s.Log.Debug().Err(err).Msg("token rejected")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := s.Users.FindByID(r.Context(), claims.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

// RequireAdmin - только после RequireAuth
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFrom(r.Context())
		if u == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if u.Role != domain.RoleAdmin {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}
