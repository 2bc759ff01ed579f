package api

import (
	"errors"
	"net/http"
	"strings"

	"shopoholic/internal/auth"
	"shopoholic/internal/domain"
	"shopoholic/internal/repository"
)

// ErrLoginMessage - одинаковый ответ на неизвестный email и неверный пароль
const ErrLoginMessage = "invalid email or password"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse - токен и профиль для сессии клиента
type LoginResponse struct {
	Token string         `json:"token"`
	User  domain.Profile `json:"user"`
}

// dummyHash сравнивается, когда пользователь не найден, чтобы время ответа не выдавало email
var dummyHash, _ = auth.HashPassword("shopoholic-dummy-password")

// Login - POST /auth/login
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	user, err := s.Users.FindByEmail(r.Context(), req.Email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		auth.CheckPassword(req.Password, dummyHash)
		s.Log.Info().Str("email", req.Email).Msg("вход отклонен: пользователь не найден")
		writeError(w, http.StatusUnauthorized, ErrLoginMessage)
		return
	case err != nil:
		s.writeStoreError(w, r, err)
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		s.Log.Info().Int64("user_id", user.ID).Msg("вход отклонен: неверный пароль")
		writeError(w, http.StatusUnauthorized, ErrLoginMessage)
		return
	}

	token, err := s.Tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		s.Log.Error().Err(err).Msg("ошибка создания токена")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.Log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("успешный вход")
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user.Profile()})
}
