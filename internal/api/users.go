package api

import (
	"net/http"
	"strings"

	"shopoholic/internal/auth"
	"shopoholic/internal/models"
)

// ListUsers - GET /users, хэши паролей не отдаются (json:"-")
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	users, total, err := s.Users.List(r.Context(), limit, offset)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.UserList{Users: users, TotalCount: total})
}

func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.Users.FindByID(r.Context(), pathID(r))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeUser(w, r, true)
	if !ok {
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		s.Log.Error().Err(err).Msg("ошибка хэширования пароля")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	u := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Role:         in.Role,
		PasswordHash: hash,
	}
	if err := s.Users.Create(r.Context(), u); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.Log.Info().Int64("user_id", u.ID).Str("role", string(u.Role)).Msg("пользователь создан")
	writeJSON(w, http.StatusCreated, u)
}

// UpdateUser - пустой пароль оставляет прежний
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeUser(w, r, false)
	if !ok {
		return
	}

	u := &models.User{
		ID:    pathID(r),
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
		Role:  in.Role,
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			s.Log.Error().Err(err).Msg("ошибка хэширования пароля")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		u.PasswordHash = hash
	}

	if err := s.Users.Update(r.Context(), u); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	updated, err := s.Users.FindByID(r.Context(), u.ID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteUser - удалить самого себя нельзя
func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if me := UserFrom(r.Context()); me != nil && me.ID == id {
		writeError(w, http.StatusConflict, "cannot delete yourself")
		return
	}

	if err := s.Users.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.Log.Info().Int64("user_id", id).Msg("пользователь удален")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodeUser(w http.ResponseWriter, r *http.Request, isNew bool) (models.UserInput, bool) {
	var in models.UserInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return in, false
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if errs := in.Validate(isNew); !errs.OK() {
		writeInvalid(w, errs)
		return in, false
	}
	return in, true
}
