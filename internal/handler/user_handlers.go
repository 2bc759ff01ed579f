package handler

import (
	"net/http"

	"shopoholic/internal/domain"
	"shopoholic/internal/models"
)

// AdminUsersHandler - список пользователей в админке
func (h *Handler) AdminUsersHandler(w http.ResponseWriter, r *http.Request) {
	page := pageNumber(r)

	list, err := h.API.Users(r.Context(), h.store(r).Token(), page, PerPage)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := h.page(r, "Управление пользователями", "admin_users")
	data.Users = list.Users
	data.Pagination = models.Pagination{Page: page, PerPage: PerPage, TotalCount: list.TotalCount}
	data.Success = successMessage(r)
	if r.URL.Query().Get("done") == "conflict" {
		data.Error = "Нельзя удалить собственную учетную запись"
	}
	h.render(w, http.StatusOK, data)
}

// AdminNewUserHandler - создание пользователя
func (h *Handler) AdminNewUserHandler(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Добавить пользователя", "admin_user_form")

	if r.Method != http.MethodPost {
		data.Form = map[string]string{"role": string(domain.RoleUser)}
		h.render(w, http.StatusOK, data)
		return
	}

	in, form := parseUserForm(r)
	data.Form = form
	if errs := in.Validate(true); !errs.OK() {
		data.FormErrors = errs
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}

	u, err := h.API.CreateUser(r.Context(), h.store(r).Token(), in)
	if err != nil {
		h.userFormError(w, r, data, err)
		return
	}

	h.Log.Info().Int64("user_id", u.ID).Msg("пользователь создан")
	http.Redirect(w, r, "/admin/users?done=created", http.StatusSeeOther)
}

// AdminEditUserHandler - редактирование пользователя; пустой пароль не меняется
func (h *Handler) AdminEditUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := varID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	token := h.store(r).Token()

	if r.Method != http.MethodPost {
		u, err := h.API.User(r.Context(), token, id)
		if err != nil {
			h.fail(w, r, err)
			return
		}

		data := h.page(r, "Редактировать пользователя", "admin_user_form")
		data.User = u
		data.Form = map[string]string{
			"name":  u.Name,
			"email": u.Email,
			"phone": u.Phone,
			"role":  string(u.Role),
		}
		h.render(w, http.StatusOK, data)
		return
	}

	data := h.page(r, "Редактировать пользователя", "admin_user_form")
	data.User = &models.User{ID: id}

	in, form := parseUserForm(r)
	data.Form = form
	if errs := in.Validate(false); !errs.OK() {
		data.FormErrors = errs
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}

	if _, err := h.API.UpdateUser(r.Context(), token, id, in); err != nil {
		h.userFormError(w, r, data, err)
		return
	}
	http.Redirect(w, r, "/admin/users?done=updated", http.StatusSeeOther)
}

// AdminDeleteUserHandler - удаление пользователя
func (h *Handler) AdminDeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := varID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	err := h.API.DeleteUser(r.Context(), h.store(r).Token(), id)
	if isConflict(err) {
		http.Redirect(w, r, "/admin/users?done=conflict", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.Log.Info().Int64("user_id", id).Msg("пользователь удален")
	http.Redirect(w, r, "/admin/users?done=deleted", http.StatusSeeOther)
}

// userFormError показывает ошибку бэкенда в форме пользователя
func (h *Handler) userFormError(w http.ResponseWriter, r *http.Request, data models.PageData, err error) {
	if fields, ok := apiFieldErrors(err); ok {
		data.FormErrors = fields
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}
	if isConflict(err) {
		data.FormErrors = models.FormErrors{"email": "Пользователь с таким email уже существует"}
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}
	h.fail(w, r, err)
}

func parseUserForm(r *http.Request) (models.UserInput, map[string]string) {
	form := formValues(r, "name", "email", "phone", "role")
	role, _ := domain.ParseRole(form["role"])
	return models.UserInput{
		Name:     form["name"],
		Email:    form["email"],
		Phone:    form["phone"],
		Password: r.FormValue("password"),
		Role:     role,
	}, form
}
