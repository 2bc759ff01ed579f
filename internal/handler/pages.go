package handler

import (
	"errors"
	"net/http"
	"strings"

	"shopoholic/internal/client"
	"shopoholic/internal/domain"
	"shopoholic/internal/metrics"
	"shopoholic/internal/models"
)

// HomeHandler - каталог: поиск по ?q=, иначе постранично
func (h *Handler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Каталог", "products")
	data.Query = strings.TrimSpace(r.URL.Query().Get("q"))
	page := pageNumber(r)

	var (
		list *models.ProductList
		err  error
	)
	if data.Query != "" {
		list, err = h.API.SearchProducts(r.Context(), data.Query)
	} else {
		list, err = h.API.Products(r.Context(), page, PerPage)
	}

	if err != nil {
		h.Log.Error().Err(err).Msg("не удалось загрузить товары")
		data.Error = "Не удалось загрузить товары. Пожалуйста, попробуйте позже."
		h.render(w, http.StatusOK, data)
		return
	}

	data.Products = list.Products
	if data.Query == "" {
		data.Pagination = models.Pagination{Page: page, PerPage: PerPage, TotalCount: list.TotalCount}
	}
	h.render(w, http.StatusOK, data)
}

// LoginHandler - форма входа; после успеха возврат на запомненную страницу
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	st := h.store(r)

	if st.Current().IsAuthenticated {
		http.Redirect(w, r, h.Policy.DefaultPath, http.StatusSeeOther)
		return
	}

	data := h.page(r, "Вход в систему", "login")
	data.ReturnTo = r.FormValue(h.Policy.ReturnParam)

	if r.Method != http.MethodPost {
		data.Form = map[string]string{}
		h.render(w, http.StatusOK, data)
		return
	}

	data.Form = formValues(r, "email")
	password := r.FormValue("password")

	if errs := models.ValidateLogin(data.Form["email"], password); !errs.OK() {
		data.FormErrors = errs
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}

	token, profile, err := h.API.Login(r.Context(), data.Form["email"], password)
	switch {
	case errors.Is(err, client.ErrInvalidCredentials):
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		data.Error = "Неверный email или пароль. Пожалуйста, попробуйте снова."
		h.render(w, http.StatusUnauthorized, data)
		return
	case err != nil:
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		h.Log.Error().Err(err).Msg("ошибка входа")
		data.Error = "Сервис временно недоступен. Пожалуйста, попробуйте позже."
		h.render(w, http.StatusBadGateway, data)
		return
	}

	if err := st.Set(r.Context(), token, profile); err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		h.Log.Error().Err(err).Msg("не удалось сохранить сессию")
		data.Error = "Не удалось сохранить сессию. Пожалуйста, попробуйте позже."
		h.render(w, http.StatusServiceUnavailable, data)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	h.Log.Info().Int64("user_id", profile.ID).Str("role", string(profile.Role)).Msg("вход выполнен")

	http.Redirect(w, r, h.Policy.ReturnTarget(data.ReturnTo), http.StatusSeeOther)
}

// LogoutHandler - выход во всех вкладках браузера
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.store(r).Clear(r.Context()); err != nil {
		h.Log.Warn().Err(err).Msg("выход: хранилище недоступно, сессия очищена в памяти")
	}
	http.Redirect(w, r, h.Policy.DefaultPath, http.StatusSeeOther)
}

// CurrencyHandler - переключение рублей и долларов
func (h *Handler) CurrencyHandler(w http.ResponseWriter, r *http.Request) {
	next := domain.CurrencyUSD
	if currency(r) == domain.CurrencyUSD {
		next = domain.CurrencyRUB
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CurrencyCookie,
		Value:    next,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   365 * 24 * 60 * 60,
	})

	http.Redirect(w, r, localPath(r.FormValue("back"), h.Policy.DefaultPath), http.StatusSeeOther)
}
