package handler

import (
	"net/http"
	"strconv"
	"strings"

	"shopoholic/internal/models"
)

var productFields = []string{"name", "description", "category", "price", "stock"}

// AdminDashboardHandler - главная страница админки ведет к товарам
func (h *Handler) AdminDashboardHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/products", http.StatusFound)
}

// AdminProductsHandler - список товаров в админке
func (h *Handler) AdminProductsHandler(w http.ResponseWriter, r *http.Request) {
	page := pageNumber(r)

	list, err := h.API.Products(r.Context(), page, PerPage)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := h.page(r, "Управление товарами", "admin_products")
	data.Products = list.Products
	data.Pagination = models.Pagination{Page: page, PerPage: PerPage, TotalCount: list.TotalCount}
	data.Success = successMessage(r)
	h.render(w, http.StatusOK, data)
}

// AdminNewProductHandler - создание товара
func (h *Handler) AdminNewProductHandler(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Добавить товар", "admin_product_form")

	if r.Method != http.MethodPost {
		data.Form = map[string]string{"stock": "0"}
		h.render(w, http.StatusOK, data)
		return
	}

	in, form, errs := parseProductForm(r)
	data.Form = form
	if !errs.OK() {
		data.FormErrors = errs
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}

	p, err := h.API.CreateProduct(r.Context(), h.store(r).Token(), in)
	if fields, ok := apiFieldErrors(err); ok {
		data.FormErrors = fields
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.Log.Info().Int64("product_id", p.ID).Msg("товар создан")
	http.Redirect(w, r, "/admin/products?done=created", http.StatusSeeOther)
}

// AdminEditProductHandler - редактирование товара
func (h *Handler) AdminEditProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := varID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	token := h.store(r).Token()

	if r.Method != http.MethodPost {
		p, err := h.API.Product(r.Context(), id)
		if err != nil {
			h.fail(w, r, err)
			return
		}

		data := h.page(r, "Редактировать товар", "admin_product_form")
		data.Product = p
		data.Form = map[string]string{
			"name":        p.Name,
			"description": p.Description,
			"category":    p.Category,
			"price":       strconv.FormatFloat(p.Price, 'f', -1, 64),
			"stock":       strconv.Itoa(p.Stock),
		}
		h.render(w, http.StatusOK, data)
		return
	}

	data := h.page(r, "Редактировать товар", "admin_product_form")
	data.Product = &models.Product{ID: id}

	in, form, errs := parseProductForm(r)
	data.Form = form
	if !errs.OK() {
		data.FormErrors = errs
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}

	_, err := h.API.UpdateProduct(r.Context(), token, id, in)
	if fields, ok := apiFieldErrors(err); ok {
		data.FormErrors = fields
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin/products?done=updated", http.StatusSeeOther)
}

// AdminDeleteProductHandler - удаление товара
func (h *Handler) AdminDeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := varID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	if err := h.API.DeleteProduct(r.Context(), h.store(r).Token(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.Log.Info().Int64("product_id", id).Msg("товар удален")
	http.Redirect(w, r, "/admin/products?done=deleted", http.StatusSeeOther)
}

// AdminOrdersHandler - все заказы магазина
func (h *Handler) AdminOrdersHandler(w http.ResponseWriter, r *http.Request) {
	page := pageNumber(r)

	list, err := h.API.AllOrders(r.Context(), h.store(r).Token(), page, PerPage)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := h.page(r, "Управление заказами", "admin_orders")
	data.Orders = list.Orders
	data.Pagination = models.Pagination{Page: page, PerPage: PerPage, TotalCount: list.TotalCount}
	data.Success = successMessage(r)
	h.render(w, http.StatusOK, data)
}

// AdminOrderStatusHandler - смена статуса заказа
func (h *Handler) AdminOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := varID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	status := models.OrderStatus(r.FormValue("status"))
	if !status.Valid() {
		http.Error(w, "Неизвестный статус заказа", http.StatusBadRequest)
		return
	}

	if _, err := h.API.UpdateOrderStatus(r.Context(), h.store(r).Token(), id, status); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/admin/orders?done=updated", http.StatusSeeOther)
}

func parseProductForm(r *http.Request) (models.ProductInput, map[string]string, models.FormErrors) {
	form := formValues(r, productFields...)
	in := models.ProductInput{
		Name:        form["name"],
		Description: form["description"],
		Category:    form["category"],
	}

	errs := models.FormErrors{}

	price, err := strconv.ParseFloat(strings.ReplaceAll(form["price"], ",", "."), 64)
	if form["price"] == "" {
		errs["price"] = "Цена товара обязательна"
	} else if err != nil {
		errs["price"] = "Цена должна быть положительным числом"
	}
	in.Price = price

	stock, err := strconv.Atoi(form["stock"])
	if form["stock"] == "" {
		errs["stock"] = "Количество товара обязательно"
	} else if err != nil {
		errs["stock"] = "Количество должно быть неотрицательным числом"
	}
	in.Stock = stock

	for k, v := range in.Validate() {
		if _, seen := errs[k]; !seen {
			errs[k] = v
		}
	}
	return in, form, errs
}

func successMessage(r *http.Request) string {
	switch r.URL.Query().Get("done") {
	case "created":
		return "Запись создана"
	case "updated":
		return "Изменения сохранены"
	case "deleted":
		return "Запись удалена"
	default:
		return ""
	}
}
