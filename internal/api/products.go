package api

import (
	"net/http"
	"strings"

	"shopoholic/internal/models"
)

// ListProducts - GET /products?page=&per_page=&q=
// С непустым q возвращает все совпадения без пагинации.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		products, err := s.Products.Search(r.Context(), q)
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, models.ProductList{Products: products, TotalCount: len(products)})
		return
	}

	limit, offset := pageParams(r)
	products, total, err := s.Products.List(r.Context(), limit, offset)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ProductList{Products: products, TotalCount: total})
}

func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.Products.FindByID(r.Context(), pathID(r))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := in.Validate(); !errs.OK() {
		writeInvalid(w, errs)
		return
	}

	p, err := s.Products.Create(r.Context(), in)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.Log.Info().Int64("product_id", p.ID).Msg("товар создан")
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := in.Validate(); !errs.OK() {
		writeInvalid(w, errs)
		return
	}

	p, err := s.Products.Update(r.Context(), pathID(r), in)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := s.Products.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.Log.Info().Int64("product_id", id).Msg("товар удален")
	w.WriteHeader(http.StatusNoContent)
}
