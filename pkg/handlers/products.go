package handlers

import (
	"net/http"

	"org-dashboard-backend/pkg/actions"
	"org-dashboard-backend/pkg/config"
	"org-dashboard-backend/pkg/models"
	"org-dashboard-backend/pkg/utils"
)

// ProductHandler 商品处理器
type ProductHandler struct {
	config  *config.Config
	actions *actions.Actions
}

// NewProductHandler 创建商品处理器
func NewProductHandler(cfg *config.Config, a *actions.Actions) *ProductHandler {
	return &ProductHandler{config: cfg, actions: a}
}

// ListProducts lists products; ?author_id= wins over ?category= when both are given
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []models.Product
		err      error
	)
	sess := session(r)
	switch {
	case utils.GetQueryParam(r, "author_id", "") != "":
		products, err = h.actions.GetProductsByAuthor(r.Context(), sess, r.URL.Query().Get("author_id"))
	case utils.GetQueryParam(r, "category", "") != "":
		products, err = h.actions.GetProductsByCategory(r.Context(), sess, r.URL.Query().Get("category"))
	default:
		products, err = h.actions.ListProducts(r.Context(), sess)
	}
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	writeList(w, products)
}

// Categories returns the product category catalogue
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeList(w, h.actions.ProductCategories())
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.actions.GetProduct(r.Context(), session(r), idParam(r))
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, product)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input models.CreateProductInput
	if !decodeBody(h.config, w, r, &input) {
		return
	}
	product, err := h.actions.CreateProduct(r.Context(), session(r), input)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, product)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input models.UpdateProductInput
	if !decodeBody(h.config, w, r, &input) {
		return
	}
	product, err := h.actions.UpdateProduct(r.Context(), session(r), idParam(r), input)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, product)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if err := h.actions.DeleteProduct(r.Context(), session(r), id); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]string{"id": id})
}
