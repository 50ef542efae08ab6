// 文件路径: internal/api/handler/admin_product.go
// 模块说明: 后台菜品管理，含图片上传与批量导入。
package handler

import (
	"net/http"

	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// AdminProductHandler 管理菜单。
type AdminProductHandler struct {
	products service.AdminProductService
	uploads  service.UploadService
	i18n     *i18n.Manager
}

func NewAdminProductHandler(products service.AdminProductService, uploads service.UploadService, i18nMgr *i18n.Manager) *AdminProductHandler {
	return &AdminProductHandler{products: products, uploads: uploads, i18n: i18nMgr}
}

func (h *AdminProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respondServiceError(r.Context(), w, "admin.product.fetch", "", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": products, "total": len(products)})
}

func (h *AdminProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondErrorI18nAction(r.Context(), w, http.StatusBadRequest, "admin.product.get", "error.bad_request", h.i18n)
		return
	}
	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondServiceError(r.Context(), w, "admin.product.get", "error.product_not_found", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": product})
}

func (h *AdminProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var input service.ProductInput
	if err := decodeJSON(r, &input); err != nil {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "admin.product.create", "error.bad_request", h.i18n)
		return
	}
	product, err := h.products.Create(ctx, input)
	if err != nil {
		respondServiceError(ctx, w, "admin.product.create", "", err, h.i18n)
		return
	}
	respondSuccessStatus(ctx, w, http.StatusCreated, "success.saved", h.i18n, product)
}

func (h *AdminProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "admin.product.update", "error.bad_request", h.i18n)
		return
	}
	var input service.ProductInput
	if err := decodeJSON(r, &input); err != nil {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "admin.product.update", "error.bad_request", h.i18n)
		return
	}
	product, err := h.products.Update(ctx, id, input)
	if err != nil {
		respondServiceError(ctx, w, "admin.product.update", "error.product_not_found", err, h.i18n)
		return
	}
	RespondSuccessI18n(ctx, w, "success.saved", h.i18n, product)
}

func (h *AdminProductHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "admin.product.toggle", "error.bad_request", h.i18n)
		return
	}
	product, err := h.products.ToggleAvailability(ctx, id)
	if err != nil {
		respondServiceError(ctx, w, "admin.product.toggle", "error.product_not_found", err, h.i18n)
		return
	}
	RespondSuccessI18n(ctx, w, "success.saved", h.i18n, product)
}

func (h *AdminProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "admin.product.delete", "error.bad_request", h.i18n)
		return
	}
	if err := h.products.Delete(ctx, id); err != nil {
		respondServiceError(ctx, w, "admin.product.delete", "error.product_not_found", err, h.i18n)
		return
	}
	RespondSuccessI18n(ctx, w, "success.deleted", h.i18n, nil)
}

// UploadImage stores a picture in the "produits" folder and points the product at it.
func (h *AdminProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "admin.product.image", "error.bad_request", h.i18n)
		return
	}
	if _, err := h.products.Get(ctx, id); err != nil {
		respondServiceError(ctx, w, "admin.product.image", "error.product_not_found", err, h.i18n)
		return
	}
	file, header, err := openUpload(w, r, h.uploads.MaxBytes())
	if err != nil {
		respondUploadError(w, r, "admin.product.image", err, h.i18n)
		return
	}
	defer file.Close()

	asset, err := h.uploads.Upload(ctx, service.FolderProducts, header.Filename, file)
	if err != nil {
		respondServiceError(ctx, w, "admin.product.image", "", err, h.i18n)
		return
	}
	product, err := h.products.SetImage(ctx, id, asset.URL)
	if err != nil {
		respondServiceError(ctx, w, "admin.product.image", "error.product_not_found", err, h.i18n)
		return
	}
	RespondSuccessI18n(ctx, w, "success.saved", h.i18n, product)
}

// Import upserts products by name from {"products": [...]}.
func (h *AdminProductHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload struct {
		Products []service.ProductInput `json:"products"`
	}
	if err := decodeJSON(r, &payload); err != nil || len(payload.Products) == 0 {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "admin.product.import", "error.bad_request", h.i18n)
		return
	}
	result, err := h.products.Import(ctx, payload.Products)
	if err != nil {
		respondServiceError(ctx, w, "admin.product.import", "", err, h.i18n)
		return
	}
	RespondSuccessI18n(ctx, w, "success.saved", h.i18n, result)
}
