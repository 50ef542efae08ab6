// 文件路径: internal/api/handler/upload.go
// 模块说明: multipart 图片上传（付款凭证），大小与类型校验在 UploadService 内完成。
package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

const (
	uploadField = "file"
	// multipart framing on top of the image itself
	multipartOverhead = 1 << 20
)

// UploadHandler accepts payment proofs from customers before checkout.
type UploadHandler struct {
	uploads service.UploadService
	i18n    *i18n.Manager
}

func NewUploadHandler(uploads service.UploadService, i18nMgr *i18n.Manager) *UploadHandler {
	return &UploadHandler{uploads: uploads, i18n: i18nMgr}
}

// PaymentProof stores the receipt in the "paiements" folder and returns its URL.
func (h *UploadHandler) PaymentProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	file, header, err := openUpload(w, r, h.uploads.MaxBytes())
	if err != nil {
		respondUploadError(w, r, "uploads.payment_proof", err, h.i18n)
		return
	}
	defer file.Close()

	asset, err := h.uploads.Upload(ctx, service.FolderPaymentProofs, header.Filename, file)
	if err != nil {
		respondServiceError(ctx, w, "uploads.payment_proof", "", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"data": asset})
}

func openUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxBytes + multipartOverhead); err != nil {
		return nil, nil, err
	}
	return r.FormFile(uploadField)
}

func respondUploadError(w http.ResponseWriter, r *http.Request, action string, err error, i18nMgr *i18n.Manager) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondErrorI18nAction(r.Context(), w, http.StatusRequestEntityTooLarge, action, "error.file_too_large", i18nMgr)
		return
	}
	RespondErrorI18nAction(r.Context(), w, http.StatusBadRequest, action, "error.invalid_file", i18nMgr)
}
