package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brinaregal/brina/internal/api/requestctx"
	"github.com/brinaregal/brina/internal/media"
	"github.com/brinaregal/brina/internal/repository"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

type stubOrders struct {
	rejectReason string
	rejectActor  string
	err          error
}

func (s *stubOrders) List(context.Context, service.AdminOrderFilter) (*service.OrderPage, error) {
	return &service.OrderPage{}, nil
}

func (s *stubOrders) Get(_ context.Context, id int64) (*service.OrderView, error) {
	return &service.OrderView{ID: id}, s.err
}

func (s *stubOrders) GetByReference(_ context.Context, ref string) (*service.OrderView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.OrderView{ID: 1, Reference: ref}, nil
}

func (s *stubOrders) Confirm(_ context.Context, id int64, _ string) (*service.OrderView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.OrderView{ID: id, Status: service.OrderStatusConfirmed}, nil
}

func (s *stubOrders) Reject(_ context.Context, id int64, reason, actor string) (*service.OrderView, error) {
	s.rejectReason = reason
	s.rejectActor = actor
	if s.err != nil {
		return nil, s.err
	}
	return &service.OrderView{ID: id, Status: service.OrderStatusRejected, StatusReason: reason}, nil
}

type stubUploads struct {
	folder string
	name   string
	data   []byte
}

func (s *stubUploads) Upload(_ context.Context, folder, filename string, r io.Reader) (*media.Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.folder, s.name, s.data = folder, filename, data
	return &media.Asset{URL: "/uploads/" + folder + "/x.png", Folder: folder, Size: int64(len(data))}, nil
}

func (s *stubUploads) Delete(context.Context, string) error { return nil }

func (s *stubUploads) MaxBytes() int64 { return 64 }

func withRouteID(r *http.Request, name, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(name, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestRespondServiceErrorMapping(t *testing.T) {
	manager, err := i18n.NewManager()
	require.NoError(t, err)
	ctx := requestctx.WithLanguage(context.Background(), "en-US")

	cases := []struct {
		err    error
		status int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("lookup: %w", repository.ErrNotFound), http.StatusNotFound},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrAccountDisabled, http.StatusForbidden},
		{service.ErrRateLimited, http.StatusTooManyRequests},
		{fmt.Errorf("%w: 12", service.ErrProductUnavailable), http.StatusConflict},
		{service.ErrInvalidTransition, http.StatusConflict},
		{service.ErrPaymentProofRequired, http.StatusBadRequest},
		{service.ErrInvalidFile, http.StatusUnsupportedMediaType},
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{media.ErrCircuitOpen, http.StatusServiceUnavailable},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		respondServiceError(ctx, rec, "test", "error.order_not_found", tc.err, manager)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		body := decodeBody(t, rec)
		assert.NotEmpty(t, body["error"])
		assert.Equal(t, "test", body["action"])
	}

	rec := httptest.NewRecorder()
	respondServiceError(ctx, rec, "orders.track", "error.order_not_found", service.ErrNotFound, manager)
	assert.Equal(t, "Order not found", decodeBody(t, rec)["error"])
}

func TestPagination(t *testing.T) {
	page, size := pagination(httptest.NewRequest(http.MethodGet, "/?page=-3&page_size=abc", nil))
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, size)

	page, size = pagination(httptest.NewRequest(http.MethodGet, "/?page=3&page_size=5000", nil))
	assert.Equal(t, 3, page)
	assert.Equal(t, maxPageSize, size)
}

func TestAdminOrderReject(t *testing.T) {
	orders := &stubOrders{}
	h := NewAdminOrderHandler(orders, nil)
	admin := requestctx.UserClaims{ID: 1, Email: "chef@example.com", IsAdmin: true}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/orders/5/reject", strings.NewReader(`{"reason":"rupture de stock"}`))
	req = req.WithContext(requestctx.WithAdminClaims(req.Context(), admin))
	req = withRouteID(req, "id", "5")
	rec := httptest.NewRecorder()
	h.Reject(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "rupture de stock", orders.rejectReason)
	assert.Equal(t, "chef@example.com", orders.rejectActor)
	assert.Equal(t, "success.order_rejected", decodeBody(t, rec)["message"])

	// the reason is optional
	req = withRouteID(httptest.NewRequest(http.MethodPost, "/api/v1/admin/orders/5/reject", http.NoBody), "id", "5")
	rec = httptest.NewRecorder()
	h.Reject(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, orders.rejectReason)

	req = withRouteID(httptest.NewRequest(http.MethodPost, "/api/v1/admin/orders/x/reject", http.NoBody), "id", "x")
	rec = httptest.NewRecorder()
	h.Reject(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	orders.err = service.ErrInvalidTransition
	req = withRouteID(httptest.NewRequest(http.MethodPost, "/api/v1/admin/orders/5/reject", http.NoBody), "id", "5")
	rec = httptest.NewRecorder()
	h.Reject(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminOrderGetByReference(t *testing.T) {
	h := NewAdminOrderHandler(&stubOrders{}, nil)
	req := withRouteID(httptest.NewRequest(http.MethodGet, "/", nil), "id", "BR-1A2B3C4D")
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "BR-1A2B3C4D", data["reference"])
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestPaymentProofUpload(t *testing.T) {
	uploads := &stubUploads{}
	h := NewUploadHandler(uploads, nil)

	body, contentType := multipartBody(t, uploadField, "recu.png", []byte("\x89PNG\r\n\x1a\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/payment-proof", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.PaymentProof(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, service.FolderPaymentProofs, uploads.folder)
	assert.Equal(t, "recu.png", uploads.name)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "/uploads/paiements/x.png", data["url"])

	body, contentType = multipartBody(t, "other", "recu.png", []byte("x"))
	req = httptest.NewRequest(http.MethodPost, "/api/v1/uploads/payment-proof", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	h.PaymentProof(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
