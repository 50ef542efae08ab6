// 文件路径: internal/api/handler/passport.go
// 模块说明: 顾客与管理员共用的登录、注册接口。
package handler

import (
	"net/http"

	"github.com/brinaregal/brina/internal/api/middleware"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// PassportHandler handles auth/registration endpoints.
type PassportHandler struct {
	auth     service.AuthService
	register service.RegisterService
	i18n     *i18n.Manager
}

func NewPassportHandler(auth service.AuthService, register service.RegisterService, i18nMgr *i18n.Manager) *PassportHandler {
	return &PassportHandler{auth: auth, register: register, i18n: i18nMgr}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Login issues a bearer token.
func (h *PassportHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "auth.login", "error.bad_request", h.i18n)
		return
	}
	result, err := h.auth.Login(ctx, service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		respondServiceError(ctx, w, "auth.login", "", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": result})
}

// Register creates a customer account and logs it in.
func (h *PassportHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "auth.register", "error.bad_request", h.i18n)
		return
	}
	result, err := h.register.Register(ctx, service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Address:         req.Address,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		IP:              middleware.ClientIP(r),
		UserAgent:       r.UserAgent(),
	})
	if err != nil {
		respondServiceError(ctx, w, "auth.register", "", err, h.i18n)
		return
	}
	respondSuccessStatus(ctx, w, http.StatusCreated, "success.registered", h.i18n, result)
}
