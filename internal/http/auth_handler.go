package httpapi

import (
	"net/http"

	"safezone/internal/service"

	"go.uber.org/zap"
)

// AuthHandler 手机验证码登录
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type sendCodeBody struct {
	PhoneNumber string `json:"phoneNumber"`
}

type verifyCodeBody struct {
	PhoneNumber string `json:"phoneNumber"`
	Code        string `json:"code"`
}

func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var body sendCodeBody
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	resp, err := h.authService.SendCode(r.Context(), body.PhoneNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var body verifyCodeBody
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	resp, err := h.authService.VerifyCode(r.Context(), body.PhoneNumber, body.Code)
	if err != nil {
		h.logger.Info("VerifyCode rejected", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// Permissions 当前会话用户的权限矩阵
func (h *AuthHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.authService.Permissions(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(perms))
}

// Me 当前会话用户
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.authService.SessionUser(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(u))
}
