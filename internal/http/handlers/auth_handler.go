// README: Login-code endpoints for session establishment.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swiftdrop/internal/modules/identity"
)

type AuthHandler struct {
	identity *identity.Service
}

func NewAuthHandler(svc *identity.Service) *AuthHandler {
	return &AuthHandler{identity: svc}
}

type sendCodeReq struct {
	Phone string `json:"phone"`
}

func (h *AuthHandler) SendCode(c *gin.Context) {
	var req sendCodeReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" {
		writeError(c, http.StatusBadRequest, "missing phone")
		return
	}
	if err := h.identity.SendLoginCode(c.Request.Context(), req.Phone); err != nil {
		if err == identity.ErrBadPhone {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"sent": true})
}

type verifyCodeReq struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
	Role  string `json:"role"`
}

func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req verifyCodeReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" || req.Code == "" {
		writeError(c, http.StatusBadRequest, "missing phone or code")
		return
	}
	token, ok, err := h.identity.VerifyLoginCode(c.Request.Context(), req.Phone, req.Code, req.Role)
	if err != nil {
		if err == identity.ErrBadRole {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeError(c, http.StatusUnauthorized, "invalid code")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"token": token})
}
