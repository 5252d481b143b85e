package handler

import (
	"restaurant-pos/internal/adapter/http/dto"
	"restaurant-pos/internal/adapter/http/middleware"
	"restaurant-pos/internal/core/ports"
	"restaurant-pos/pkg/apperror"
	"restaurant-pos/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler exchanges a staff PIN for a bearer token.
type AuthHandler struct {
	authSvc ports.AuthService
}

func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)
	c.Set(middleware.CtxAuditResourceID, req.Username)

	token, expiry, err := h.authSvc.Login(c.Request.Context(), req.Username, req.PIN)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{
		Token:  token,
		Expiry: expiry.Unix(),
	})
}
