package handler

import (
	"github.com/gin-gonic/gin"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/service"
	"visa-consultancy/backend/pkg/response"
)

// AuthHandler the token endpoints this service owns. Login and refresh live
// with the identity provider.
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Logout revokes the presented access token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := MustGetUserID(c); !ok {
		return
	}

	jti, exp := tokenInfo(c)
	revoked, err := h.authSvc.Logout(c.Request.Context(), jti, exp)
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	response.OK(c, dto.LogoutResponse{Revoked: revoked})
}

// GetCurrentUser the identity carried by the token
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	response.OK(c, gin.H{
		"user_id":    userID,
		"role":       role,
		"student_id": GetStudentID(c),
	})
}
