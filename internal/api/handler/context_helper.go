package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"visa-consultancy/backend/pkg/response"
)

// Context keys set by middleware.JWTAuth
const (
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxStudentID = "student_id"
	CtxTokenJTI  = "token_jti"
	CtxTokenExp  = "token_exp"
)

// MustGetUserID extracts user_id from the gin context.
// Writes a 401 and returns false when the auth middleware did not set it;
// callers return immediately on false.
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, CtxUserID)
}

// MustGetRole extracts role from the gin context
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, CtxRole)
}

// GetStudentID the student the caller acts for; empty for staff
func GetStudentID(c *gin.Context) string {
	return c.GetString(CtxStudentID)
}

// callerID the actor id for audit fields; empty when unauthenticated
func callerID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}

// tokenInfo jti and expiry of the presented token
func tokenInfo(c *gin.Context) (string, time.Time) {
	return c.GetString(CtxTokenJTI), c.GetTime(CtxTokenExp)
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}
