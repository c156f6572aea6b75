package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders hardening headers for the JSON API. Responses carry
// student and passport data, so they are never cached and vary by token.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Cache-Control", "no-store")
		c.Writer.Header().Add("Vary", "Authorization")

		c.Next()
	}
}

// DownloadHeaders for spreadsheet exports, printed invoices and calendar
// feeds. The file is private to the caller and must never render inline.
func DownloadHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "private, no-store")
		c.Header("Content-Security-Policy", "sandbox; default-src 'none'")
		c.Header("X-Download-Options", "noopen")
		c.Header("Cross-Origin-Resource-Policy", "same-origin")

		c.Next()
	}
}
