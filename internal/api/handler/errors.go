package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	pkgerrors "visa-consultancy/backend/pkg/errors"
	"visa-consultancy/backend/pkg/response"
)

// respondError writes err by its kind: NotFound 404, Validation 400,
// GuardViolation and OptimisticLock 409, AccessDenied 403, anything else 500.
// code is the module's business code.
func respondError(c *gin.Context, code int, err error) {
	kind := pkgerrors.Kind(err)
	switch kind {
	case pkgerrors.ErrNotFound:
		response.NotFound(c, code, message(err, kind))
	case pkgerrors.ErrValidation:
		response.BadRequest(c, code, message(err, kind))
	case pkgerrors.ErrGuardViolation:
		response.Conflict(c, code, message(err, kind))
	case pkgerrors.ErrOptimisticLock:
		response.Conflict(c, 10006, pkgerrors.ErrOptimisticLock.Error())
	case pkgerrors.ErrAccessDenied:
		response.Forbidden(c, 10003, "access denied")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// message strips the kind prefix from a wrapped sentinel ("validation error: x" → "x")
func message(err error, kind error) string {
	msg := err.Error()
	if kind == nil {
		return msg
	}
	prefix := kind.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 && i+len(prefix) < len(msg) {
		return msg[i+len(prefix):]
	}
	return msg
}
