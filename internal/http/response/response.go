package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/errors"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondFromError maps service-layer sentinels onto HTTP statuses. A
// duplicate ingest additionally surfaces the existing document so clients
// can link to it.
func RespondFromError(c *gin.Context, err error) {
	var dup *services.DuplicateError
	if errors.As(err, &dup) {
		c.JSON(http.StatusConflict, gin.H{
			"error":    APIError{Message: err.Error(), Code: "duplicate"},
			"existing": dup.Existing,
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, apperrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperrors.ErrPermissionDenied):
		RespondError(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, apperrors.ErrConflict):
		RespondError(c, http.StatusConflict, "conflict", err)
	case errors.Is(err, apperrors.ErrPolicyViolation):
		RespondError(c, http.StatusUnprocessableEntity, "policy_violation", err)
	case errors.Is(err, apperrors.ErrUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "unavailable", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
