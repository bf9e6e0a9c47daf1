package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/netbill/internal/auth/domain"
	catalogdomain "github.com/smallbiznis/netbill/internal/catalog/domain"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/netbill/internal/payment/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isInvalidStateError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "invalid_state",
			Message: err.Error(),
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isCustomerValidationError(err),
		isPackageValidationError(err),
		isInvoiceValidationError(err),
		isPaymentValidationError(err),
		errors.Is(err, authdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isCustomerValidationError(err error) bool {
	switch {
	case errors.Is(err, customerdomain.ErrInvalidID),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, customerdomain.ErrInvalidEmail),
		errors.Is(err, customerdomain.ErrInvalidPhone),
		errors.Is(err, customerdomain.ErrInvalidAddress),
		errors.Is(err, customerdomain.ErrInvalidBillingDay),
		errors.Is(err, customerdomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}

func isPackageValidationError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrInvalidName),
		errors.Is(err, catalogdomain.ErrInvalidCode),
		errors.Is(err, catalogdomain.ErrInvalidSpeed),
		errors.Is(err, catalogdomain.ErrInvalidPrice),
		errors.Is(err, catalogdomain.ErrInvalidType):
		return true
	default:
		return false
	}
}

func isInvoiceValidationError(err error) bool {
	switch {
	case errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidMonth),
		errors.Is(err, invoicedomain.ErrInvalidNumber),
		errors.Is(err, invoicedomain.ErrInvalidAmount):
		return true
	default:
		return false
	}
}

func isPaymentValidationError(err error) bool {
	switch {
	case errors.Is(err, paymentdomain.ErrInvalidID),
		errors.Is(err, paymentdomain.ErrInvalidNumber),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidMethod),
		errors.Is(err, paymentdomain.ErrInvalidReason):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrCustomerNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrCustomerNotFound),
		errors.Is(err, paymentdomain.ErrInvoiceNotFound),
		errors.Is(err, customerdomain.ErrPackageNotFound),
		errors.Is(err, authdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, customerdomain.ErrEmailExists),
		errors.Is(err, catalogdomain.ErrNameExists),
		errors.Is(err, catalogdomain.ErrCodeExists),
		errors.Is(err, catalogdomain.ErrInUse),
		errors.Is(err, invoicedomain.ErrPeriodExists),
		errors.Is(err, paymentdomain.ErrInvoiceMismatch):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	if errors.Is(err, ErrConflict) {
		return "conflict"
	}
	return err.Error()
}

// Invalid state covers operations that are structurally valid but forbidden
// by the current lifecycle state of the record.
func isInvalidStateError(err error) bool {
	switch {
	case errors.Is(err, invoicedomain.ErrAlreadyPaid),
		errors.Is(err, invoicedomain.ErrHasPayment),
		errors.Is(err, invoicedomain.ErrNoPackage),
		errors.Is(err, paymentdomain.ErrAlreadyVerified),
		errors.Is(err, paymentdomain.ErrAlreadyFinal),
		errors.Is(err, authdomain.ErrUserInactive):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog feeds the request logger a coarse error class without
// duplicating mapError's response shaping.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return "internal", payload.Type
	}
	return "client", payload.Type
}
