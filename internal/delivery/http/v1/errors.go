package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-api/internal/services"
)

var (
	errInvalidRequestBody   = errors.New("invalid request body")
	errCredentialsNotFound  = errors.New("authentication credentials were not provided")
	errInvalidAuthorization = errors.New("invalid authorization header")
)

type apiError struct {
	Code    int
	Message string
	Fields  map[string]string
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, errorResponse{
		Error:  err.Message,
		Fields: err.Fields,
	})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newValidationError(err *services.ValidationError) apiError {
	apiErr := newBadRequestError(err.Error())
	apiErr.Fields = err.Fields
	return apiErr
}

// statusErrors maps service errors to the response sent for them.
var statusErrors = []struct {
	err    error
	status int
}{
	{services.ErrUserAlreadyExists, http.StatusBadRequest},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrInvalidToken, http.StatusUnauthorized},
	{services.ErrTaskNotFound, http.StatusNotFound},
	{services.ErrNoTasksFound, http.StatusNotFound},
}

// respondError writes the response for an error returned by a service.
// Errors it doesn't recognize become a bare 500 and are only logged.
func (h *handlerImpl) respondError(c *gin.Context, err error, msg string) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		h.logger.Debug().
			Err(err).
			Msg(msg)
		abort(c, newValidationError(validationErr))
		return
	}

	for _, se := range statusErrors {
		if errors.Is(err, se.err) {
			h.logger.Debug().
				Err(err).
				Msg(msg)
			abort(c, newAPIError(se.status, se.err.Error()))
			return
		}
	}

	h.logger.Error().
		Err(err).
		Msg(msg)
	abort(c, newStatusTextError(http.StatusInternalServerError))
}

// bindJSON decodes the request body into obj. A value of the wrong
// JSON type is reported against its field like any other invalid input.
func (h *handlerImpl) bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	h.logger.Debug().
		Err(err).
		Msg("failed to bind json")

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := typeErr.Field
		if i := strings.LastIndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		message := "invalid type, expected " + typeErr.Type.String()
		abort(c, newValidationError(services.NewValidationError(field, message)))
		return false
	}

	abort(c, newBadRequestError(errInvalidRequestBody.Error()))
	return false
}
