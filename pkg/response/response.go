package response

import (
	"errors"

	"mediashare/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every successful response.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorEnvelope is the body of every failed response.
type ErrorEnvelope struct {
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Success    bool              `json:"success"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func JSON(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	})
}

// Error writes err using the status code of its apperror kind.
func Error(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	body := ErrorEnvelope{
		StatusCode: status,
		Message:    apperror.Message(err),
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		body.Errors = appErr.Fields
	}

	c.JSON(status, body)
}

// Abort writes a failure body and stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		StatusCode: status,
		Message:    message,
	})
}
