// Package httputil writes the JSON envelope shared by every endpoint:
//
//	{"success": true, "data": ..., "request_id": "..."}
//	{"success": false, "error": {"code": "...", "message": "..."}, "request_id": "..."}
package httputil

import (
	stderrors "errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/John-Sie/YangBeiKTV/pkg/errors"
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

// Response is the JSON envelope.
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
}

// ErrorInfo is the error part of the envelope.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func write(c *gin.Context, status int, resp Response) {
	resp.RequestID = c.GetString(RequestIDKey)
	c.JSON(status, resp)
}

// SuccessResponse writes 200 with data.
func SuccessResponse(c *gin.Context, data any) {
	write(c, http.StatusOK, Response{Success: true, Data: data})
}

// CreatedResponse writes 201 with data.
func CreatedResponse(c *gin.Context, data any) {
	write(c, http.StatusCreated, Response{Success: true, Data: data})
}

// ErrorResponse writes err using its *errors.Error status and code.
// Anything else is reported as an internal error without leaking its text.
func ErrorResponse(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.ErrInternal.WithError(err)
	}
	write(c, appErr.HTTPStatus, Response{
		Error: &ErrorInfo{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details},
	})
}

// AbortWithError writes an error response and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	ErrorResponse(c, err)
	c.Abort()
}

// Attachment writes body as a file download.
func Attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, contentType, body)
}

// BindAndValidate binds the JSON body into obj. Binding tag violations are
// reported per field in the error details.
func BindAndValidate(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make([]FieldError, len(verrs))
		for i, fe := range verrs {
			fields[i] = FieldError{Field: fe.Field(), Rule: fe.Tag()}
		}
		return errors.ErrValidationFailed.WithError(err).WithDetails(fields)
	}
	return errors.ErrInvalidInput.WithError(err).WithDetails(err.Error())
}
