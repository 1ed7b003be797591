package response

import "github.com/gin-gonic/gin"

// ErrorBody is the error half of the envelope. Details carries field-keyed
// messages for validation failures.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Envelope{Success: true, Data: data})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	ErrorWithDetails(c, statusCode, code, message, nil)
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Details: details},
	})
}
