package utils

import "github.com/gin-gonic/gin"

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, 0, "success", data)
}

// Created returns a standard success response with a 201 status.
func Created(ctx *gin.Context, data interface{}) {
	Respond(ctx, 201, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// ErrorWithDetails returns an error response carrying a list of
// individual problems, used for validation failures where every broken
// rule is reported together.
func ErrorWithDetails(ctx *gin.Context, status int, code int, message string, details []string) {
	Respond(ctx, status, code, message, gin.H{"errors": details})
}
