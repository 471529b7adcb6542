package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/apperror"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/repository"
)

// Response is the envelope of every API reply.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 reply.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: "success", Data: data})
}

// SuccessWithMessage writes a 200 reply with a custom message.
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: message, Data: data})
}

// Created writes a 201 reply.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: http.StatusCreated, Message: "created", Data: data})
}

// Error writes an error reply.
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{Code: code, Message: message})
}

// BadRequest writes a 400 reply.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// statusFor maps application errors to HTTP status codes.
func statusFor(err error) int {
	var (
		formatErr    *apperror.InvalidFormatError
		batchErr     *apperror.BatchError
		persistErr   *apperror.PersistenceError
		notFoundErr  *apperror.NotFoundError
		protectedErr *apperror.ProtectedCategoryError
	)
	switch {
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &protectedErr), errors.Is(err, repository.ErrPending):
		return http.StatusConflict
	case errors.As(err, &formatErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &batchErr), errors.As(err, &persistErr):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// Fail writes err using its user-facing message.
func Fail(c *gin.Context, err error) {
	Error(c, statusFor(err), apperror.UserMessage(err))
}
