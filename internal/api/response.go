package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// reply 写出统一响应体 {success, message?, ...payload}。
func reply(c *gin.Context, status int, success bool, msg string, payload gin.H) {
	body := gin.H{"success": success}
	if msg != "" {
		body["message"] = msg
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func Error(c *gin.Context, status int, msg string) { reply(c, status, false, msg, nil) }

func OK(c *gin.Context, msg string, payload gin.H)      { reply(c, http.StatusOK, true, msg, payload) }
func Created(c *gin.Context, msg string, payload gin.H) { reply(c, http.StatusCreated, true, msg, payload) }

// OKFailure answers 200 with success=false, used for idempotent no-ops.
func OKFailure(c *gin.Context, msg string) { reply(c, http.StatusOK, false, msg, nil) }

func Unauthorized(c *gin.Context)           { Error(c, http.StatusUnauthorized, "User not authenticated") }
func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }
func Forbidden(c *gin.Context, msg string)  { Error(c, http.StatusForbidden, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, msg) }
func Internal(c *gin.Context)               { Error(c, http.StatusInternalServerError, "Server error") }
