package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Two response dialects, both inherited from the original API: the auth and
// taxonomy endpoints answer `{"message": ...}`, the vendor endpoints answer
// `{"success": ..., "message": ...}`. Internal failures always map to the
// same opaque message; detail stays in the server log.

const internalMessage = "Server error"

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	if details == nil {
		RespondMessage(ctx, http.StatusBadRequest, message)
		return
	}

	ctx.JSON(http.StatusBadRequest, gin.H{
		"message": message,
		"fields":  details,
	})
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondMessage(ctx, http.StatusNotFound, message)
}

func RespondInternal(ctx *gin.Context) {
	RespondMessage(ctx, http.StatusInternalServerError, internalMessage)
}

func RespondFail(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

func RespondFailInternal(ctx *gin.Context) {
	RespondFail(ctx, http.StatusInternalServerError, internalMessage)
}
