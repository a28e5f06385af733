package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware answers browser clients from the configured origins. The
// API is consumed by the storefront and the admin panel, both of which send
// credentialed requests, so the origin is echoed back rather than wildcarded.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))

	for _, origin := range allowedOrigins {
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}

	methods := strings.Join([]string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	}, ",")

	return func(ctx *gin.Context) {
		// responses differ per origin, caches must not mix them up
		ctx.Header("Vary", "Origin")

		origin := ctx.GetHeader("Origin")

		if origin != "" {
			if _, ok := allowed[strings.TrimRight(origin, "/")]; ok {
				ctx.Header("Access-Control-Allow-Origin", origin)
				ctx.Header("Access-Control-Allow-Credentials", "true")
				ctx.Header("Access-Control-Allow-Methods", methods)
				ctx.Header("Access-Control-Allow-Headers", "Authorization,Content-Type")
				ctx.Header("Access-Control-Expose-Headers", requestIDHeader)
				ctx.Header("Access-Control-Max-Age", "600")
			}
		}

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}
