package middleware

import (
	"fmt"
	"net/http"

	apperrors "carrier-rate-engine/pkg/errors"
	"carrier-rate-engine/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Rate requests carry commercial invoices and document images; 10 MiB covers them.
const DefaultMaxRequestSize = 10 << 20

func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			utils.CodedErrorResponse(c, http.StatusRequestEntityTooLarge, apperrors.CodeValidation, "Request body too large",
				fmt.Sprintf("limit is %d bytes", maxSize))
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
