package pkg

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/blogapi/internal/domain"
)

// ParseIDParam reads a positive integer path parameter. A malformed value
// yields a validation AppError naming the parameter.
func ParseIDParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, domain.NewAppError(domain.CodeValidation, "invalid "+key+": "+raw, nil)
	}
	return uint(id), nil
}
