package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/attendance-logger-api/pkg/errors"
)

// bindJSON decodes the request body. An empty body binds nothing so the service can
// report which fields are missing.
func bindJSON(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		return appErrors.Validation(err, "Invalid request body")
	}
	return nil
}

func monthYearParams(c *gin.Context) (int, int, error) {
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return 0, 0, appErrors.Validation(err, "Month must be a number")
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, 0, appErrors.Validation(err, "Year must be a number")
	}
	return month, year, nil
}
