package api

import (
	"strconv" // String conversion

	"bingo_ledger/internal/service" // Page window

	"github.com/gin-gonic/gin" // Gin web framework
)

const (
	defaultPageSize = 20  // Page size when only page is given
	maxPageSize     = 100 // Upper bound for page_size
)

// parsePage reads page and page_size. Without either parameter the whole listing is returned.
func parsePage(c *gin.Context) service.Page {
	p, ps := c.Query("page"), c.Query("page_size")
	if p == "" && ps == "" {
		return service.Page{} // No pagination requested
	}
	page := 1                   // Default page number
	pageSize := defaultPageSize // Default page size
	if v, err := strconv.Atoi(p); err == nil && v > 0 {
		page = v // Set page if valid
	}
	// Check and set page size within limits
	if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= maxPageSize {
		pageSize = v // Set page size if valid
	}
	return service.Page{Offset: (page - 1) * pageSize, Limit: pageSize}
}

// parseID reads a numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
