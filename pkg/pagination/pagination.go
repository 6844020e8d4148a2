// Package pagination normalizes the page/limit query parameters shared
// by every list endpoint and turns them into row offsets for the
// repositories.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 20

	// maxLimit caps a single page; the ledger and audit listings grow
	// without bound.
	maxLimit = 100
)

// Params is the normalized paging window of a list request.
type Params struct {
	Page  int
	Limit int
}

// Parse reads page and limit from the query string, falling back to
// the defaults and clamping limit to [1, maxLimit].
func Parse(c *gin.Context) Params {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Offset converts a page/limit pair into the row offset fed to the
// database. Pages below 1 count as the first page.
func Offset(page, limit int) int {
	if page < 1 {
		page = defaultPage
	}
	return (page - 1) * limit
}
