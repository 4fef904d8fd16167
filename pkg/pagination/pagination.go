package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultSkip  = 0
	DefaultLimit = 100
	MaxLimit     = 500
	MinLimit     = 1

	DefaultPage = 1
)

// Window holds validated offset pagination parameters
type Window struct {
	Skip  int
	Limit int
}

// Parse extracts and validates skip/limit from query parameters
func Parse(c *gin.Context) Window {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", strconv.Itoa(DefaultSkip)))
	if err != nil || skip < 0 {
		skip = DefaultSkip
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Window{Skip: skip, Limit: limit}
}

// Params holds validated page/limit parameters
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePage extracts page/limit for page-numbered listings (audit log)
func ParsePage(c *gin.Context, defaultLimit int) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))

	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}
