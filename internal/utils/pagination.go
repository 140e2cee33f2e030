package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PaginationParams struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

type PaginationMeta struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// Window is a page slice over an already ordered list of Total items.
// Start and End are clamped to [0, Total].
type Window struct {
	Page       int
	Limit      int
	Start      int
	End        int
	TotalPages int
}

// NormalizePage clamps page and limit: page < 1 becomes 1, limit < 1 becomes
// DefaultPageSize and limit is capped at MaxPageSize.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < MinPageSize {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// Paginate computes the window for page/limit over total items. A page past
// the end yields an empty window.
func Paginate(total, page, limit int) Window {
	page, limit = NormalizePage(page, limit)

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return Window{
		Page:       page,
		Limit:      limit,
		Start:      start,
		End:        end,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

func (w Window) Skip() int64 {
	return int64((w.Page - 1) * w.Limit)
}

func GetPaginationParams(c *gin.Context) *PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	page, limit = NormalizePage(page, limit)

	return &PaginationParams{
		Page:  page,
		Limit: limit,
	}
}

func (p *PaginationParams) GetSkip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

func CreatePaginationMeta(params *PaginationParams, total int64) *PaginationMeta {
	totalPages := int(math.Ceil(float64(total) / float64(params.Limit)))

	return &PaginationMeta{
		Page:        params.Page,
		Limit:       params.Limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     params.Page < totalPages,
		HasPrevious: params.Page > 1,
	}
}
