package constants

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Standard Response Field Keys
const (
	ResponseFieldData       = "data"
	ResponseFieldMessage    = "message"
	ResponseFieldStatusCode = "status_code"

	// List metadata fields
	ResponseFieldTotal     = "total"
	ResponseFieldPage      = "page"
	ResponseFieldPageTotal = "page_total"
)

// PaginationParams carries parsed pagination values for list endpoints.
type PaginationParams struct {
	Page     int // 1-based page number (default: 1)
	PageSize int // rows per page (default: 10)
	Offset   int // (page - 1) * pageSize
}

// ParsePaginationParams parses page/page size query parameters with defaults
// and bounds.
func ParsePaginationParams(c *gin.Context) PaginationParams {
	pageStr := c.DefaultQuery(QueryParamPage, DefaultPage)
	sizeStr := c.DefaultQuery(QueryParamPageSize, DefaultPageSize)

	page, _ := strconv.Atoi(pageStr)
	size, _ := strconv.Atoi(sizeStr)

	if page < MinPage {
		page = MinPage
	}
	if size < MinPageSize {
		size = MinPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	return PaginationParams{
		Page:     page,
		PageSize: size,
		Offset:   (page - 1) * size,
	}
}

// Every workflow response is wrapped in the same envelope:
// {data, message, status_code}. Batch failures put their per-item
// messages in data.

func BuildSuccessResponse(statusCode int, message string, data any) map[string]any {
	return map[string]any{
		ResponseFieldData:       data,
		ResponseFieldMessage:    message,
		ResponseFieldStatusCode: statusCode,
	}
}

func BuildErrorResponse(statusCode int, message string, details any) map[string]any {
	return map[string]any{
		ResponseFieldData:       details,
		ResponseFieldMessage:    message,
		ResponseFieldStatusCode: statusCode,
	}
}

func BuildListResponse(statusCode int, message string, total int64, page int, pageTotal int, data any) map[string]any {
	return map[string]any{
		ResponseFieldData:       data,
		ResponseFieldMessage:    message,
		ResponseFieldStatusCode: statusCode,
		ResponseFieldTotal:      total,
		ResponseFieldPage:       page,
		ResponseFieldPageTotal:  pageTotal,
	}
}
