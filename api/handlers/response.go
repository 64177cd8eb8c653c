package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/apotek/db/kvdb"
	"github.com/meghashyamc/apotek/services/records"
	"github.com/meghashyamc/apotek/services/search"
)

const HeaderPaginationTotalCount = "X-Pagination-Total-Count"

type response struct {
	Data   any      `json:"data"`
	Errors []string `json:"errors"`
}

func writeResponse(c *gin.Context, data interface{}, statusCode int, errors []string) {

	if statusCode == http.StatusNoContent {
		c.JSON(statusCode, nil)
		return

	}

	response := response{
		Data:   data,
		Errors: errors,
	}

	c.JSON(statusCode, response)
}

// writeError maps service errors onto status codes.
func writeError(c *gin.Context, err error) {
	c.Abort()
	switch {
	case errors.Is(err, kvdb.ErrNotFound):
		writeResponse(c, nil, http.StatusNotFound, []string{"record not found"})
	case errors.Is(err, records.ErrInvalidRecord), errors.Is(err, kvdb.ErrInvalidKey):
		writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
	default:
		writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
	}
}

type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	PageSize     int  `json:"page_size"`
	TotalPages   int  `json:"total_pages"`
	HasNextPage  bool `json:"has_next_page"`
	HasPrevPage  bool `json:"has_prev_page"`
	TotalResults int  `json:"total_results"`
}

// calculatePagination reports page_size as given, so an unlimited listing
// shows -1 on a single page.
func calculatePagination(total, pageSize, currentPage int) Pagination {
	totalPages := 1
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	if totalPages == 0 {
		totalPages = 1
	}

	return Pagination{
		CurrentPage:  currentPage,
		PageSize:     pageSize,
		TotalPages:   totalPages,
		HasNextPage:  pageSize != search.Unlimited && currentPage < totalPages,
		HasPrevPage:  currentPage > 1,
		TotalResults: total,
	}
}
