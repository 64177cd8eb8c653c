package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/apotek/db"
	"github.com/meghashyamc/apotek/db/searchdb"
	"github.com/meghashyamc/apotek/logger"
	"github.com/meghashyamc/apotek/validation"
)

const defaultResultsPerPage = 20

type SearchRequest struct {
	Query   string `form:"query" json:"query" validate:"required,valid_query,free_text_query,min=1,max=1000"`
	Kind    string `form:"kind" json:"kind" validate:"omitempty,valid_kind"`
	PerPage int    `form:"per_page" json:"per_page" validate:"min=0,max=100"`
	Page    int    `form:"page" json:"page" validate:"min=0,max=10000"`
}

func (r *SearchRequest) setDefaults() {
	if r.PerPage == 0 {
		r.PerPage = defaultResultsPerPage
	}

	if r.Page == 0 {
		r.Page = 1
	}
}

type SearchResponse struct {
	Results     []searchdb.Result `json:"results"`
	PageDetails Pagination        `json:"page_details"`
}

// SetupSearch serves the quick lookup across every record kind.
func SetupSearch(router *gin.Engine, logger logger.Logger, searchDB searchdb.DB, validator *validation.Validator) {
	router.GET("/search", handleSearch(searchDB, logger, validator))
}

func handleSearch(searchDB searchdb.DB, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}
		request.setDefaults()

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		var kind db.Kind
		if request.Kind != "" {
			kind, _ = db.ParseKind(request.Kind)
		}

		limit := request.PerPage
		offset := (request.Page - 1) * request.PerPage
		results, err := searchDB.Search(request.Query, kind, limit, offset)
		if err != nil {
			logger.Error("search failed", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		searchResponse := SearchResponse{
			Results:     results.Results,
			PageDetails: calculatePagination(int(results.Total), limit, request.Page),
		}

		c.Header(HeaderPaginationTotalCount, strconv.FormatUint(results.Total, 10))
		writeResponse(c, searchResponse, http.StatusOK, nil)
	}
}
