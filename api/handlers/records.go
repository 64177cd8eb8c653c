package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/apotek/db"
	"github.com/meghashyamc/apotek/logger"
	"github.com/meghashyamc/apotek/services/records"
	"github.com/meghashyamc/apotek/services/search"
	"github.com/meghashyamc/apotek/validation"
)

type RecordRequest struct {
	Kind string `json:"kind" validate:"required,valid_kind"`
	ID   string `json:"id"`
}

type ListRecordsRequest struct {
	Kind    string `form:"-" json:"kind" validate:"required,valid_kind"`
	Query   string `form:"query" json:"query" validate:"free_text_query,max=1000"`
	PerPage int    `form:"per_page" json:"per_page" validate:"valid_page_size"`
	Page    int    `form:"page" json:"page" validate:"min=0"`
}

func (r *ListRecordsRequest) setDefaults(defaultPageSize int) {
	if r.PerPage == 0 {
		r.PerPage = defaultPageSize
	}

	if r.Page == 0 {
		r.Page = 1
	}
}

type ListRecordsResponse struct {
	Records []db.Record `json:"records"`
	// CreateSuggestion is the query to offer as a new record name when
	// nothing matched it.
	CreateSuggestion string     `json:"create_suggestion,omitempty"`
	PageDetails      Pagination `json:"page_details"`
}

func SetupRecords(router *gin.Engine, logger logger.Logger, recordService *records.Service, searchService *search.Service, validator *validation.Validator, defaultPageSize int) {
	group := router.Group("/records/:kind")
	group.POST("", handleCreateRecord(recordService, logger, validator))
	group.GET("", handleListRecords(searchService, logger, validator, defaultPageSize))
	group.GET("/:id", handleGetRecord(recordService, logger, validator))
	group.PUT("/:id", handleUpdateRecord(recordService, logger, validator))
	group.DELETE("/:id", handleDeleteRecord(recordService, logger, validator))
}

// bindRecordRequest reads and validates the kind and id path parameters.
func bindRecordRequest(c *gin.Context, logger logger.Logger, validator *validation.Validator) (db.Kind, string, bool) {
	request := RecordRequest{Kind: c.Param("kind"), ID: c.Param("id")}
	if err := validator.Validate(request); err != nil {
		logger.Warn("could not validate record request", "err", err.Error())
		c.Abort()
		writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
		return "", "", false
	}

	kind, _ := db.ParseKind(request.Kind)
	return kind, request.ID, true
}

func bindRecordBody(c *gin.Context, logger logger.Logger) (db.Record, bool) {
	fields := db.Record{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		logger.Warn("could not extract record fields from request body", "err", err.Error())
		c.Abort()
		writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
		return nil, false
	}

	return fields, true
}

func handleCreateRecord(service *records.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, _, ok := bindRecordRequest(c, logger, validator)
		if !ok {
			return
		}
		fields, ok := bindRecordBody(c, logger)
		if !ok {
			return
		}

		record, err := service.Create(c.Request.Context(), kind, fields)
		if err != nil {
			logger.Warn("could not create record", "kind", kind, "err", err.Error())
			writeError(c, err)
			return
		}

		writeResponse(c, record, http.StatusCreated, nil)
	}
}

func handleGetRecord(service *records.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, id, ok := bindRecordRequest(c, logger, validator)
		if !ok {
			return
		}

		record, err := service.Get(c.Request.Context(), kind, id)
		if err != nil {
			logger.Warn("could not get record", "kind", kind, "id", id, "err", err.Error())
			writeError(c, err)
			return
		}

		writeResponse(c, record, http.StatusOK, nil)
	}
}

func handleUpdateRecord(service *records.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, id, ok := bindRecordRequest(c, logger, validator)
		if !ok {
			return
		}
		fields, ok := bindRecordBody(c, logger)
		if !ok {
			return
		}

		record, err := service.Update(c.Request.Context(), kind, id, fields)
		if err != nil {
			logger.Warn("could not update record", "kind", kind, "id", id, "err", err.Error())
			writeError(c, err)
			return
		}

		writeResponse(c, record, http.StatusOK, nil)
	}
}

func handleDeleteRecord(service *records.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, id, ok := bindRecordRequest(c, logger, validator)
		if !ok {
			return
		}

		if err := service.Delete(c.Request.Context(), kind, id); err != nil {
			logger.Warn("could not delete record", "kind", kind, "id", id, "err", err.Error())
			writeError(c, err)
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}

func handleListRecords(service *search.Service, logger logger.Logger, validator *validation.Validator, defaultPageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := ListRecordsRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from list request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}
		request.Kind = c.Param("kind")
		request.setDefaults(defaultPageSize)

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate list request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		kind, _ := db.ParseKind(request.Kind)
		result, err := service.List(c.Request.Context(), kind, request.Query, request.Page, request.PerPage)
		if err != nil {
			logger.Error("list failed", "kind", kind, "err", err.Error())
			writeError(c, err)
			return
		}

		listResponse := ListRecordsResponse{
			Records:          result.Records,
			CreateSuggestion: result.CreateSuggestion,
			PageDetails:      calculatePagination(result.TotalItems, request.PerPage, request.Page),
		}
		if listResponse.Records == nil {
			listResponse.Records = []db.Record{}
		}

		c.Header(HeaderPaginationTotalCount, strconv.Itoa(result.TotalItems))
		writeResponse(c, listResponse, http.StatusOK, nil)
	}
}
