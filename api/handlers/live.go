package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/apotek/db"
	"github.com/meghashyamc/apotek/logger"
	"github.com/meghashyamc/apotek/services/livesearch"
	"github.com/meghashyamc/apotek/validation"
)

type OpenLiveRequest struct {
	Kind    string `form:"kind" json:"kind" validate:"required,valid_kind"`
	PerPage int    `form:"per_page" json:"per_page" validate:"valid_page_size"`
}

type OpenLiveResponse struct {
	ID       string  `json:"id"`
	Kind     db.Kind `json:"kind"`
	PageSize int     `json:"page_size"`
}

type LiveInputRequest struct {
	Input string `json:"input" validate:"max=1000"`
}

type LivePageRequest struct {
	Page int `json:"page" validate:"required,min=1"`
}

// SetupLive serves live search sessions. Keystrokes are posted to
// /live/:id/input and results are streamed as server-sent events.
func SetupLive(router *gin.Engine, logger logger.Logger, manager *livesearch.Manager, validator *validation.Validator, defaultPageSize int) {
	router.POST("/live", handleOpenLive(manager, logger, validator, defaultPageSize))
	router.POST("/live/:id/input", handleLiveInput(manager, logger, validator))
	router.POST("/live/:id/page", handleLivePage(manager, logger, validator))
	router.GET("/live/:id/events", handleLiveEvents(manager, logger))
	router.DELETE("/live/:id", handleCloseLive(manager, logger))
}

func handleOpenLive(manager *livesearch.Manager, logger logger.Logger, validator *validation.Validator, defaultPageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := OpenLiveRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from live search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}
		if request.PerPage == 0 {
			request.PerPage = defaultPageSize
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate live search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		kind, _ := db.ParseKind(request.Kind)
		session, err := manager.Open(c.Request.Context(), kind, request.PerPage)
		if err != nil {
			writeError(c, err)
			return
		}

		writeResponse(c, OpenLiveResponse{ID: session.ID, Kind: session.Kind, PageSize: session.PageSize}, http.StatusCreated, nil)
	}
}

func findSession(c *gin.Context, manager *livesearch.Manager, logger logger.Logger) (*livesearch.Session, bool) {
	id := c.Param("id")
	session, ok := manager.Get(id)
	if !ok {
		logger.Warn("live session not found", "session_id", id)
		c.Abort()
		writeResponse(c, nil, http.StatusNotFound, []string{"live session not found"})
		return nil, false
	}

	return session, true
}

func handleLiveInput(manager *livesearch.Manager, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := findSession(c, manager, logger)
		if !ok {
			return
		}

		request := LiveInputRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract input from live search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}
		if err := validator.Validate(request); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		session.Input(request.Input)
		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}

func handleLivePage(manager *livesearch.Manager, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := findSession(c, manager, logger)
		if !ok {
			return
		}

		request := LivePageRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract page from live search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}
		if err := validator.Validate(request); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		session.ShowPage(request.Page)
		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}

// handleLiveEvents streams session events until the session closes or the
// client goes away.
func handleLiveEvents(manager *livesearch.Manager, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := findSession(c, manager, logger)
		if !ok {
			return
		}
		release := session.Watch()
		defer release()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Status(http.StatusOK)
		c.Writer.Flush()

		for {
			select {
			case <-c.Request.Context().Done():
				logger.Debug("live event stream client went away", "session_id", session.ID)
				return
			case <-session.Done():
				return
			case event := <-session.Events():
				c.SSEvent(string(event.Type), event)
				c.Writer.Flush()
			}
		}
	}
}

func handleCloseLive(manager *livesearch.Manager, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !manager.Close(c.Param("id")) {
			logger.Warn("live session not found", "session_id", c.Param("id"))
			c.Abort()
			writeResponse(c, nil, http.StatusNotFound, []string{"live session not found"})
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}
