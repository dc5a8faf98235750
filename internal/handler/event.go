package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/basketball-live-service/internal/model"
	"github.com/maxviazov/basketball-live-service/internal/service"
	"github.com/maxviazov/basketball-live-service/pkg/response"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler { return &EventHandler{svc: svc} }

func (h *EventHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/matches/:id")
	{
		g.POST("/events", h.record)
		g.GET("/events", h.list)
		g.GET("/boxscores", h.boxScores)
		g.GET("/boxscores/:playerID", h.boxScore)
	}
}

type recordEventRequest struct {
	PlayerID       int64           `json:"player_id"`
	TeamID         int64           `json:"team_id"`
	Kind           model.EventKind `json:"kind"`
	Description    string          `json:"description"`
	PointsOverride *int            `json:"points_override"`
}

func (h *EventHandler) record(c *gin.Context) {
	matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	var req recordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	ev, err := h.svc.RecordEvent(c.Request.Context(), matchID, service.RecordEventInput{
		PlayerID:       req.PlayerID,
		TeamID:         req.TeamID,
		Kind:           req.Kind,
		Description:    req.Description,
		PointsOverride: req.PointsOverride,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, ev)
}

func (h *EventHandler) list(c *gin.Context) {
	matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	events, err := h.svc.ListEvents(c.Request.Context(), matchID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, events)
}

func (h *EventHandler) boxScores(c *gin.Context) {
	matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	scores, err := h.svc.ListBoxScores(c.Request.Context(), matchID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, scores)
}

func (h *EventHandler) boxScore(c *gin.Context) {
	matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	playerID, err := strconv.ParseInt(c.Param("playerID"), 10, 64)
	if err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "player_id", Message: "must be an integer"}}))
		return
	}
	score, err := h.svc.GetBoxScore(c.Request.Context(), matchID, playerID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, score)
}
