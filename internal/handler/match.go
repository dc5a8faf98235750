package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/basketball-live-service/internal/model"
	"github.com/maxviazov/basketball-live-service/internal/repository"
	"github.com/maxviazov/basketball-live-service/internal/service"
	"github.com/maxviazov/basketball-live-service/pkg/response"
)

type MatchHandler struct {
	svc service.MatchService
}

func NewMatchHandler(svc service.MatchService) *MatchHandler { return &MatchHandler{svc: svc} }

func (h *MatchHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/matches")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET(":id", h.getByID)
		g.GET(":id/live", h.live)

		g.POST(":id/start", h.start)
		g.POST(":id/finish", h.finish)
		g.POST(":id/cancel", h.cancel)
		g.POST(":id/advance-period", h.advancePeriod)
		g.POST(":id/score", h.score)
		g.POST(":id/fouls", h.fouls)
		g.POST(":id/timeouts", h.timeouts)

		g.POST(":id/clock/start", h.clockStart)
		g.POST(":id/clock/pause", h.clockPause)
		g.POST(":id/clock/reset", h.clockReset)
		g.POST(":id/save", h.save)
	}
}

type createMatchRequest struct {
	HomeTeamID   int64   `json:"home_team_id"`
	AwayTeamID   int64   `json:"away_team_id"`
	HomeTeamName string  `json:"home_team_name"`
	AwayTeamName string  `json:"away_team_name"`
	Venue        string  `json:"venue"`
	Date         string  `json:"date"` // RFC3339
	HomeRoster   []int64 `json:"home_roster"`
	AwayRoster   []int64 `json:"away_roster"`
	Description  string  `json:"description"`
}

func (h *MatchHandler) create(c *gin.Context) {
	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	parsedDate, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "date", Message: "must be RFC3339"}}))
		return
	}
	match, err := h.svc.CreateMatch(c.Request.Context(), service.CreateMatchInput{
		HomeTeamID:   req.HomeTeamID,
		AwayTeamID:   req.AwayTeamID,
		HomeTeamName: req.HomeTeamName,
		AwayTeamName: req.AwayTeamName,
		Venue:        req.Venue,
		Date:         parsedDate,
		HomeRoster:   req.HomeRoster,
		AwayRoster:   req.AwayRoster,
		Description:  req.Description,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, match)
}

func (h *MatchHandler) getByID(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	match, err := h.svc.GetMatch(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, match)
}

func (h *MatchHandler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	page := repository.Page{Limit: limit, Offset: offset}
	res, err := h.svc.ListMatches(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *MatchHandler) live(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	snap, err := h.svc.LiveSnapshot(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, snap)
}

// snapshotAction factors the id-parse / call / respond dance shared by the
// lifecycle endpoints.
func (h *MatchHandler) snapshotAction(c *gin.Context, fn func(id int64) (model.Snapshot, error)) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	snap, err := fn(id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, snap)
}

func (h *MatchHandler) start(c *gin.Context) {
	h.snapshotAction(c, func(id int64) (model.Snapshot, error) {
		return h.svc.Start(c.Request.Context(), id)
	})
}

func (h *MatchHandler) finish(c *gin.Context) {
	h.snapshotAction(c, func(id int64) (model.Snapshot, error) {
		return h.svc.Finish(c.Request.Context(), id)
	})
}

func (h *MatchHandler) cancel(c *gin.Context) {
	h.snapshotAction(c, func(id int64) (model.Snapshot, error) {
		return h.svc.Cancel(c.Request.Context(), id)
	})
}

func (h *MatchHandler) advancePeriod(c *gin.Context) {
	h.snapshotAction(c, func(id int64) (model.Snapshot, error) {
		return h.svc.AdvancePeriod(c.Request.Context(), id)
	})
}

type scoreRequest struct {
	Team   model.TeamSide `json:"team"`
	Points int            `json:"points"`
}

func (h *MatchHandler) score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	h.snapshotAction(c, func(id int64) (model.Snapshot, error) {
		return h.svc.RecordScore(c.Request.Context(), id, req.Team, req.Points)
	})
}

type deltaRequest struct {
	Team  model.TeamSide `json:"team"`
	Delta int            `json:"delta"`
}

func (h *MatchHandler) fouls(c *gin.Context) {
	var req deltaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	h.snapshotAction(c, func(id int64) (model.Snapshot, error) {
		return h.svc.AdjustFoul(c.Request.Context(), id, req.Team, req.Delta)
	})
}

func (h *MatchHandler) timeouts(c *gin.Context) {
	var req deltaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	h.snapshotAction(c, func(id int64) (model.Snapshot, error) {
		return h.svc.AdjustTimeout(c.Request.Context(), id, req.Team, req.Delta)
	})
}

func (h *MatchHandler) clockStart(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	if err := h.svc.StartClock(c.Request.Context(), id); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"status": "running"})
}

func (h *MatchHandler) clockPause(c *gin.Context) {
	h.snapshotAction(c, func(id int64) (model.Snapshot, error) {
		return h.svc.PauseClock(c.Request.Context(), id)
	})
}

func (h *MatchHandler) clockReset(c *gin.Context) {
	h.snapshotAction(c, func(id int64) (model.Snapshot, error) {
		return h.svc.ResetClock(c.Request.Context(), id)
	})
}

func (h *MatchHandler) save(c *gin.Context) {
	h.snapshotAction(c, func(id int64) (model.Snapshot, error) {
		return h.svc.Save(c.Request.Context(), id)
	})
}
