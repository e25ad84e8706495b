package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/repository"
	"github.com/jengzang/coolparks-go/internal/service"
	"github.com/jengzang/coolparks-go/pkg/response"
)

// RunHandler handles HTTP requests for cooling runs
type RunHandler struct {
	service *service.RunService
}

// NewRunHandler creates a new run handler
func NewRunHandler(service *service.RunService) *RunHandler {
	return &RunHandler{service: service}
}

// CreateRunRequest represents the request body for creating a run
type CreateRunRequest struct {
	Kind   string           `json:"kind" binding:"required"` // prepare, process or full
	Params models.RunParams `json:"params"`
}

// CreateRun creates a run and starts it in the background
// POST /api/v1/runs
func (h *RunHandler) CreateRun(c *gin.Context) {
	var req CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	createdBy := c.GetString("user")
	run, err := h.service.CreateRun(c.Request.Context(), req.Kind, req.Params, createdBy)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Accepted(c, run)
}

// GetRun retrieves a run by ID
// GET /api/v1/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	id, ok := runID(c)
	if !ok {
		return
	}
	run, err := h.service.GetRun(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, run)
}

// ListRuns retrieves runs, newest first
// GET /api/v1/runs?kind=&status=&limit=&offset=
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit, offset := pagination(c, 20)
	runs, total, err := h.service.ListRuns(c.Request.Context(), c.Query("kind"), c.Query("status"), limit, offset)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Paginated(c, runs, total, limit, offset)
}

// CancelRun cancels a pending or running run
// DELETE /api/v1/runs/:id
func (h *RunHandler) CancelRun(c *gin.Context) {
	id, ok := runID(c)
	if !ok {
		return
	}
	if err := h.service.CancelRun(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Run cancellation requested"})
}

// GetDiagnostics retrieves the data quality diagnostics of a run
// GET /api/v1/runs/:id/diagnostics
func (h *RunHandler) GetDiagnostics(c *gin.Context) {
	id, ok := runID(c)
	if !ok {
		return
	}
	diags, err := h.service.Diagnostics(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, diags)
}

// GetWeights retrieves the direction weights of a run
// GET /api/v1/runs/:id/weights?hour=
func (h *RunHandler) GetWeights(c *gin.Context) {
	id, ok := runID(c)
	if !ok {
		return
	}
	hour := -1
	if s := c.Query("hour"); s != "" {
		h, err := strconv.Atoi(s)
		if err != nil || h < 0 || h > 23 {
			response.BadRequest(c, "Invalid hour")
			return
		}
		hour = h
	}
	weights, err := h.service.Weights(c.Request.Context(), id, hour)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, weights)
}

// GetBuildings retrieves the building impacts of a run
// GET /api/v1/runs/:id/buildings?limit=&offset=
func (h *RunHandler) GetBuildings(c *gin.Context) {
	id, ok := runID(c)
	if !ok {
		return
	}
	limit, offset := pagination(c, 100)
	recs, err := h.service.Buildings(c.Request.Context(), id, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"buildings": recs,
		"limit":     limit,
		"offset":    offset,
	})
}

func runID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid run ID")
		return 0, false
	}
	return id, true
}

func pagination(c *gin.Context, defaultLimit int) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrRunNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidRequest):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrRunNotActive):
		response.Conflict(c, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}
