package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/genpersona/api/internal/history"
	"github.com/genpersona/api/internal/middleware"
	"github.com/genpersona/api/internal/models"
	"github.com/genpersona/api/internal/persona"
	"github.com/genpersona/api/internal/seeds"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PersonaService is the caller contract of the persona core.
type PersonaService interface {
	Submit(ctx context.Context, seed string) (*persona.DocumentResult, error)
	SubmitRandom(ctx context.Context) (string, *persona.DocumentResult, error)
	SubmitName(ctx context.Context, seed string) (*persona.NameRecord, error)
}

// HistoryStore lists recorded generations.
type HistoryStore interface {
	ListDocuments(ctx context.Context, limit int) ([]models.DocumentRecord, error)
	ListNames(ctx context.Context, limit int) ([]models.NameRecord, error)
}

// PersonaHandler serves persona documents and names.
type PersonaHandler struct {
	svc     PersonaService
	history HistoryStore
	logger  *zap.Logger
}

// NewPersonaHandler creates a persona handler. history may be nil when no
// database is configured.
func NewPersonaHandler(svc PersonaService, history HistoryStore, logger *zap.Logger) *PersonaHandler {
	return &PersonaHandler{svc: svc, history: history, logger: logger}
}

// Register mounts the persona routes on rg.
func (h *PersonaHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/personas", h.GenerateDocument)
	rg.POST("/personas/random", h.GenerateRandom)
	rg.POST("/names", h.GenerateName)
	rg.GET("/history", h.History)
}

// GenerateDocument creates a persona document from the request seed.
func (h *PersonaHandler) GenerateDocument(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	res, err := h.svc.Submit(c.Request.Context(), req.Persona)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, documentResponse(req.Persona, res))
}

// GenerateRandom creates a persona document from a corpus seed.
func (h *PersonaHandler) GenerateRandom(c *gin.Context) {
	seed, res, err := h.svc.SubmitRandom(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, documentResponse(seed, res))
}

// GenerateName issues a unique name for the request seed.
func (h *PersonaHandler) GenerateName(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rec, err := h.svc.SubmitName(c.Request.Context(), req.Persona)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NameResponse{
		FullName:      rec.FullName,
		Title:         rec.Title,
		SourcePersona: rec.SourcePersona,
		Source:        string(rec.Source),
		Attempts:      rec.Attempts,
	})
}

// History lists recent generations.
func (h *PersonaHandler) History(c *gin.Context) {
	if h.history == nil {
		middleware.RespondError(c, http.StatusServiceUnavailable, middleware.ErrCodeDatabaseError, "History is not configured")
		return
	}

	limit := history.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			middleware.BadRequest(c, "limit must be an integer")
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	docs, err := h.history.ListDocuments(ctx, limit)
	if err != nil {
		h.logger.Error("failed to list documents", zap.Error(err))
		middleware.RespondError(c, http.StatusInternalServerError, middleware.ErrCodeDatabaseError, "Failed to load history")
		return
	}
	names, err := h.history.ListNames(ctx, limit)
	if err != nil {
		h.logger.Error("failed to list names", zap.Error(err))
		middleware.RespondError(c, http.StatusInternalServerError, middleware.ErrCodeDatabaseError, "Failed to load history")
		return
	}

	if docs == nil {
		docs = []models.DocumentRecord{}
	}
	if names == nil {
		names = []models.NameRecord{}
	}
	c.JSON(http.StatusOK, models.HistoryResponse{Documents: docs, Names: names})
}

func (h *PersonaHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, persona.ErrEmptySeed):
		middleware.BadRequest(c, "persona must not be empty")
	case errors.Is(err, persona.ErrTransport):
		h.logger.Error("generative service failed", zap.Error(err))
		middleware.AIServiceUnavailable(c, err.Error())
	case errors.Is(err, seeds.ErrUnavailable):
		middleware.SeedsUnavailable(c)
	case errors.Is(err, persona.ErrGenerationExhausted):
		h.logger.Error("generation exhausted", zap.Error(err))
		middleware.RespondErrorWithDetails(c, http.StatusInternalServerError, middleware.ErrCodeGenerationExhausted,
			"No attempt produced a usable persona", err.Error())
	default:
		h.logger.Error("unhandled generation error", zap.Error(err))
		middleware.InternalError(c, "Persona generation failed")
	}
}

func documentResponse(seed string, res *persona.DocumentResult) models.DocumentResponse {
	out := models.DocumentResponse{
		Seed:        seed,
		Status:      string(res.Status),
		Attempts:    res.Attempts,
		FailurePath: res.FailurePath,
	}
	if res.Status == persona.StatusRaw {
		out.RawText = res.Document
	} else {
		out.Document = json.RawMessage(res.Document)
	}
	return out
}

// The Postgres store is the production HistoryStore.
var _ HistoryStore = (*history.Service)(nil)
