package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"sport-backend/internal/extract"
	"sport-backend/internal/llm"
	"sport-backend/internal/profile"
	"sport-backend/internal/services/health"
	"sport-backend/internal/shared/server/middleware"
	"sport-backend/internal/shared/server/respond"
)

const maxBodyBytes = 1 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc    *Service
	Health *health.Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, healthSvc *health.Service) *Handler {
	return &Handler{Svc: svc, Health: healthSvc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.POST("/training-plan", h.trainingPlan)
	rg.GET("/health", h.health)
}

type trainingPlanRequest struct {
	Profile *profile.Profile `json:"profile"`
	Sport   string           `json:"sport"`
}

func (h *Handler) analyze(c *gin.Context) {
	var p *profile.Profile
	if err := decodeBody(c, &p); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "request body must be a JSON profile", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	res, err := h.Svc.Recommend(ctx, p)
	c.Set("schemaVersion", h.Svc.Config.Schema.Version)
	c.Set("attempts", res.Report.Attempts)
	if err != nil {
		writeError(c, err, res.Report)
		return
	}
	respond.OK(c, res.Document)
}

func (h *Handler) trainingPlan(c *gin.Context) {
	var req trainingPlanRequest
	if err := decodeBody(c, &req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "request body must be a JSON object with profile and sport", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	res, err := h.Svc.TrainingPlan(ctx, req.Profile, req.Sport)
	c.Set("schemaVersion", "plan")
	c.Set("attempts", res.Report.Attempts)
	if err != nil {
		writeError(c, err, res.Report)
		return
	}
	respond.OK(c, res.Plan)
}

func (h *Handler) health(c *gin.Context) {
	if h.Health == nil {
		respond.OK(c, health.Status{Status: "degraded"})
		return
	}
	respond.OK(c, h.Health.Status(c.Request.Context()))
}

func decodeBody(c *gin.Context, dst any) error {
	if c.Request.Body == nil {
		return io.EOF
	}
	dec := json.NewDecoder(io.LimitReader(c.Request.Body, maxBodyBytes))
	return dec.Decode(dst)
}

func writeError(c *gin.Context, err error, report extract.Report) {
	if category := FailureCategory(err); category != "" {
		c.Set("failureCategory", category)
	}

	var perr *profile.ValidationError
	var xerr *extract.Error
	switch {
	case errors.Is(err, ErrProfileRequired), errors.Is(err, ErrSportRequired):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
	case errors.As(err, &perr):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "profile failed validation", []map[string]string{
			{"field": perr.Field, "issue": perr.Message},
		})
	case errors.Is(err, llm.ErrNoCredential):
		respond.Error(c, http.StatusServiceUnavailable, ErrorCodeNotConfigured, "The AI service is not configured", nil)
	case errors.As(err, &xerr):
		details := gin.H{"attempts": xerr.Attempts, "category": string(xerr.Category)}
		if xerr.Category == extract.CategoryBackendUnavailable {
			respond.Error(c, http.StatusBadGateway, ErrorCodeServiceUnavailable, "The AI service is unavailable, please try again later", details)
			return
		}
		respond.Error(c, http.StatusBadGateway, ErrorCodeMalformedOutput, "The AI service returned an unusable answer, please try again", details)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusGatewayTimeout, ErrorCodeTimeout, "The AI service did not answer in time", gin.H{"attempts": report.Attempts})
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to build recommendation", nil)
	}
}
