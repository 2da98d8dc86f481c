package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lexaid/moderation-service/internal/core/domain"
	"github.com/lexaid/moderation-service/internal/core/port"
	"github.com/lexaid/moderation-service/internal/transport/http/middleware"
	"github.com/lexaid/moderation-service/internal/usecase"
)

// ModerationHandler exposes the admin moderation surface: sanction reads,
// the six moderation actions, and the audit history.
type ModerationHandler struct {
	moderation *usecase.ModerationService
	audit      *usecase.AuditService
}

// NewModerationHandler constructs a ModerationHandler.
func NewModerationHandler(moderation *usecase.ModerationService, audit *usecase.AuditService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation, audit: audit}
}

// RegisterRoutes attaches the moderation endpoints to the supplied group.
func (h *ModerationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:userId/sanctions", h.GetSanction)
	rg.GET("/:userId/audit", h.ListAudit)
	rg.POST("/:userId/strikes", h.AddStrike)
	rg.POST("/:userId/strikes/remove", h.RemoveStrike)
	rg.POST("/:userId/suspend", h.Suspend)
	rg.POST("/:userId/ban", h.Ban)
	rg.POST("/:userId/lift-suspension", h.LiftSuspension)
	rg.POST("/:userId/lift-ban", h.LiftBan)
}

// RegisterSanctionRoutes attaches the cross-user sanction listing.
func (h *ModerationHandler) RegisterSanctionRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListSanctions)
}

type moderationCall func(c *gin.Context, userID, actor, reason string) (usecase.ApplyResult, error)

func (h *ModerationHandler) applyAction(c *gin.Context, call moderationCall) {
	var req ModerationActionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
			return
		}
	}

	userID := c.Param("userId")
	actor := c.GetString(middleware.AdminIDKey)

	result, err := call(c, userID, actor, req.Reason)
	if err != nil {
		RespondWithMappedError(c, err, moderationErrorCases(), http.StatusInternalServerError, "failed to apply moderation action")
		return
	}

	c.JSON(http.StatusOK, ActionResponse{
		Outcome:  string(result.Outcome),
		Sanction: newSanctionResponse(result.State),
	})
}

// GetSanction returns the user's current sanction state.
func (h *ModerationHandler) GetSanction(c *gin.Context) {
	state, err := h.moderation.GetSanction(c.Request.Context(), c.Param("userId"))
	if err != nil {
		RespondWithMappedError(c, err, moderationErrorCases(), http.StatusInternalServerError, "failed to load sanction state")
		return
	}

	c.JSON(http.StatusOK, newSanctionResponse(*state))
}

// AddStrike records a strike against the user.
func (h *ModerationHandler) AddStrike(c *gin.Context) {
	h.applyAction(c, func(c *gin.Context, userID, actor, reason string) (usecase.ApplyResult, error) {
		return h.moderation.AddStrike(c.Request.Context(), userID, actor, reason)
	})
}

// RemoveStrike revokes a previously issued strike.
func (h *ModerationHandler) RemoveStrike(c *gin.Context) {
	h.applyAction(c, func(c *gin.Context, userID, actor, reason string) (usecase.ApplyResult, error) {
		return h.moderation.RemoveStrike(c.Request.Context(), userID, actor, reason)
	})
}

// Suspend places the user on a temporary suspension.
func (h *ModerationHandler) Suspend(c *gin.Context) {
	h.applyAction(c, func(c *gin.Context, userID, actor, reason string) (usecase.ApplyResult, error) {
		return h.moderation.Suspend(c.Request.Context(), userID, actor, reason)
	})
}

// Ban permanently bans the user.
func (h *ModerationHandler) Ban(c *gin.Context) {
	h.applyAction(c, func(c *gin.Context, userID, actor, reason string) (usecase.ApplyResult, error) {
		return h.moderation.Ban(c.Request.Context(), userID, actor, reason)
	})
}

// LiftSuspension restores a suspended user to active.
func (h *ModerationHandler) LiftSuspension(c *gin.Context) {
	h.applyAction(c, func(c *gin.Context, userID, actor, reason string) (usecase.ApplyResult, error) {
		return h.moderation.LiftSuspension(c.Request.Context(), userID, actor, reason)
	})
}

// LiftBan reverses a ban after appeal.
func (h *ModerationHandler) LiftBan(c *gin.Context) {
	h.applyAction(c, func(c *gin.Context, userID, actor, reason string) (usecase.ApplyResult, error) {
		return h.moderation.LiftBan(c.Request.Context(), userID, actor, reason)
	})
}

// ListSanctions returns sanction states across users, optionally filtered by status.
func (h *ModerationHandler) ListSanctions(c *gin.Context) {
	filter := port.SanctionFilter{
		Status: domain.AccountStatus(c.Query("status")),
		Limit:  parseQueryInt(c, "limit", 0),
		Offset: parseQueryInt(c, "offset", 0),
	}

	states, err := h.moderation.ListSanctions(c.Request.Context(), filter)
	if err != nil {
		RespondWithMappedError(c, err, moderationErrorCases(), http.StatusInternalServerError, "failed to list sanctions")
		return
	}

	sanctions := make([]SanctionResponse, 0, len(states))
	for _, state := range states {
		sanctions = append(sanctions, newSanctionResponse(state))
	}

	c.JSON(http.StatusOK, SanctionListResponse{Sanctions: sanctions})
}

// ListAudit returns a page of the user's moderation history.
func (h *ModerationHandler) ListAudit(c *gin.Context) {
	limit := parseQueryInt(c, "limit", 0)
	offset := parseQueryInt(c, "offset", 0)

	page, err := h.audit.ListByUser(c.Request.Context(), c.Param("userId"), limit, offset)
	if err != nil {
		RespondWithMappedError(c, err, moderationErrorCases(), http.StatusInternalServerError, "failed to load audit history")
		return
	}

	entries := make([]AuditEntryResponse, 0, len(page.Entries))
	for _, entry := range page.Entries {
		entries = append(entries, newAuditEntryResponse(entry))
	}

	c.JSON(http.StatusOK, AuditPageResponse{
		Entries: entries,
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
}

func parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
