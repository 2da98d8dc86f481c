package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lexaid/moderation-service/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ModerationActionRequest carries the free-text reason for a moderation action.
// Reason presence is validated by the policy, not by binding: lift actions may
// omit it.
type ModerationActionRequest struct {
	Reason string `json:"reason"`
}

// SanctionResponse is the API view of a user's sanction state.
type SanctionResponse struct {
	UserID           string     `json:"user_id"`
	Status           string     `json:"status"`
	StrikeCount      int        `json:"strike_count"`
	SuspensionCount  int        `json:"suspension_count"`
	SuspensionEndsAt *time.Time `json:"suspension_ends_at,omitempty"`
	LastViolationAt  *time.Time `json:"last_violation_at,omitempty"`
	BannedAt         *time.Time `json:"banned_at,omitempty"`
	BannedReason     *string    `json:"banned_reason,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SanctionListResponse is the payload for cross-user sanction listings.
type SanctionListResponse struct {
	Sanctions []SanctionResponse `json:"sanctions"`
}

// ActionResponse reports the outcome of an applied moderation action.
type ActionResponse struct {
	Outcome  string           `json:"outcome"`
	Sanction SanctionResponse `json:"sanction"`
}

// AuditEntryResponse is the API view of a single audit log entry.
type AuditEntryResponse struct {
	ID              string    `json:"id"`
	Action          string    `json:"action"`
	Actor           string    `json:"actor"`
	Reason          string    `json:"reason,omitempty"`
	PreviousStatus  string    `json:"previous_status"`
	NewStatus       string    `json:"new_status"`
	StrikeCount     int       `json:"strike_count"`
	SuspensionCount int       `json:"suspension_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// AuditPageResponse is a paginated slice of a user's audit history.
type AuditPageResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
	Total   int                  `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

// GlossaryTermResponse is the API view of a glossary entry.
type GlossaryTermResponse struct {
	Slug       string    `json:"slug"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	Category   string    `json:"category,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GlossaryListResponse is the payload for glossary listings.
type GlossaryListResponse struct {
	Terms []GlossaryTermResponse `json:"terms"`
}

// UpsertGlossaryRequest is the admin payload for creating or replacing a term.
type UpsertGlossaryRequest struct {
	Term       string `json:"term" binding:"required"`
	Definition string `json:"definition" binding:"required"`
	Category   string `json:"category"`
}

func newSanctionResponse(state domain.SanctionState) SanctionResponse {
	return SanctionResponse{
		UserID:           state.UserID,
		Status:           string(state.Status),
		StrikeCount:      state.StrikeCount,
		SuspensionCount:  state.SuspensionCount,
		SuspensionEndsAt: state.SuspensionEndsAt,
		LastViolationAt:  state.LastViolationAt,
		BannedAt:         state.BannedAt,
		BannedReason:     state.BannedReason,
		UpdatedAt:        state.UpdatedAt,
	}
}

func newAuditEntryResponse(entry domain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:              entry.ID,
		Action:          string(entry.Action),
		Actor:           entry.Actor,
		Reason:          entry.Reason,
		PreviousStatus:  string(entry.PreviousStatus),
		NewStatus:       string(entry.NewStatus),
		StrikeCount:     entry.StrikeCount,
		SuspensionCount: entry.SuspensionCount,
		CreatedAt:       entry.CreatedAt,
	}
}

func newGlossaryTermResponse(term domain.GlossaryTerm) GlossaryTermResponse {
	return GlossaryTermResponse{
		Slug:       term.Slug,
		Term:       term.Term,
		Definition: term.Definition,
		Category:   term.Category,
		UpdatedAt:  term.UpdatedAt,
	}
}
