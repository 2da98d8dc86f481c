package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexaid/moderation-service/internal/core/domain"
	"github.com/lexaid/moderation-service/internal/repository"
	"github.com/lexaid/moderation-service/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

// moderationErrorCases covers the sentinels surfaced by moderation actions.
func moderationErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrUserIDRequired, Status: http.StatusBadRequest, Message: "user id is required"},
		{Err: usecase.ErrInvalidStatusFilter, Status: http.StatusBadRequest, Message: "status filter must be active, suspended, or banned"},
		{Err: usecase.ErrActorRequired, Status: http.StatusUnauthorized, Message: "acting admin could not be identified"},
		{Err: domain.ErrReasonRequired, Status: http.StatusBadRequest, Message: "reason is required for this action"},
		{Err: domain.ErrInvalidTransition, Status: http.StatusConflict, Message: "action is not valid for the user's current status"},
		{Err: usecase.ErrConcurrentUpdate, Status: http.StatusConflict, Message: "user is being moderated concurrently, retry"},
		{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user has no sanction record"},
	}
}

// glossaryErrorCases covers the sentinels surfaced by glossary operations.
func glossaryErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrSlugRequired, Status: http.StatusBadRequest, Message: "slug is required"},
		{Err: usecase.ErrTermRequired, Status: http.StatusBadRequest, Message: "term and definition are required"},
		{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "glossary term not found"},
	}
}
