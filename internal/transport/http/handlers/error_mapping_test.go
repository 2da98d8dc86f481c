package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lexaid/moderation-service/internal/core/domain"
	"github.com/lexaid/moderation-service/internal/repository"
	"github.com/lexaid/moderation-service/internal/usecase"
)

func respondStatus(t *testing.T, err error, cases []ErrorCase) int {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "internal error")
	return w.Code
}

func TestModerationErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid transition", domain.ErrInvalidTransition, http.StatusConflict},
		{"reason required", domain.ErrReasonRequired, http.StatusBadRequest},
		{"not found", repository.ErrNotFound, http.StatusNotFound},
		{"concurrent update", usecase.ErrConcurrentUpdate, http.StatusConflict},
		{"missing user id", usecase.ErrUserIDRequired, http.StatusBadRequest},
		{"missing actor", usecase.ErrActorRequired, http.StatusUnauthorized},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := respondStatus(t, tc.err, moderationErrorCases()); got != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, got)
			}
		})
	}
}

func TestModerationErrorMappingMatchesWrappedErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("apply moderation decision"), domain.ErrInvalidTransition)
	if got := respondStatus(t, wrapped, moderationErrorCases()); got != http.StatusConflict {
		t.Fatalf("expected 409 for wrapped sentinel, got %d", got)
	}
}

func TestGlossaryErrorMapping(t *testing.T) {
	if got := respondStatus(t, repository.ErrNotFound, glossaryErrorCases()); got != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", got)
	}
	if got := respondStatus(t, usecase.ErrSlugRequired, glossaryErrorCases()); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
}
