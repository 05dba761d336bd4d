package api

import (
	"errors"
	"net/http"

	"studyforge/internal/bossfight"
	"studyforge/internal/debt"
	"studyforge/internal/session"
	"studyforge/internal/studyrun"

	"github.com/gin-gonic/gin"
)

// engineError maps an engine error to an HTTP response. Not-found propagates
// as 404, bad input as 400, terminal-state rejections as 409.
func engineError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, bossfight.ErrNotFound),
		errors.Is(err, bossfight.ErrExamNotFound),
		errors.Is(err, debt.ErrNotFound),
		errors.Is(err, studyrun.ErrNotFound),
		errors.Is(err, session.ErrPlannedSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, bossfight.ErrInvalidArgument),
		errors.Is(err, debt.ErrInvalidArgument),
		errors.Is(err, studyrun.ErrInvalidArgument),
		errors.Is(err, studyrun.ErrInvalidDateRange),
		errors.Is(err, session.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, bossfight.ErrFightConcluded),
		errors.Is(err, debt.ErrAlreadyPaid),
		errors.Is(err, debt.ErrDuplicateRepayment),
		errors.Is(err, studyrun.ErrRunInactive),
		errors.Is(err, session.ErrPlannedSessionSettled):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": gin.H{"message": err.Error()}})
}
