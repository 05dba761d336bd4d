package api

import (
	"net/http"
	"strconv"
	"time"

	"studyforge/internal/db"
	"studyforge/internal/session"
	"studyforge/internal/workspace"

	"github.com/gin-gonic/gin"
)

// POST /sessions/complete — the central event: logs the session fact and fans
// it out to the boss fight, debt ledger and study run engines.
func CompleteSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CourseID        uint      `json:"course_id"`
			DurationMinutes int       `json:"duration_minutes"`
			OccurredAt      time.Time `json:"occurred_at"`
			Note            string    `json:"note"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		var course workspace.Course
		if err := db.DB.Where("id = ? AND workspace_id = ?", req.CourseID, workspaceID(c)).First(&course).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Course not found"}})
			return
		}
		occurredAt := req.OccurredAt
		if occurredAt.IsZero() {
			occurredAt = time.Now()
		}
		dispatcher := session.NewDispatcher(db.DB)
		out, err := dispatcher.SessionCompleted(workspaceID(c), req.CourseID, req.DurationMinutes, occurredAt, req.Note)
		if err != nil {
			engineError(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	}
}

// POST /planned-sessions/:id/miss — settles an elapsed planned session:
// opens a study debt and lets the course's boss heal.
func MissPlannedSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid id"}})
			return
		}
		var planned workspace.PlannedSession
		if err := db.DB.Where("id = ? AND workspace_id = ?", id, workspaceID(c)).First(&planned).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Planned session not found"}})
			return
		}
		dispatcher := session.NewDispatcher(db.DB)
		out, err := dispatcher.SessionMissed(uint(id))
		if err != nil {
			engineError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// GET /sessions
func ListSessionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sessions []session.StudySession
		if err := db.DB.Where("workspace_id = ?", workspaceID(c)).Order("occurred_at DESC").Find(&sessions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "List error"}})
			return
		}
		c.JSON(http.StatusOK, sessions)
	}
}
