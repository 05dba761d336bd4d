package api

import (
	"net/http"
	"strconv"
	"time"

	"studyforge/internal/db"
	"studyforge/internal/studyrun"
	"studyforge/internal/workspace"

	"github.com/gin-gonic/gin"
)

// POST /runs
func CreateRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CourseID             uint              `json:"course_id"`
			GoalType             studyrun.GoalType `json:"goal_type"`
			TargetGrade          string            `json:"target_grade"`
			Description          string            `json:"description"`
			StartDate            time.Time         `json:"start_date"`
			EndDate              time.Time         `json:"end_date"`
			PreferredDaysPerWeek int               `json:"preferred_days_per_week"`
			MinutesPerSession    int               `json:"minutes_per_session"`
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
		run, err := studyrun.NewPlanner(db.DB).CreateRun(
			workspaceID(c), req.CourseID, req.GoalType, req.TargetGrade, req.Description,
			req.StartDate, req.EndDate, req.PreferredDaysPerWeek, req.MinutesPerSession,
		)
		if err != nil {
			engineError(c, err)
			return
		}
		c.JSON(http.StatusCreated, run)
	}
}

// GET /runs — active runs for the workspace.
func ListRunsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var runs []studyrun.StudyRun
		if err := db.DB.Where("workspace_id = ? AND is_active = ?", workspaceID(c), true).Find(&runs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "List error"}})
			return
		}
		c.JSON(http.StatusOK, runs)
	}
}

// GET /runs/:id/progress — weeks with freshly computed statuses plus the
// overall roll-up.
func RunProgressHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid id"}})
			return
		}
		run, progress, err := studyrun.NewPlanner(db.DB).Progress(uint(id))
		if err != nil {
			engineError(c, err)
			return
		}
		if run.WorkspaceID != workspaceID(c) {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Run not found"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"run":     run,
			"percent": progress.Percent,
			"status":  progress.Status,
			"weeks":   progress.Weeks,
		})
	}
}

// POST /runs/:id/progress — manual progress entry (normally driven by the
// session dispatcher).
func RecordRunProgressHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid id"}})
			return
		}
		var req struct {
			SessionMinutes int       `json:"session_minutes"`
			SessionDate    time.Time `json:"session_date"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.SessionDate.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		out, err := studyrun.NewPlanner(db.DB).RecordSessionProgress(uint(id), req.SessionMinutes, req.SessionDate)
		if err != nil {
			engineError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// POST /runs/:id/deactivate
func DeactivateRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid id"}})
			return
		}
		if err := studyrun.NewPlanner(db.DB).Deactivate(uint(id)); err != nil {
			engineError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Run deactivated"})
	}
}
