package api

import (
	"net/http"
	"time"

	"studyforge/internal/db"
	"studyforge/internal/workspace"

	"github.com/gin-gonic/gin"
)

// POST /courses
func CreateCourseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name        string `json:"name"`
			TargetGrade string `json:"target_grade"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Course name required"}})
			return
		}
		course := workspace.Course{
			WorkspaceID: workspaceID(c),
			Name:        req.Name,
			TargetGrade: req.TargetGrade,
		}
		if err := db.DB.Create(&course).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Create error"}})
			return
		}
		c.JSON(http.StatusCreated, course)
	}
}

// GET /courses
func ListCoursesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var courses []workspace.Course
		if err := db.DB.Where("workspace_id = ?", workspaceID(c)).Find(&courses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "List error"}})
			return
		}
		c.JSON(http.StatusOK, courses)
	}
}

// POST /exams
func CreateExamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CourseID      uint      `json:"course_id"`
			Title         string    `json:"title"`
			Date          time.Time `json:"date"`
			WeightPercent int       `json:"weight_percent"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.Date.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Title and date required"}})
			return
		}
		if req.WeightPercent < 0 || req.WeightPercent > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Weight must be 0-100"}})
			return
		}
		var course workspace.Course
		if err := db.DB.Where("id = ? AND workspace_id = ?", req.CourseID, workspaceID(c)).First(&course).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Course not found"}})
			return
		}
		exam := workspace.Exam{
			WorkspaceID:   workspaceID(c),
			CourseID:      req.CourseID,
			Title:         req.Title,
			Date:          req.Date,
			WeightPercent: req.WeightPercent,
		}
		if err := db.DB.Create(&exam).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Create error"}})
			return
		}
		c.JSON(http.StatusCreated, exam)
	}
}

// GET /exams
func ListExamsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var exams []workspace.Exam
		if err := db.DB.Where("workspace_id = ?", workspaceID(c)).Order("date ASC").Find(&exams).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "List error"}})
			return
		}
		c.JSON(http.StatusOK, exams)
	}
}

// POST /planned-sessions
func CreatePlannedSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CourseID        uint      `json:"course_id"`
			ScheduledFor    time.Time `json:"scheduled_for"`
			DurationMinutes int       `json:"duration_minutes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.ScheduledFor.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Scheduled time required"}})
			return
		}
		if req.DurationMinutes <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Duration must be positive"}})
			return
		}
		planned := workspace.PlannedSession{
			WorkspaceID:     workspaceID(c),
			CourseID:        req.CourseID,
			ScheduledFor:    req.ScheduledFor,
			DurationMinutes: req.DurationMinutes,
			Status:          workspace.PlannedSessionPlanned,
		}
		if err := db.DB.Create(&planned).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Create error"}})
			return
		}
		c.JSON(http.StatusCreated, planned)
	}
}

// GET /planned-sessions
func ListPlannedSessionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var planned []workspace.PlannedSession
		if err := db.DB.Where("workspace_id = ?", workspaceID(c)).Order("scheduled_for ASC").Find(&planned).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "List error"}})
			return
		}
		c.JSON(http.StatusOK, planned)
	}
}
