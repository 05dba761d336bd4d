package api

import (
	"net/http"
	"strconv"

	"studyforge/internal/bossfight"
	"studyforge/internal/db"
	"studyforge/internal/workspace"

	"github.com/gin-gonic/gin"
)

// POST /bossfights
func CreateBossFightHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ExamID     uint                 `json:"exam_id"`
			Name       string               `json:"name"`
			Difficulty bossfight.Difficulty `json:"difficulty"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		var exam workspace.Exam
		if err := db.DB.Where("id = ? AND workspace_id = ?", req.ExamID, workspaceID(c)).First(&exam).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Exam not found"}})
			return
		}
		fight, err := bossfight.NewEngine(db.DB).Create(req.ExamID, req.Name, req.Difficulty)
		if err != nil {
			engineError(c, err)
			return
		}
		c.JSON(http.StatusCreated, fight)
	}
}

// GET /bossfights/:id — snapshot with the full hit log.
func GetBossFightHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid id"}})
			return
		}
		fight, err := bossfight.NewEngine(db.DB).Get(uint(id))
		if err != nil {
			engineError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"fight": fight,
			"hits":  fight.Hits,
		})
	}
}

// POST /bossfights/:id/damage — manual damage entry (normally driven by the
// session dispatcher).
func DamageBossFightHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid id"}})
			return
		}
		var req struct {
			SessionID        *uint `json:"session_id"`
			SessionMinutes   int   `json:"session_minutes"`
			ConsistentStreak bool  `json:"consistent_streak"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		fight, err := bossfight.NewEngine(db.DB).ApplyDamage(uint(id), req.SessionID, req.SessionMinutes, req.ConsistentStreak)
		if err != nil {
			engineError(c, err)
			return
		}
		c.JSON(http.StatusOK, fight)
	}
}

// POST /bossfights/:id/heal
func HealBossFightHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid id"}})
			return
		}
		var req struct {
			MissedMinutes int `json:"missed_minutes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		fight, err := bossfight.NewEngine(db.DB).ApplyHealing(uint(id), req.MissedMinutes)
		if err != nil {
			engineError(c, err)
			return
		}
		c.JSON(http.StatusOK, fight)
	}
}
