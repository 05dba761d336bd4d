package api

import (
	"net/http"
	"strconv"
	"time"

	"studyforge/internal/db"
	"studyforge/internal/debt"

	"github.com/gin-gonic/gin"
)

// POST /debts
func CreateDebtHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CourseID         *uint     `json:"course_id"`
			PlannedSessionID *uint     `json:"planned_session_id"`
			DurationMinutes  int       `json:"duration_minutes"`
			DueDate          time.Time `json:"due_date"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		d, err := debt.NewLedger(db.DB).CreateDebt(workspaceID(c), req.CourseID, req.PlannedSessionID, req.DurationMinutes, req.DueDate)
		if err != nil {
			engineError(c, err)
			return
		}
		c.JSON(http.StatusCreated, d)
	}
}

// POST /debts/:id/repay
func RepayDebtHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid id"}})
			return
		}
		var req struct {
			SessionID     uint `json:"session_id"`
			MinutesRepaid int  `json:"minutes_repaid"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		res, err := debt.NewLedger(db.DB).Repay(uint(id), req.SessionID, req.MinutesRepaid)
		if err != nil {
			engineError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// GET /debts — outstanding debts, oldest first.
func ListDebtsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		debts, err := debt.NewLedger(db.DB).Outstanding(workspaceID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "List error"}})
			return
		}
		c.JSON(http.StatusOK, debts)
	}
}

// GET /debts/summary
func DebtSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := debt.NewLedger(db.DB).Summarize(workspaceID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Summary error"}})
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}
