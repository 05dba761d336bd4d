package api

import (
	"studyforge/internal/auth"
	"studyforge/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func SetupRouter(cfg *config.Config, rdb *redis.Client) *gin.Engine {
	r := gin.Default()
	subpath := cfg.Server.Subpath // e.g. "/studyforge" or any custom path, always starts with '/'

	// API routes
	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg))

		// Setup: only if no users
		group.POST("/setup", SetupHandler())

		// Auth
		group.POST("/auth/login", LoginHandler(cfg, rdb))
		group.POST("/auth/logout", auth.AuthMiddleware(cfg, rdb, false), LogoutHandler(rdb))
		group.GET("/auth/me", auth.AuthMiddleware(cfg, rdb, false), MeHandler())

		// Admin: users
		group.GET("/users", auth.AuthMiddleware(cfg, rdb, true), ListUsersHandler())
		group.POST("/users", auth.AuthMiddleware(cfg, rdb, true), CreateUserHandler())

		// User self-service
		group.GET("/users/me", auth.AuthMiddleware(cfg, rdb, false), GetMeHandler())
		group.PUT("/users/me", auth.AuthMiddleware(cfg, rdb, false), UpdateMeHandler())
		group.DELETE("/users/me", auth.AuthMiddleware(cfg, rdb, false), DeleteMeHandler())

		// Admin: user by id
		group.GET("/users/:id", auth.AuthMiddleware(cfg, rdb, true), GetUserByIdHandler())
		group.PUT("/users/:id", auth.AuthMiddleware(cfg, rdb, true), UpdateUserByIdHandler())
		group.DELETE("/users/:id", auth.AuthMiddleware(cfg, rdb, true), DeleteUserByIdHandler())

		// --- Online users count ---
		group.GET("/users/online", OnlineUserCountHandler(rdb))

		// --- Courses, exams and planned sessions ---
		group.POST("/courses", auth.AuthMiddleware(cfg, rdb, false), CreateCourseHandler())
		group.GET("/courses", auth.AuthMiddleware(cfg, rdb, false), ListCoursesHandler())
		group.POST("/exams", auth.AuthMiddleware(cfg, rdb, false), CreateExamHandler())
		group.GET("/exams", auth.AuthMiddleware(cfg, rdb, false), ListExamsHandler())
		group.POST("/planned-sessions", auth.AuthMiddleware(cfg, rdb, false), CreatePlannedSessionHandler())
		group.GET("/planned-sessions", auth.AuthMiddleware(cfg, rdb, false), ListPlannedSessionsHandler())

		// --- Study sessions: completion fans out to every engine ---
		group.POST("/sessions/complete", auth.AuthMiddleware(cfg, rdb, false), CompleteSessionHandler())
		group.POST("/planned-sessions/:id/miss", auth.AuthMiddleware(cfg, rdb, false), MissPlannedSessionHandler())
		group.GET("/sessions", auth.AuthMiddleware(cfg, rdb, false), ListSessionsHandler())

		// --- Boss fights ---
		group.POST("/bossfights", auth.AuthMiddleware(cfg, rdb, false), CreateBossFightHandler())
		group.GET("/bossfights/:id", auth.AuthMiddleware(cfg, rdb, false), GetBossFightHandler())
		group.POST("/bossfights/:id/damage", auth.AuthMiddleware(cfg, rdb, false), DamageBossFightHandler())
		group.POST("/bossfights/:id/heal", auth.AuthMiddleware(cfg, rdb, false), HealBossFightHandler())

		// --- Study debts ---
		group.POST("/debts", auth.AuthMiddleware(cfg, rdb, false), CreateDebtHandler())
		group.POST("/debts/:id/repay", auth.AuthMiddleware(cfg, rdb, false), RepayDebtHandler())
		group.GET("/debts", auth.AuthMiddleware(cfg, rdb, false), ListDebtsHandler())
		group.GET("/debts/summary", auth.AuthMiddleware(cfg, rdb, false), DebtSummaryHandler())

		// --- Study runs ---
		group.POST("/runs", auth.AuthMiddleware(cfg, rdb, false), CreateRunHandler())
		group.GET("/runs", auth.AuthMiddleware(cfg, rdb, false), ListRunsHandler())
		group.GET("/runs/:id/progress", auth.AuthMiddleware(cfg, rdb, false), RunProgressHandler())
		group.POST("/runs/:id/progress", auth.AuthMiddleware(cfg, rdb, false), RecordRunProgressHandler())
		group.POST("/runs/:id/deactivate", auth.AuthMiddleware(cfg, rdb, false), DeactivateRunHandler())
	}
	return r
}
