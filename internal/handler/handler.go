// Package handler KTV 点歌 HTTP 接口
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/internal/live"
	"github.com/John-Sie/YangBeiKTV/internal/middleware"
	"github.com/John-Sie/YangBeiKTV/internal/service"
	"github.com/John-Sie/YangBeiKTV/internal/ws"
	"github.com/John-Sie/YangBeiKTV/pkg/jwt"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

// HealthCheck 依赖健康检查
type HealthCheck func(ctx context.Context) error

// Deps 处理器依赖
type Deps struct {
	Board     *live.Board
	Requests  *service.RequestService
	Catalog   *service.CatalogService
	Accounts  *service.AccountService
	Feedbacks *service.FeedbackService
	Stats     *service.StatsService
	Hub       *ws.Hub
	Tokens    *jwt.Manager
	Log       logger.Logger

	// 可选
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	HealthChecks   map[string]HealthCheck
}

// Handler 全部 HTTP 接口
type Handler struct {
	Deps
}

// New 创建处理器
func New(deps Deps) *Handler {
	return &Handler{Deps: deps}
}

// Router 组装路由
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(h.Log),
		middleware.Logging(h.Log),
		middleware.CORS(h.AllowedOrigins),
	)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", middleware.RequiredAuth(h.Tokens, h.Log), h.WebSocket)

	api := r.Group("/api/v1", middleware.OptionalAuth(h.Tokens, h.Log))
	if h.RateLimiter != nil {
		api.Use(h.RateLimiter.Limit())
	}

	auth := api.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/verify-identity", h.VerifyIdentity)
	auth.POST("/reset-password", h.ResetPassword)

	api.GET("/songs", h.SearchSongs)
	api.GET("/songs/languages", h.Languages)
	api.GET("/songs/:id/stats", h.SongStats)
	api.GET("/singers", h.Singers)
	api.GET("/singers/counts", h.SingerCounts)
	api.GET("/singers/:name/songs", h.SongsByArtist)
	api.GET("/queue", h.Queue)
	api.GET("/rankings/songs", h.TopSongs)
	api.GET("/rankings/languages/:language", h.TopSongsByLanguage)
	api.GET("/rankings/artists", h.TopArtists)
	api.GET("/rankings/requesters", h.TopRequesters)
	api.POST("/feedbacks", h.SubmitFeedback)

	me := api.Group("", middleware.RequireLogin())
	me.GET("/me", h.Me)
	me.PATCH("/me", h.UpdateProfile)
	me.GET("/me/history", h.History)
	me.POST("/me/favorites/:songId", h.ToggleFavorite)
	me.POST("/requests", h.Submit)
	me.POST("/requests/:id/cancel", h.Cancel)

	admin := api.Group("/admin", middleware.RequireLogin(), middleware.RequireAdmin())
	admin.GET("/dashboard", h.Dashboard)
	admin.POST("/requests/:id/played", h.MarkPlayed)
	admin.GET("/songs", h.AllSongs)
	admin.PUT("/songs/:id", h.UpsertSong)
	admin.POST("/songs/import", h.ImportSongs)
	admin.DELETE("/songs/:id", h.SoftDeleteSong)
	admin.POST("/songs/:id/restore", h.RestoreSong)
	admin.GET("/users", h.ListUsers)
	admin.POST("/users", h.CreateUser)
	admin.PUT("/users/:id", h.UpdateUser)
	admin.DELETE("/users/:id", h.DeleteUser)
	admin.POST("/users/:id/suspend", h.SetSuspended)
	admin.GET("/feedbacks", h.ListFeedbacks)
	admin.DELETE("/feedbacks/:id", h.DeleteFeedback)
	admin.POST("/feedbacks/:id/read", h.MarkFeedbackRead)
	admin.GET("/export/:table", h.Export)

	return r
}

// Health 健康检查。快照尚未载入或任何依赖失败时返回 503
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"snapshot": "ok"}
	healthy := h.Board.Loaded()
	if !healthy {
		checks["snapshot"] = "not loaded"
	}
	for name, check := range h.HealthChecks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC(),
	})
}

// currentUser 读取最新的用户记录，未登录时返回 nil
func (h *Handler) currentUser(c *gin.Context) (*domain.User, error) {
	uid := middleware.GetUserID(c)
	if uid == "" {
		return nil, nil
	}
	return h.Accounts.Current(c.Request.Context(), uid)
}

// mustUser 必须登录
func (h *Handler) mustUser(c *gin.Context) (*domain.User, bool) {
	u, err := h.currentUser(c)
	if err == nil && u == nil {
		err = domain.ErrUnauthenticated
	}
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	return u, true
}
