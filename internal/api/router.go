package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/staffhub/internal/middleware"
	"github.com/lalith-99/staffhub/internal/observ"
	"go.uber.org/zap"
)

// RouterDeps bundles the handlers and settings the router mounts.
type RouterDeps struct {
	JWTSecret string
	Logger    *zap.Logger

	Health    *HealthHandler
	Employees *EmployeeHandler
	Rooms     *RoomHandler
	Messages  *MessageHandler
	Comments  *CommentHandler

	// Realtime is the websocket upgrade handler; nil leaves /ws unmounted.
	Realtime gin.HandlerFunc
	// Metrics is served at /metrics when set.
	Metrics http.Handler
}

// NewRouter builds the gin engine. Health, readiness and metrics are
// public; every other /v1 route needs a bearer token.
func NewRouter(d RouterDeps) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(observ.GinLogger(d.Logger), gin.Recovery())

	r.GET("/v1/health", d.Health.Health)
	r.GET("/v1/ready", d.Health.Ready)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}
	if d.Realtime != nil {
		r.GET("/ws", middleware.WebSocketAuth(d.JWTSecret), d.Realtime)
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(d.JWTSecret))

	v1.GET("/employees/me", d.Employees.GetMe)
	v1.GET("/employees", d.Employees.List)

	v1.POST("/rooms", d.Rooms.Create)
	v1.GET("/rooms/user/:userId", d.Rooms.ListForUser)
	v1.GET("/rooms/:id", d.Rooms.GetByID)

	v1.POST("/messages", d.Messages.Create)
	v1.GET("/messages/room/:roomId", d.Messages.ListRoom)
	v1.GET("/messages/direct", d.Messages.ListDirect)
	v1.GET("/messages/:id", d.Messages.GetByID)
	v1.PUT("/messages/:id/read", d.Messages.MarkRead)

	v1.POST("/comments/:id", d.Comments.Create)
	v1.GET("/comments/:id", d.Comments.List)
	v1.PUT("/comments/:id", d.Comments.Update)
	v1.DELETE("/comments/:id", d.Comments.Delete)
	v1.POST("/comments/:id/replies", d.Comments.AddReply)
	v1.DELETE("/comments/:id/replies/:replyId", d.Comments.DeleteReply)

	return r
}
