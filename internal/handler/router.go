package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Students   *StudentHandler
	Attendance *AttendanceHandler
	Cards      *StudentCardHandler
	Auth       *AuthHandler
	Health     *HealthHandler
}

// RouterConfig controls mounting.
type RouterConfig struct {
	APIPrefix string
	// Guard runs in front of every domain route; login is never guarded.
	Guard      gin.HandlerFunc
	EnableDocs bool
	ExposeProm bool
}

// RegisterRoutes mounts the API on r.
func RegisterRoutes(r *gin.Engine, h Handlers, cfg RouterConfig) {
	r.GET("/", h.Health.Root)
	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	if cfg.ExposeProm {
		r.GET("/metrics", h.Health.Prometheus)
	}
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	api := r.Group(prefix)
	api.POST("/login", h.Auth.Login)

	domain := api.Group("")
	if cfg.Guard != nil {
		domain.Use(cfg.Guard)
	}

	students := domain.Group("/students")
	students.POST("/register", h.Students.Register)
	students.GET("", h.Students.List)
	students.GET("/:studentId", h.Students.Get)
	students.PUT("/:id", h.Students.Update)

	attendance := domain.Group("/attendance")
	attendance.POST("/add", h.Attendance.Mark)
	attendance.GET("/date/:date", h.Attendance.ByDate)
	attendance.GET("/monthly/:studentId/:month/:year", h.Attendance.Monthly)
	attendance.GET("/all-monthly/:month/:year", h.Attendance.AllMonthly)
	attendance.GET("/monthly-summary/:month/:year", h.Attendance.MonthlySummary)
	attendance.GET("/export/:month/:year", h.Attendance.Export)

	cards := domain.Group("/student-cards")
	cards.POST("/issue", h.Cards.Issue)
	cards.GET("/:studentId", h.Cards.Get)
	cards.PATCH("/status/:studentId", h.Cards.UpdateStatus)
}
