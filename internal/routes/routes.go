package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"dashboard/internal/handlers"
)

// Handlers groups everything SetupRoutes mounts. Report may be nil; the e-mail route is
// only mounted when the report service can send mail. The session-scoped YouTube routes
// are skipped when Sessions is nil.
type Handlers struct {
	System  *handlers.SystemHandler
	Task    *handlers.TaskHandler
	Project *handlers.ProjectHandler
	YouTube *handlers.YouTubeHandler
	Report  *handlers.ReportHandler

	ReportEmail bool
	// Sessions runs in front of the YouTube OAuth and playlist routes only.
	Sessions gin.HandlerFunc
}

func SetupRoutes(r *gin.Engine, h Handlers) *gin.Engine {
	// ---- system
	r.GET("/", h.System.Root)
	r.GET("/health", h.System.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.GET("/test", h.System.Test)

	// TASKS
	tasks := api.Group("/tasks")
	{
		tasks.GET("", h.Task.List)
		tasks.POST("", h.Task.Create)
		tasks.GET("/stats", h.Task.Stats)
		tasks.GET("/:id", h.Task.GetByID)
		tasks.PUT("/:id", h.Task.Update)
		tasks.DELETE("/:id", h.Task.Delete)
		tasks.PATCH("/:id/complete", h.Task.Complete)
	}

	// PROJECTS
	projects := api.Group("/projects")
	{
		projects.GET("", h.Project.List)
		projects.POST("", h.Project.Create)
		projects.GET("/:id", h.Project.GetByID)
		projects.PUT("/:id", h.Project.Update)
		projects.DELETE("/:id", h.Project.Delete)
		projects.POST("/:id/tasks", h.Project.AddTask)
		projects.PATCH("/:id/tasks/:taskId", h.Project.ToggleTask)
		projects.DELETE("/:id/tasks/:taskId", h.Project.DeleteTask)
	}

	// YOUTUBE
	if h.YouTube != nil {
		yt := api.Group("/youtube")
		yt.GET("/search", h.YouTube.Search)
		yt.GET("/video/:id", h.YouTube.Video)

		// The OAuth and playlist routes need a session; without one they are not mounted.
		if h.Sessions != nil {
			owned := yt.Group("", h.Sessions)
			owned.GET("/oauth/authorize", h.YouTube.Authorize)
			owned.GET("/oauth/callback", h.YouTube.Callback)
			owned.GET("/oauth/status", h.YouTube.Status)
			owned.POST("/oauth/revoke", h.YouTube.Revoke)
			owned.GET("/playlists", h.YouTube.Playlists)
			owned.GET("/playlist/:id/items", h.YouTube.PlaylistItems)
		}
	}

	// REPORTS
	if h.Report != nil {
		reports := api.Group("/reports")
		reports.GET("/weekly.pdf", h.Report.WeeklyPDF)
		if h.ReportEmail {
			reports.POST("/weekly/email", h.Report.EmailWeekly)
		}
	}

	return r
}
