package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/internal/handlers"
	"github.com/taskflow-dev/taskflow/internal/middleware"
	"github.com/taskflow-dev/taskflow/internal/types"
)

func NewRouter(h *handlers.Handler, tokens middleware.TokenVerifier, users middleware.UserLookup, database handlers.Checker, allowedOrigins []string) *gin.Engine {
	authenticate := middleware.Auth(tokens, users)

	// cors.New panics on an empty origin list.
	if len(allowedOrigins) == 0 {
		allowedOrigins = types.AllowedOrigins("", "")
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/ping", handlers.Ping)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck(database))

		auth := api.Group("/auth")
		{
			auth.POST("/sign-up", h.SignUp)
			auth.POST("/sign-in", h.SignIn)
			auth.POST("/sign-out", h.SignOut)
		}

		users := api.Group("/users")
		{
			users.GET("", h.ListUsers)
			users.GET("/me", authenticate, h.Me)
			users.GET("/:user_id", authenticate, h.GetUser)
			users.PATCH("", authenticate, h.UpdateUser)
			users.DELETE("", authenticate, h.DeleteUser)
			users.GET("/:user_id/projects", authenticate, h.GetUserProjects)
			users.GET("/:user_id/tasks", authenticate, h.GetUserTasks)
		}

		projects := api.Group("/projects", authenticate)
		{
			projects.POST("", h.CreateProject)
			projects.GET("", h.ListProjects)
			projects.GET("/:project_id", h.GetProject)
			projects.PATCH("/:project_id", h.UpdateProject)
			projects.DELETE("/:project_id", h.DeleteProject)

			// Membership endpoints
			projects.POST("/:project_id/users", h.AddMember)
			projects.DELETE("/:project_id/users/:user_id", h.RemoveMember)
			projects.PATCH("/:project_id/users/:user_id/role", h.EditMemberRole)

			projects.GET("/:project_id/tasks", h.GetProjectTasks)
			projects.GET("/:project_id/activity", h.GetProjectActivity)
			projects.GET("/:project_id/ws", h.WebSocket)
		}

		tasks := api.Group("/tasks", authenticate)
		{
			tasks.POST("", h.CreateTask)
			tasks.GET("/:task_id", h.GetTask)
			tasks.PATCH("/:task_id", h.UpdateTask)
			tasks.DELETE("/:task_id", h.DeleteTask)
			tasks.PATCH("/:task_id/assign-to", h.AssignTask)
		}
	}

	return r
}

