package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/pprofhandler"

	apiHandler "github.com/fastygo/tracker/api/handler"
)

type Handlers struct {
	Auth         *apiHandler.AuthHandler
	Profile      *apiHandler.ProfileHandler
	Project      *apiHandler.ProjectHandler
	Task         *apiHandler.TaskHandler
	Ticket       *apiHandler.TicketHandler
	Notification *apiHandler.NotificationHandler
	Dashboard    *apiHandler.DashboardHandler
	Health       *apiHandler.HealthHandler
}

type Options struct {
	EnablePprof bool
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler, opts Options) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	if opts.EnablePprof {
		r.GET("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)

	// Protected routes
	api := r.Group("/api/v1")
	api.POST("/auth/logout", authMiddleware(handlers.Auth.Logout))

	api.GET("/profile", authMiddleware(handlers.Profile.GetProfile))
	api.PUT("/profile", authMiddleware(handlers.Profile.UpdateProfile))

	api.GET("/projects", authMiddleware(handlers.Project.GetProjects))
	api.POST("/projects", authMiddleware(handlers.Project.CreateProject))
	api.GET("/projects/{id}", authMiddleware(handlers.Project.GetProject))
	api.PUT("/projects/{id}", authMiddleware(handlers.Project.UpdateProject))
	api.DELETE("/projects/{id}", authMiddleware(handlers.Project.DeleteProject))

	api.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	api.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	api.GET("/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	api.PUT("/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	api.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	api.GET("/tickets", authMiddleware(handlers.Ticket.GetTickets))
	api.POST("/tickets", authMiddleware(handlers.Ticket.CreateTicket))
	api.GET("/tickets/{id}", authMiddleware(handlers.Ticket.GetTicket))
	api.PUT("/tickets/{id}", authMiddleware(handlers.Ticket.UpdateTicket))
	api.DELETE("/tickets/{id}", authMiddleware(handlers.Ticket.DeleteTicket))

	api.GET("/notifications", authMiddleware(handlers.Notification.GetNotifications))
	api.POST("/notifications/{id}/read", authMiddleware(handlers.Notification.MarkRead))

	api.GET("/dashboard/metrics", authMiddleware(handlers.Dashboard.Metrics))
	api.GET("/dashboard/status", authMiddleware(handlers.Dashboard.Status))
	api.GET("/dashboard/board", authMiddleware(handlers.Dashboard.Board))
	api.POST("/dashboard/refresh", authMiddleware(handlers.Dashboard.Refresh))

	return r
}
