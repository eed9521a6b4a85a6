// Package web serves the board over a JSON HTTP API.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/runoshun/taskboard/internal/app"
)

// processRoute is the full path of the transcript processing route.
const processRoute = "/transcripts/:id/process"

// Server is the board HTTP server.
type Server struct {
	app            *app.Container
	router         *gin.Engine
	log            *slog.Logger
	version        string
	timeout        time.Duration
	extractTimeout time.Duration
}

// NewServer creates a server with all routes registered.
func NewServer(c *app.Container, version string) *Server {
	router := gin.New()

	s := &Server{
		app:            c,
		router:         router,
		log:            c.SlogLog,
		version:        version,
		timeout:        c.AppConfig.Server.RequestTimeout,
		extractTimeout: c.AppConfig.Extractor.Timeout,
	}

	router.Use(gin.Recovery(), requestLogger(s.log), cors(), requestTimeout(s.timeoutFor))

	router.GET("/", s.handleRoot)
	router.GET("/stats", s.handleStats)

	users := router.Group("/users")
	{
		users.POST("", s.handleCreateUser)
		users.GET("", s.handleListUsers)
		users.GET("/:id", s.handleGetUser)
	}

	projects := router.Group("/projects")
	{
		projects.POST("", s.handleCreateProject)
		projects.GET("", s.handleListProjects)
		projects.GET("/:id", s.handleGetProject)
		projects.PATCH("/:id/archive", s.handleArchiveProject)
	}

	tags := router.Group("/tags")
	{
		tags.POST("", s.handleCreateTag)
		tags.GET("", s.handleListTags)
	}

	tasks := router.Group("/tasks")
	{
		tasks.POST("", s.handleCreateTask)
		tasks.GET("", s.handleListTasks)
		tasks.GET("/:id", s.handleGetTask)
		tasks.PATCH("/:id", s.handleUpdateTask)
		tasks.DELETE("/:id", s.handleDeleteTask)
	}

	transcripts := router.Group("/transcripts")
	{
		transcripts.POST("", s.handleCreateTranscript)
		transcripts.GET("", s.handleListTranscripts)
		transcripts.GET("/:id", s.handleGetTranscript)
		transcripts.POST("/:id/process", s.handleProcessTranscript)
	}

	goals := router.Group("/goals")
	{
		goals.POST("", s.handleCreateGoal)
		goals.GET("", s.handleListGoals)
		goals.GET("/:id", s.handleGetGoal)
		goals.PATCH("/:id", s.handleUpdateGoal)
		goals.DELETE("/:id", s.handleDeleteGoal)
	}

	return s
}

// timeoutFor returns the deadline of a request. Processing waits on the
// extractor, so it gets the extractor timeout on top of the request timeout.
func (s *Server) timeoutFor(c *gin.Context) time.Duration {
	if c.FullPath() != processRoute {
		return s.timeout
	}
	if s.timeout <= 0 || s.extractTimeout <= 0 {
		return 0
	}
	return s.timeout + s.extractTimeout
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}
