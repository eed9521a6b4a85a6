package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/runoshun/taskboard/internal/usecase"
)

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := bindJSON(c, &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	out, err := s.app.CreateUserUseCase().Execute(c.Request.Context(), usecase.CreateUserInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out.User)
}

func (s *Server) handleListUsers(c *gin.Context) {
	out, err := s.app.ListUsersUseCase().Execute(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(out.Users))
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := s.app.ShowUserUseCase().Execute(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := bindJSON(c, &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	out, err := s.app.CreateProjectUseCase().Execute(c.Request.Context(), usecase.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out.Project)
}

func (s *Server) handleListProjects(c *gin.Context) {
	var in usecase.ListProjectsInput
	if v := c.Query("include_archived"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "include_archived must be a boolean")
			return
		}
		in.IncludeArchived = b
	}
	out, err := s.app.ListProjectsUseCase().Execute(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(out.Projects))
}

func (s *Server) handleGetProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	project, err := s.app.ShowProjectUseCase().Execute(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) handleArchiveProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	project, err := s.app.ArchiveProjectUseCase().Execute(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

type createTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleCreateTag(c *gin.Context) {
	var req createTagRequest
	if err := bindJSON(c, &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	tag, err := s.app.CreateTagUseCase().Execute(c.Request.Context(), usecase.CreateTagInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (s *Server) handleListTags(c *gin.Context) {
	tags, err := s.app.ListTagsUseCase().Execute(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(tags))
}
