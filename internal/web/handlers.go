package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Task Dashboard API",
		"version": s.version,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	out, err := s.app.ComputeStatsUseCase().Execute(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out.Stats.Dashboard())
}

type createTaskRequest struct {
	AssigneeID  *int64          `json:"assignee_id"`
	ProjectID   *int64          `json:"project_id"`
	DueDate     *date           `json:"due_date"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      domain.Status   `json:"status"`
	Priority    domain.Priority `json:"priority"`
	TagIDs      []int64         `json:"tag_ids"`
	CreatorID   int64           `json:"creator_id"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := bindJSON(c, &req); err != nil {
		badRequest(c, err.Error())
		return
	}

	out, err := s.app.CreateTaskUseCase().Execute(c.Request.Context(), usecase.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
		DueDate:     req.DueDate.ptr(),
		TagIDs:      req.TagIDs,
		CreatorID:   req.CreatorID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out.Task)
}

func (s *Server) handleListTasks(c *gin.Context) {
	var in usecase.ListTasksInput
	var ok bool
	if in.AssigneeID, ok = queryID(c, "assignee_id"); !ok {
		return
	}
	if in.ProjectID, ok = queryID(c, "project_id"); !ok {
		return
	}
	if v := c.Query("status"); v != "" {
		st, err := domain.ParseStatus(v)
		if err != nil {
			fail(c, err)
			return
		}
		in.Status = &st
	}

	out, err := s.app.ListTasksUseCase().Execute(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(out.Tasks))
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	out, err := s.app.ShowTaskUseCase().Execute(c.Request.Context(), usecase.ShowTaskInput{TaskID: id})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out.Task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := bindPatch(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	in, err := taskPatch(id, p)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	out, err := s.app.UpdateTaskUseCase().Execute(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out.Task)
}

// taskPatch converts a PATCH body into an UpdateTaskInput.
func taskPatch(id int64, p patch) (usecase.UpdateTaskInput, error) {
	in := usecase.UpdateTaskInput{
		TaskID:        id,
		ClearAssignee: p.isNull("assignee_id"),
		ClearProject:  p.isNull("project_id"),
		ClearDueDate:  p.isNull("due_date"),
	}

	var (
		title, description string
		status             domain.Status
		priority           domain.Priority
		assignee, project  int64
		due                date
		tagIDs             []int64
	)
	fields := []struct {
		set   func()
		dst   any
		key   string
		clear bool // null is allowed
	}{
		{key: "title", dst: &title, set: func() { in.Title = &title }},
		{key: "description", dst: &description, clear: true, set: func() { in.Description = &description }},
		{key: "status", dst: &status, set: func() { in.Status = &status }},
		{key: "priority", dst: &priority, set: func() { in.Priority = &priority }},
		{key: "assignee_id", dst: &assignee, clear: true, set: func() { in.AssigneeID = &assignee }},
		{key: "project_id", dst: &project, clear: true, set: func() { in.ProjectID = &project }},
		{key: "due_date", dst: &due, clear: true, set: func() { in.DueDate = due.ptr() }},
		{key: "tag_ids", dst: &tagIDs, clear: true, set: func() { in.TagIDs = &tagIDs }},
	}
	for _, f := range fields {
		if p.isNull(f.key) && !f.clear {
			return in, fmtNull(f.key)
		}
		present, err := p.decode(f.key, f.dst)
		if err != nil {
			return in, err
		}
		if present {
			f.set()
		}
	}

	// A null description or tag set means empty.
	if p.isNull("description") {
		in.Description = &description
	}
	if p.isNull("tag_ids") {
		empty := []int64{}
		in.TagIDs = &empty
	}
	return in, nil
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := s.app.DeleteTaskUseCase().Execute(c.Request.Context(), usecase.DeleteTaskInput{TaskID: id}); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
