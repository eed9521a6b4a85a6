package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase"
)

type createGoalRequest struct {
	OwnerID     *int64            `json:"owner_id"`
	TargetDate  *date             `json:"target_date"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      domain.GoalStatus `json:"status"`
}

func (s *Server) handleCreateGoal(c *gin.Context) {
	var req createGoalRequest
	if err := bindJSON(c, &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	goal, err := s.app.CreateGoalUseCase().Execute(c.Request.Context(), usecase.CreateGoalInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		OwnerID:     req.OwnerID,
		TargetDate:  req.TargetDate.ptr(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

func (s *Server) handleListGoals(c *gin.Context) {
	goals, err := s.app.ListGoalsUseCase().Execute(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(goals))
}

func (s *Server) handleGetGoal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	goal, err := s.app.ShowGoalUseCase().Execute(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (s *Server) handleUpdateGoal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := bindPatch(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	in := usecase.UpdateGoalInput{
		GoalID:          id,
		ClearOwner:      p.isNull("owner_id"),
		ClearTargetDate: p.isNull("target_date"),
	}
	for _, key := range []string{"title", "status"} {
		if p.isNull(key) {
			badRequest(c, fmtNull(key).Error())
			return
		}
	}

	var (
		title, description string
		status             domain.GoalStatus
		owner              int64
		target             date
	)
	decoders := []struct {
		dst any
		set func()
		key string
	}{
		{key: "title", dst: &title, set: func() { in.Title = &title }},
		{key: "description", dst: &description, set: func() { in.Description = &description }},
		{key: "status", dst: &status, set: func() { in.Status = &status }},
		{key: "owner_id", dst: &owner, set: func() { in.OwnerID = &owner }},
		{key: "target_date", dst: &target, set: func() { in.TargetDate = target.ptr() }},
	}
	for _, d := range decoders {
		present, err := p.decode(d.key, d.dst)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		if present {
			d.set()
		}
	}
	if p.isNull("description") {
		in.Description = &description
	}

	goal, err := s.app.UpdateGoalUseCase().Execute(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (s *Server) handleDeleteGoal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.app.DeleteGoalUseCase().Execute(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted successfully"})
}
