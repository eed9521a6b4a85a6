package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase"
)

type createTranscriptRequest struct {
	Title string `json:"title"`
	Text  string `json:"transcript"`
}

func (s *Server) handleCreateTranscript(c *gin.Context) {
	var req createTranscriptRequest
	if err := bindJSON(c, &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	out, err := s.app.CreateTranscriptUseCase().Execute(c.Request.Context(), usecase.CreateTranscriptInput{
		Title: req.Title,
		Text:  req.Text,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, withActions(out.Transcript))
}

func (s *Server) handleListTranscripts(c *gin.Context) {
	out, err := s.app.ListTranscriptsUseCase().Execute(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	for _, t := range out.Transcripts {
		withActions(t)
	}
	c.JSON(http.StatusOK, nonNil(out.Transcripts))
}

func (s *Server) handleGetTranscript(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	out, err := s.app.ShowTranscriptUseCase().Execute(c.Request.Context(), usecase.ShowTranscriptInput{TranscriptID: id})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, withActions(out.Transcript))
}

// processResponse is the result of one processing pass.
type processResponse struct {
	Summary        string                    `json:"summary"`
	RunID          string                    `json:"run_id"`
	Actions        []domain.TranscriptAction `json:"actions"`
	CreatedTaskIDs []int64                   `json:"created_task_ids"`
	UpdatedTaskIDs []int64                   `json:"updated_task_ids"`
	Skipped        []usecase.SkippedAction   `json:"skipped"`
	TranscriptID   int64                     `json:"transcript_id"`
	TasksCreated   int                       `json:"tasks_created"`
	TasksUpdated   int                       `json:"tasks_updated"`
	Success        bool                      `json:"success"`
}

func (s *Server) handleProcessTranscript(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	uc, err := s.app.ProcessTranscriptUseCase()
	if err != nil {
		fail(c, err)
		return
	}
	out, err := uc.Execute(c.Request.Context(), usecase.ProcessTranscriptInput{TranscriptID: id})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, processResponse{
		Success:        true,
		TranscriptID:   out.Transcript.ID,
		RunID:          out.RunID,
		Summary:        out.Summary,
		TasksCreated:   len(out.CreatedTaskIDs),
		TasksUpdated:   len(out.UpdatedTaskIDs),
		Actions:        nonNil(out.Actions),
		CreatedTaskIDs: nonNil(out.CreatedTaskIDs),
		UpdatedTaskIDs: nonNil(out.UpdatedTaskIDs),
		Skipped:        nonNil(out.Skipped),
	})
}

// withActions makes an empty action log encode as [] rather than null.
func withActions(t *domain.Transcript) *domain.Transcript {
	if t != nil && t.Actions == nil {
		t.Actions = []domain.TranscriptAction{}
	}
	return t
}
