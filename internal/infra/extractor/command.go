package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/runoshun/taskboard/internal/domain"
)

// commandWaitDelay bounds how long Run waits for output pipes after the program is killed.
const commandWaitDelay = 2 * time.Second

// Command extracts actions by running an external program.
// The program receives a JSON request on stdin and writes the extraction payload to stdout.
type Command struct {
	program string
	args    []string
}

// Ensure Command implements domain.Extractor interface.
var _ domain.Extractor = (*Command)(nil)

// commandRequest is the document written to the program's stdin.
type commandRequest struct {
	Text      string           `json:"text"`
	Prompt    string           `json:"prompt"`
	Users     []domain.UserRef `json:"users"`
	OpenTasks []domain.TaskRef `json:"open_tasks"`
}

// NewCommand creates a command extractor.
func NewCommand(program string, args []string) *Command {
	return &Command{program: program, args: args}
}

// Extract runs the program. It is killed when ctx is done.
func (c *Command) Extract(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error) {
	if c.program == "" {
		return nil, errors.New("extractor command not configured")
	}

	input, err := json.Marshal(commandRequest{
		Text:      req.Text,
		Prompt:    buildPrompt(req),
		Users:     req.Users,
		OpenTasks: req.OpenTasks,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	// #nosec G204 - program and args come from the user's own config file
	cmd := exec.CommandContext(ctx, c.program, c.args...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = commandWaitDelay

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("run %s: %w: %s", c.program, err, msg)
		}
		return nil, fmt.Errorf("run %s: %w", c.program, err)
	}
	return Decode(stdout.Bytes())
}
