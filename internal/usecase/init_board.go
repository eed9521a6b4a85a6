// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/runoshun/taskboard/internal/domain"
)

// InitBoardInput contains the input parameters for InitBoard.
type InitBoardInput struct {
	Config  *domain.Config // Defaults rendered into the config template
	DataDir string         // Directory holding the database, config and logs
}

// InitBoardOutput contains the output from InitBoard.
type InitBoardOutput struct {
	DataDir       string
	ConfigPath    string
	ConfigCreated bool // False when a config file was already present
}

// InitBoard prepares a data directory: directories, default config and store schema.
// It is safe to run repeatedly.
type InitBoard struct {
	storeInit domain.StoreInitializer
	configs   domain.ConfigWriter
}

// NewInitBoard creates a new InitBoard use case.
func NewInitBoard(storeInit domain.StoreInitializer, configs domain.ConfigWriter) *InitBoard {
	return &InitBoard{storeInit: storeInit, configs: configs}
}

// Execute initializes the data directory.
func (uc *InitBoard) Execute(ctx context.Context, in InitBoardInput) (*InitBoardOutput, error) {
	if err := os.MkdirAll(domain.LogsDir(in.DataDir), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}

	created := true
	path, err := uc.configs.InitDataConfig(in.Config)
	if errors.Is(err, domain.ErrConfigExists) {
		created = false
	} else if err != nil {
		return nil, fmt.Errorf("write config: %w", err)
	}

	if err := uc.storeInit.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	return &InitBoardOutput{
		DataDir:       in.DataDir,
		ConfigPath:    path,
		ConfigCreated: created,
	}, nil
}
