package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/taskboard/internal/domain"
)

// CreateTagInput contains the parameters for creating a tag.
type CreateTagInput struct {
	Name  string
	Color string // Empty = domain.DefaultTagColor
}

// CreateTag is the use case for creating a tag.
type CreateTag struct {
	tags domain.TagRepository
}

// NewCreateTag creates a new CreateTag use case.
func NewCreateTag(tags domain.TagRepository) *CreateTag {
	return &CreateTag{tags: tags}
}

// Execute creates the tag. The store rejects duplicate names with domain.ErrTagExists.
func (uc *CreateTag) Execute(ctx context.Context, in CreateTagInput) (*domain.Tag, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = domain.DefaultTagColor
	}

	tag := &domain.Tag{Name: name, Color: color}
	if err := uc.tags.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("save tag: %w", err)
	}
	return tag, nil
}

// ListTags is the use case for listing tags.
type ListTags struct {
	tags domain.TagRepository
}

// NewListTags creates a new ListTags use case.
func NewListTags(tags domain.TagRepository) *ListTags {
	return &ListTags{tags: tags}
}

// Execute lists all tags ordered by name.
func (uc *ListTags) Execute(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := uc.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}
