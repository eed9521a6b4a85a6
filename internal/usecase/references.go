// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/runoshun/taskboard/internal/domain"
)

// references validates that IDs handed to a use case point at existing entities.
type references struct {
	users    domain.UserRepository
	projects domain.ProjectRepository
	tags     domain.TagRepository
}

// user returns errMissing if the user does not exist.
func (r references) user(ctx context.Context, id int64, errMissing error) error {
	u, err := r.users.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return errMissing
	}
	return nil
}

func (r references) project(ctx context.Context, id int64) error {
	p, err := r.projects.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return domain.ErrUnknownProject
	}
	return nil
}

// tagSet loads the tags for ids, collapsing duplicates. The result is sorted by name.
func (r references) tagSet(ctx context.Context, ids []int64) ([]domain.Tag, error) {
	ids = domain.UniqueIDs(ids)
	tags := make([]domain.Tag, 0, len(ids))
	for _, id := range ids {
		tag, err := r.tags.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get tag: %w", err)
		}
		if tag == nil {
			return nil, fmt.Errorf("%w: #%d", domain.ErrUnknownTag, id)
		}
		tags = append(tags, *tag)
	}
	slices.SortFunc(tags, func(a, b domain.Tag) int {
		return strings.Compare(a.Name, b.Name)
	})
	return tags, nil
}
