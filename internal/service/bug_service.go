package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bugtrack/internal/cache"
	apperrors "bugtrack/internal/errors"
	"bugtrack/internal/model"
	"bugtrack/internal/repository"
)

const bugCacheTTL = 5 * time.Minute

// validate checks entities against their struct tags before persisting,
// mirroring document validation on save.
var validate = validator.New()

// CreateBugInput carries the fields a client may set when reporting a bug.
type CreateBugInput struct {
	Title            string
	Description      string
	Status           string
	Priority         string
	Project          string
	StepsToReproduce []string
	Environment      model.Environment
}

// UpdateBugInput carries a partial update; nil fields are left unchanged.
type UpdateBugInput struct {
	Title            *string
	Description      *string
	Status           *string
	Priority         *string
	Project          *string
	StepsToReproduce *[]string
	Environment      *model.Environment
}

// BugService applies create/read/update/delete semantics to bugs, enforcing
// reporter ownership on every mutation.
type BugService interface {
	Create(ctx context.Context, reporterID uuid.UUID, input CreateBugInput) (*model.Bug, error)
	List(ctx context.Context, viewerID *uuid.UUID, mine bool) ([]model.Bug, error)
	GetByID(ctx context.Context, id string) (*model.Bug, error)
	Update(ctx context.Context, userID uuid.UUID, id string, input UpdateBugInput) (*model.Bug, error)
	Delete(ctx context.Context, userID uuid.UUID, id string) error
}

type bugService struct {
	repo  repository.BugRepository
	cache *cache.Client
}

// NewBugService creates a new bug service.
func NewBugService(repo repository.BugRepository, cache *cache.Client) BugService {
	return &bugService{
		repo:  repo,
		cache: cache,
	}
}

func (s *bugService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("bug:%s", id.String())
}

// Create persists a new bug owned by reporterID. Enum and free-form fields
// default when absent; the assembled entity is validated before it is stored.
func (s *bugService) Create(ctx context.Context, reporterID uuid.UUID, input CreateBugInput) (*model.Bug, error) {
	bug := &model.Bug{
		Title:            input.Title,
		Description:      input.Description,
		Status:           input.Status,
		Priority:         input.Priority,
		Project:          input.Project,
		StepsToReproduce: input.StepsToReproduce,
		Environment:      input.Environment,
		ReporterID:       reporterID,
	}
	if bug.Status == "" {
		bug.Status = model.BugStatusOpen
	}
	if bug.Priority == "" {
		bug.Priority = model.BugPriorityMedium
	}
	if bug.Project == "" {
		bug.Project = "General"
	}

	if err := validate.Struct(bug); err != nil {
		return nil, apperrors.FromValidator(err)
	}
	if err := s.repo.Create(ctx, bug); err != nil {
		return nil, fmt.Errorf("create bug: %w", err)
	}
	return bug, nil
}

// List returns bugs newest-first. With mine set and a viewer present the
// result is restricted to the viewer's bugs; otherwise all bugs are returned.
func (s *bugService) List(ctx context.Context, viewerID *uuid.UUID, mine bool) ([]model.Bug, error) {
	var reporterID *uuid.UUID
	if mine && viewerID != nil {
		reporterID = viewerID
	}
	bugs, err := s.repo.List(ctx, reporterID)
	if err != nil {
		return nil, fmt.Errorf("list bugs: %w", err)
	}
	return bugs, nil
}

// GetByID retrieves a bug with its reporter resolved, reading through the
// cache. Malformed identifiers are reported distinctly from absent records.
func (s *bugService) GetByID(ctx context.Context, id string) (*model.Bug, error) {
	bugID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrInvalidBugID
	}

	if data, _ := s.cache.Get(ctx, s.cacheKey(bugID)); data != nil {
		var cached model.Bug
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	bug, err := s.repo.FindByID(ctx, bugID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBugNotFound
		}
		return nil, fmt.Errorf("find bug: %w", err)
	}

	if payload, err := json.Marshal(bug); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(bugID), payload, bugCacheTTL)
	}
	return bug, nil
}

// Update merges the payload into the stored bug and persists it. The
// ownership check runs before any field is touched; a rejected update leaves
// the stored entity unchanged.
func (s *bugService) Update(ctx context.Context, userID uuid.UUID, id string, input UpdateBugInput) (*model.Bug, error) {
	bugID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrInvalidBugID
	}

	bug, err := s.repo.FindByID(ctx, bugID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBugNotFound
		}
		return nil, fmt.Errorf("find bug: %w", err)
	}
	if bug.ReporterID != userID {
		return nil, apperrors.ErrNotBugReporter
	}

	if input.Title != nil {
		bug.Title = *input.Title
	}
	if input.Description != nil {
		bug.Description = *input.Description
	}
	if input.Status != nil {
		bug.Status = *input.Status
	}
	if input.Priority != nil {
		bug.Priority = *input.Priority
	}
	if input.Project != nil {
		bug.Project = *input.Project
	}
	if input.StepsToReproduce != nil {
		bug.StepsToReproduce = *input.StepsToReproduce
	}
	if input.Environment != nil {
		bug.Environment = *input.Environment
	}

	if err := validate.Struct(bug); err != nil {
		return nil, apperrors.FromValidator(err)
	}
	if err := s.repo.Update(ctx, bug); err != nil {
		return nil, fmt.Errorf("update bug: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(bugID))
	return bug, nil
}

// Delete permanently removes a bug after the same not-found and ownership
// checks as Update.
func (s *bugService) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	bugID, err := uuid.Parse(id)
	if err != nil {
		return apperrors.ErrInvalidBugID
	}

	bug, err := s.repo.FindByID(ctx, bugID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrBugNotFound
		}
		return fmt.Errorf("find bug: %w", err)
	}
	if bug.ReporterID != userID {
		return apperrors.ErrNotBugReporter
	}

	if err := s.repo.Delete(ctx, bugID); err != nil {
		return fmt.Errorf("delete bug: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(bugID))
	return nil
}
