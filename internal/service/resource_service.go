package service

import (
	"context"
	"strings"

	"studyhub/internal/models"
	"studyhub/internal/observability"
	"studyhub/internal/repository"
	"studyhub/internal/validation"
)

type ResourceService struct {
	repo repository.ResourceRepository
}

// ResourceInput is the payload for sharing a learning resource. Either URL or FilePath is expected.
type ResourceInput struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	ResourceType string `json:"resource_type" validate:"required,max=50"`
	URL          string `json:"url" validate:"omitempty,max=2048"`
	FilePath     string `json:"file_path" validate:"omitempty,max=1024"`
	Subject      string `json:"subject" validate:"max=100"`
}

func NewResourceService(repo repository.ResourceRepository) *ResourceService {
	return &ResourceService{repo: repo}
}

// GetLearningResources returns every resource, newest first.
func (s *ResourceService) GetLearningResources(ctx context.Context) (_ []models.ResourceView, err error) {
	defer observability.TrackOperation("get_learning_resources")(&err)
	out, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, fail(ctx, "Error fetching learning resources", err)
	}
	return out, nil
}

func (s *ResourceService) GetLearningResourcesBySubject(ctx context.Context, subject string) (_ []models.ResourceView, err error) {
	defer observability.TrackOperation("get_learning_resources_by_subject")(&err)
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return s.GetLearningResources(ctx)
	}
	out, err := s.repo.List(ctx, subject)
	if err != nil {
		return nil, fail(ctx, "Error fetching learning resources by subject", err)
	}
	return out, nil
}

func (s *ResourceService) AddLearningResource(ctx context.Context, authorID uint, in ResourceInput) (_ *models.ResourceView, err error) {
	defer observability.TrackOperation("add_learning_resource")(&err)
	if err := requireUser(authorID); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.URL == "" && in.FilePath == "" {
		return nil, models.NewValidationError("Either url or file_path is required")
	}

	resource := &models.LearningResource{
		AuthorID:     authorID,
		Title:        in.Title,
		Description:  in.Description,
		ResourceType: in.ResourceType,
		URL:          in.URL,
		FilePath:     in.FilePath,
		Subject:      in.Subject,
	}
	if err := s.repo.Create(ctx, resource); err != nil {
		return nil, fail(ctx, "Error adding learning resource", err)
	}
	view, err := s.repo.GetView(ctx, resource.ID)
	if err != nil {
		return nil, fail(ctx, "Error adding learning resource", err)
	}
	return view, nil
}
