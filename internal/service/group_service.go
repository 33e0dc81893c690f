package service

import (
	"context"
	"strings"

	"studyhub/internal/database"
	"studyhub/internal/models"
	"studyhub/internal/observability"
	"studyhub/internal/repository"
	"studyhub/internal/validation"
)

type GroupService struct {
	repo repository.GroupRepository
}

// GroupInput is the payload for creating a study group.
type GroupInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	Subject     string `json:"subject" validate:"max=100"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,max=2048"`
}

func NewGroupService(repo repository.GroupRepository) *GroupService {
	return &GroupService{repo: repo}
}

// GetStudyGroups returns every group with member counts and viewerID's membership.
func (s *GroupService) GetStudyGroups(ctx context.Context, viewerID uint) (_ []models.GroupView, err error) {
	defer observability.TrackOperation("get_study_groups")(&err)
	out, err := s.repo.List(ctx, viewerID)
	if err != nil {
		return nil, fail(ctx, "Error fetching study groups", err)
	}
	return out, nil
}

// JoinGroup adds userID to the group and returns the refreshed group. Joining twice is not an error.
func (s *GroupService) JoinGroup(ctx context.Context, groupID, userID uint) (_ *models.GroupView, err error) {
	defer observability.TrackOperation("join_group")(&err)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetView(ctx, groupID, userID); err != nil {
		return nil, fail(ctx, "Error joining group", err)
	}
	if err := s.repo.AddMember(ctx, groupID, userID, false); err != nil && !database.IsDuplicateKey(err) {
		return nil, fail(ctx, "Error joining group", err)
	}
	view, err := s.repo.GetView(ctx, groupID, userID)
	if err != nil {
		return nil, fail(ctx, "Error fetching study group", err)
	}
	return view, nil
}

// CreateGroup creates a group with creatorID as its admin member.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID uint, in GroupInput) (_ *models.GroupView, err error) {
	defer observability.TrackOperation("create_group")(&err)
	if err := requireUser(creatorID); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	group := &models.StudyGroup{
		CreatedBy:   creatorID,
		Name:        in.Name,
		Description: in.Description,
		Subject:     in.Subject,
		AvatarURL:   in.AvatarURL,
	}
	if err := s.repo.CreateWithAdmin(ctx, group); err != nil {
		return nil, fail(ctx, "Error creating study group", err)
	}
	view, err := s.repo.GetView(ctx, group.ID, creatorID)
	if err != nil {
		return nil, fail(ctx, "Error fetching study group", err)
	}
	return view, nil
}
