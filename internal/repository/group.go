package repository

import (
	"context"

	"studyhub/internal/models"

	"gorm.io/gorm"
)

// GroupRepository defines the interface for study groups and memberships
type GroupRepository interface {
	// List returns every group with member counts and the viewer's membership, newest first.
	List(ctx context.Context, viewerID uint) ([]models.GroupView, error)
	GetView(ctx context.Context, groupID, viewerID uint) (*models.GroupView, error)
	AddMember(ctx context.Context, groupID, userID uint, isAdmin bool) error
	// CreateWithAdmin inserts the group and its creator as an admin member in one transaction.
	CreateWithAdmin(ctx context.Context, group *models.StudyGroup) error
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) viewQuery(ctx context.Context, viewerID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("study_groups").
		Select("study_groups.id, study_groups.name, study_groups.description, study_groups.subject, "+
			"study_groups.avatar_url, study_groups.created_by, study_groups.created_at, "+
			"(SELECT COUNT(*) FROM study_group_members m WHERE m.group_id = study_groups.id) AS member_count, "+
			"EXISTS(SELECT 1 FROM study_group_members m WHERE m.group_id = study_groups.id AND m.user_id = ?) AS is_member",
			viewerID)
}

func (r *groupRepository) List(ctx context.Context, viewerID uint) ([]models.GroupView, error) {
	groups := []models.GroupView{}
	err := r.viewQuery(ctx, viewerID).
		Order("study_groups.created_at DESC, study_groups.id DESC").
		Scan(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) GetView(ctx context.Context, groupID, viewerID uint) (*models.GroupView, error) {
	var groups []models.GroupView
	if err := r.viewQuery(ctx, viewerID).Where("study_groups.id = ?", groupID).Scan(&groups).Error; err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, models.NewNotFoundError("Study group", groupID)
	}
	return &groups[0], nil
}

func (r *groupRepository) AddMember(ctx context.Context, groupID, userID uint, isAdmin bool) error {
	return r.db.WithContext(ctx).Create(&models.StudyGroupMember{
		GroupID: groupID,
		UserID:  userID,
		IsAdmin: isAdmin,
	}).Error
}

func (r *groupRepository) CreateWithAdmin(ctx context.Context, group *models.StudyGroup) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		return tx.Create(&models.StudyGroupMember{
			GroupID: group.ID,
			UserID:  group.CreatedBy,
			IsAdmin: true,
		}).Error
	})
}
