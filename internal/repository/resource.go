package repository

import (
	"context"

	"studyhub/internal/models"

	"gorm.io/gorm"
)

// ResourceRepository defines the interface for learning resources
type ResourceRepository interface {
	Create(ctx context.Context, resource *models.LearningResource) error
	// List returns resources newest first, restricted to subject when it is non-empty.
	List(ctx context.Context, subject string) ([]models.ResourceView, error)
	GetView(ctx context.Context, id uint) (*models.ResourceView, error)
}

type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(ctx context.Context, resource *models.LearningResource) error {
	return r.db.WithContext(ctx).Omit("Author").Create(resource).Error
}

func (r *resourceRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("learning_resources").
		Select("learning_resources.id, learning_resources.title, learning_resources.description, " +
			"learning_resources.resource_type, learning_resources.url, learning_resources.file_path, " +
			"learning_resources.subject, learning_resources.created_at, learning_resources.author_id, " +
			"COALESCE(profiles.full_name, '" + models.UnknownAuthor + "') AS author_name").
		Joins("LEFT JOIN profiles ON profiles.id = learning_resources.author_id")
}

func (r *resourceRepository) List(ctx context.Context, subject string) ([]models.ResourceView, error) {
	q := r.query(ctx)
	if subject != "" {
		q = q.Where("learning_resources.subject = ?", subject)
	}

	resources := []models.ResourceView{}
	if err := q.Order("learning_resources.created_at DESC, learning_resources.id DESC").Scan(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *resourceRepository) GetView(ctx context.Context, id uint) (*models.ResourceView, error) {
	var resources []models.ResourceView
	if err := r.query(ctx).Where("learning_resources.id = ?", id).Scan(&resources).Error; err != nil {
		return nil, err
	}
	if len(resources) == 0 {
		return nil, models.NewNotFoundError("Resource", id)
	}
	return &resources[0], nil
}
