package view

import (
	"context"
	"strings"
	"sync"

	"studyhub/internal/models"
	"studyhub/internal/service"
)

// ResourceAPI is the slice of the resource façade the resources page needs.
type ResourceAPI interface {
	GetLearningResources(ctx context.Context) ([]models.ResourceView, error)
	GetLearningResourcesBySubject(ctx context.Context, subject string) ([]models.ResourceView, error)
	AddLearningResource(ctx context.Context, authorID uint, in service.ResourceInput) (*models.ResourceView, error)
}

const EmptyResources = "No resources yet"

// ResourcesView lists learning resources, optionally filtered by subject.
type ResourcesView struct {
	*Collection[models.ResourceView]
	api    ResourceAPI
	viewer Viewer

	mu      sync.Mutex
	subject string
}

func NewResourcesView(api ResourceAPI, viewer Viewer) *ResourcesView {
	v := &ResourcesView{api: api, viewer: viewer}
	v.Collection = NewCollection("learning resources", func(ctx context.Context) ([]models.ResourceView, error) {
		if subject := v.Subject(); subject != "" {
			return api.GetLearningResourcesBySubject(ctx, subject)
		}
		return api.GetLearningResources(ctx)
	})
	return v
}

func (v *ResourcesView) Subject() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.subject
}

// FilterBySubject reloads the list for subject; "" shows everything.
func (v *ResourcesView) FilterBySubject(ctx context.Context, subject string) error {
	v.mu.Lock()
	v.subject = strings.TrimSpace(subject)
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// Add prepends the new resource when it matches the current filter.
func (v *ResourcesView) Add(ctx context.Context, in service.ResourceInput) (*models.ResourceView, error) {
	resource, err := v.api.AddLearningResource(ctx, v.viewer.UserID(), in)
	if err != nil {
		logFailure(ctx, "Error adding learning resource", err)
		return nil, err
	}
	if subject := v.Subject(); subject == "" || subject == resource.Subject {
		v.Prepend(*resource)
	}
	return resource, nil
}

func (v *ResourcesView) EmptyMessage() string {
	if v.Empty() {
		return EmptyResources
	}
	return ""
}
