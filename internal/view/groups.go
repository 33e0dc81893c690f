package view

import (
	"context"

	"studyhub/internal/models"
	"studyhub/internal/service"
)

// GroupAPI is the slice of the group façade the study groups page needs.
type GroupAPI interface {
	GetStudyGroups(ctx context.Context, viewerID uint) ([]models.GroupView, error)
	JoinGroup(ctx context.Context, groupID, userID uint) (*models.GroupView, error)
	CreateGroup(ctx context.Context, creatorID uint, in service.GroupInput) (*models.GroupView, error)
}

const EmptyGroups = "No study groups yet"

// GroupsView pairs every group with the groups the viewer belongs to.
type GroupsView struct {
	Discover *Collection[models.GroupView]
	Mine     *Collection[models.GroupView]

	api    GroupAPI
	viewer Viewer
}

// NewGroupsView builds the page. Only Discover is fetched; Mine is derived from it.
func NewGroupsView(api GroupAPI, viewer Viewer) *GroupsView {
	v := &GroupsView{api: api, viewer: viewer}
	v.Discover = NewCollection("study groups", func(ctx context.Context) ([]models.GroupView, error) {
		return api.GetStudyGroups(ctx, viewer.UserID())
	})
	v.Mine = NewCollection("my study groups", func(context.Context) ([]models.GroupView, error) {
		all := v.Discover.Items()
		mine := make([]models.GroupView, 0, len(all))
		for _, g := range all {
			if g.IsMember {
				mine = append(mine, g)
			}
		}
		return mine, nil
	})
	return v
}

// Load fetches the groups once and then rebuilds Mine from them.
func (v *GroupsView) Load(ctx context.Context) {
	_ = v.Discover.Load(ctx)
	_ = v.Mine.Load(ctx)
}

func byGroupID(id uint) func(models.GroupView) bool {
	return func(g models.GroupView) bool { return g.ID == id }
}

// Join copies the discovered group into Mine as a member with one more member counted.
// Discover keeps its original entry.
func (v *GroupsView) Join(ctx context.Context, groupID uint) error {
	if _, err := v.api.JoinGroup(ctx, groupID, v.viewer.UserID()); err != nil {
		logFailure(ctx, "Error joining group", err, "group_id", groupID)
		return err
	}
	if _, already := v.Mine.Find(byGroupID(groupID)); already {
		return nil
	}
	group, ok := v.Discover.Find(byGroupID(groupID))
	if !ok {
		return nil
	}
	if !group.IsMember {
		group.MemberCount++
	}
	group.IsMember = true
	v.Mine.Append(group)
	return nil
}

// Create prepends the new group to both collections.
func (v *GroupsView) Create(ctx context.Context, in service.GroupInput) (*models.GroupView, error) {
	group, err := v.api.CreateGroup(ctx, v.viewer.UserID(), in)
	if err != nil {
		logFailure(ctx, "Error creating study group", err)
		return nil, err
	}
	v.Discover.Prepend(*group)
	v.Mine.Prepend(*group)
	return group, nil
}

func (v *GroupsView) EmptyMessage() string {
	if v.Discover.Empty() {
		return EmptyGroups
	}
	return ""
}
