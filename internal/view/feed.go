package view

import (
	"context"
	"sync"

	"studyhub/internal/models"
	"studyhub/internal/service"
)

// PostAPI is the slice of the post façade the feed needs.
type PostAPI interface {
	GetPosts(ctx context.Context, viewerID uint) ([]models.PostDetails, error)
	GetUserPosts(ctx context.Context, authorID, viewerID uint) ([]models.PostDetails, error)
	GetSavedPosts(ctx context.Context, userID uint) ([]models.PostDetails, error)
	GetPostDetails(ctx context.Context, postID, viewerID uint) (*models.PostDetails, error)
	CreatePost(ctx context.Context, authorID uint, in service.PostInput) (*models.PostDetails, error)
	TogglePostLike(ctx context.Context, postID, userID uint) (*service.LikeState, error)
	ToggleSavePost(ctx context.Context, postID, userID uint) (*service.SaveState, error)
	AddComment(ctx context.Context, postID, authorID uint, content string) (*models.CommentView, error)
}

// Empty-state messages for the feed variants.
const (
	EmptyFeed       = "No posts yet"
	EmptySavedPosts = "No saved posts yet"
)

// FeedView is a list of post aggregates with an optional open detail.
type FeedView struct {
	*Collection[models.PostDetails]
	api    PostAPI
	viewer Viewer
	empty  string

	mu     sync.Mutex
	detail *models.PostDetails
}

// NewFeedView shows every post, newest first.
func NewFeedView(api PostAPI, viewer Viewer) *FeedView {
	v := &FeedView{api: api, viewer: viewer, empty: EmptyFeed}
	v.Collection = NewCollection("posts", func(ctx context.Context) ([]models.PostDetails, error) {
		return api.GetPosts(ctx, viewer.UserID())
	})
	return v
}

// NewProfileFeedView shows the posts written by authorID.
func NewProfileFeedView(api PostAPI, viewer Viewer, authorID uint) *FeedView {
	v := &FeedView{api: api, viewer: viewer, empty: EmptyFeed}
	v.Collection = NewCollection("user posts", func(ctx context.Context) ([]models.PostDetails, error) {
		return api.GetUserPosts(ctx, authorID, viewer.UserID())
	})
	return v
}

// NewSavedFeedView shows the viewer's bookmarked posts.
func NewSavedFeedView(api PostAPI, viewer Viewer) *FeedView {
	v := &FeedView{api: api, viewer: viewer, empty: EmptySavedPosts}
	v.Collection = NewCollection("saved posts", func(ctx context.Context) ([]models.PostDetails, error) {
		return api.GetSavedPosts(ctx, viewer.UserID())
	})
	return v
}

// EmptyMessage is the text shown when the loaded feed has no posts, or "" otherwise.
func (v *FeedView) EmptyMessage() string {
	if v.Empty() {
		return v.empty
	}
	return ""
}

func byPostID(id uint) func(models.PostDetails) bool {
	return func(p models.PostDetails) bool { return p.ID == id }
}

// CreatePost prepends the created post.
func (v *FeedView) CreatePost(ctx context.Context, in service.PostInput) (*models.PostDetails, error) {
	post, err := v.api.CreatePost(ctx, v.viewer.UserID(), in)
	if err != nil {
		logFailure(ctx, "Error creating post", err)
		return nil, err
	}
	if post != nil {
		v.Prepend(*post)
	}
	return post, nil
}

// ToggleLike flips the viewer's like and adjusts the local like count by one.
func (v *FeedView) ToggleLike(ctx context.Context, postID uint) (bool, error) {
	state, err := v.api.TogglePostLike(ctx, postID, v.viewer.UserID())
	if err != nil {
		logFailure(ctx, "Error toggling like", err, "post_id", postID)
		return false, err
	}
	apply := func(p *models.PostDetails) {
		if p.Liked == state.Liked {
			return
		}
		p.Liked = state.Liked
		if state.Liked {
			p.LikeCount++
		} else if p.LikeCount > 0 {
			p.LikeCount--
		}
	}
	v.Update(byPostID(postID), apply)
	v.updateDetail(postID, apply)
	return state.Liked, nil
}

// ToggleSave flips the viewer's bookmark.
func (v *FeedView) ToggleSave(ctx context.Context, postID uint) (bool, error) {
	state, err := v.api.ToggleSavePost(ctx, postID, v.viewer.UserID())
	if err != nil {
		logFailure(ctx, "Error toggling save", err, "post_id", postID)
		return false, err
	}
	apply := func(p *models.PostDetails) { p.Saved = state.Saved }
	v.Update(byPostID(postID), apply)
	v.updateDetail(postID, apply)
	return state.Saved, nil
}

// AddComment bumps the local comment count and, when the post's detail is open, reopens it.
func (v *FeedView) AddComment(ctx context.Context, postID uint, content string) (*models.CommentView, error) {
	comment, err := v.api.AddComment(ctx, postID, v.viewer.UserID(), content)
	if err != nil {
		logFailure(ctx, "Error adding comment", err, "post_id", postID)
		return nil, err
	}
	v.Update(byPostID(postID), func(p *models.PostDetails) { p.CommentCount++ })

	if open := v.Detail(); open != nil && open.ID == postID {
		v.CloseDetail()
		if _, err := v.OpenDetail(ctx, postID); err != nil {
			logFailure(ctx, "Error refreshing post details", err, "post_id", postID)
		}
	}
	return comment, nil
}

// OpenDetail fetches the full aggregate for postID, comments included.
func (v *FeedView) OpenDetail(ctx context.Context, postID uint) (*models.PostDetails, error) {
	post, err := v.api.GetPostDetails(ctx, postID, v.viewer.UserID())
	if err != nil {
		logFailure(ctx, "Error fetching post details", err, "post_id", postID)
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post", postID)
	}
	v.mu.Lock()
	v.detail = post
	v.mu.Unlock()
	return clonePost(post), nil
}

func (v *FeedView) CloseDetail() {
	v.mu.Lock()
	v.detail = nil
	v.mu.Unlock()
}

// Detail returns a copy of the open detail, or nil.
func (v *FeedView) Detail() *models.PostDetails {
	v.mu.Lock()
	defer v.mu.Unlock()
	return clonePost(v.detail)
}

func (v *FeedView) updateDetail(postID uint, mutate func(*models.PostDetails)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.detail != nil && v.detail.ID == postID {
		mutate(v.detail)
	}
}

func clonePost(p *models.PostDetails) *models.PostDetails {
	if p == nil {
		return nil
	}
	out := p.Clone()
	return &out
}
