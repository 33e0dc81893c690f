package service

import (
	"context"
	"fmt"
	"strings"

	"studyhub/internal/featureflags"
	"studyhub/internal/models"
	"studyhub/internal/observability"
	"studyhub/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000
	maxCommentLen = 10000
	maxTags       = 20
)

type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	notifier Notifier
}

// AttachmentInput is a file already uploaded to storage.
type AttachmentInput struct {
	Name string                `json:"name"`
	Type models.AttachmentType `json:"type"`
	URL  string                `json:"url"`
}

// PostInput is the payload for creating a post.
type PostInput struct {
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Tags        []string          `json:"tags"`
	Attachments []AttachmentInput `json:"attachments"`
}

// LikeState is the result of TogglePostLike.
type LikeState struct {
	Liked bool `json:"liked"`
}

// SaveState is the result of ToggleSavePost.
type SaveState struct {
	Saved bool `json:"saved"`
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	notifier Notifier,
) *PostService {
	return &PostService{posts: posts, comments: comments, users: users, notifier: notifier}
}

// GetPosts returns the feed, newest first.
func (s *PostService) GetPosts(ctx context.Context, viewerID uint) (_ []models.PostDetails, err error) {
	defer observability.TrackOperation("get_posts")(&err)
	posts, err := s.posts.GetPosts(ctx, viewerID)
	if err != nil {
		return nil, fail(ctx, "Error fetching posts", err)
	}
	return posts, nil
}

// GetPostDetails returns the post aggregate with its comments, or nil when the post does not exist.
func (s *PostService) GetPostDetails(ctx context.Context, postID, viewerID uint) (_ *models.PostDetails, err error) {
	defer observability.TrackOperation("get_post_details")(&err)
	post, err := s.posts.GetPostDetails(ctx, postID, viewerID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, nil
		}
		return nil, fail(ctx, "Error fetching post details", err)
	}
	return post, nil
}

// GetUserPosts returns the posts written by authorID, newest first.
func (s *PostService) GetUserPosts(ctx context.Context, authorID, viewerID uint) (_ []models.PostDetails, err error) {
	defer observability.TrackOperation("get_user_posts")(&err)
	posts, err := s.posts.GetPostsByAuthor(ctx, authorID, viewerID)
	if err != nil {
		return nil, fail(ctx, "Error fetching user posts", err)
	}
	return posts, nil
}

// GetSavedPosts returns the posts userID bookmarked.
func (s *PostService) GetSavedPosts(ctx context.Context, userID uint) (_ []models.PostDetails, err error) {
	defer observability.TrackOperation("get_saved_posts")(&err)
	if err := requireUser(userID); err != nil {
		return []models.PostDetails{}, err
	}
	ids, err := s.posts.SavedPostIDs(ctx, userID)
	if err != nil {
		return nil, fail(ctx, "Error fetching saved posts", err)
	}
	if len(ids) == 0 {
		return []models.PostDetails{}, nil
	}
	posts, err := s.posts.GetPostsByIDs(ctx, ids, userID)
	if err != nil {
		return nil, fail(ctx, "Error fetching saved post details", err)
	}
	return posts, nil
}

// CreatePost inserts the post, then its tags, then its attachments. Only the first insert is fatal:
// tag or attachment failures are logged and the post is returned without them.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, in PostInput) (_ *models.PostDetails, err error) {
	defer observability.TrackOperation("create_post")(&err)
	ctx, op := observability.StartOperation(ctx, "service.CreatePost", attribute.Int("post.tags", len(in.Tags)))
	defer op.Finish(&err)

	post, tags, attachments, err := s.preparePost(authorID, in)
	if err != nil {
		return nil, err
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fail(ctx, "Error creating post", err)
	}
	op.Annotate(attribute.Int64("post.id", int64(post.ID)))

	if err := s.posts.AddTags(ctx, post.ID, tags); err != nil {
		warn(ctx, "Error adding tags", err, "post_id", post.ID)
	}
	if err := s.posts.AddAttachments(ctx, post.ID, attachments); err != nil {
		warn(ctx, "Error adding attachments", err, "post_id", post.ID)
	}

	return s.GetPostDetails(ctx, post.ID, authorID)
}

// CreatePostAtomic stores the post with its tags and attachments in one transaction.
func (s *PostService) CreatePostAtomic(ctx context.Context, authorID uint, in PostInput) (_ *models.PostDetails, err error) {
	defer observability.TrackOperation("create_post_atomic")(&err)
	ctx, op := observability.StartOperation(ctx, "service.CreatePostAtomic", attribute.Int("post.tags", len(in.Tags)))
	defer op.Finish(&err)

	post, tags, attachments, err := s.preparePost(authorID, in)
	if err != nil {
		return nil, err
	}
	if err := s.posts.CreateWithRelations(ctx, post, tags, attachments); err != nil {
		return nil, fail(ctx, "Error creating post", err)
	}
	return s.GetPostDetails(ctx, post.ID, authorID)
}

func (s *PostService) preparePost(authorID uint, in PostInput) (*models.Post, []string, []models.PostAttachment, error) {
	if err := requireUser(authorID); err != nil {
		return nil, nil, nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, nil, nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return nil, nil, nil, models.NewValidationError(fmt.Sprintf("Title too long (max %d characters)", maxTitleLen))
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, nil, nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, nil, nil, models.NewValidationError(fmt.Sprintf("Content too long (max %d characters)", maxContentLen))
	}

	tags := normalizeTags(in.Tags)
	if len(tags) > maxTags {
		return nil, nil, nil, models.NewValidationError(fmt.Sprintf("Too many tags (max %d)", maxTags))
	}

	attachments := make([]models.PostAttachment, 0, len(in.Attachments))
	for _, a := range in.Attachments {
		if !a.Type.Valid() {
			return nil, nil, nil, models.NewValidationError(fmt.Sprintf("Invalid attachment type %q", a.Type))
		}
		if a.URL == "" {
			return nil, nil, nil, models.NewValidationError("Attachment url is required")
		}
		attachments = append(attachments, models.PostAttachment{Type: a.Type, Name: a.Name, URL: a.URL})
	}

	post := &models.Post{Title: title, Content: in.Content, AuthorID: authorID}
	return post, tags, attachments, nil
}

// normalizeTags trims each tag and drops empty ones. Order, spelling and repeats are kept as given.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// TogglePostLike flips userID's like on postID and returns the new state.
func (s *PostService) TogglePostLike(ctx context.Context, postID, userID uint) (_ *LikeState, err error) {
	defer observability.TrackOperation("toggle_post_like")(&err)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fail(ctx, "Error checking like status", err)
	}

	liked, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, fail(ctx, "Error toggling like", err)
	}

	if liked && post.AuthorID != userID {
		s.notify(ctx, NotifyInput{
			UserID:    post.AuthorID,
			Type:      models.NotificationLike,
			Content:   fmt.Sprintf("%s liked your post %q", s.displayName(ctx, userID), post.Title),
			RelatedID: &post.ID,
			Flag:      featureflags.LikeNotifications,
		})
	}
	return &LikeState{Liked: liked}, nil
}

// ToggleSavePost flips userID's bookmark on postID and returns the new state.
func (s *PostService) ToggleSavePost(ctx context.Context, postID, userID uint) (_ *SaveState, err error) {
	defer observability.TrackOperation("toggle_save_post")(&err)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, fail(ctx, "Error checking save status", err)
	}
	saved, err := s.posts.ToggleSave(ctx, postID, userID)
	if err != nil {
		return nil, fail(ctx, "Error toggling save", err)
	}
	return &SaveState{Saved: saved}, nil
}

// AddComment appends a comment to postID and returns it with the author's display fields.
func (s *PostService) AddComment(ctx context.Context, postID, authorID uint, content string) (_ *models.CommentView, err error) {
	defer observability.TrackOperation("add_comment")(&err)
	if err := requireUser(authorID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", maxCommentLen))
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fail(ctx, "Error adding comment", err)
	}

	comment := &models.Comment{PostID: postID, AuthorID: authorID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fail(ctx, "Error adding comment", err)
	}
	stored, err := s.comments.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, fail(ctx, "Error loading comment", err)
	}
	view := models.NewCommentView(stored)

	if post.AuthorID != authorID {
		s.notify(ctx, NotifyInput{
			UserID:    post.AuthorID,
			Type:      models.NotificationComment,
			Content:   fmt.Sprintf("%s commented on your post %q", view.AuthorName, post.Title),
			RelatedID: &post.ID,
			Flag:      featureflags.CommentNotifications,
		})
	}
	return &view, nil
}

func (s *PostService) notify(ctx context.Context, in NotifyInput) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, in); err != nil {
		warn(ctx, "Error sending notification", err, "user_id", in.UserID, "type", in.Type)
	}
}

func (s *PostService) displayName(ctx context.Context, userID uint) string {
	if s.users == nil {
		return "Someone"
	}
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil || profile.FullName == "" {
		return "Someone"
	}
	return profile.FullName
}
