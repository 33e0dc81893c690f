package repository

import (
	"context"

	"studyhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	AddTags(ctx context.Context, postID uint, tags []string) error
	AddAttachments(ctx context.Context, postID uint, attachments []models.PostAttachment) error
	CreateWithRelations(ctx context.Context, post *models.Post, tags []string, attachments []models.PostAttachment) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)

	// GetPosts returns every post aggregate, newest first.
	GetPosts(ctx context.Context, viewerID uint) ([]models.PostDetails, error)
	// GetPostsByIDs is GetPosts restricted to ids.
	GetPostsByIDs(ctx context.Context, ids []uint, viewerID uint) ([]models.PostDetails, error)
	GetPostsByAuthor(ctx context.Context, authorID, viewerID uint) ([]models.PostDetails, error)
	// GetPostDetails returns one aggregate including its comments, oldest first.
	GetPostDetails(ctx context.Context, postID, viewerID uint) (*models.PostDetails, error)

	IsLiked(ctx context.Context, postID, userID uint) (bool, error)
	IsSaved(ctx context.Context, postID, userID uint) (bool, error)
	// ToggleLike flips the (post, user) like and returns the new state.
	ToggleLike(ctx context.Context, postID, userID uint) (bool, error)
	// ToggleSave flips the (post, user) bookmark and returns the new state.
	ToggleSave(ctx context.Context, postID, userID uint) (bool, error)
	SavedPostIDs(ctx context.Context, userID uint) ([]uint, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *postRepository) AddTags(ctx context.Context, postID uint, tags []string) error {
	return addTags(r.db.WithContext(ctx), postID, tags)
}

func (r *postRepository) AddAttachments(ctx context.Context, postID uint, attachments []models.PostAttachment) error {
	return addAttachments(r.db.WithContext(ctx), postID, attachments)
}

func (r *postRepository) CreateWithRelations(ctx context.Context, post *models.Post, tags []string, attachments []models.PostAttachment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		if err := addTags(tx, post.ID, tags); err != nil {
			return err
		}
		return addAttachments(tx, post.ID, attachments)
	})
}

func addTags(db *gorm.DB, postID uint, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	rows := make([]models.PostTag, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, models.PostTag{PostID: postID, Tag: tag})
	}
	return db.Create(&rows).Error
}

func addAttachments(db *gorm.DB, postID uint, attachments []models.PostAttachment) error {
	if len(attachments) == 0 {
		return nil
	}
	rows := make([]models.PostAttachment, len(attachments))
	for i, a := range attachments {
		rows[i] = models.PostAttachment{PostID: postID, Type: a.Type, Name: a.Name, URL: a.URL}
	}
	return db.Create(&rows).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, notFound(err, "Post", id)
	}
	return &post, nil
}

// postDetailsQuery selects the flattened aggregate with counts and the viewer's flags in one query.
func (r *postRepository) postDetailsQuery(ctx context.Context, viewerID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("posts").
		Select("posts.id, posts.title, posts.content, posts.created_at, posts.updated_at, posts.author_id, "+
			authorColumns("author", models.UnknownUser)+", "+
			"COALESCE(profiles.department, '') AS author_department, "+
			"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS like_count, "+
			"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count, "+
			"EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked, "+
			"EXISTS(SELECT 1 FROM saved_posts WHERE saved_posts.post_id = posts.id AND saved_posts.user_id = ?) AS saved",
			viewerID, viewerID).
		Joins("LEFT JOIN profiles ON profiles.id = posts.author_id").
		Order("posts.created_at DESC, posts.id DESC")
}

func (r *postRepository) GetPosts(ctx context.Context, viewerID uint) ([]models.PostDetails, error) {
	return r.scanPosts(ctx, r.postDetailsQuery(ctx, viewerID))
}

func (r *postRepository) GetPostsByIDs(ctx context.Context, ids []uint, viewerID uint) ([]models.PostDetails, error) {
	if len(ids) == 0 {
		return []models.PostDetails{}, nil
	}
	return r.scanPosts(ctx, r.postDetailsQuery(ctx, viewerID).Where("posts.id IN ?", uniqueIDs(ids)))
}

func (r *postRepository) GetPostsByAuthor(ctx context.Context, authorID, viewerID uint) ([]models.PostDetails, error) {
	return r.scanPosts(ctx, r.postDetailsQuery(ctx, viewerID).Where("posts.author_id = ?", authorID))
}

func (r *postRepository) GetPostDetails(ctx context.Context, postID, viewerID uint) (*models.PostDetails, error) {
	posts, err := r.scanPosts(ctx, r.postDetailsQuery(ctx, viewerID).Where("posts.id = ?", postID))
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, models.NewNotFoundError("Post", postID)
	}
	post := posts[0]

	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	post.Comments = make([]models.CommentView, 0, len(comments))
	for i := range comments {
		post.Comments = append(post.Comments, models.NewCommentView(&comments[i]))
	}
	return &post, nil
}

// scanPosts runs q and hydrates tags and attachments for every returned post.
func (r *postRepository) scanPosts(ctx context.Context, q *gorm.DB) ([]models.PostDetails, error) {
	posts := []models.PostDetails{}
	if err := q.Scan(&posts).Error; err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return posts, nil
	}

	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	var tags []models.PostTag
	if err := r.db.WithContext(ctx).Where("post_id IN ?", ids).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	var attachments []models.PostAttachment
	if err := r.db.WithContext(ctx).Where("post_id IN ?", ids).Order("id ASC").Find(&attachments).Error; err != nil {
		return nil, err
	}

	tagsByPost := make(map[uint][]string, len(posts))
	for _, t := range tags {
		tagsByPost[t.PostID] = append(tagsByPost[t.PostID], t.Tag)
	}
	attachmentsByPost := make(map[uint][]models.AttachmentView, len(posts))
	for _, a := range attachments {
		attachmentsByPost[a.PostID] = append(attachmentsByPost[a.PostID], models.AttachmentView{
			ID: a.ID, Name: a.Name, URL: a.URL, Type: a.Type,
		})
	}

	for i := range posts {
		posts[i].Tags = tagsByPost[posts[i].ID]
		if posts[i].Tags == nil {
			posts[i].Tags = []string{}
		}
		posts[i].Attachments = attachmentsByPost[posts[i].ID]
		if posts[i].Attachments == nil {
			posts[i].Attachments = []models.AttachmentView{}
		}
	}
	return posts, nil
}

func (r *postRepository) IsLiked(ctx context.Context, postID, userID uint) (bool, error) {
	return exists(ctx, r.db, &models.Like{}, postID, userID)
}

func (r *postRepository) IsSaved(ctx context.Context, postID, userID uint) (bool, error) {
	return exists(ctx, r.db, &models.SavedPost{}, postID, userID)
}

func exists(ctx context.Context, db *gorm.DB, model any, postID, userID uint) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).
		Model(model).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	return toggle(ctx, r.db, &models.Like{PostID: postID, UserID: userID})
}

func (r *postRepository) ToggleSave(ctx context.Context, postID, userID uint) (bool, error) {
	return toggle(ctx, r.db, &models.SavedPost{PostID: postID, UserID: userID})
}

// toggle deletes the (post, user) row if present, otherwise inserts it, inside one transaction.
// The insert ignores conflicts so two concurrent toggles cannot produce a duplicate pair.
func toggle[T models.Like | models.SavedPost](ctx context.Context, db *gorm.DB, row *T) (bool, error) {
	var postID, userID uint
	switch v := any(row).(type) {
	case *models.Like:
		postID, userID = v.PostID, v.UserID
	case *models.SavedPost:
		postID, userID = v.PostID, v.UserID
	}

	var active bool
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(new(T))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			active = false
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
			return err
		}
		active = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return active, nil
}

func (r *postRepository) SavedPostIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).
		Model(&models.SavedPost{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
