package repository

import (
	"context"

	"studyhub/internal/models"

	"gorm.io/gorm"
)

// DiscussionRepository defines the interface for forums, topics and replies
type DiscussionRepository interface {
	CreateForum(ctx context.Context, forum *models.DiscussionForum) error
	// ListForums returns forums with their creator, newest first. Topic counts are left at zero.
	ListForums(ctx context.Context) ([]models.ForumView, error)
	// CountTopicsByForum returns topic counts keyed by forum id.
	CountTopicsByForum(ctx context.Context, forumIDs []uint) (map[uint]int, error)
	// ListTopics returns a forum's topics with reply counts, newest first.
	ListTopics(ctx context.Context, forumID uint) ([]models.TopicView, error)
	// ListReplies returns a topic's replies, oldest first.
	ListReplies(ctx context.Context, topicID uint) ([]models.ReplyView, error)
	CreateTopic(ctx context.Context, topic *models.DiscussionTopic) error
	CreateReply(ctx context.Context, reply *models.DiscussionReply) error
	GetTopicView(ctx context.Context, topicID uint) (*models.TopicView, error)
	GetReplyView(ctx context.Context, replyID uint) (*models.ReplyView, error)
}

type discussionRepository struct {
	db *gorm.DB
}

// NewDiscussionRepository creates a new discussion repository
func NewDiscussionRepository(db *gorm.DB) DiscussionRepository {
	return &discussionRepository{db: db}
}

func (r *discussionRepository) CreateForum(ctx context.Context, forum *models.DiscussionForum) error {
	return r.db.WithContext(ctx).Omit("Creator").Create(forum).Error
}

func (r *discussionRepository) ListForums(ctx context.Context) ([]models.ForumView, error) {
	forums := []models.ForumView{}
	err := r.db.WithContext(ctx).
		Table("discussion_forums").
		Select("discussion_forums.id, discussion_forums.title, discussion_forums.description, " +
			"discussion_forums.subject, discussion_forums.created_at, discussion_forums.created_by, " +
			"COALESCE(profiles.full_name, '" + models.UnknownUser + "') AS created_by_name").
		Joins("LEFT JOIN profiles ON profiles.id = discussion_forums.created_by").
		Order("discussion_forums.created_at DESC, discussion_forums.id DESC").
		Scan(&forums).Error
	if err != nil {
		return nil, err
	}
	return forums, nil
}

func (r *discussionRepository) CountTopicsByForum(ctx context.Context, forumIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(forumIDs))
	if len(forumIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ForumID uint
		Count   int
	}
	err := r.db.WithContext(ctx).
		Model(&models.DiscussionTopic{}).
		Select("forum_id, COUNT(*) AS count").
		Where("forum_id IN ?", forumIDs).
		Group("forum_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ForumID] = row.Count
	}
	return counts, nil
}

func (r *discussionRepository) topicQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("discussion_topics").
		Select("discussion_topics.id, discussion_topics.forum_id, discussion_topics.title, " +
			"discussion_topics.content, discussion_topics.created_at, discussion_topics.author_id, " +
			authorColumns("author", models.UnknownUser) + ", " +
			"(SELECT COUNT(*) FROM discussion_replies WHERE discussion_replies.topic_id = discussion_topics.id) AS reply_count").
		Joins("LEFT JOIN profiles ON profiles.id = discussion_topics.author_id")
}

func (r *discussionRepository) ListTopics(ctx context.Context, forumID uint) ([]models.TopicView, error) {
	topics := []models.TopicView{}
	err := r.topicQuery(ctx).
		Where("discussion_topics.forum_id = ?", forumID).
		Order("discussion_topics.created_at DESC, discussion_topics.id DESC").
		Scan(&topics).Error
	if err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *discussionRepository) GetTopicView(ctx context.Context, topicID uint) (*models.TopicView, error) {
	var topics []models.TopicView
	if err := r.topicQuery(ctx).Where("discussion_topics.id = ?", topicID).Scan(&topics).Error; err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return nil, models.NewNotFoundError("Topic", topicID)
	}
	return &topics[0], nil
}

func (r *discussionRepository) replyQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("discussion_replies").
		Select("discussion_replies.id, discussion_replies.topic_id, discussion_replies.content, " +
			"discussion_replies.created_at, discussion_replies.author_id, " +
			authorColumns("author", models.UnknownUser)).
		Joins("LEFT JOIN profiles ON profiles.id = discussion_replies.author_id")
}

func (r *discussionRepository) ListReplies(ctx context.Context, topicID uint) ([]models.ReplyView, error) {
	replies := []models.ReplyView{}
	err := r.replyQuery(ctx).
		Where("discussion_replies.topic_id = ?", topicID).
		Order("discussion_replies.created_at ASC, discussion_replies.id ASC").
		Scan(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

func (r *discussionRepository) GetReplyView(ctx context.Context, replyID uint) (*models.ReplyView, error) {
	var replies []models.ReplyView
	if err := r.replyQuery(ctx).Where("discussion_replies.id = ?", replyID).Scan(&replies).Error; err != nil {
		return nil, err
	}
	if len(replies) == 0 {
		return nil, models.NewNotFoundError("Reply", replyID)
	}
	return &replies[0], nil
}

func (r *discussionRepository) CreateTopic(ctx context.Context, topic *models.DiscussionTopic) error {
	return r.db.WithContext(ctx).Omit("Author").Create(topic).Error
}

func (r *discussionRepository) CreateReply(ctx context.Context, reply *models.DiscussionReply) error {
	return r.db.WithContext(ctx).Omit("Author").Create(reply).Error
}
