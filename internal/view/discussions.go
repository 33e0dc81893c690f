package view

import (
	"context"
	"sync"

	"studyhub/internal/models"
	"studyhub/internal/service"
)

// DiscussionAPI is the slice of the discussion façade the discussions page needs.
type DiscussionAPI interface {
	GetDiscussionForums(ctx context.Context) ([]models.ForumView, error)
	GetForumTopics(ctx context.Context, forumID uint) ([]models.TopicView, error)
	GetTopicReplies(ctx context.Context, topicID uint) ([]models.ReplyView, error)
	CreateDiscussionTopic(ctx context.Context, forumID, authorID uint, in service.TopicInput) (*models.TopicView, error)
	CreateTopicReply(ctx context.Context, topicID, authorID uint, in service.ReplyInput) (*models.ReplyView, error)
}

const (
	EmptyForums  = "No discussions yet"
	EmptyTopics  = "No topics yet"
	EmptyReplies = "No replies yet"
)

// DiscussionsView drills down forum -> topic -> replies. Opening a forum or topic replaces the
// previously open one.
type DiscussionsView struct {
	Forums *Collection[models.ForumView]

	api    DiscussionAPI
	viewer Viewer

	mu      sync.Mutex
	forumID uint
	topicID uint
	topics  *Collection[models.TopicView]
	replies *Collection[models.ReplyView]
}

func NewDiscussionsView(api DiscussionAPI, viewer Viewer) *DiscussionsView {
	return &DiscussionsView{
		Forums: NewCollection("discussion forums", api.GetDiscussionForums),
		api:    api,
		viewer: viewer,
	}
}

// OpenForum loads forumID's topics and closes any open topic.
func (v *DiscussionsView) OpenForum(ctx context.Context, forumID uint) *Collection[models.TopicView] {
	topics := NewCollection("forum topics", func(ctx context.Context) ([]models.TopicView, error) {
		return v.api.GetForumTopics(ctx, forumID)
	})
	v.mu.Lock()
	v.forumID, v.topics = forumID, topics
	v.topicID, v.replies = 0, nil
	v.mu.Unlock()

	_ = topics.Load(ctx)
	return topics
}

// OpenTopic loads topicID's replies, oldest first.
func (v *DiscussionsView) OpenTopic(ctx context.Context, topicID uint) *Collection[models.ReplyView] {
	replies := NewCollection("topic replies", func(ctx context.Context) ([]models.ReplyView, error) {
		return v.api.GetTopicReplies(ctx, topicID)
	})
	v.mu.Lock()
	v.topicID, v.replies = topicID, replies
	v.mu.Unlock()

	_ = replies.Load(ctx)
	return replies
}

// Topics returns the open forum's topics, or nil.
func (v *DiscussionsView) Topics() *Collection[models.TopicView] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.topics
}

// Replies returns the open topic's replies, or nil.
func (v *DiscussionsView) Replies() *Collection[models.ReplyView] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.replies
}

// CreateTopic prepends the topic to the open forum and bumps the forum's topic count.
func (v *DiscussionsView) CreateTopic(ctx context.Context, forumID uint, in service.TopicInput) (*models.TopicView, error) {
	topic, err := v.api.CreateDiscussionTopic(ctx, forumID, v.viewer.UserID(), in)
	if err != nil {
		logFailure(ctx, "Error creating discussion topic", err, "forum_id", forumID)
		return nil, err
	}
	v.Forums.Update(func(f models.ForumView) bool { return f.ID == forumID }, func(f *models.ForumView) { f.TopicCount++ })

	v.mu.Lock()
	topics := v.topics
	open := v.forumID == forumID
	v.mu.Unlock()
	if open && topics != nil {
		topics.Prepend(*topic)
	}
	return topic, nil
}

// Reply appends the reply to the open topic and bumps the topic's reply count.
func (v *DiscussionsView) Reply(ctx context.Context, topicID uint, in service.ReplyInput) (*models.ReplyView, error) {
	reply, err := v.api.CreateTopicReply(ctx, topicID, v.viewer.UserID(), in)
	if err != nil {
		logFailure(ctx, "Error creating topic reply", err, "topic_id", topicID)
		return nil, err
	}

	v.mu.Lock()
	topics, replies := v.topics, v.replies
	open := v.topicID == topicID
	v.mu.Unlock()
	if topics != nil {
		topics.Update(func(t models.TopicView) bool { return t.ID == topicID }, func(t *models.TopicView) { t.ReplyCount++ })
	}
	if open && replies != nil {
		replies.Append(*reply)
	}
	return reply, nil
}

func (v *DiscussionsView) EmptyMessage() string {
	if v.Forums.Empty() {
		return EmptyForums
	}
	return ""
}
