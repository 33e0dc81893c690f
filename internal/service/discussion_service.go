package service

import (
	"context"
	"strings"

	"studyhub/internal/models"
	"studyhub/internal/observability"
	"studyhub/internal/repository"
	"studyhub/internal/validation"
)

type DiscussionService struct {
	repo repository.DiscussionRepository
}

// ForumInput is the payload for creating a forum.
type ForumInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Subject     string `json:"subject" validate:"max=100"`
}

// TopicInput is the payload for opening a topic.
type TopicInput struct {
	Title   string `json:"title" validate:"required,max=300"`
	Content string `json:"content" validate:"required,max=50000"`
}

// ReplyInput is the payload for replying to a topic.
type ReplyInput struct {
	Content string `json:"content" validate:"required,max=10000"`
}

func NewDiscussionService(repo repository.DiscussionRepository) *DiscussionService {
	return &DiscussionService{repo: repo}
}

// GetDiscussionForums returns forums newest first with their topic counts.
// If counting fails the forums are still returned with zero counts.
func (s *DiscussionService) GetDiscussionForums(ctx context.Context) (_ []models.ForumView, err error) {
	defer observability.TrackOperation("get_discussion_forums")(&err)
	forums, err := s.repo.ListForums(ctx)
	if err != nil {
		return nil, fail(ctx, "Error fetching discussion forums", err)
	}
	if len(forums) == 0 {
		return forums, nil
	}

	ids := make([]uint, len(forums))
	for i := range forums {
		ids[i] = forums[i].ID
	}
	counts, err := s.repo.CountTopicsByForum(ctx, ids)
	if err != nil {
		warn(ctx, "Error fetching topic counts", err)
	}
	for i := range forums {
		forums[i].TopicCount = counts[forums[i].ID]
	}
	return forums, nil
}

func (s *DiscussionService) CreateForum(ctx context.Context, creatorID uint, in ForumInput) (_ *models.DiscussionForum, err error) {
	defer observability.TrackOperation("create_forum")(&err)
	if err := requireUser(creatorID); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	forum := &models.DiscussionForum{
		CreatedBy:   creatorID,
		Title:       in.Title,
		Description: in.Description,
		Subject:     in.Subject,
	}
	if err := s.repo.CreateForum(ctx, forum); err != nil {
		return nil, fail(ctx, "Error creating discussion forum", err)
	}
	return forum, nil
}

// GetForumTopics returns a forum's topics newest first with reply counts.
func (s *DiscussionService) GetForumTopics(ctx context.Context, forumID uint) (_ []models.TopicView, err error) {
	defer observability.TrackOperation("get_forum_topics")(&err)
	topics, err := s.repo.ListTopics(ctx, forumID)
	if err != nil {
		return nil, fail(ctx, "Error fetching forum topics", err)
	}
	return topics, nil
}

// GetTopicReplies returns a topic's replies oldest first.
func (s *DiscussionService) GetTopicReplies(ctx context.Context, topicID uint) (_ []models.ReplyView, err error) {
	defer observability.TrackOperation("get_topic_replies")(&err)
	replies, err := s.repo.ListReplies(ctx, topicID)
	if err != nil {
		return nil, fail(ctx, "Error fetching topic replies", err)
	}
	return replies, nil
}

func (s *DiscussionService) CreateDiscussionTopic(ctx context.Context, forumID, authorID uint, in TopicInput) (_ *models.TopicView, err error) {
	defer observability.TrackOperation("create_discussion_topic")(&err)
	if err := requireUser(authorID); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	topic := &models.DiscussionTopic{ForumID: forumID, AuthorID: authorID, Title: in.Title, Content: in.Content}
	if err := s.repo.CreateTopic(ctx, topic); err != nil {
		return nil, fail(ctx, "Error creating discussion topic", err)
	}
	view, err := s.repo.GetTopicView(ctx, topic.ID)
	if err != nil {
		return nil, fail(ctx, "Error creating discussion topic", err)
	}
	return view, nil
}

func (s *DiscussionService) CreateTopicReply(ctx context.Context, topicID, authorID uint, in ReplyInput) (_ *models.ReplyView, err error) {
	defer observability.TrackOperation("create_topic_reply")(&err)
	if err := requireUser(authorID); err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	reply := &models.DiscussionReply{TopicID: topicID, AuthorID: authorID, Content: in.Content}
	if err := s.repo.CreateReply(ctx, reply); err != nil {
		return nil, fail(ctx, "Error creating topic reply", err)
	}
	view, err := s.repo.GetReplyView(ctx, reply.ID)
	if err != nil {
		return nil, fail(ctx, "Error creating topic reply", err)
	}
	return view, nil
}
