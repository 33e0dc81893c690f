package service

import (
	"context"
	"errors"
	"testing"

	"studyhub/internal/models"
	"studyhub/internal/repository"
	"studyhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discussionRepoStub struct {
	repository.DiscussionRepository
	countTopicsFn func(context.Context, []uint) (map[uint]int, error)
}

func (s *discussionRepoStub) CountTopicsByForum(ctx context.Context, ids []uint) (map[uint]int, error) {
	if s.countTopicsFn != nil {
		return s.countTopicsFn(ctx, ids)
	}
	return s.DiscussionRepository.CountTopicsByForum(ctx, ids)
}

func TestDiscussionService_ForumTopicReplyFlow(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewDiscussionService(repository.NewDiscussionRepository(db))
	ctx := context.Background()
	mod := testutil.CreateProfile(t, db, "moderator", "Mo Derator")
	poster := testutil.CreateProfile(t, db, "poster", "Pat Poster")

	forum, err := svc.CreateForum(ctx, mod.ID, ForumInput{Title: "Exam prep", Subject: "Physics"})
	require.NoError(t, err)

	topic, err := svc.CreateDiscussionTopic(ctx, forum.ID, poster.ID, TopicInput{Title: "Past papers?", Content: "Anyone have 2023?"})
	require.NoError(t, err)
	assert.Equal(t, "Pat Poster", topic.AuthorName)
	assert.Zero(t, topic.ReplyCount)

	first, err := svc.CreateTopicReply(ctx, topic.ID, mod.ID, ReplyInput{Content: "Check the library"})
	require.NoError(t, err)
	second, err := svc.CreateTopicReply(ctx, topic.ID, poster.ID, ReplyInput{Content: "Thanks!"})
	require.NoError(t, err)

	forums, err := svc.GetDiscussionForums(ctx)
	require.NoError(t, err)
	require.Len(t, forums, 1)
	assert.Equal(t, 1, forums[0].TopicCount)
	assert.Equal(t, "Mo Derator", forums[0].CreatedByName)

	topics, err := svc.GetForumTopics(ctx, forum.ID)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, 2, topics[0].ReplyCount)

	replies, err := svc.GetTopicReplies(ctx, topic.ID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, first.ID, replies[0].ID)
	assert.Equal(t, second.ID, replies[1].ID)
}

func TestDiscussionService_TopicCountFailureDefaultsToZero(t *testing.T) {
	db := testutil.NewTestDB(t)
	stub := &discussionRepoStub{DiscussionRepository: repository.NewDiscussionRepository(db)}
	stub.countTopicsFn = func(context.Context, []uint) (map[uint]int, error) {
		return nil, errors.New("count timed out")
	}
	svc := NewDiscussionService(stub)
	ctx := context.Background()
	mod := testutil.CreateProfile(t, db, "moderator", "Mo Derator")

	forum, err := svc.CreateForum(ctx, mod.ID, ForumInput{Title: "General"})
	require.NoError(t, err)
	_, err = svc.CreateDiscussionTopic(ctx, forum.ID, mod.ID, TopicInput{Title: "Hello", Content: "World"})
	require.NoError(t, err)

	forums, err := svc.GetDiscussionForums(ctx)
	require.NoError(t, err)
	require.Len(t, forums, 1)
	assert.Zero(t, forums[0].TopicCount)
}

func TestDiscussionService_WritesRequireUser(t *testing.T) {
	svc := NewDiscussionService(repository.NewDiscussionRepository(testutil.NewTestDB(t)))
	ctx := context.Background()

	_, err := svc.CreateDiscussionTopic(ctx, 1, 0, TopicInput{Title: "t", Content: "c"})
	assert.True(t, models.HasCode(err, models.CodeNotAuthenticated))

	_, err = svc.CreateTopicReply(ctx, 1, 0, ReplyInput{Content: "c"})
	assert.True(t, models.HasCode(err, models.CodeNotAuthenticated))

	_, err = svc.CreateTopicReply(ctx, 1, 5, ReplyInput{Content: "  "})
	assert.True(t, models.HasCode(err, models.CodeValidation))
}
