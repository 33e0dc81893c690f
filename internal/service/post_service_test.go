package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"studyhub/internal/models"
	"studyhub/internal/repository"
	"studyhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type postRepoStub struct {
	repository.PostRepository
	createFn  func(context.Context, *models.Post) error
	addTagsFn func(context.Context, uint, []string) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	if s.createFn != nil {
		return s.createFn(ctx, post)
	}
	return s.PostRepository.Create(ctx, post)
}

func (s *postRepoStub) AddTags(ctx context.Context, postID uint, tags []string) error {
	if s.addTagsFn != nil {
		return s.addTagsFn(ctx, postID, tags)
	}
	return s.PostRepository.AddTags(ctx, postID, tags)
}

type notifierStub struct {
	mu   sync.Mutex
	sent []NotifyInput
	err  error
}

func (n *notifierStub) Notify(_ context.Context, in NotifyInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, in)
	return n.err
}

func (n *notifierStub) inputs() []NotifyInput {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]NotifyInput(nil), n.sent...)
}

type postFixture struct {
	db       *gorm.DB
	svc      *PostService
	posts    *postRepoStub
	notifier *notifierStub
	alice    *models.Profile
	bob      *models.Profile
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &postFixture{
		db:       db,
		posts:    &postRepoStub{PostRepository: repository.NewPostRepository(db)},
		notifier: &notifierStub{},
		alice:    testutil.CreateProfile(t, db, "alice", "Alice Liddell"),
		bob:      testutil.CreateProfile(t, db, "bob", "Bob Builder"),
	}
	f.svc = NewPostService(f.posts, repository.NewCommentRepository(db), repository.NewUserRepository(db), f.notifier)
	return f
}

func TestPostService_CreatePost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, f.alice.ID, PostInput{
		Title:   "  Linear algebra notes ",
		Content: "Eigenvalues explained",
		Tags:    []string{"math", "Math", " ", "linear-algebra"},
		Attachments: []AttachmentInput{
			{Name: "notes.pdf", Type: models.AttachmentPDF, URL: "https://files.example.edu/notes.pdf"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, post)

	assert.Equal(t, "Linear algebra notes", post.Title)
	assert.Equal(t, "Alice Liddell", post.AuthorName)
	assert.Equal(t, []string{"math", "Math", "linear-algebra"}, post.Tags)
	require.Len(t, post.Attachments, 1)
	assert.Equal(t, models.AttachmentPDF, post.Attachments[0].Type)
	assert.Zero(t, post.LikeCount)
	assert.Empty(t, post.Comments)
}

func TestPostService_CreatePost_TagFailureIsNotFatal(t *testing.T) {
	f := newPostFixture(t)
	f.posts.addTagsFn = func(context.Context, uint, []string) error { return errors.New("tags table locked") }

	post, err := f.svc.CreatePost(context.Background(), f.alice.ID, PostInput{
		Title:   "Untagged",
		Content: "body",
		Tags:    []string{"lost"},
	})
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Empty(t, post.Tags)
}

func TestPostService_CreatePost_BaseInsertFailure(t *testing.T) {
	f := newPostFixture(t)
	f.posts.createFn = func(context.Context, *models.Post) error { return errors.New("connection reset") }

	post, err := f.svc.CreatePost(context.Background(), f.alice.ID, PostInput{Title: "t", Content: "c"})
	assert.Nil(t, post)
	assert.True(t, models.HasCode(err, models.CodeRemoteFailure))
}

func TestPostService_CreatePostAtomic(t *testing.T) {
	f := newPostFixture(t)

	post, err := f.svc.CreatePostAtomic(context.Background(), f.bob.ID, PostInput{
		Title:   "Atomic",
		Content: "all or nothing",
		Tags:    []string{"db"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"db"}, post.Tags)
	assert.Equal(t, f.bob.ID, post.AuthorID)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		user  uint
		input PostInput
		code  string
	}{
		{"anonymous", 0, PostInput{Title: "t", Content: "c"}, models.CodeNotAuthenticated},
		{"blank title", f.alice.ID, PostInput{Title: "   ", Content: "c"}, models.CodeValidation},
		{"blank content", f.alice.ID, PostInput{Title: "t", Content: ""}, models.CodeValidation},
		{"bad attachment", f.alice.ID, PostInput{
			Title: "t", Content: "c",
			Attachments: []AttachmentInput{{Name: "x.exe", Type: "binary", URL: "https://x"}},
		}, models.CodeValidation},
		{"attachment without url", f.alice.ID, PostInput{
			Title: "t", Content: "c",
			Attachments: []AttachmentInput{{Name: "a.png", Type: models.AttachmentImage}},
		}, models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := f.svc.CreatePost(ctx, tt.user, tt.input)
			assert.Nil(t, post)
			assert.Equal(t, tt.code, models.ErrorCode(err))
		})
	}
}

func TestPostService_GetPostDetails_Missing(t *testing.T) {
	f := newPostFixture(t)

	post, err := f.svc.GetPostDetails(context.Background(), 4242, f.alice.ID)
	assert.NoError(t, err)
	assert.Nil(t, post)
}

func TestPostService_TogglePostLike(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, f.alice.ID, "Likeable", time.Minute)

	state, err := f.svc.TogglePostLike(ctx, post.ID, f.bob.ID)
	require.NoError(t, err)
	assert.True(t, state.Liked)

	details, err := f.svc.GetPostDetails(ctx, post.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, details.LikeCount)
	assert.True(t, details.Liked)

	state, err = f.svc.TogglePostLike(ctx, post.ID, f.bob.ID)
	require.NoError(t, err)
	assert.False(t, state.Liked)

	details, err = f.svc.GetPostDetails(ctx, post.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Zero(t, details.LikeCount)
	assert.False(t, details.Liked)

	sent := f.notifier.inputs()
	require.Len(t, sent, 1, "only the like, not the unlike, notifies")
	assert.Equal(t, f.alice.ID, sent[0].UserID)
	assert.Equal(t, models.NotificationLike, sent[0].Type)
	assert.Contains(t, sent[0].Content, "Bob Builder")
}

func TestPostService_TogglePostLike_OwnPostDoesNotNotify(t *testing.T) {
	f := newPostFixture(t)
	post := testutil.CreatePost(t, f.db, f.alice.ID, "Mine", time.Minute)

	_, err := f.svc.TogglePostLike(context.Background(), post.ID, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, f.notifier.inputs())
}

func TestPostService_TogglePostLike_NotificationFailureIgnored(t *testing.T) {
	f := newPostFixture(t)
	f.notifier.err = errors.New("redis down")
	post := testutil.CreatePost(t, f.db, f.alice.ID, "Popular", time.Minute)

	state, err := f.svc.TogglePostLike(context.Background(), post.ID, f.bob.ID)
	require.NoError(t, err)
	assert.True(t, state.Liked)
}

func TestPostService_TogglePostLike_MissingPost(t *testing.T) {
	f := newPostFixture(t)

	state, err := f.svc.TogglePostLike(context.Background(), 999, f.bob.ID)
	assert.Nil(t, state)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPostService_ToggleSaveAndSavedPosts(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	older := testutil.CreatePost(t, f.db, f.alice.ID, "Older", time.Hour)
	newer := testutil.CreatePost(t, f.db, f.alice.ID, "Newer", time.Minute)

	saved, err := f.svc.GetSavedPosts(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Empty(t, saved)

	for _, id := range []uint{older.ID, newer.ID} {
		state, err := f.svc.ToggleSavePost(ctx, id, f.bob.ID)
		require.NoError(t, err)
		assert.True(t, state.Saved)
	}

	saved, err = f.svc.GetSavedPosts(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "Newer", saved[0].Title)
	assert.True(t, saved[0].Saved)

	state, err := f.svc.ToggleSavePost(ctx, older.ID, f.bob.ID)
	require.NoError(t, err)
	assert.False(t, state.Saved)

	saved, err = f.svc.GetSavedPosts(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestPostService_GetSavedPosts_Anonymous(t *testing.T) {
	f := newPostFixture(t)

	saved, err := f.svc.GetSavedPosts(context.Background(), 0)
	assert.True(t, models.HasCode(err, models.CodeNotAuthenticated))
	assert.NotNil(t, saved)
	assert.Empty(t, saved)
}

func TestPostService_AddComment(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, f.alice.ID, "Discuss", time.Minute)

	before, err := f.svc.GetPostDetails(ctx, post.ID, f.bob.ID)
	require.NoError(t, err)

	comment, err := f.svc.AddComment(ctx, post.ID, f.bob.ID, "  Great write-up ")
	require.NoError(t, err)
	assert.Equal(t, "Great write-up", comment.Content)
	assert.Equal(t, "Bob Builder", comment.AuthorName)
	assert.Zero(t, comment.Likes)

	after, err := f.svc.GetPostDetails(ctx, post.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, before.CommentCount+1, after.CommentCount)
	require.Len(t, after.Comments, 1)
	assert.Equal(t, comment.ID, after.Comments[0].ID)

	sent := f.notifier.inputs()
	require.Len(t, sent, 1)
	assert.Equal(t, models.NotificationComment, sent[0].Type)
	assert.Equal(t, post.ID, *sent[0].RelatedID)
}

func TestPostService_AddComment_Errors(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddComment(ctx, 1, 0, "hi")
	assert.True(t, models.HasCode(err, models.CodeNotAuthenticated))

	_, err = f.svc.AddComment(ctx, 1, f.bob.ID, "   ")
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = f.svc.AddComment(ctx, 31337, f.bob.ID, "hello?")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPostService_GetPostsAndUserPosts(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	testutil.CreatePost(t, f.db, f.alice.ID, "First", 2*time.Hour)
	testutil.CreatePost(t, f.db, f.bob.ID, "Second", time.Hour)
	testutil.CreatePost(t, f.db, f.alice.ID, "Third", time.Minute)

	feed, err := f.svc.GetPosts(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, []string{"Third", "Second", "First"}, []string{feed[0].Title, feed[1].Title, feed[2].Title})

	mine, err := f.svc.GetUserPosts(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Third", mine[0].Title)
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"Go", "go", "sql", "SQL"}, normalizeTags([]string{" Go ", "go", "", "sql", "SQL"}))
	assert.Equal(t, []string{"b", "a", "b"}, normalizeTags([]string{"b", "\t", "a", "b "}))
	assert.Empty(t, normalizeTags(nil))
}
