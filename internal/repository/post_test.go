package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"studyhub/internal/models"
	"studyhub/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := &models.Post{Title: "Test Post", Content: "Content", AuthorID: 3}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), post)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ToggleLike_SQL(t *testing.T) {
	tests := []struct {
		name         string
		mockBehavior func(mock sqlmock.Sqlmock)
		expectLiked  bool
	}{
		{
			name: "existing like is removed",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE post_id = $1 AND user_id = $2`)).
					WithArgs(10, 2).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			expectLiked: false,
		},
		{
			name: "missing like is inserted ignoring conflicts",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE post_id = $1 AND user_id = $2`)).
					WithArgs(10, 2).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "likes"`) + `.*` + regexp.QuoteMeta(`ON CONFLICT DO NOTHING`)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
				mock.ExpectCommit()
			},
			expectLiked: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPostRepository(db)
			tt.mockBehavior(mock)

			liked, err := repo.ToggleLike(context.Background(), 10, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.expectLiked, liked)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_GetPosts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateProfile(t, db, "alice", "Alice Smith")
	bob := testutil.CreateProfile(t, db, "bob", "Bob Jones")

	older := testutil.CreatePost(t, db, alice.ID, "Older", 2*time.Hour)
	newer := testutil.CreatePost(t, db, bob.ID, "Newer", time.Hour)

	require.NoError(t, repo.AddTags(ctx, older.ID, []string{"math", "calculus"}))
	require.NoError(t, repo.AddAttachments(ctx, older.ID, []models.PostAttachment{
		{Type: models.AttachmentPDF, Name: "notes.pdf", URL: "https://cdn.example.edu/notes.pdf"},
	}))
	_, err := repo.ToggleLike(ctx, older.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Comment{PostID: older.ID, AuthorID: bob.ID, Content: "hi"}).Error)

	posts, err := repo.GetPosts(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, "Bob Jones", posts[0].AuthorName)
	assert.Empty(t, posts[0].Tags)
	assert.NotNil(t, posts[0].Tags)
	assert.NotNil(t, posts[0].Attachments)

	got := posts[1]
	assert.Equal(t, older.ID, got.ID)
	assert.Equal(t, "Alice Smith", got.AuthorName)
	assert.Equal(t, "Computer Science", got.AuthorDepartment)
	assert.Equal(t, []string{"math", "calculus"}, got.Tags)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, models.AttachmentPDF, got.Attachments[0].Type)
	assert.Equal(t, 1, got.LikeCount)
	assert.Equal(t, 1, got.CommentCount)
	assert.True(t, got.Liked)
	assert.False(t, got.Saved)

	anon, err := repo.GetPosts(ctx, 0)
	require.NoError(t, err)
	assert.False(t, anon[1].Liked)
}

func TestPostRepository_GetPostDetails(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateProfile(t, db, "alice", "Alice Smith")
	post := testutil.CreatePost(t, db, alice.ID, "Post", time.Hour)

	first := &models.Comment{PostID: post.ID, AuthorID: alice.ID, Content: "first", CreatedAt: time.Now().Add(-time.Minute)}
	second := &models.Comment{PostID: post.ID, AuthorID: 999, Content: "second"}
	require.NoError(t, db.Omit("Author").Create(first).Error)
	require.NoError(t, db.Omit("Author").Create(second).Error)

	details, err := repo.GetPostDetails(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, details.CommentCount)
	require.Len(t, details.Comments, 2)
	assert.Equal(t, "first", details.Comments[0].Content)
	assert.Equal(t, "Alice Smith", details.Comments[0].AuthorName)
	assert.Equal(t, models.UnknownUser, details.Comments[1].AuthorName)

	_, err = repo.GetPostDetails(ctx, 12345, alice.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPostRepository_UnknownAuthor(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)

	testutil.CreatePost(t, db, 4242, "Orphan", time.Minute)

	posts, err := repo.GetPosts(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.UnknownUser, posts[0].AuthorName)
}

func TestPostRepository_ToggleIsIdempotentOverTwoCalls(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateProfile(t, db, "alice", "Alice Smith")
	post := testutil.CreatePost(t, db, alice.ID, "Post", time.Hour)

	saved, err := repo.ToggleSave(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	ids, err := repo.SavedPostIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{post.ID}, ids)

	saved, err = repo.ToggleSave(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, saved)

	isSaved, err := repo.IsSaved(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, isSaved)

	ids, err = repo.SavedPostIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPostRepository_CreateWithRelations(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateProfile(t, db, "alice", "Alice Smith")
	post := &models.Post{Title: "Atomic", Content: "body", AuthorID: alice.ID}

	err := repo.CreateWithRelations(ctx, post, []string{"go"}, []models.PostAttachment{
		{Type: models.AttachmentImage, Name: "a.png", URL: "https://cdn.example.edu/a.png"},
	})
	require.NoError(t, err)

	details, err := repo.GetPostDetails(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, details.Tags)
	assert.Len(t, details.Attachments, 1)
}

func TestPostRepository_GetPostsByIDsAndAuthor(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateProfile(t, db, "alice", "Alice Smith")
	bob := testutil.CreateProfile(t, db, "bob", "Bob Jones")
	a := testutil.CreatePost(t, db, alice.ID, "A", time.Hour)
	testutil.CreatePost(t, db, bob.ID, "B", time.Minute)

	none, err := repo.GetPostsByIDs(ctx, nil, alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	byID, err := repo.GetPostsByIDs(ctx, []uint{a.ID, a.ID}, alice.ID)
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "A", byID[0].Title)

	byAuthor, err := repo.GetPostsByAuthor(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "B", byAuthor[0].Title)
}
