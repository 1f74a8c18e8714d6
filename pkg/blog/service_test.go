package blog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ogrenly/platform/pkg/errors"
	"github.com/ogrenly/platform/pkg/filestorage"
)

func setupPostService(t *testing.T) (*PostService, *filestorage.InMemStorage) {
	t.Helper()
	storage := filestorage.NewInMemStorage()
	return NewPostService(NewInMemPostRepository(), storage), storage
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	service, _ := setupPostService(t)

	post, err := service.Create(ctx, CreatePostParams{
		Title:    "Hello",
		Slug:     "hello",
		Lexical:  `{"root":{}}`,
		AuthorID: "author-1",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, post.ID)
	assert.Equal(t, StatusDraft, post.Status)
	assert.Nil(t, post.PublishedAt)
	assert.Equal(t, "author-1", post.AuthorID)
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := setupPostService(t)

	_, err := service.Create(ctx, CreatePostParams{Slug: "no-title"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingRequired))

	_, err = service.Create(ctx, CreatePostParams{Title: "No slug"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingRequired))
}

func TestCreatePostDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	service, _ := setupPostService(t)

	_, err := service.Create(ctx, CreatePostParams{Title: "One", Slug: "shared"})
	require.NoError(t, err)

	_, err = service.Create(ctx, CreatePostParams{Title: "Two", Slug: "shared"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConflict))
}

func TestGetPostNotFound(t *testing.T) {
	ctx := context.Background()
	service, _ := setupPostService(t)

	_, err := service.Get(ctx, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))

	_, err = service.GetBySlug(ctx, "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()
	service, _ := setupPostService(t)

	post, err := service.Create(ctx, CreatePostParams{Title: "Before", Slug: "before"})
	require.NoError(t, err)

	updated, err := service.Update(ctx, UpdatePostParams{
		ID:      post.ID,
		Title:   "After",
		Slug:    "after",
		Lexical: `{"root":{"children":[]}}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, "after", updated.Slug)

	_, err = service.GetBySlug(ctx, "after")
	assert.NoError(t, err)
}

func TestPublishPost(t *testing.T) {
	ctx := context.Background()
	service, _ := setupPostService(t)

	post, err := service.Create(ctx, CreatePostParams{Title: "Draft", Slug: "draft"})
	require.NoError(t, err)

	published, err := service.Publish(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)

	// publishing again keeps the original publication time
	again, err := service.Publish(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, published.PublishedAt, again.PublishedAt)
}

func TestFindPostsByStatus(t *testing.T) {
	ctx := context.Background()
	service, _ := setupPostService(t)

	for _, slug := range []string{"a", "b", "c"} {
		_, err := service.Create(ctx, CreatePostParams{Title: strings.ToUpper(slug), Slug: slug})
		require.NoError(t, err)
	}
	post, err := service.GetBySlug(ctx, "b")
	require.NoError(t, err)
	_, err = service.Publish(ctx, post.ID)
	require.NoError(t, err)

	page, err := service.Find(ctx, PostQuery{Status: StatusPublished, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "b", page.Posts[0].Slug)

	page, err = service.Find(ctx, PostQuery{Status: StatusDraft, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
}

func TestUploadCoverReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	service, storage := setupPostService(t)

	post, err := service.Create(ctx, CreatePostParams{Title: "Covered", Slug: "covered"})
	require.NoError(t, err)

	first := strings.NewReader("first image")
	updated, err := service.UploadCover(ctx, post.ID, "cover.png", "image/png", first, int64(first.Len()))
	require.NoError(t, err)
	assert.NotEmpty(t, updated.Cover)
	assert.Equal(t, 1, storage.Len())

	second := strings.NewReader("second image")
	replaced, err := service.UploadCover(ctx, post.ID, "cover2.png", "image/png", second, int64(second.Len()))
	require.NoError(t, err)
	assert.NotEqual(t, updated.Cover, replaced.Cover)
	assert.Equal(t, 1, storage.Len(), "old cover must be removed")
}

func TestDeletePostRemovesCover(t *testing.T) {
	ctx := context.Background()
	service, storage := setupPostService(t)

	post, err := service.Create(ctx, CreatePostParams{Title: "Gone", Slug: "gone"})
	require.NoError(t, err)
	content := strings.NewReader("image")
	_, err = service.UploadCover(ctx, post.ID, "cover.png", "image/png", content, int64(content.Len()))
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, post.ID))
	_, err = service.Get(ctx, post.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	assert.Equal(t, 0, storage.Len())

	// deleting twice reports not found
	err = service.Delete(ctx, post.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}
