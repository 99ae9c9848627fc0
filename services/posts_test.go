package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"yatube/db"
	"yatube/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService(nil)
	author := createTestUser(t, "author")
	group := createTestGroup(t, "test_group")

	post, err := ps.CreatePost(ctx, author, PostInput{Text: "  Test post  ", GroupID: &group.ID})
	require.NoError(t, err)
	assert.Equal(t, "Test post", post.Text)
	assert.Equal(t, author.ID, post.AuthorID)
	assert.False(t, post.PubDate.IsZero())

	loaded, err := ps.GetPost(ctx, "author", post.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Test post", loaded.Text)
	require.NotNil(t, loaded.Group)
	assert.Equal(t, "test_group", loaded.Group.Slug)
	assert.Equal(t, "author", loaded.Author.Username)
}

func TestCreatePostValidation(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService(nil)
	author := createTestUser(t, "author")

	_, err := ps.CreatePost(ctx, author, PostInput{Text: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "text")

	missing := int64(404)
	_, err = ps.CreatePost(ctx, author, PostInput{Text: "text", GroupID: &missing})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "group")

	_, err = ps.CreatePost(ctx, nil, PostInput{Text: "text"})
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	count, err := ps.CountPosts(ctx, author.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListPostsNewestFirstAndPaginated(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService(nil)
	author := createTestUser(t, "author")
	for i := 0; i < 13; i++ {
		createTestPost(t, author, nil, fmt.Sprintf("post %d", i))
	}

	page, err := ps.ListPosts(ctx, AllPosts(), nil, 1)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 10)
	assert.Equal(t, 2, page.NumPages)
	assert.Equal(t, int64(13), page.TotalCount)
	assert.Equal(t, "post 12", page.Posts[0].Text)

	last, err := ps.ListPosts(ctx, AllPosts(), nil, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, last.Number)
	require.Len(t, last.Posts, 3)
	assert.Equal(t, "post 0", last.Posts[2].Text)
}

func TestListPostsFilters(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService(nil)
	author := createTestUser(t, "author")
	other := createTestUser(t, "other")
	reader := createTestUser(t, "reader")
	group := createTestGroup(t, "test_group")

	createTestPost(t, author, group, "in group")
	createTestPost(t, author, nil, "no group")
	createTestPost(t, other, nil, "other author")
	require.NoError(t, db.GetWriteDB(ctx).Create(&models.Follow{UserID: reader.ID, AuthorID: other.ID}).Error)

	page, err := ps.ListPosts(ctx, ByGroup("test_group"), nil, 1)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "in group", page.Posts[0].Text)
	assert.Equal(t, group.ID, page.Group.ID)

	page, err = ps.ListPosts(ctx, ByAuthor("author"), nil, 1)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, "author", page.Author.Username)

	page, err = ps.FollowingFeed(ctx, reader, 1)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "other author", page.Posts[0].Text)

	page, err = ps.FollowingFeed(ctx, author, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Equal(t, 1, page.NumPages)

	_, err = ps.FollowingFeed(ctx, nil, 1)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	_, err = ps.ListPosts(ctx, ByGroup("missing"), nil, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ps.ListPosts(ctx, ByAuthor("missing"), nil, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostLikedAnnotation(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService(nil)
	author := createTestUser(t, "author")
	reader := createTestUser(t, "reader")
	post := createTestPost(t, author, nil, "liked post")
	createTestPost(t, author, nil, "plain post")

	_, err := NewLikeService().Like(ctx, reader, "author", post.ID)
	require.NoError(t, err)

	page, err := ps.ListPosts(ctx, AllPosts(), reader, 1)
	require.NoError(t, err)
	liked := map[string]bool{}
	for _, p := range page.Posts {
		liked[p.Text] = p.Liked
	}
	assert.True(t, liked["liked post"])
	assert.False(t, liked["plain post"])

	anon, err := ps.GetPost(ctx, "author", post.ID, nil)
	require.NoError(t, err)
	assert.False(t, anon.Liked)
	assert.Equal(t, int64(1), anon.LikesCount)
}

func TestGetPostWrongAuthor(t *testing.T) {
	setupTestDB(t)
	ps := NewPostService(nil)
	author := createTestUser(t, "author")
	createTestUser(t, "other")
	post := createTestPost(t, author, nil, "text")

	_, err := ps.GetPost(context.Background(), "other", post.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ps.GetPost(context.Background(), "author", post.ID+100, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditPost(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService(nil)
	author := createTestUser(t, "author")
	stranger := createTestUser(t, "stranger")
	group := createTestGroup(t, "test_group")
	post := createTestPost(t, author, group, "original")
	require.NoError(t, db.GetWriteDB(ctx).Model(post).Update("image", "posts/a.png").Error)

	_, outcome, err := ps.EditPost(ctx, stranger, "author", post.ID, PostInput{Text: "hacked"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeForbidden, outcome)

	edited, outcome, err := ps.EditPost(ctx, author, "author", post.ID, PostInput{Text: "edited"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	assert.Equal(t, "edited", edited.Text)
	assert.Nil(t, edited.GroupID)
	assert.Equal(t, "posts/a.png", edited.Image)

	edited, _, err = ps.EditPost(ctx, author, "author", post.ID, PostInput{Text: "edited", ClearImage: true})
	require.NoError(t, err)
	assert.Empty(t, edited.Image)

	loaded, err := ps.GetPost(ctx, "author", post.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "edited", loaded.Text)
	assert.Equal(t, post.PubDate.Unix(), loaded.PubDate.Unix())
	assert.Empty(t, loaded.Image)

	_, _, err = ps.EditPost(ctx, author, "author", post.ID, PostInput{Text: ""})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestDeletePostCascades(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ps := NewPostService(nil)
	author := createTestUser(t, "author")
	reader := createTestUser(t, "reader")
	post := createTestPost(t, author, nil, "to delete")

	_, err := NewCommentService().AddComment(ctx, reader, post.ID, "comment")
	require.NoError(t, err)
	_, err = NewLikeService().Like(ctx, reader, "author", post.ID)
	require.NoError(t, err)

	outcome, err := ps.DeletePost(ctx, reader, "author", post.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeForbidden, outcome)

	outcome, err = ps.DeletePost(ctx, author, "author", post.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	var comments, likes int64
	require.NoError(t, db.GetReadOnlyDB(ctx).Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, db.GetReadOnlyDB(ctx).Model(&models.Like{}).Count(&likes).Error)
	assert.Zero(t, comments)
	assert.Zero(t, likes)

	_, err = ps.DeletePost(ctx, author, "author", post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
