package services

import (
	"context"
	"testing"
	"yatube/db"
	"yatube/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeIsIdempotent(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ls := NewLikeService()
	author := createTestUser(t, "author")
	reader := createTestUser(t, "reader")
	post := createTestPost(t, author, nil, "text")

	outcome, err := ls.Like(ctx, reader, "author", post.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	outcome, err = ls.Like(ctx, reader, "author", post.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)

	var count int64
	require.NoError(t, db.GetReadOnlyDB(ctx).Model(&models.Like{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	outcome, err = ls.Unlike(ctx, reader, "author", post.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	outcome, err = ls.Unlike(ctx, reader, "author", post.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
}

func TestLikeErrors(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ls := NewLikeService()
	author := createTestUser(t, "author")
	createTestUser(t, "other")
	post := createTestPost(t, author, nil, "text")

	_, err := ls.Like(ctx, nil, "author", post.ID)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
	_, err = ls.Like(ctx, author, "other", post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ls.Unlike(ctx, author, "author", post.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)
}
