package services

import (
	"context"
	"testing"
	"yatube/db"
	"yatube/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
)

// setupTestDB поднимает чистую in-memory базу и подменяет глобальный ORM
func setupTestDB(t *testing.T) {
	t.Helper()
	database, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))
	db.ORM = database
	PageSize = DefaultPageSize
	t.Cleanup(func() { require.NoError(t, db.Close()) })
}

func createTestUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Email:     gofakeit.Email(),
	}
	require.NoError(t, db.GetWriteDB(context.Background()).Create(user).Error)
	return user
}

func createTestGroup(t *testing.T, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: gofakeit.Company(), Slug: slug, Description: gofakeit.Sentence(5)}
	require.NoError(t, db.GetWriteDB(context.Background()).Create(group).Error)
	return group
}

func createTestPost(t *testing.T, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	input := PostInput{Text: text}
	if group != nil {
		input.GroupID = &group.ID
	}
	post, err := NewPostService(nil).CreatePost(context.Background(), author, input)
	require.NoError(t, err)
	return post
}
