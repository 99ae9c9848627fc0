package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	broken   bool
	closed   bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

type recordingPublisher struct {
	events []PostEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event PostEvent) error {
	p.events = append(p.events, event)
	return nil
}

func TestWSConnManagerDropsBrokenConnections(t *testing.T) {
	hub := NewWSConnManager()
	good := &fakeConn{}
	bad := &fakeConn{broken: true}
	hub.Add(1, good)
	hub.Add(1, bad)
	require.Equal(t, 2, hub.Count(1))

	assert.Equal(t, 1, hub.Send(1, []byte("hello")))
	assert.True(t, bad.closed)
	assert.Equal(t, 1, hub.Count(1))
	assert.Equal(t, 0, hub.Send(2, []byte("nobody")))

	hub.Remove(1, good)
	assert.Zero(t, hub.Count(1))
}

func TestPostCreatedReachesFollowersDirectly(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, "author")
	reader := createTestUser(t, "reader")
	stranger := createTestUser(t, "stranger")
	follows := NewFollowService()
	_, err := follows.Follow(ctx, reader, "author")
	require.NoError(t, err)

	hub := NewWSConnManager()
	readerConn, strangerConn := &fakeConn{}, &fakeConn{}
	hub.Add(reader.ID, readerConn)
	hub.Add(stranger.ID, strangerConn)

	ps := NewPostService(NewFeedNotifier(follows, nil, hub))
	post, err := ps.CreatePost(ctx, author, PostInput{Text: "a fresh post for followers"})
	require.NoError(t, err)

	require.Len(t, readerConn.messages, 1)
	assert.Empty(t, strangerConn.messages)

	var event PostEvent
	require.NoError(t, json.Unmarshal(readerConn.messages[0], &event))
	assert.Equal(t, EventPostCreated, event.Event)
	assert.Equal(t, post.ID, event.PostID)
	assert.Equal(t, "a fresh post for followers", event.Text)
	assert.Equal(t, fmt.Sprintf("/author/%d/", post.ID), event.URL)
}

func TestPostCreatedUsesPublisher(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, "author")
	reader := createTestUser(t, "reader")
	follows := NewFollowService()
	_, err := follows.Follow(ctx, reader, "author")
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	ps := NewPostService(NewFeedNotifier(follows, publisher, NewWSConnManager()))
	_, err = ps.CreatePost(ctx, author, PostInput{Text: "text"})
	require.NoError(t, err)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, reader.ID, publisher.events[0].RecipientID)
	assert.Equal(t, fmt.Sprintf("user.%d", reader.ID), RoutingKey(reader.ID))
}
