package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
	"yatube/models"
)

const EventPostCreated = "post_created"

// PostEvent - уведомление подписчику о новом посте автора
type PostEvent struct {
	Event       string    `json:"event"`
	RecipientID int64     `json:"user_id"`
	PostID      int64     `json:"post_id"`
	AuthorID    int64     `json:"author_id"`
	Author      string    `json:"author"`
	Text        string    `json:"text"`
	URL         string    `json:"url"`
	PubDate     time.Time `json:"pub_date"`
}

// EventPublisher отправляет события во внешнюю шину (RabbitMQ)
type EventPublisher interface {
	Publish(ctx context.Context, event PostEvent) error
}

// FeedNotifier рассылает подписчикам автора события о новых постах.
// Без publisher события сразу уходят в локальный hub.
type FeedNotifier struct {
	follows   *FollowService
	publisher EventPublisher
	hub       *WSConnManager
}

func NewFeedNotifier(follows *FollowService, publisher EventPublisher, hub *WSConnManager) *FeedNotifier {
	return &FeedNotifier{follows: follows, publisher: publisher, hub: hub}
}

func NewPostEvent(recipientID int64, author models.User, post models.Post) PostEvent {
	return PostEvent{
		Event:       EventPostCreated,
		RecipientID: recipientID,
		PostID:      post.ID,
		AuthorID:    author.ID,
		Author:      author.Username,
		Text:        post.Text,
		URL:         fmt.Sprintf("/%s/%d/", author.Username, post.ID),
		PubDate:     post.PubDate,
	}
}

// PostCreated отправляет событие каждому подписчику автора
func (n *FeedNotifier) PostCreated(ctx context.Context, author models.User, post models.Post) {
	followerIDs, err := n.follows.FollowerIDs(ctx, author.ID)
	if err != nil {
		log.Printf("ERROR: Failed to get followers of %s: %v", author.Username, err)
		return
	}
	for _, followerID := range followerIDs {
		event := NewPostEvent(followerID, author, post)
		if n.publisher != nil {
			if err := n.publisher.Publish(ctx, event); err != nil {
				log.Printf("ERROR: Failed to publish post event for user %d: %v", followerID, err)
			}
			continue
		}
		n.Deliver(event)
	}
	debugf("Post %d announced to %d followers", post.ID, len(followerIDs))
}

// Deliver отдает событие открытым соединениям получателя
func (n *FeedNotifier) Deliver(event PostEvent) int {
	if n.hub == nil {
		return 0
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ERROR: Failed to marshal post event: %v", err)
		return 0
	}
	return n.hub.Send(event.RecipientID, data)
}
