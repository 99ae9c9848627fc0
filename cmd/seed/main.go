// Команда seed наполняет базу случайными пользователями, группами, постами,
// комментариями, подписками и лайками для ручной проверки ленты и кэша.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"sync"
	"yatube/config"
	"yatube/db"
	"yatube/models"
	"yatube/services"

	"github.com/brianvoe/gofakeit/v7"
)

const seedPassword = "yatube-seed"

type seeder struct {
	users    *services.UserService
	groups   *services.GroupService
	posts    *services.PostService
	comments *services.CommentService
	follows  *services.FollowService
	likes    *services.LikeService
}

func (s *seeder) createUsers(ctx context.Context, total int) []*models.User {
	users := make([]*models.User, 0, total)
	for len(users) < total {
		name := gofakeit.FirstName()
		user, err := s.users.Register(ctx, services.SignupInput{
			Username:        fmt.Sprintf("%s_%s", strings.ToLower(name), gofakeit.Numerify("####")),
			FirstName:       name,
			LastName:        gofakeit.LastName(),
			Email:           gofakeit.Email(),
			Password:        seedPassword,
			PasswordConfirm: seedPassword,
		})
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			log.Printf("DEBUG: Skipping user: %v", err)
			continue
		}
		if err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		users = append(users, user)
	}
	return users
}

func (s *seeder) createGroups(ctx context.Context, owner *models.User, total int) []models.Group {
	groups := make([]models.Group, 0, total)
	for i := 0; i < total; i++ {
		title := gofakeit.Company()
		group, err := s.groups.CreateGroup(ctx, owner, services.GroupInput{
			Title:       title,
			Slug:        fmt.Sprintf("group-%d-%s", i+1, gofakeit.Numerify("###")),
			Description: gofakeit.Sentence(8),
		})
		if err != nil {
			log.Printf("ERROR: Failed to create group %q: %v", title, err)
			continue
		}
		groups = append(groups, *group)
	}
	return groups
}

// createPosts пишет посты параллельно, по одной горутине на автора с ограничением workers
func (s *seeder) createPosts(ctx context.Context, authors []*models.User, groups []models.Group, perUser, workers int) []*models.Post {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		posts []*models.Post
	)
	sem := make(chan struct{}, workers)
	for _, author := range authors {
		wg.Add(1)
		sem <- struct{}{}
		go func(author *models.User) {
			defer wg.Done()
			defer func() { <-sem }()
			for i := 0; i < perUser; i++ {
				sentences := make([]string, gofakeit.Number(1, 4))
				for j := range sentences {
					sentences[j] = gofakeit.Sentence(12)
				}
				input := services.PostInput{Text: strings.Join(sentences, " ")}
				if len(groups) > 0 && gofakeit.Bool() {
					input.GroupID = &groups[gofakeit.Number(0, len(groups)-1)].ID
				}
				post, err := s.posts.CreatePost(ctx, author, input)
				if err != nil {
					log.Printf("ERROR: Failed to create post for %s: %v", author.Username, err)
					return
				}
				mu.Lock()
				posts = append(posts, post)
				mu.Unlock()
			}
		}(author)
	}
	wg.Wait()
	return posts
}

func (s *seeder) createInteractions(ctx context.Context, users []*models.User, posts []*models.Post, follows, comments, likes int) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}
	randomUser := func() *models.User { return users[gofakeit.Number(0, len(users)-1)] }
	randomPost := func() *models.Post { return posts[gofakeit.Number(0, len(posts)-1)] }

	for i := 0; i < follows; i++ {
		if _, err := s.follows.Follow(ctx, randomUser(), randomUser().Username); err != nil {
			return fmt.Errorf("failed to follow: %w", err)
		}
	}
	for i := 0; i < comments; i++ {
		if _, err := s.comments.AddComment(ctx, randomUser(), randomPost().ID, gofakeit.Sentence(10)); err != nil {
			return fmt.Errorf("failed to comment: %w", err)
		}
	}
	for i := 0; i < likes; i++ {
		post := randomPost()
		if _, err := s.likes.Like(ctx, randomUser(), post.Author.Username, post.ID); err != nil {
			return fmt.Errorf("failed to like: %w", err)
		}
	}
	return nil
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	usersTotal := flag.Int("users", 20, "number of users")
	groupsTotal := flag.Int("groups", 3, "number of groups")
	postsPerUser := flag.Int("posts", 15, "posts per user")
	followsTotal := flag.Int("follows", 60, "number of follow attempts")
	commentsTotal := flag.Int("comments", 100, "number of comments")
	likesTotal := flag.Int("likes", 200, "number of like attempts")
	workers := flag.Int("workers", 4, "concurrent post writers")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := db.ConnectDB(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	follows := services.NewFollowService()
	s := &seeder{
		users:    services.NewUserService(),
		groups:   services.NewGroupService(),
		posts:    services.NewPostService(nil),
		comments: services.NewCommentService(),
		follows:  follows,
		likes:    services.NewLikeService(),
	}

	users := s.createUsers(ctx, *usersTotal)
	if len(users) == 0 {
		log.Println("Nothing to seed")
		return
	}
	groups := s.createGroups(ctx, users[0], *groupsTotal)
	posts := s.createPosts(ctx, users, groups, *postsPerUser, *workers)
	if err := s.createInteractions(ctx, users, posts, *followsTotal, *commentsTotal, *likesTotal); err != nil {
		log.Fatalf("Failed to seed interactions: %v", err)
	}
	log.Printf("Seeded %d users, %d groups, %d posts (password %q)", len(users), len(groups), len(posts), seedPassword)
}
