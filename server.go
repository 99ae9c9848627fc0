package main

import (
	"context"
	"errors"
	"flag"
	"html/template"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	"yatube/api/handlers"
	"yatube/api/middleware"
	"yatube/api/routes"
	"yatube/cache"
	"yatube/config"
	"yatube/db"
	"yatube/media"
	"yatube/services"
	"yatube/telemetry"
	"yatube/web"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func newPageCache(ctx context.Context, conf *config.ConfigSchema) (*cache.PageCache, error) {
	var store cache.Store
	switch conf.Cache.Backend {
	case "redis":
		client, err := services.NewRedisClient(ctx, conf)
		if err != nil {
			return nil, err
		}
		store = cache.NewRedisStore(client, conf.Cache.TTL)
	default:
		store = cache.NewMemoryStore(conf.Cache.Size, conf.Cache.TTL)
	}
	return cache.NewPageCache(store, conf.Cache.KeyPrefix,
		cache.WithVaryByQuery(conf.Cache.VaryByQuery),
		cache.WithObserver(middleware.ObservePageCache),
	), nil
}

func newImages(ctx context.Context, conf *config.ConfigSchema) (*media.Images, error) {
	if conf.Media.Endpoint == "" {
		log.Println("Media storage is not configured, image uploads are disabled")
		return media.NewImages(nil, conf.Media.PublicURL), nil
	}
	storage, err := media.New(media.Config{
		Endpoint:  conf.Media.Endpoint,
		AccessKey: conf.Media.AccessKey,
		SecretKey: conf.Media.SecretKey,
		UseSSL:    conf.Media.UseSSL,
		Bucket:    conf.Media.Bucket,
	})
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return media.NewImages(storage, conf.Media.PublicURL), nil
}

func newNotifier(ctx context.Context, conf *config.ConfigSchema, follows *services.FollowService, hub *services.WSConnManager) (*services.FeedNotifier, func()) {
	if conf.RabbitMQ.URL == "" {
		return services.NewFeedNotifier(follows, nil, hub), func() {}
	}
	publisher, err := services.NewRabbitPublisher(conf.RabbitMQ.URL)
	if err != nil {
		log.Printf("ERROR: %v, feed events go directly to websockets", err)
		return services.NewFeedNotifier(follows, nil, hub), func() {}
	}
	notifier := services.NewFeedNotifier(follows, publisher, hub)
	if err := publisher.Consume(ctx, notifier); err != nil {
		log.Printf("ERROR: Failed to start feed consumer: %v", err)
	}
	return notifier, func() { _ = publisher.Close() }
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	conf := config.AppConfig
	services.Debug = conf.Debug()
	services.PageSize = conf.Backend.PageSize
	if !conf.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Println("Starting server...")

	if err = db.ConnectDB(); err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, conf)
	if err != nil {
		log.Printf("ERROR: %v", err)
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(c)
	}()

	pageCache, err := newPageCache(ctx, conf)
	if err != nil {
		panic("Failed to init page cache: " + err.Error())
	}
	images, err := newImages(ctx, conf)
	if err != nil {
		panic("Failed to init media storage: " + err.Error())
	}

	hub := services.NewWSConnManager()
	follows := services.NewFollowService()
	notifier, closeNotifier := newNotifier(ctx, conf, follows, hub)
	defer closeNotifier()

	users := services.NewUserService()
	sessionStore := middleware.NewCookieStore(conf)
	h := handlers.New(handlers.Deps{
		Posts:    services.NewPostService(notifier),
		Comments: services.NewCommentService(),
		Follows:  follows,
		Likes:    services.NewLikeService(),
		Groups:   services.NewGroupService(),
		Users:    users,
		Images:   images,
		Sessions: sessionStore,
		Hub:      hub,
	})

	renderer, err := web.NewRenderer(template.FuncMap{"imageURL": images.URL})
	if err != nil {
		panic(err)
	}
	router := routes.NewEngine(renderer, h, pageCache, middleware.SessionAuth(sessionStore, users))

	srv := &http.Server{
		Addr:              conf.ListenAddr(),
		Handler:           otelhttp.NewHandler(router, "yatube"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(c); err != nil {
		log.Printf("ERROR: Server shutdown: %v", err)
	}
}
