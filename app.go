package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/gorilla/sessions"
	"github.com/nasermirzaei89/blog/contents"
	"github.com/nasermirzaei89/blog/db/sqlite3"
	"github.com/nasermirzaei89/blog/discuss"
	"github.com/nasermirzaei89/blog/mailer"
	"github.com/nasermirzaei89/blog/random"
	"github.com/nasermirzaei89/blog/search"
	"github.com/nasermirzaei89/blog/server"
	"github.com/nasermirzaei89/blog/share"
	"github.com/nasermirzaei89/blog/web"
	"github.com/nasermirzaei89/env"
)

const defaultEmailPort = 587

type App struct {
	server  *server.Server
	handler *web.Handler
	db      *sql.DB
}

func NewApp(ctx context.Context) (*App, error) {
	db, err := sqlite3.NewDB(ctx, env.GetString("DB_DSN", sqlite3.DefaultDSN))
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	err = sqlite3.MigrateUp(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	postRepo := sqlite3.NewPostRepository(db)
	tagRepo := sqlite3.NewTagRepository(db)
	commentRepo := sqlite3.NewCommentRepository(db)

	searchStrategy, err := search.StrategyByName(env.GetString("SEARCH_STRATEGY", search.StrategyTrigram))
	if err != nil {
		return nil, fmt.Errorf("failed to select search strategy: %w", err)
	}

	sender, err := newMailSender()
	if err != nil {
		return nil, fmt.Errorf("failed to create mail sender: %w", err)
	}

	contentsSvc := contents.NewService(postRepo, tagRepo, searchStrategy)
	discussSvc := discuss.NewService(commentRepo)
	shareSvc := share.NewService(sender, env.GetString("EMAIL_FROM", "blog@localhost"))

	if env.GetBool("SEED_DEMO_POSTS", false) {
		err = seedDemoPosts(ctx, contentsSvc)
		if err != nil {
			return nil, fmt.Errorf("failed to seed demo posts: %w", err)
		}
	}

	srv := newServer()

	sessionKey := env.GetString("SESSION_KEY", random.String(32))
	cookieStore := sessions.NewCookieStore([]byte(sessionKey))
	cookieStore.Options.HttpOnly = true
	cookieStore.Options.Secure = srv.TLS.Enabled
	cookieStore.Options.SameSite = http.SameSiteLaxMode

	httpHandler, err := web.NewHandler(
		contentsSvc,
		discussSvc,
		shareSvc,
		cookieStore,
		web.Config{
			SiteTitle:          env.GetString("SITE_TITLE", web.DefaultSiteTitle),
			SessionName:        env.GetString("SESSION_NAME", "blog-"+random.String(4)),
			CSRFAuthKey:        random.Key(env.GetString("CSRF_AUTH_KEY", "")),
			CSRFTrustedOrigins: env.GetStringSlice("CSRF_TRUSTED_ORIGINS", []string{}),
			Secure:             srv.TLS.Enabled,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP handler: %w", err)
	}

	app := &App{
		server:  srv,
		handler: httpHandler,
		db:      db,
	}

	return app, nil
}

func (app *App) Run(ctx context.Context) error {
	// Handle SIGINT (CTRL+C) gracefully.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	defer func() {
		if app.db != nil {
			err := app.db.Close()
			if err != nil {
				slog.ErrorContext(ctx, "failed to close database", "error", err)
			}
		}
	}()

	err := app.server.Run(ctx, app.handler)
	if err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	return nil
}

func newServer() *server.Server {
	server := &server.Server{
		Port: env.GetString("PORT", server.DefaultPort),
		Host: env.GetString("HOST", ""),
		TLS: server.ServerTLS{
			Enabled: env.GetBool("TLS_ENABLED", false),
			Mode:    env.GetString("TLS_MODE", server.DefaultTLSMode),
			AutoCert: &server.ServerTLSAutoCert{
				CacheDir: env.GetString("TLS_AUTOCERT_CACHE_DIR", "./cert-cache"),
				Domains:  env.GetStringSlice("TLS_AUTOCERT_DOMAINS", []string{}),
				Email:    env.GetString("TLS_AUTOCERT_EMAIL", ""),
				HTTPPort: env.GetString("TLS_AUTOCERT_HTTP_PORT", server.DefaultAutoCertHTTPPort),
			},
			CertFile: env.GetString("TLS_CERT_FILE", ""),
			KeyFile:  env.GetString("TLS_KEY_FILE", ""),
		},
	}

	return server
}

// newMailSender returns an SMTP sender, or a sender that only logs messages
// when EMAIL_HOST is not set.
func newMailSender() (mailer.Sender, error) {
	host := env.GetString("EMAIL_HOST", "")
	if host == "" {
		return mailer.NewLogSender(slog.Default()), nil
	}

	port := defaultEmailPort

	if portStr := env.GetString("EMAIL_PORT", ""); portStr != "" {
		var err error

		port, err = strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse EMAIL_PORT %q: %w", portStr, err)
		}
	}

	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     host,
		Port:     port,
		Username: env.GetString("EMAIL_HOST_USER", ""),
		Password: env.GetString("EMAIL_HOST_PASSWORD", ""),
	}), nil
}

func seedDemoPosts(ctx context.Context, contentsSvc *contents.Service) error {
	timeNow := time.Now().UTC()

	posts := []contents.CreatePostRequest{
		{
			Title:   "Who was Django Reinhardt?",
			Body:    "Django Reinhardt was a **jazz guitarist** and composer.",
			Publish: timeNow.AddDate(0, 0, -3),
			Tags:    []string{"music", "jazz"},
		},
		{
			Title:   "Python Tips",
			Body:    "A few tips to write *cleaner* Python code.",
			Publish: timeNow.AddDate(0, 0, -2),
			Tags:    []string{"python", "programming"},
		},
		{
			Title:   "Go Concurrency Patterns",
			Body:    "Pipelines, fan-out and fan-in with channels.",
			Publish: timeNow.AddDate(0, 0, -1),
			Tags:    []string{"go", "programming"},
		},
	}

	for _, req := range posts {
		req.Status = contents.StatusPublished

		post, err := contentsSvc.CreatePost(ctx, req)
		if err != nil {
			var slugConflictErr contents.PostSlugConflictError
			if errors.As(err, &slugConflictErr) {
				slog.InfoContext(ctx, "demo post already exists", "slug", slugConflictErr.Slug)

				continue
			}

			return fmt.Errorf("failed to create post %q: %w", req.Title, err)
		}

		slog.DebugContext(ctx, "seeded demo post", "url", post.URL())
	}

	return nil
}

func GetLogLevelFromEnv() slog.Level {
	levelStr := env.GetString("LOG_LEVEL", "info")
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("unknown log level, defaulting to info", "level", levelStr)

		return slog.LevelInfo
	}
}

// NewLogger builds the logger selected by LOG_LEVEL and LOG_FORMAT.
func NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: GetLogLevelFromEnv()}

	if env.GetString("LOG_FORMAT", "text") == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
