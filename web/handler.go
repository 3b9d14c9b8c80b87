package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/nasermirzaei89/blog/contents"
	"github.com/nasermirzaei89/blog/discuss"
	"github.com/nasermirzaei89/blog/metrics"
	"github.com/nasermirzaei89/blog/share"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	//go:embed templates/*
	templatesFS embed.FS

	//go:embed static/*
	staticFS embed.FS
)

const (
	DefaultSiteTitle   = "My Blog"
	DefaultSessionName = "blog"

	excerptWords = 30
)

type Config struct {
	SiteTitle   string
	SessionName string

	// CSRF protection is off when CSRFAuthKey is empty.
	CSRFAuthKey        []byte
	CSRFTrustedOrigins []string

	// Secure marks cookies as HTTPS only.
	Secure bool
}

type Handler struct {
	mux         *http.ServeMux
	handler     http.Handler
	tpl         *template.Template
	static      fs.FS
	contentsSvc *contents.Service
	discussSvc  *discuss.Service
	shareSvc    *share.Service
	cookieStore sessions.Store
	sessionName string
	siteTitle   string
	markdown    goldmark.Markdown
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(
	contentsSvc *contents.Service,
	discussSvc *discuss.Service,
	shareSvc *share.Service,
	cookieStore sessions.Store,
	config Config,
) (*Handler, error) {
	h := &Handler{
		mux:         nil,
		handler:     nil,
		tpl:         nil,
		contentsSvc: contentsSvc,
		discussSvc:  discussSvc,
		shareSvc:    shareSvc,
		cookieStore: cookieStore,
		sessionName: config.SessionName,
		siteTitle:   config.SiteTitle,
		markdown:    nil,
	}

	if h.sessionName == "" {
		h.sessionName = DefaultSessionName
	}

	if h.siteTitle == "" {
		h.siteTitle = DefaultSiteTitle
	}

	{
		h.markdown = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM, // tables, strikethrough, task lists
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(), // post bodies are written by the site authors
			),
		)
	}

	{
		tpl, err := template.New("").Funcs(h.funcs()).ParseFS(templatesFS, "templates/*.gohtml")
		if err != nil {
			return nil, fmt.Errorf("failed to parse templates: %w", err)
		}

		h.tpl = tpl
	}

	{
		static, err := fs.Sub(staticFS, "static")
		if err != nil {
			return nil, fmt.Errorf("failed to sub static fs: %w", err)
		}

		h.static = static
	}

	{
		h.mux = &http.ServeMux{}
		h.registerRoutes()

		// innermost, so the matched pattern is visible after the mux returns
		h.handler = metrics.Middleware(h.mux)
	}

	{
		if len(config.CSRFAuthKey) > 0 {
			csrfMiddleware := csrf.Protect(
				config.CSRFAuthKey,
				csrf.TrustedOrigins(config.CSRFTrustedOrigins),
				csrf.Secure(config.Secure),
				csrf.Path("/"),
			)

			h.handler = csrfMiddleware(h.handler)

			if !config.Secure {
				h.handler = plaintextMiddleware(h.handler)
			}
		}

		h.handler = recoverMiddleware(h.handler)
	}

	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.Handle("GET /{$}", http.RedirectHandler("/blog/", http.StatusFound))
	h.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(h.static)))
	h.mux.Handle("GET /metrics", metrics.Handler())

	h.mux.Handle("GET /blog/{$}", h.HandlePostListPage())
	h.mux.Handle("GET /blog/tag/{tag}/{$}", h.HandlePostListPage())
	h.mux.Handle("GET /blog/{year}/{month}/{day}/{slug}/{$}", h.HandlePostDetailPage())
	h.mux.Handle("GET /blog/share/{postId}/{$}", h.HandlePostSharePage())
	h.mux.Handle("POST /blog/share/{postId}/{$}", h.HandlePostShare())
	h.mux.Handle("POST /blog/comment/{postId}/{$}", h.HandlePostComment())
	h.mux.Handle("GET /blog/search/{$}", h.HandlePostSearchPage())
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func(ctx context.Context) {
			if err := recover(); err != nil {
				slog.ErrorContext(
					ctx,
					"recovered from panic",
					"error",
					err,
					"stack",
					string(debug.Stack()),
				)

				http.Error(w, "internal error occurred", http.StatusInternalServerError)
			}
		}(r.Context())

		next.ServeHTTP(w, r)
	})
}

// plaintextMiddleware lets the CSRF origin checks accept plain HTTP requests.
func plaintextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, extraData map[string]any,
) {
	data := map[string]any{
		"CurrentPath":    r.URL.Path,
		"Lang":           "en",
		"Dir":            "ltr",
		"SiteName":       h.siteTitle,
		csrf.TemplateTag: csrf.TemplateField(r),
	}

	maps.Copy(data, extraData)

	data["SiteTitle"] = h.siteTitle

	if extraData["SiteTitle"] != nil {
		data["SiteTitle"] = fmt.Sprintf("%s | %s", extraData["SiteTitle"], h.siteTitle)
	}

	err := h.tpl.ExecuteTemplate(w, name, data)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to render template", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}
}

func (h *Handler) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": func(source string) (template.HTML, error) {
			var buf bytes.Buffer

			err := h.markdown.Convert([]byte(source), &buf)
			if err != nil {
				return "", fmt.Errorf("failed to convert markdown: %w", err)
			}

			//nolint:gosec // post bodies are trusted author content
			return template.HTML(buf.String()), nil
		},
		"excerpt": func(source string) string {
			words := strings.Fields(source)
			if len(words) <= excerptWords {
				return strings.Join(words, " ")
			}

			return strings.Join(words[:excerptWords], " ") + " ..."
		},
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"add": func(a, b int) int {
			return a + b
		},
	}
}

// absoluteURL builds the full URL of path as seen by the client of r.
func absoluteURL(r *http.Request, path string) string {
	scheme := "http"

	switch {
	case r.TLS != nil:
		scheme = "https"
	case r.Header.Get("X-Forwarded-Proto") != "":
		scheme = r.Header.Get("X-Forwarded-Proto")
	}

	u := url.URL{
		Scheme: scheme,
		Host:   r.Host,
		Path:   path,
	}

	return u.String()
}
