package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nasermirzaei89/blog/contents"
	"github.com/nasermirzaei89/blog/discuss"
	"github.com/nasermirzaei89/blog/forms"
	"github.com/nasermirzaei89/blog/metrics"
	"github.com/nasermirzaei89/blog/share"
)

func (h *Handler) HandlePostListPage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tagSlug := r.PathValue("tag")

		list, err := h.contentsSvc.ListPosts(r.Context(), contents.ListPostsRequest{
			TagSlug: tagSlug,
			Page:    r.URL.Query().Get("page"),
		})
		if err != nil {
			var tagNotFoundErr contents.TagNotFoundError
			if errors.As(err, &tagNotFoundErr) {
				http.Error(w, "Tag not found", http.StatusNotFound)

				return
			}

			slog.ErrorContext(r.Context(), "failed to list posts", "tag", tagSlug, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)

			return
		}

		data := map[string]any{
			"Posts": list.Posts,
			"Tag":   list.Tag,
			"Page":  list.Page,
		}

		if list.Tag != nil {
			data["SiteTitle"] = "Posts tagged with " + list.Tag.Name
		}

		h.renderTemplate(w, r, "post-list-page.gohtml", data)
	})
}

func (h *Handler) HandlePostDetailPage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		year, yearErr := parseDatePart(r.PathValue("year"))
		month, monthErr := parseDatePart(r.PathValue("month"))
		day, dayErr := parseDatePart(r.PathValue("day"))

		if err := errors.Join(yearErr, monthErr, dayErr); err != nil {
			http.Error(w, "Post not found", http.StatusNotFound)

			return
		}

		slug := r.PathValue("slug")

		post, err := h.contentsSvc.GetPost(r.Context(), year, month, day, slug)
		if err != nil {
			var postNotFoundErr contents.PostNotFoundError
			if errors.As(err, &postNotFoundErr) {
				http.Error(w, "Post not found", http.StatusNotFound)

				return
			}

			slog.ErrorContext(r.Context(), "failed to get post", "slug", slug, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)

			return
		}

		comments, err := h.discussSvc.ListActiveComments(r.Context(), post.ID)
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to list comments", "postId", post.ID, "error", err)
			http.Error(w, "Failed to list comments", http.StatusInternalServerError)

			return
		}

		similarPosts, err := h.contentsSvc.SimilarPosts(r.Context(), post)
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to list similar posts", "postId", post.ID, "error", err)
			http.Error(w, "Failed to list similar posts", http.StatusInternalServerError)

			return
		}

		data := map[string]any{
			"Post":         post,
			"Comments":     comments,
			"SimilarPosts": similarPosts,
			"Form":         h.rememberedCommentForm(r),
			"SiteTitle":    post.Title,
		}

		h.renderTemplate(w, r, "post-detail-page.gohtml", data)
	})
}

func (h *Handler) HandlePostSharePage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		post, ok := h.publishedPost(w, r)
		if !ok {
			return
		}

		data := map[string]any{
			"Post":      post,
			"Form":      &forms.EmailPostForm{},
			"Sent":      false,
			"SiteTitle": "Share " + post.Title,
		}

		h.renderTemplate(w, r, "post-share-page.gohtml", data)
	})
}

func (h *Handler) HandlePostShare() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		post, ok := h.publishedPost(w, r)
		if !ok {
			return
		}

		err := r.ParseForm()
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)

			return
		}

		form := forms.NewEmailPostForm(r.PostForm)

		valid, err := form.Validate()
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to validate share form", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)

			return
		}

		if valid {
			err = h.shareSvc.SharePost(r.Context(), share.SharePostRequest{
				PostTitle: post.Title,
				PostURL:   absoluteURL(r, post.URL()),
				Name:      form.Name,
				Email:     form.Email,
				To:        form.To,
				Comments:  form.Comments,
			})
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to share post", "postId", post.ID, "error", err)
				http.Error(w, "Failed to send email", http.StatusInternalServerError)

				return
			}

			metrics.PostShared()
		}

		data := map[string]any{
			"Post":      post,
			"Form":      form,
			"Sent":      valid,
			"SiteTitle": "Share " + post.Title,
		}

		h.renderTemplate(w, r, "post-share-page.gohtml", data)
	})
}

func (h *Handler) HandlePostComment() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		post, ok := h.publishedPost(w, r)
		if !ok {
			return
		}

		err := r.ParseForm()
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)

			return
		}

		form := forms.NewCommentForm(r.PostForm)

		valid, err := form.Validate()
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to validate comment form", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)

			return
		}

		var comment *discuss.Comment

		if valid {
			comment, err = h.discussSvc.CreateComment(r.Context(), discuss.CreateCommentRequest{
				PostID: post.ID,
				Name:   form.Name,
				Email:  form.Email,
				Body:   form.Body,
			})
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to create comment", "postId", post.ID, "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)

				return
			}

			metrics.CommentCreated()

			err = h.rememberCommenter(w, r, form.Name, form.Email)
			if err != nil {
				slog.WarnContext(r.Context(), "failed to remember commenter", "error", err)
			}
		}

		data := map[string]any{
			"Post":      post,
			"Form":      form,
			"Comment":   comment,
			"SiteTitle": post.Title,
		}

		h.renderTemplate(w, r, "post-comment-page.gohtml", data)
	})
}

func (h *Handler) HandlePostSearchPage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"Form":      &forms.SearchForm{},
			"Query":     "",
			"Results":   []*contents.SearchResult(nil),
			"SiteTitle": "Search",
		}

		if r.URL.Query().Has("query") {
			form := forms.NewSearchForm(r.URL.Query())

			valid, err := form.Validate()
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to validate search form", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)

				return
			}

			data["Form"] = form

			if valid {
				results, err := h.contentsSvc.SearchPosts(r.Context(), form.Query)
				if err != nil {
					slog.ErrorContext(r.Context(), "failed to search posts", "query", form.Query, "error", err)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)

					return
				}

				metrics.Searched(h.contentsSvc.SearchStrategy().Name)

				data["Query"] = form.Query
				data["Results"] = results
			}
		}

		h.renderTemplate(w, r, "post-search-page.gohtml", data)
	})
}

// InvalidDatePartError reports a date path segment that is not a plain
// decimal number.
type InvalidDatePartError struct {
	Value string
}

func (err InvalidDatePartError) Error() string {
	return fmt.Sprintf("invalid date part '%s'", err.Value)
}

// parseDatePart accepts ASCII digits only, so signs and spaces that
// strconv.Atoi tolerates do not alias a canonical URL.
func parseDatePart(value string) (int, error) {
	if value == "" {
		return 0, InvalidDatePartError{Value: value}
	}

	for _, c := range value {
		if c < '0' || c > '9' {
			return 0, InvalidDatePartError{Value: value}
		}
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse date part: %w", err)
	}

	return n, nil
}

// publishedPost resolves the postId path value to a published post. It
// writes the error response and returns false when that fails.
func (h *Handler) publishedPost(w http.ResponseWriter, r *http.Request) (*contents.Post, bool) {
	postID := r.PathValue("postId")

	post, err := h.contentsSvc.GetPublishedPost(r.Context(), postID)
	if err != nil {
		var postNotFoundErr contents.PostNotFoundError
		if errors.As(err, &postNotFoundErr) {
			http.Error(w, "Post not found", http.StatusNotFound)

			return nil, false
		}

		slog.ErrorContext(r.Context(), "failed to get post", "postId", postID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return nil, false
	}

	return post, true
}
