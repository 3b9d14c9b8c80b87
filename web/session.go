package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nasermirzaei89/blog/forms"
)

const (
	commenterNameKey  = "commenterName"
	commenterEmailKey = "commenterEmail"
)

type SessionValueNotFoundError struct {
	Key string
}

func (err SessionValueNotFoundError) Error() string {
	return fmt.Sprintf("session value for key '%s' not found", err.Key)
}

func (h *Handler) getSessionValue(r *http.Request, key string) (any, error) {
	session, err := h.cookieStore.Get(r, h.sessionName)
	if err != nil {
		return nil, fmt.Errorf("error getting session: %w", err)
	}

	value, ok := session.Values[key]
	if !ok {
		return nil, SessionValueNotFoundError{Key: key}
	}

	return value, nil
}

func (h *Handler) setSessionValues(w http.ResponseWriter, r *http.Request, values map[string]any) error {
	session, err := h.cookieStore.Get(r, h.sessionName)
	if err != nil {
		return fmt.Errorf("error getting session: %w", err)
	}

	for key, value := range values {
		session.Values[key] = value
	}

	err = session.Save(r, w)
	if err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}

	return nil
}

func (h *Handler) rememberCommenter(w http.ResponseWriter, r *http.Request, name, email string) error {
	return h.setSessionValues(w, r, map[string]any{
		commenterNameKey:  name,
		commenterEmailKey: email,
	})
}

// rememberedCommentForm returns an empty comment form prefilled with the
// name and email of the last comment sent from this browser.
func (h *Handler) rememberedCommentForm(r *http.Request) *forms.CommentForm {
	form := &forms.CommentForm{}

	name, err := h.getSessionValue(r, commenterNameKey)
	if err != nil {
		slog.DebugContext(r.Context(), "no remembered commenter", "error", err)

		return form
	}

	email, err := h.getSessionValue(r, commenterEmailKey)
	if err != nil {
		slog.DebugContext(r.Context(), "no remembered commenter", "error", err)

		return form
	}

	form.Name, _ = name.(string)
	form.Email, _ = email.(string)

	return form
}
