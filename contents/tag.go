package contents

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

type Tag struct {
	ID   string
	Name string
	Slug string
}

type TagRepository interface {
	Insert(ctx context.Context, tag *Tag) (err error)
	FindBySlug(ctx context.Context, slug string) (tag *Tag, err error)
	ListByPosts(ctx context.Context, postIDs ...string) (tagsByPost map[string][]*Tag, err error)
}

type TagNotFoundError struct {
	Slug string
}

func (err TagNotFoundError) Error() string {
	return fmt.Sprintf("tag with slug %q not found", err.Slug)
}

// Slugify lower-cases s and joins its letter and digit runs with hyphens.
func Slugify(s string) string {
	var sb strings.Builder

	pendingHyphen := false

	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if pendingHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
			}

			pendingHyphen = false

			sb.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}

	return sb.String()
}
