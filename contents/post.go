package contents

import (
	"context"
	"fmt"
	"time"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
)

type Post struct {
	ID        string
	Title     string
	Slug      string
	Body      string
	Publish   time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	Tags []*Tag
}

// URL returns the canonical path of the post detail page.
func (post *Post) URL() string {
	return fmt.Sprintf(
		"/blog/%d/%d/%d/%s/",
		post.Publish.Year(),
		post.Publish.Month(),
		post.Publish.Day(),
		post.Slug,
	)
}

func (post *Post) IsPublished() bool {
	return post.Status == StatusPublished
}

type SimilarPost struct {
	Post

	SameTags int
}

// PostRepository stores posts. Insert and Update fail with
// PostSlugConflictError when another post uses the same slug on the same
// publish day. Insert links the post to post.Tags in the same write.
type PostRepository interface {
	Insert(ctx context.Context, post *Post) (err error)
	Update(ctx context.Context, post *Post) (err error)
	Find(ctx context.Context, params *FindPostParams) (post *Post, err error)
	List(ctx context.Context, params *ListPostsParams) (posts []*Post, err error)
	Count(ctx context.Context, params *ListPostsParams) (count int, err error)
	ListSimilar(ctx context.Context, params *ListSimilarPostsParams) (posts []*SimilarPost, err error)
}

// FindPostParams narrows a lookup down to a single post. Zero fields are ignored.
// PublishFrom is inclusive and PublishTo is exclusive.
type FindPostParams struct {
	ID          string
	Slug        string
	Status      Status
	PublishFrom time.Time
	PublishTo   time.Time
}

type ListPostsParams struct {
	Status Status
	TagID  string
	Limit  uint64
	Offset uint64
}

type ListSimilarPostsParams struct {
	PostID string
	Status Status
	Limit  uint64
}

type PostNotFoundError struct {
	ID   string
	Slug string
}

func (err PostNotFoundError) Error() string {
	if err.ID == "" {
		return fmt.Sprintf("post with slug %q not found", err.Slug)
	}

	return fmt.Sprintf("post with id %q not found", err.ID)
}

// PublishDay returns the UTC day t falls on as the range [from, to).
func PublishDay(t time.Time) (from, to time.Time) {
	t = t.UTC()
	from = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	return from, from.AddDate(0, 0, 1)
}

// PostSlugConflictError reports a slug already taken on a publish day.
type PostSlugConflictError struct {
	Slug string
	Day  time.Time
}

func (err PostSlugConflictError) Error() string {
	return fmt.Sprintf("post with slug %q already published on %s", err.Slug, err.Day.Format(time.DateOnly))
}
