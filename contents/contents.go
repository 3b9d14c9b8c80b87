package contents

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nasermirzaei89/blog/search"
)

const SimilarPostsLimit = 4

type Service struct {
	postRepo       PostRepository
	tagRepo        TagRepository
	searchStrategy search.Strategy
	pageSize       int
}

func NewService(postRepo PostRepository, tagRepo TagRepository, searchStrategy search.Strategy) *Service {
	return &Service{
		postRepo:       postRepo,
		tagRepo:        tagRepo,
		searchStrategy: searchStrategy,
		pageSize:       DefaultPageSize,
	}
}

func (svc *Service) SearchStrategy() search.Strategy {
	return svc.searchStrategy
}

type CreatePostRequest struct {
	Title   string
	Slug    string
	Body    string
	Status  Status
	Publish time.Time
	Tags    []string
}

// CreatePost stores a new post with its tags, creating missing tags by name.
// It fails with PostSlugConflictError when the slug is taken on the publish day.
func (svc *Service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	timeNow := time.Now().UTC()

	status := req.Status
	if status == "" {
		status = StatusDraft
	}

	publish := req.Publish
	if publish.IsZero() {
		publish = timeNow
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Title)
	}

	post := &Post{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Slug:      slug,
		Body:      req.Body,
		Publish:   publish.UTC(),
		Status:    status,
		CreatedAt: timeNow,
		UpdatedAt: timeNow,
	}

	// tags left behind by a failed insert are reused by the next post
	tags, err := svc.ensureTags(ctx, req.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure tags: %w", err)
	}

	post.Tags = tags

	err = svc.postRepo.Insert(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	return post, nil
}

func (svc *Service) ensureTags(ctx context.Context, names []string) ([]*Tag, error) {
	tags := make([]*Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))

	for _, name := range names {
		slug := Slugify(name)
		if slug == "" {
			continue
		}

		if _, ok := seen[slug]; ok {
			continue
		}

		seen[slug] = struct{}{}

		tag, err := svc.tagRepo.FindBySlug(ctx, slug)
		if err != nil {
			var tagNotFoundErr TagNotFoundError
			if !errors.As(err, &tagNotFoundErr) {
				return nil, fmt.Errorf("failed to find tag: %w", err)
			}

			tag = &Tag{
				ID:   uuid.NewString(),
				Name: strings.TrimSpace(name),
				Slug: slug,
			}

			err = svc.tagRepo.Insert(ctx, tag)
			if err != nil {
				return nil, fmt.Errorf("failed to insert tag: %w", err)
			}
		}

		tags = append(tags, tag)
	}

	return tags, nil
}

// PublishPost moves a draft to the published state. Publishing an already
// published post is a no-op.
func (svc *Service) PublishPost(ctx context.Context, postID string) (*Post, error) {
	post, err := svc.postRepo.Find(ctx, &FindPostParams{ID: postID})
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	if post.IsPublished() {
		return post, nil
	}

	timeNow := time.Now().UTC()

	post.Status = StatusPublished
	post.UpdatedAt = timeNow

	if post.Publish.IsZero() {
		post.Publish = timeNow
	}

	err = svc.postRepo.Update(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil
}

// GetPost returns the published post with the given slug whose publish date
// falls on the given day (UTC).
func (svc *Service) GetPost(ctx context.Context, year, month, day int, slug string) (*Post, error) {
	from, to := PublishDay(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
	if from.Year() != year || int(from.Month()) != month || from.Day() != day {
		return nil, PostNotFoundError{Slug: slug}
	}

	post, err := svc.postRepo.Find(ctx, &FindPostParams{
		Slug:        slug,
		Status:      StatusPublished,
		PublishFrom: from,
		PublishTo:   to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	err = svc.preloadTags(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to preload tags: %w", err)
	}

	return post, nil
}

func (svc *Service) GetPublishedPost(ctx context.Context, postID string) (*Post, error) {
	post, err := svc.postRepo.Find(ctx, &FindPostParams{
		ID:     postID,
		Status: StatusPublished,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	return post, nil
}

// SimilarPosts returns up to SimilarPostsLimit published posts sharing tags
// with post, most shared tags first and most recent first among equals.
func (svc *Service) SimilarPosts(ctx context.Context, post *Post) ([]*SimilarPost, error) {
	posts, err := svc.postRepo.ListSimilar(ctx, &ListSimilarPostsParams{
		PostID: post.ID,
		Status: StatusPublished,
		Limit:  SimilarPostsLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list similar posts: %w", err)
	}

	return posts, nil
}

type ListPostsRequest struct {
	TagSlug string
	Page    string
}

type PostList struct {
	Posts []*Post
	Tag   *Tag
	Page  Page
}

func (svc *Service) ListPosts(ctx context.Context, req ListPostsRequest) (*PostList, error) {
	params := &ListPostsParams{
		Status: StatusPublished,
	}

	var tag *Tag

	if req.TagSlug != "" {
		var err error

		tag, err = svc.tagRepo.FindBySlug(ctx, req.TagSlug)
		if err != nil {
			return nil, fmt.Errorf("failed to find tag: %w", err)
		}

		params.TagID = tag.ID
	}

	count, err := svc.postRepo.Count(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	page := ResolvePage(req.Page, count, svc.pageSize)

	params.Limit = uint64(page.PerPage)
	params.Offset = uint64(page.Offset())

	posts, err := svc.postRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	err = svc.preloadTags(ctx, posts...)
	if err != nil {
		return nil, fmt.Errorf("failed to preload tags: %w", err)
	}

	return &PostList{
		Posts: posts,
		Tag:   tag,
		Page:  page,
	}, nil
}

type SearchResult struct {
	Post  *Post
	Score float64
}

// SearchPosts scores every published post against query with the configured
// strategy and returns the accepted ones, best score first.
func (svc *Service) SearchPosts(ctx context.Context, query string) ([]*SearchResult, error) {
	posts, err := svc.postRepo.List(ctx, &ListPostsParams{Status: StatusPublished})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	results := make([]*SearchResult, 0)

	for _, post := range posts {
		score := svc.searchStrategy.Score(query, search.Document{Title: post.Title, Body: post.Body})
		if !svc.searchStrategy.Accepts(score) {
			continue
		}

		results = append(results, &SearchResult{Post: post, Score: score})
	}

	// posts come newest first, so a stable sort keeps recency as the tie-break
	slices.SortStableFunc(results, func(a, b *SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return results, nil
}

func (svc *Service) preloadTags(ctx context.Context, posts ...*Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]string, 0, len(posts))
	for _, post := range posts {
		postIDs = append(postIDs, post.ID)
	}

	tagsByPost, err := svc.tagRepo.ListByPosts(ctx, postIDs...)
	if err != nil {
		return fmt.Errorf("failed to list tags by posts: %w", err)
	}

	for _, post := range posts {
		post.Tags = tagsByPost[post.ID]
	}

	return nil
}
