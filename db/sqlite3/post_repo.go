package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/nasermirzaei89/blog/contents"
)

const (
	tablePosts    = "posts"
	tablePostTags = "post_tags"
)

type PostRepository struct {
	db *sql.DB
}

var _ contents.PostRepository = (*PostRepository)(nil)

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const (
	postFieldID        = "id"
	postFieldTitle     = "title"
	postFieldSlug      = "slug"
	postFieldBody      = "body"
	postFieldPublish   = "publish"
	postFieldStatus    = "status"
	postFieldCreatedAt = "created_at"
	postFieldUpdatedAt = "updated_at"

	postTagFieldPostID = "post_id"
	postTagFieldTagID  = "tag_id"
)

func postColumns() []string {
	return []string{
		postFieldID,
		postFieldTitle,
		postFieldSlug,
		postFieldBody,
		postFieldPublish,
		postFieldStatus,
		postFieldCreatedAt,
		postFieldUpdatedAt,
	}
}

// qualified prefixes every column with its table, for queries that join.
func qualified(table string, columns []string) []string {
	result := make([]string, 0, len(columns))
	for _, column := range columns {
		result = append(result, table+"."+column)
	}

	return result
}

func scanPost(row sq.RowScanner, extra ...any) (*contents.Post, error) {
	var post contents.Post

	dest := []any{
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Body,
		&post.Publish,
		&post.Status,
		&post.CreatedAt,
		&post.UpdatedAt,
	}

	err := row.Scan(append(dest, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &post, nil
}

// Insert stores the post and links it to post.Tags in one transaction.
func (repo *PostRepository) Insert(ctx context.Context, post *contents.Post) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollback(ctx, tx)

	err = checkSlugAvailable(ctx, tx, post)
	if err != nil {
		return err
	}

	q := sq.Insert(tablePosts).
		Columns(postColumns()...).
		Values(
			post.ID,
			post.Title,
			post.Slug,
			post.Body,
			post.Publish.UTC(),
			post.Status,
			post.CreatedAt.UTC(),
			post.UpdatedAt.UTC(),
		)

	q = q.RunWith(tx)

	_, err = q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	err = insertPostTags(ctx, tx, post.ID, post.Tags)
	if err != nil {
		return fmt.Errorf("failed to insert post tags: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (repo *PostRepository) Update(ctx context.Context, post *contents.Post) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollback(ctx, tx)

	err = checkSlugAvailable(ctx, tx, post)
	if err != nil {
		return err
	}

	q := sq.Update(tablePosts).
		Set(postFieldTitle, post.Title).
		Set(postFieldSlug, post.Slug).
		Set(postFieldBody, post.Body).
		Set(postFieldPublish, post.Publish.UTC()).
		Set(postFieldStatus, post.Status).
		Set(postFieldUpdatedAt, post.UpdatedAt.UTC()).
		Where(sq.Eq{postFieldID: post.ID})

	q = q.RunWith(tx)

	result, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return contents.PostNotFoundError{ID: post.ID}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func rollback(ctx context.Context, tx *sql.Tx) {
	err := tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.ErrorContext(ctx, "failed to rollback transaction", "error", err)
	}
}

// checkSlugAvailable fails with contents.PostSlugConflictError when a post
// other than post uses its slug on its publish day.
func checkSlugAvailable(ctx context.Context, tx *sql.Tx, post *contents.Post) error {
	from, to := contents.PublishDay(post.Publish)

	q := sq.Select("COUNT(*)").
		From(tablePosts).
		Where(sq.Eq{postFieldSlug: post.Slug}).
		Where(sq.GtOrEq{postFieldPublish: from}).
		Where(sq.Lt{postFieldPublish: to}).
		Where(sq.NotEq{postFieldID: post.ID})

	q = q.RunWith(tx)

	var count int

	err := q.QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to scan slug count: %w", err)
	}

	if count > 0 {
		return contents.PostSlugConflictError{Slug: post.Slug, Day: from}
	}

	return nil
}

func insertPostTags(ctx context.Context, tx *sql.Tx, postID string, tags []*contents.Tag) error {
	if len(tags) == 0 {
		return nil
	}

	q := sq.Insert(tablePostTags).
		Columns(postTagFieldPostID, postTagFieldTagID).
		Suffix("ON CONFLICT DO NOTHING")

	for _, tag := range tags {
		q = q.Values(postID, tag.ID)
	}

	q = q.RunWith(tx)

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

// Find returns the only post matching params. Ambiguous matches are reported
// as not found, the same as no match at all.
func (repo *PostRepository) Find(ctx context.Context, params *contents.FindPostParams) (*contents.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		Limit(2)

	if params.ID != "" {
		q = q.Where(sq.Eq{postFieldID: params.ID})
	}

	if params.Slug != "" {
		q = q.Where(sq.Eq{postFieldSlug: params.Slug})
	}

	if params.Status != "" {
		q = q.Where(sq.Eq{postFieldStatus: params.Status})
	}

	if !params.PublishFrom.IsZero() {
		q = q.Where(sq.GtOrEq{postFieldPublish: params.PublishFrom.UTC()})
	}

	if !params.PublishTo.IsZero() {
		q = q.Where(sq.Lt{postFieldPublish: params.PublishTo.UTC()})
	}

	q = q.RunWith(repo.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	posts := make([]*contents.Post, 0, 2)

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		posts = append(posts, post)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	if len(posts) != 1 {
		return nil, contents.PostNotFoundError{ID: params.ID, Slug: params.Slug}
	}

	return posts[0], nil
}

func filterPosts(q sq.SelectBuilder, params *contents.ListPostsParams) sq.SelectBuilder {
	if params.Status != "" {
		q = q.Where(sq.Eq{tablePosts + "." + postFieldStatus: params.Status})
	}

	if params.TagID != "" {
		q = q.Join(fmt.Sprintf(
			"%s ON %s.%s = %s.%s",
			tablePostTags,
			tablePostTags, postTagFieldPostID,
			tablePosts, postFieldID,
		)).Where(sq.Eq{tablePostTags + "." + postTagFieldTagID: params.TagID})
	}

	return q
}

func (repo *PostRepository) List(ctx context.Context, params *contents.ListPostsParams) ([]*contents.Post, error) {
	q := sq.Select(qualified(tablePosts, postColumns())...).
		From(tablePosts).
		OrderBy(
			tablePosts+"."+postFieldPublish+" DESC",
			tablePosts+"."+postFieldID,
		)

	q = filterPosts(q, params)

	if params.Limit > 0 {
		q = q.Limit(params.Limit).Offset(params.Offset)
	}

	q = q.RunWith(repo.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	posts := make([]*contents.Post, 0)

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		posts = append(posts, post)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return posts, nil
}

func (repo *PostRepository) Count(ctx context.Context, params *contents.ListPostsParams) (int, error) {
	q := sq.Select("COUNT(*)").From(tablePosts)

	q = filterPosts(q, params)

	q = q.RunWith(repo.db)

	var count int

	err := q.QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to scan count: %w", err)
	}

	return count, nil
}

// ListSimilar ranks posts by the number of tags they share with the given
// post. The post itself is never part of the result.
func (repo *PostRepository) ListSimilar(
	ctx context.Context,
	params *contents.ListSimilarPostsParams,
) ([]*contents.SimilarPost, error) {
	columns := append(
		qualified(tablePosts, postColumns()),
		fmt.Sprintf("COUNT(%s.%s) AS same_tags", tablePostTags, postTagFieldTagID),
	)

	q := sq.Select(columns...).
		From(tablePosts).
		Join(fmt.Sprintf(
			"%s ON %s.%s = %s.%s",
			tablePostTags,
			tablePostTags, postTagFieldPostID,
			tablePosts, postFieldID,
		)).
		Where(sq.Expr(
			fmt.Sprintf(
				"%s.%s IN (SELECT %s FROM %s WHERE %s = ?)",
				tablePostTags, postTagFieldTagID,
				postTagFieldTagID, tablePostTags, postTagFieldPostID,
			),
			params.PostID,
		)).
		Where(sq.NotEq{tablePosts + "." + postFieldID: params.PostID}).
		GroupBy(tablePosts + "." + postFieldID).
		OrderBy("same_tags DESC", tablePosts+"."+postFieldPublish+" DESC")

	if params.Status != "" {
		q = q.Where(sq.Eq{tablePosts + "." + postFieldStatus: params.Status})
	}

	if params.Limit > 0 {
		q = q.Limit(params.Limit)
	}

	q = q.RunWith(repo.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	posts := make([]*contents.SimilarPost, 0)

	for rows.Next() {
		var sameTags int

		post, err := scanPost(rows, &sameTags)
		if err != nil {
			return nil, fmt.Errorf("failed to scan similar post: %w", err)
		}

		posts = append(posts, &contents.SimilarPost{Post: *post, SameTags: sameTags})
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return posts, nil
}
