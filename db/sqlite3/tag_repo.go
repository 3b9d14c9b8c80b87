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

const tableTags = "tags"

type TagRepository struct {
	db *sql.DB
}

var _ contents.TagRepository = (*TagRepository)(nil)

func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

const (
	tagFieldID   = "id"
	tagFieldName = "name"
	tagFieldSlug = "slug"
)

func tagColumns() []string {
	return []string{
		tagFieldID,
		tagFieldName,
		tagFieldSlug,
	}
}

func scanTag(row sq.RowScanner) (*contents.Tag, error) {
	var tag contents.Tag

	err := row.Scan(
		&tag.ID,
		&tag.Name,
		&tag.Slug,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &tag, nil
}

func (repo *TagRepository) Insert(ctx context.Context, tag *contents.Tag) error {
	q := sq.Insert(tableTags).
		Columns(tagColumns()...).
		Values(tag.ID, tag.Name, tag.Slug)

	q = q.RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *TagRepository) FindBySlug(ctx context.Context, slug string) (*contents.Tag, error) {
	q := sq.Select(tagColumns()...).
		From(tableTags).
		Where(sq.Eq{tagFieldSlug: slug})

	q = q.RunWith(repo.db)

	row := q.QueryRowContext(ctx)

	tag, err := scanTag(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contents.TagNotFoundError{Slug: slug}
		}

		return nil, fmt.Errorf("failed to scan tag: %w", err)
	}

	return tag, nil
}

// ListByPosts returns the tags of each given post, keyed by post id and
// sorted by name.
func (repo *TagRepository) ListByPosts(ctx context.Context, postIDs ...string) (map[string][]*contents.Tag, error) {
	tagsByPost := make(map[string][]*contents.Tag, len(postIDs))

	if len(postIDs) == 0 {
		return tagsByPost, nil
	}

	columns := append(
		[]string{tablePostTags + "." + postTagFieldPostID},
		qualified(tableTags, tagColumns())...,
	)

	q := sq.Select(columns...).
		From(tableTags).
		Join(fmt.Sprintf(
			"%s ON %s.%s = %s.%s",
			tablePostTags,
			tablePostTags, postTagFieldTagID,
			tableTags, tagFieldID,
		)).
		Where(sq.Eq{tablePostTags + "." + postTagFieldPostID: postIDs}).
		OrderBy(tableTags+"."+tagFieldName, tableTags+"."+tagFieldID)

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

	for rows.Next() {
		var (
			postID string
			tag    contents.Tag
		)

		err := rows.Scan(&postID, &tag.ID, &tag.Name, &tag.Slug)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}

		tagsByPost[postID] = append(tagsByPost[postID], &tag)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return tagsByPost, nil
}
