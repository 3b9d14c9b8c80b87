package blog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/nasermirzaei89/blog/contents"
	"github.com/nasermirzaei89/blog/db/sqlite3"
	"github.com/nasermirzaei89/blog/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDemoPosts_Twice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_time_format=sqlite", uuid.NewString())

	db, err := sqlite3.NewDB(ctx, dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, sqlite3.MigrateUp(ctx, db))

	contentsSvc := contents.NewService(sqlite3.NewPostRepository(db), sqlite3.NewTagRepository(db), search.Trigram)

	require.NoError(t, seedDemoPosts(ctx, contentsSvc))
	require.NoError(t, seedDemoPosts(ctx, contentsSvc))

	list, err := contentsSvc.ListPosts(ctx, contents.ListPostsRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Posts, 3)
}
