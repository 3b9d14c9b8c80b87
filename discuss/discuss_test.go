package discuss_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nasermirzaei89/blog/discuss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommentRepository struct {
	comments  []*discuss.Comment
	insertErr error
}

func (repo *stubCommentRepository) Insert(_ context.Context, comment *discuss.Comment) error {
	if repo.insertErr != nil {
		return repo.insertErr
	}

	repo.comments = append(repo.comments, comment)

	return nil
}

func (repo *stubCommentRepository) List(
	_ context.Context,
	params *discuss.ListCommentsParams,
) ([]*discuss.Comment, error) {
	result := make([]*discuss.Comment, 0)

	for _, comment := range repo.comments {
		if params.PostID != "" && comment.PostID != params.PostID {
			continue
		}

		if params.ActiveOnly && !comment.Active {
			continue
		}

		result = append(result, comment)
	}

	return result, nil
}

func TestService_CreateComment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := &stubCommentRepository{}
	svc := discuss.NewService(repo)

	postID := uuid.NewString()

	comment, err := svc.CreateComment(ctx, discuss.CreateCommentRequest{
		PostID: postID,
		Name:   "Alice",
		Email:  "a@x.com",
		Body:   "Nice post",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, postID, comment.PostID)
	assert.Equal(t, "Alice", comment.Name)
	assert.True(t, comment.Active)
	assert.False(t, comment.CreatedAt.IsZero())
	require.Len(t, repo.comments, 1)
	assert.Same(t, comment, repo.comments[0])
}

func TestService_CreateCommentRepositoryError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	svc := discuss.NewService(&stubCommentRepository{insertErr: errBoom})

	_, err := svc.CreateComment(context.Background(), discuss.CreateCommentRequest{PostID: uuid.NewString()})
	require.ErrorIs(t, err, errBoom)
}

func TestService_ListActiveComments(t *testing.T) {
	t.Parallel()

	postID := uuid.NewString()
	otherPostID := uuid.NewString()

	repo := &stubCommentRepository{
		comments: []*discuss.Comment{
			{ID: "1", PostID: postID, Active: true},
			{ID: "2", PostID: postID, Active: false},
			{ID: "3", PostID: otherPostID, Active: true},
		},
	}

	svc := discuss.NewService(repo)

	comments, err := svc.ListActiveComments(context.Background(), postID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "1", comments[0].ID)
}
