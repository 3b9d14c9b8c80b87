package discuss

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	commentRepo CommentRepository
}

func NewService(commentRepo CommentRepository) *Service {
	return &Service{
		commentRepo: commentRepo,
	}
}

type CreateCommentRequest struct {
	PostID string
	Name   string
	Email  string
	Body   string
}

// CreateComment stores a new active comment on the post.
func (svc *Service) CreateComment(ctx context.Context, req CreateCommentRequest) (*Comment, error) {
	timeNow := time.Now().UTC()

	comment := &Comment{
		ID:        uuid.NewString(),
		PostID:    req.PostID,
		Name:      req.Name,
		Email:     req.Email,
		Body:      req.Body,
		Active:    true,
		CreatedAt: timeNow,
		UpdatedAt: timeNow,
	}

	err := svc.commentRepo.Insert(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	return comment, nil
}

// ListActiveComments returns the comments visitors may see, oldest first.
func (svc *Service) ListActiveComments(ctx context.Context, postID string) ([]*Comment, error) {
	comments, err := svc.commentRepo.List(ctx, &ListCommentsParams{PostID: postID, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}
