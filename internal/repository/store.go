package repository

import (
	"context"

	"github.com/timmy/themeboard/internal/domain"
)

// CommentStore is the durable record of comments. Every mutating call is a
// single all-or-nothing write; errors wrap domain.ErrStorage or
// domain.ErrCommentNotFound.
type CommentStore interface {
	// List returns every comment ordered by id.
	List(ctx context.Context) ([]*domain.Comment, error)
	// Get returns one comment.
	Get(ctx context.Context, id int64) (*domain.Comment, error)
	// Count returns the number of stored comments.
	Count(ctx context.Context) (int64, error)
	// Create inserts c and sets its id.
	Create(ctx context.Context, c *domain.Comment) error
	// CreateBatch inserts all comments in one transaction.
	CreateBatch(ctx context.Context, comments []*domain.Comment) error
	// Upvote increments the counter and returns the updated comment.
	Upvote(ctx context.Context, id int64) (*domain.Comment, error)
	// AddReply appends text to the thread and returns the updated comment.
	AddReply(ctx context.Context, id int64, text string) (*domain.Comment, error)
	// ApplyThemes writes every assignment or none of them.
	ApplyThemes(ctx context.Context, assignments []domain.ThemeAssignment) error
}
