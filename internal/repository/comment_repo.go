package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/themeboard/internal/domain"
	"gorm.io/gorm"
)

// CommentRepository is the gorm-backed CommentStore.
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *CommentRepository: repository instance bound to db.
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

var _ CommentStore = (*CommentRepository)(nil)

func storageErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, domain.ErrCommentNotFound)
	}
	if errors.Is(err, domain.ErrCommentNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStorage, op, err)
}

// List returns every comment ordered by id.
func (r *CommentRepository) List(ctx context.Context) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&comments).Error; err != nil {
		return nil, storageErr("list comments", err)
	}
	return comments, nil
}

// Get retrieves a comment by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: comment ID.
// Returns:
//   - *domain.Comment: comment record if found.
//   - error: wraps domain.ErrCommentNotFound when absent.
func (r *CommentRepository) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	var c domain.Comment
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, storageErr(fmt.Sprintf("get comment %d", id), err)
	}
	return &c, nil
}

// Count returns the total number of comments.
func (r *CommentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Comment{}).Count(&count).Error; err != nil {
		return 0, storageErr("count comments", err)
	}
	return count, nil
}

// Create inserts a new comment record.
func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	if c.Replies == nil {
		c.Replies = domain.StringArray{}
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return storageErr("create comment", err)
	}
	return nil
}

// CreateBatch inserts comments in a single transaction.
func (r *CommentRepository) CreateBatch(ctx context.Context, comments []*domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	for _, c := range comments {
		if c.Replies == nil {
			c.Replies = domain.StringArray{}
		}
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(comments, 100).Error
	})
	if err != nil {
		return storageErr("create comments", err)
	}
	return nil
}

// Upvote increments the upvote counter of a comment.
func (r *CommentRepository) Upvote(ctx context.Context, id int64) (*domain.Comment, error) {
	var out domain.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Comment{}).Where("id = ?", id).
			UpdateColumn("upvotes", gorm.Expr("upvotes + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&out, "id = ?", id).Error
	})
	if err != nil {
		return nil, storageErr(fmt.Sprintf("upvote comment %d", id), err)
	}
	return &out, nil
}

// AddReply appends a reply to the comment thread.
func (r *CommentRepository) AddReply(ctx context.Context, id int64, text string) (*domain.Comment, error) {
	var out domain.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, "id = ?", id).Error; err != nil {
			return err
		}
		out.Replies = append(out.Replies, text)
		return tx.Model(&domain.Comment{}).Where("id = ?", id).
			UpdateColumn("reply", out.Replies).Error
	})
	if err != nil {
		return nil, storageErr(fmt.Sprintf("reply to comment %d", id), err)
	}
	return &out, nil
}

// ApplyThemes writes theme, label and coordinates for each assignment in one
// transaction. A missing comment rolls the whole write back.
func (r *CommentRepository) ApplyThemes(ctx context.Context, assignments []domain.ThemeAssignment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range assignments {
			var theme interface{}
			if a.ThemeID != nil {
				theme = *a.ThemeID
			}
			res := tx.Model(&domain.Comment{}).Where("id = ?", a.CommentID).
				UpdateColumns(map[string]interface{}{
					"theme":      theme,
					"theme_name": a.ThemeName,
					"x":          a.X,
					"y":          a.Y,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("comment %d: %w", a.CommentID, domain.ErrCommentNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return storageErr("apply themes", err)
	}
	return nil
}
