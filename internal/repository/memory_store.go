package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/timmy/themeboard/internal/domain"
)

// MemoryCommentStore keeps comments in process memory. It backs the service
// when the database cannot be read at startup, and the tests.
type MemoryCommentStore struct {
	mu       sync.RWMutex
	comments []*domain.Comment
	nextID   int64
}

var _ CommentStore = (*MemoryCommentStore)(nil)

// NewMemoryCommentStore creates an empty in-memory store.
func NewMemoryCommentStore() *MemoryCommentStore {
	return &MemoryCommentStore{nextID: 1}
}

func (s *MemoryCommentStore) find(id int64) (*domain.Comment, error) {
	for _, c := range s.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("comment %d: %w", id, domain.ErrCommentNotFound)
}

func (s *MemoryCommentStore) List(ctx context.Context) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Comment, len(s.comments))
	for i, c := range s.comments {
		out[i] = c.Clone()
	}
	return out, nil
}

func (s *MemoryCommentStore) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

func (s *MemoryCommentStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.comments)), nil
}

func (s *MemoryCommentStore) Create(ctx context.Context, c *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(c)
	return nil
}

func (s *MemoryCommentStore) CreateBatch(ctx context.Context, comments []*domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range comments {
		s.insert(c)
	}
	return nil
}

// insert assigns the next id; ids are never reused.
func (s *MemoryCommentStore) insert(c *domain.Comment) {
	if c.Replies == nil {
		c.Replies = domain.StringArray{}
	}
	c.ID = s.nextID
	s.nextID++
	s.comments = append(s.comments, c.Clone())
}

func (s *MemoryCommentStore) Upvote(ctx context.Context, id int64) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.find(id)
	if err != nil {
		return nil, err
	}
	c.Upvotes++
	return c.Clone(), nil
}

func (s *MemoryCommentStore) AddReply(ctx context.Context, id int64, text string) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.find(id)
	if err != nil {
		return nil, err
	}
	c.Replies = append(c.Replies, text)
	return c.Clone(), nil
}

func (s *MemoryCommentStore) ApplyThemes(ctx context.Context, assignments []domain.ThemeAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets := make([]*domain.Comment, len(assignments))
	for i, a := range assignments {
		c, err := s.find(a.CommentID)
		if err != nil {
			return err
		}
		targets[i] = c
	}
	for i, a := range assignments {
		a.Apply(targets[i])
	}
	return nil
}
