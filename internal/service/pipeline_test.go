package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/themeboard/internal/config"
	"github.com/timmy/themeboard/internal/domain"
	"github.com/timmy/themeboard/internal/repository"
)

// stubLabeler names a cluster after its first member and records every call.
type stubLabeler struct {
	mu    sync.Mutex
	calls [][]string
	err   error
	// failOn makes the n-th call (1-based) fail.
	failOn int
}

func (s *stubLabeler) Label(ctx context.Context, texts []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]string(nil), texts...))
	if s.err != nil && (s.failOn == 0 || s.failOn == len(s.calls)) {
		return "", fmt.Errorf("%w: %v", domain.ErrLabeling, s.err)
	}
	return "theme: " + texts[0], nil
}

func (s *stubLabeler) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type recordingExporter struct {
	summaries []*domain.RunSummary
	points    [][]domain.MapPoint
}

func (r *recordingExporter) Export(ctx context.Context, summary *domain.RunSummary, points []domain.MapPoint) error {
	r.summaries = append(r.summaries, summary)
	r.points = append(r.points, points)
	return nil
}

func seededStore(t *testing.T, texts ...string) *repository.MemoryCommentStore {
	t.Helper()
	store := repository.NewMemoryCommentStore()
	for _, text := range texts {
		require.NoError(t, store.Create(context.Background(), &domain.Comment{Text: text}))
	}
	return store
}

func testConfig(k int) PipelineConfig {
	cfg := DefaultPipelineConfig()
	cfg.Clusters = k
	cfg.TSNEIterations = 300
	return cfg
}

var threeNeeds = []string{"a need for stability", "I feel unheard", "housing is unaffordable"}

func TestReclassifyAll_ThreeComments(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, threeNeeds...)
	labeler := &stubLabeler{}
	svc := NewThemeService(store, labeler, nil, testConfig(2))

	summary, err := svc.ReclassifyAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Classified)
	require.Len(t, summary.Themes, 2)
	assert.Equal(t, 2, labeler.callCount())

	comments, err := store.List(ctx)
	require.NoError(t, err)
	ids := map[int]string{}
	for _, c := range comments {
		require.True(t, c.Classified(), "comment %d unclassified", c.ID)
		assert.GreaterOrEqual(t, *c.ThemeID, 0)
		assert.Less(t, *c.ThemeID, 2)
		assert.NotEmpty(t, c.ThemeName)
		if name, ok := ids[*c.ThemeID]; ok {
			assert.Equal(t, name, c.ThemeName, "theme id and name must come from the same run")
		}
		ids[*c.ThemeID] = c.ThemeName
	}
	assert.Len(t, ids, 2)
}

func TestReclassifyAll_PartitionsBootstrapCorpus(t *testing.T) {
	ctx := context.Background()
	store := repository.NewBootstrapMemoryStore()
	svc := NewThemeService(store, &stubLabeler{}, nil, testConfig(5))

	_, err := svc.ReclassifyAll(ctx)
	require.NoError(t, err)

	comments, err := store.List(ctx)
	require.NoError(t, err)
	members := map[int]int{}
	for _, c := range comments {
		require.NotNil(t, c.ThemeID)
		members[*c.ThemeID]++
	}
	assert.Len(t, members, 5)
	total := 0
	for _, n := range members {
		total += n
	}
	assert.Equal(t, len(repository.BootstrapCorpus), total)
}

func TestReclassifyAll_DeterministicAssignment(t *testing.T) {
	ctx := context.Background()
	run := func() []int {
		store := repository.NewBootstrapMemoryStore()
		svc := NewThemeService(store, &stubLabeler{}, nil, testConfig(5))
		_, err := svc.ReclassifyAll(ctx)
		require.NoError(t, err)
		comments, err := store.List(ctx)
		require.NoError(t, err)
		out := make([]int, len(comments))
		for i, c := range comments {
			out[i] = *c.ThemeID
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestReclassifyAll_EmptyCorpus(t *testing.T) {
	ctx := context.Background()
	for name, texts := range map[string][]string{
		"no comments": nil,
		"blank":       {"", "   ", "\n\t"},
	} {
		t.Run(name, func(t *testing.T) {
			store := seededStore(t, texts...)
			labeler := &stubLabeler{}
			svc := NewThemeService(store, labeler, nil, testConfig(2))

			_, err := svc.ReclassifyAll(ctx)
			assert.True(t, errors.Is(err, domain.ErrEmptyCorpus), "got %v", err)

			var perr *domain.PipelineError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, domain.StageVectorizing, perr.Stage)
			assert.Zero(t, labeler.callCount())

			comments, err := store.List(ctx)
			require.NoError(t, err)
			for _, c := range comments {
				assert.False(t, c.Classified())
			}
			assert.NotEmpty(t, svc.Status().LastError)
		})
	}
}

func TestReclassifyAll_TooManyClusters(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, "housing", "housing", "wages")
	svc := NewThemeService(store, &stubLabeler{}, nil, testConfig(3))

	_, err := svc.ReclassifyAll(ctx)
	assert.True(t, errors.Is(err, domain.ErrClustering), "got %v", err)
}

func TestReclassifyAll_LabelFailureLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, threeNeeds...)
	good := NewThemeService(store, &stubLabeler{}, nil, testConfig(2))
	_, err := good.ReclassifyAll(ctx)
	require.NoError(t, err)
	before, err := store.List(ctx)
	require.NoError(t, err)

	// New service, no memoized run: second label call fails.
	labeler := &stubLabeler{err: errors.New("quota"), failOn: 2}
	bad := NewThemeService(store, labeler, nil, testConfig(3))
	_, err = bad.ReclassifyAll(ctx)
	require.True(t, errors.Is(err, domain.ErrLabeling), "got %v", err)

	after, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReclassifyAll_MemoizesUntilCommentAdded(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, threeNeeds...)
	labeler := &stubLabeler{}
	svc := NewThemeService(store, labeler, nil, testConfig(2))

	first, err := svc.ReclassifyAll(ctx)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.ReclassifyAll(ctx)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 2, labeler.callCount())

	// Upvotes do not change the corpus text.
	_, err = svc.Upvote(ctx, 1)
	require.NoError(t, err)
	third, err := svc.ReclassifyAll(ctx)
	require.NoError(t, err)
	assert.True(t, third.Cached)

	_, err = svc.ClassifyOne(ctx, "rent keeps rising")
	require.NoError(t, err)
	assert.Zero(t, svc.cache.len())

	fourth, err := svc.ReclassifyAll(ctx)
	require.NoError(t, err)
	assert.False(t, fourth.Cached)
	assert.Equal(t, 4, fourth.Classified)
}

func TestReclassifyAll_CacheDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(2)
	cfg.CacheEnabled = false
	labeler := &stubLabeler{}
	svc := NewThemeService(seededStore(t, threeNeeds...), labeler, nil, cfg)

	for i := 0; i < 2; i++ {
		summary, err := svc.ReclassifyAll(ctx)
		require.NoError(t, err)
		assert.False(t, summary.Cached)
	}
	assert.Equal(t, 4, labeler.callCount())
}

func TestReclassifyAll_SkipsBlankComments(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, "a need for stability", "   ", "I feel unheard", "housing is unaffordable")
	svc := NewThemeService(store, &stubLabeler{}, nil, testConfig(2))

	summary, err := svc.ReclassifyAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Comments)
	assert.Equal(t, 3, summary.Classified)

	blank, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.False(t, blank.Classified())
}

func TestReclassifyAll_ExportsSnapshot(t *testing.T) {
	ctx := context.Background()
	exporter := &recordingExporter{}
	svc := NewThemeService(seededStore(t, threeNeeds...), &stubLabeler{}, exporter, testConfig(2))

	summary, err := svc.ReclassifyAll(ctx)
	require.NoError(t, err)
	require.Len(t, exporter.summaries, 1)
	assert.Equal(t, summary.RunID, exporter.summaries[0].RunID)
	assert.Len(t, exporter.points[0], 3)
}

func TestClassifyOne_Isolated(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, threeNeeds...)
	labeler := &stubLabeler{}
	svc := NewThemeService(store, labeler, nil, testConfig(2))

	c, err := svc.ClassifyOne(ctx, "  Rent takes half my income  ")
	require.NoError(t, err)
	assert.Equal(t, int64(4), c.ID)
	assert.Equal(t, "Rent takes half my income", c.Text)
	assert.Equal(t, domain.StringArray{}, c.Replies)
	assert.Zero(t, c.Upvotes)
	require.NotNil(t, c.ThemeID)
	assert.Equal(t, 0, *c.ThemeID)
	assert.Equal(t, "theme: Rent takes half my income", c.ThemeName)
	assert.Zero(t, c.X)
	assert.Zero(t, c.Y)
	assert.Equal(t, [][]string{{"Rent takes half my income"}}, labeler.calls)

	stored, err := store.Get(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, c, stored)
}

func TestClassifyOne_Nearest(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, "housing rent costs", "rent housing prices", "lonely friends isolation", "friends lonely community")
	cfg := testConfig(2)
	cfg.AssignMode = config.AssignNearest
	labeler := &stubLabeler{}
	svc := NewThemeService(store, labeler, nil, cfg)

	// Without a run in this process the isolated behavior applies.
	c, err := svc.ClassifyOne(ctx, "rent is brutal")
	require.NoError(t, err)
	assert.Equal(t, "theme: rent is brutal", c.ThemeName)

	_, err = svc.ReclassifyAll(ctx)
	require.NoError(t, err)
	calls := labeler.callCount()

	first, err := store.Get(ctx, 1)
	require.NoError(t, err)

	c, err = svc.ClassifyOne(ctx, "housing rent is too high")
	require.NoError(t, err)
	assert.Equal(t, *first.ThemeID, *c.ThemeID)
	assert.Equal(t, first.ThemeName, c.ThemeName)
	assert.Equal(t, calls, labeler.callCount(), "nearest assignment must not call the labeler")

	// No shared vocabulary falls back to an isolated label.
	c, err = svc.ClassifyOne(ctx, "quantum chromodynamics")
	require.NoError(t, err)
	assert.Equal(t, "theme: quantum chromodynamics", c.ThemeName)
}

func TestClassifyOne_Errors(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	_, err := NewThemeService(store, &stubLabeler{}, nil, testConfig(2)).ClassifyOne(ctx, "   ")
	assert.True(t, errors.Is(err, domain.ErrEmptyComment))

	_, err = NewThemeService(store, &stubLabeler{err: errors.New("down")}, nil, testConfig(2)).ClassifyOne(ctx, "housing")
	assert.True(t, errors.Is(err, domain.ErrLabeling))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "failed classification must not store the comment")

	// Stop words only: stored, but without a theme.
	c, err := NewThemeService(store, &stubLabeler{}, nil, testConfig(2)).ClassifyOne(ctx, "I am here")
	require.NoError(t, err)
	assert.False(t, c.Classified())
}

func TestUpvoteAndReply(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, "one", "two", "three", "four", "five")
	svc := NewThemeService(store, &stubLabeler{}, nil, testConfig(2))

	_, err := svc.Upvote(ctx, 2)
	require.NoError(t, err)
	c, err := svc.Upvote(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Upvotes)
	assert.Equal(t, "two", c.Text)
	assert.Empty(t, c.Replies)

	c, err = svc.AddReply(ctx, 5, "I agree")
	require.NoError(t, err)
	assert.Equal(t, domain.StringArray{"I agree"}, c.Replies)

	_, err = svc.AddReply(ctx, 5, "  ")
	assert.True(t, errors.Is(err, domain.ErrEmptyComment))

	_, err = svc.Upvote(ctx, 77)
	assert.True(t, errors.Is(err, domain.ErrCommentNotFound))
}

func TestThemeGroupsAndMapPoints(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, threeNeeds...)
	svc := NewThemeService(store, &stubLabeler{}, nil, testConfig(2))
	_, err := svc.ReclassifyAll(ctx)
	require.NoError(t, err)

	groups, err := svc.ThemeGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.True(t, groups[0].ThemeName < groups[1].ThemeName)
	total := 0
	for _, g := range groups {
		assert.True(t, strings.HasPrefix(g.ThemeName, "theme: "))
		total += len(g.Comments)
	}
	assert.Equal(t, 3, total)

	points, err := svc.MapPoints(ctx)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, threeNeeds[0], points[0].Comment)
}

func TestRunKey(t *testing.T) {
	a := runKey([]string{"ab", "c"}, 2, 16, 42)
	assert.Equal(t, a, runKey([]string{"ab", "c"}, 2, 16, 42))
	assert.NotEqual(t, a, runKey([]string{"a", "bc"}, 2, 16, 42))
	assert.NotEqual(t, a, runKey([]string{"ab", "c"}, 3, 16, 42))
	assert.NotEqual(t, a, runKey([]string{"ab", "c"}, 2, 17, 42))
}
