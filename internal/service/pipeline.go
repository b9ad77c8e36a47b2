package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/themeboard/internal/analysis"
	"github.com/timmy/themeboard/internal/config"
	"github.com/timmy/themeboard/internal/domain"
	"github.com/timmy/themeboard/internal/logger"
	"github.com/timmy/themeboard/internal/repository"
)

// PipelineConfig holds the clustering and projection parameters.
type PipelineConfig struct {
	Clusters       int
	ClusterSeed    int64
	ProjectionSeed int64
	KMeansInit     int
	KMeansMaxIter  int
	Perplexity     float64
	TSNEIterations int
	AssignMode     string
	CacheEnabled   bool
}

// DefaultPipelineConfig mirrors the configuration defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Clusters:       5,
		ClusterSeed:    16,
		ProjectionSeed: 42,
		KMeansInit:     10,
		KMeansMaxIter:  300,
		Perplexity:     30,
		TSNEIterations: 1000,
		AssignMode:     config.AssignIsolated,
		CacheEnabled:   true,
	}
}

// SnapshotExporter publishes the theme map of a successful run.
type SnapshotExporter interface {
	Export(ctx context.Context, summary *domain.RunSummary, points []domain.MapPoint) error
}

// ThemeService runs the classification pipeline over the comment store and
// serves the read and write operations of the discussion board. Operations
// run one at a time.
type ThemeService struct {
	store      repository.CommentStore
	labeler    ThemeLabeler
	vectorizer *analysis.Vectorizer
	cfg        PipelineConfig
	cache      *runCache
	snapshots  SnapshotExporter

	mu   sync.Mutex
	last *runResult

	statusMu sync.RWMutex
	status   domain.RunStatus
}

// NewThemeService creates the orchestrator. snapshots may be nil.
func NewThemeService(
	store repository.CommentStore,
	labeler ThemeLabeler,
	snapshots SnapshotExporter,
	cfg PipelineConfig,
) *ThemeService {
	if cfg.AssignMode == "" {
		cfg.AssignMode = config.AssignIsolated
	}
	return &ThemeService{
		store:      store,
		labeler:    labeler,
		vectorizer: analysis.NewVectorizer(),
		cfg:        cfg,
		cache:      newRunCache(cfg.CacheEnabled),
		snapshots:  snapshots,
		status:     domain.RunStatus{Stage: domain.StageIdle, AssignMode: cfg.AssignMode},
	}
}

// Status returns the observable state of the classifier.
func (s *ThemeService) Status() domain.RunStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *ThemeService) setStage(ctx context.Context, stage domain.RunStage) {
	s.statusMu.Lock()
	s.status.Stage = stage
	s.statusMu.Unlock()
	logger.CtxDebug(ctx, "Pipeline stage: %s", stage)
}

// fail records err against stage and returns the wrapped pipeline error.
func (s *ThemeService) fail(ctx context.Context, stage domain.RunStage, err error) error {
	perr := domain.NewPipelineError(stage, err)
	s.statusMu.Lock()
	s.status.Stage = domain.StageIdle
	s.status.LastError = perr.Error()
	s.statusMu.Unlock()
	logger.FromContext(ctx).WithError(err).Errorf("Pipeline %s: run aborted", domain.StageFailed)
	return perr
}

// ReclassifyAll clusters, projects and labels the whole corpus, then writes
// every comment's theme in a single all-or-nothing merge. Comments with blank
// text are left unclassified. On failure the store is unchanged.
func (s *ThemeService) ReclassifyAll(ctx context.Context) (*domain.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := uuid.New().String()
	ctx = logger.SetRunID(ctx, runID)
	ctx = logger.SetComponent(ctx, "pipeline")
	start := time.Now()

	s.statusMu.Lock()
	s.status.RunID = runID
	s.statusMu.Unlock()

	comments, err := s.store.List(ctx)
	if err != nil {
		return nil, s.fail(ctx, domain.StageIdle, err)
	}

	rows, texts := nonEmptyTexts(comments)
	key := runKey(texts, s.cfg.Clusters, s.cfg.ClusterSeed, s.cfg.ProjectionSeed)

	res, cached := s.cache.get(key)
	if cached {
		hit := *res
		hit.Rows = rows
		res = &hit
		logger.With(logger.Fields{logger.FieldCount: len(texts)}).Info(ctx, "Reusing memoized run")
	} else {
		res, err = s.compute(ctx, texts)
		if err != nil {
			return nil, err
		}
		res.Rows = rows
	}

	s.setStage(ctx, domain.StageMerging)
	assignments := mergeAssignments(comments, res)
	if err := s.store.ApplyThemes(ctx, assignments); err != nil {
		return nil, s.fail(ctx, domain.StageMerging, err)
	}
	s.cache.put(key, res)
	s.last = res

	s.setStage(ctx, domain.StagePersisted)
	summary := &domain.RunSummary{
		RunID:      runID,
		Comments:   len(comments),
		Classified: len(rows),
		Themes:     themeSummaries(res),
		Cached:     cached,
		DurationMs: time.Since(start).Milliseconds(),
		FinishedAt: time.Now().UTC(),
	}

	s.statusMu.Lock()
	s.status.Stage = domain.StageIdle
	s.status.LastError = ""
	s.status.LastRun = summary
	s.statusMu.Unlock()

	logger.With(logger.Fields{
		logger.FieldCount:  len(rows),
		logger.FieldStatus: "ok",
	}).Since(start).Info(ctx, "Reclassified %d comments into %d themes", len(rows), len(summary.Themes))

	s.exportSnapshot(ctx, summary)
	return summary, nil
}

// compute runs vectorize, cluster, project and label for texts.
func (s *ThemeService) compute(ctx context.Context, texts []string) (*runResult, error) {
	s.setStage(ctx, domain.StageVectorizing)
	stageStart := time.Now()
	model, vecs, err := s.vectorizer.FitTransform(texts)
	if err != nil {
		return nil, s.fail(ctx, domain.StageVectorizing, err)
	}
	logger.With(logger.Fields{logger.FieldStage: domain.StageVectorizing, logger.FieldCount: model.Dim()}).
		Since(stageStart).Info(ctx, "Vectorized %d texts", len(texts))

	s.setStage(ctx, domain.StageClustering)
	stageStart = time.Now()
	km := &analysis.KMeans{
		K:       s.cfg.Clusters,
		Seed:    s.cfg.ClusterSeed,
		NInit:   s.cfg.KMeansInit,
		MaxIter: s.cfg.KMeansMaxIter,
	}
	partition, err := km.Fit(vecs, model.Dim())
	if err != nil {
		return nil, s.fail(ctx, domain.StageClustering, err)
	}
	logger.With(logger.Fields{logger.FieldStage: domain.StageClustering, logger.FieldCount: partition.K}).
		Since(stageStart).Info(ctx, "Partitioned into %d clusters in %d iterations", partition.K, partition.Iterations)

	s.setStage(ctx, domain.StageProjecting)
	stageStart = time.Now()
	ts := &analysis.TSNE{
		Perplexity: s.cfg.Perplexity,
		Iterations: s.cfg.TSNEIterations,
		Seed:       s.cfg.ProjectionSeed,
	}
	points := ts.Embed(vecs, model.Dim())
	logger.With(logger.Fields{logger.FieldStage: domain.StageProjecting}).
		Since(stageStart).Info(ctx, "Projected %d points", len(points))

	s.setStage(ctx, domain.StageLabeling)
	names := make([]string, partition.K)
	for id := 0; id < partition.K; id++ {
		members := partition.Members(id)
		memberTexts := make([]string, len(members))
		for i, m := range members {
			memberTexts[i] = texts[m]
		}
		stageStart = time.Now()
		label, err := s.labeler.Label(logger.WithField(ctx, logger.FieldThemeID, id), memberTexts)
		if err != nil {
			return nil, s.fail(ctx, domain.StageLabeling, fmt.Errorf("theme %d: %w", id, err))
		}
		names[id] = label
		logger.With(logger.Fields{logger.FieldThemeID: id, logger.FieldCount: len(members)}).
			Since(stageStart).Info(ctx, "Labeled theme: %s", label)
	}

	return &runResult{
		Labels:    partition.Labels,
		Points:    points,
		Names:     names,
		Model:     model,
		Partition: partition,
	}, nil
}

// ClassifyOne stores a new comment together with a theme. In isolated mode
// the text is clustered on its own (one cluster, id 0) and placed at the
// origin, so it does not join the taxonomy of the last full run. In nearest
// mode it takes the closest centroid of the last run in this process, falling
// back to isolated when no run exists or the text shares no vocabulary.
func (s *ThemeService) ClassifyOne(ctx context.Context, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyComment
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = logger.SetComponent(ctx, "pipeline")
	start := time.Now()

	comment := &domain.Comment{Text: text, Replies: domain.StringArray{}}
	assignment, mode, err := s.assignNew(ctx, text)
	if err != nil {
		return nil, err
	}
	if assignment != nil {
		assignment.Apply(comment)
	}

	if err := s.store.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.cache.Invalidate()

	logger.With(logger.Fields{
		logger.FieldCommentID: comment.ID,
		logger.FieldStatus:    mode,
	}).Since(start).Info(ctx, "Classified new comment into theme %q", comment.ThemeName)
	return comment, nil
}

// assignNew computes the theme for a new text. A nil assignment means the
// text has no usable vocabulary and stays unclassified.
func (s *ThemeService) assignNew(ctx context.Context, text string) (*domain.ThemeAssignment, string, error) {
	if s.cfg.AssignMode == config.AssignNearest && s.last != nil {
		if a, ok := s.assignNearest(text); ok {
			return a, config.AssignNearest, nil
		}
	}

	model, vecs, err := s.vectorizer.FitTransform([]string{text})
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("New comment has no usable terms; storing unclassified")
		return nil, "unclassified", nil
	}
	partition, err := (&analysis.KMeans{K: 1, Seed: s.cfg.ClusterSeed}).Fit(vecs, model.Dim())
	if err != nil {
		return nil, "", domain.NewPipelineError(domain.StageClustering, err)
	}
	label, err := s.labeler.Label(ctx, []string{text})
	if err != nil {
		return nil, "", domain.NewPipelineError(domain.StageLabeling, err)
	}
	return &domain.ThemeAssignment{
		ThemeID:   domain.IntPtr(partition.Labels[0]),
		ThemeName: label,
	}, config.AssignIsolated, nil
}

func (s *ThemeService) assignNearest(text string) (*domain.ThemeAssignment, bool) {
	v := s.last.Model.Transform(text)
	if v.IsZero() {
		return nil, false
	}
	id, _ := s.last.Partition.Nearest(v)
	if id < 0 || id >= len(s.last.Names) {
		return nil, false
	}
	var x, y float64
	members := s.last.Partition.Members(id)
	for _, m := range members {
		x += s.last.Points[m].X
		y += s.last.Points[m].Y
	}
	if len(members) > 0 {
		x /= float64(len(members))
		y /= float64(len(members))
	}
	return &domain.ThemeAssignment{
		ThemeID:   domain.IntPtr(id),
		ThemeName: s.last.Names[id],
		X:         x,
		Y:         y,
	}, true
}

// Upvote increments a comment's counter.
func (s *ThemeService) Upvote(ctx context.Context, id int64) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Upvote(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.With(logger.Fields{logger.FieldCommentID: id, logger.FieldCount: c.Upvotes}).Info(ctx, "Comment upvoted")
	return c, nil
}

// AddReply appends a reply to a comment's thread.
func (s *ThemeService) AddReply(ctx context.Context, id int64, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyComment
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.AddReply(ctx, id, text)
	if err != nil {
		return nil, err
	}
	logger.With(logger.Fields{logger.FieldCommentID: id, logger.FieldCount: len(c.Replies)}).Info(ctx, "Reply added")
	return c, nil
}

// Comments returns every comment ordered by id.
func (s *ThemeService) Comments(ctx context.Context) ([]*domain.Comment, error) {
	return s.store.List(ctx)
}

// Comment returns one comment.
func (s *ThemeService) Comment(ctx context.Context, id int64) (*domain.Comment, error) {
	return s.store.Get(ctx, id)
}

// ThemeGroups returns comments grouped by theme name, groups sorted by name.
// Unclassified comments are grouped under the empty name.
func (s *ThemeService) ThemeGroups(ctx context.Context) ([]domain.ThemeGroup, error) {
	comments, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	var groups []domain.ThemeGroup
	for _, c := range comments {
		i, ok := index[c.ThemeName]
		if !ok {
			i = len(groups)
			index[c.ThemeName] = i
			groups = append(groups, domain.ThemeGroup{ThemeName: c.ThemeName})
		}
		groups[i].Comments = append(groups[i].Comments, c)
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].ThemeName < groups[b].ThemeName })
	return groups, nil
}

// MapPoints returns the plotted view of every classified comment.
func (s *ThemeService) MapPoints(ctx context.Context) ([]domain.MapPoint, error) {
	comments, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return mapPoints(comments), nil
}

func (s *ThemeService) exportSnapshot(ctx context.Context, summary *domain.RunSummary) {
	if s.snapshots == nil {
		return
	}
	comments, err := s.store.List(ctx)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Snapshot skipped: cannot reload comments")
		return
	}
	if err := s.snapshots.Export(ctx, summary, mapPoints(comments)); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Snapshot export failed")
	}
}

func mapPoints(comments []*domain.Comment) []domain.MapPoint {
	out := make([]domain.MapPoint, 0, len(comments))
	for _, c := range comments {
		if !c.Classified() {
			continue
		}
		out = append(out, domain.MapPoint{
			ID:        c.ID,
			X:         c.X,
			Y:         c.Y,
			ThemeName: c.ThemeName,
			Comment:   c.Text,
			Upvotes:   c.Upvotes,
		})
	}
	return out
}

// nonEmptyTexts returns the positions and trimmed-non-empty texts to cluster.
func nonEmptyTexts(comments []*domain.Comment) ([]int, []string) {
	var rows []int
	var texts []string
	for i, c := range comments {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		rows = append(rows, i)
		texts = append(texts, c.Text)
	}
	return rows, texts
}

// mergeAssignments flattens a run onto every comment. Comments not in the run
// get their theme cleared so no stale id from an earlier run survives.
func mergeAssignments(comments []*domain.Comment, res *runResult) []domain.ThemeAssignment {
	out := make([]domain.ThemeAssignment, len(comments))
	for i, c := range comments {
		out[i] = domain.ThemeAssignment{CommentID: c.ID}
	}
	for j, row := range res.Rows {
		label := res.Labels[j]
		out[row].ThemeID = domain.IntPtr(label)
		out[row].ThemeName = res.Names[label]
		out[row].X = res.Points[j].X
		out[row].Y = res.Points[j].Y
	}
	return out
}

func themeSummaries(res *runResult) []domain.ThemeSummary {
	sizes := res.Partition.Sizes()
	out := make([]domain.ThemeSummary, len(res.Names))
	for id, name := range res.Names {
		out[id] = domain.ThemeSummary{ID: id, Label: name, Size: sizes[id]}
	}
	return out
}
