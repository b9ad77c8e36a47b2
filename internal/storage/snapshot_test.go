package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/themeboard/internal/config"
	"github.com/timmy/themeboard/internal/domain"
)

func TestLocalStorage_PutGet(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ok, err := s.Exists(ctx, "themes/a.json")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, "themes/a.json")
	assert.True(t, errors.Is(err, ErrObjectNotFound))

	require.NoError(t, s.Put(ctx, "themes/a.json", []byte("one"), "application/json"))
	require.NoError(t, s.Put(ctx, "themes/a.json", []byte("two"), "application/json"))

	data, err := s.Get(ctx, "themes/a.json")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	ok, err = s.Exists(ctx, "themes/a.json")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, s.Put(context.Background(), "../outside.json", []byte("x"), "text/plain"))
}

func TestSnapshotWriter_Export(t *testing.T) {
	ctx := context.Background()
	store, err := NewStorage(ctx, &config.SnapshotConfig{Type: "local", LocalDir: t.TempDir()})
	require.NoError(t, err)
	w := NewSnapshotWriter(store, "themes")

	summary := &domain.RunSummary{
		RunID:      "run-1",
		Comments:   2,
		Classified: 2,
		Themes:     []domain.ThemeSummary{{ID: 0, Label: "Housing costs", Size: 2}},
		FinishedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	points := []domain.MapPoint{{ID: 1, X: 1.5, Y: -2, ThemeName: "Housing costs", Comment: "rent", Upvotes: 3}}
	require.NoError(t, w.Export(ctx, summary, points))

	ok, err := store.Exists(ctx, "themes/run-1.json")
	require.NoError(t, err)
	assert.True(t, ok)

	snap, err := w.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", snap.Run.RunID)
	assert.Equal(t, points, snap.Points)
}

func TestDetectStorageType(t *testing.T) {
	tests := map[string]StorageType{
		"":                                     StorageTypeLocal,
		"https://abc.r2.cloudflarestorage.com": StorageTypeR2,
		"s3.us-east-1.amazonaws.com":           StorageTypeS3,
		"localhost:9000":                       StorageTypeS3Compatible,
	}
	for endpoint, want := range tests {
		assert.Equal(t, want, detectStorageType(endpoint), endpoint)
	}
}

func TestS3Storage_URLs(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{
			name: "compatible endpoint is path style",
			cfg:  S3Config{Type: StorageTypeS3Compatible, Endpoint: "http://localhost:9000/ignored", Bucket: "themes", AccessKey: "a", SecretKey: "b"},
			want: "http://localhost:9000/themes/latest.json",
		},
		{
			name: "ssl endpoint",
			cfg:  S3Config{Type: StorageTypeR2, Endpoint: "abc.r2.cloudflarestorage.com", UseSSL: true, Bucket: "themes", AccessKey: "a", SecretKey: "b"},
			want: "https://abc.r2.cloudflarestorage.com/themes/latest.json",
		},
		{
			name: "aws default endpoint",
			cfg:  S3Config{Type: StorageTypeS3, Bucket: "themes", Region: "eu-west-1", AccessKey: "a", SecretKey: "b"},
			want: "https://themes.s3.eu-west-1.amazonaws.com/latest.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewS3Storage(context.Background(), &tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.GetURL("latest.json"))
		})
	}

	_, err := NewS3Storage(context.Background(), &S3Config{Type: StorageTypeS3})
	assert.Error(t, err)
}
