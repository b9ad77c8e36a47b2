package service

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/patrickmn/go-cache"
	"github.com/timmy/themeboard/internal/analysis"
)

// runResult is everything a full run computes before merging.
type runResult struct {
	// Index into the corpus snapshot of each classified text.
	Rows      []int
	Labels    []int
	Points    []analysis.Point
	Names     []string
	Model     *analysis.Model
	Partition *analysis.Partition
}

// runCache memoizes run results by a hash of (corpus snapshot, K, seeds).
// Entries never expire; Invalidate drops them when the corpus changes.
type runCache struct {
	c       *cache.Cache
	enabled bool
}

func newRunCache(enabled bool) *runCache {
	return &runCache{c: cache.New(cache.NoExpiration, 0), enabled: enabled}
}

// runKey hashes the ordered texts together with the run parameters.
func runKey(texts []string, k int, clusterSeed, projectionSeed int64) string {
	h := sha256.New()
	var buf [8]byte
	for _, v := range []int64{int64(k), clusterSeed, projectionSeed, int64(len(texts))} {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	for _, t := range texts {
		binary.BigEndian.PutUint64(buf[:], uint64(len(t)))
		h.Write(buf[:])
		h.Write([]byte(t))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (rc *runCache) get(key string) (*runResult, bool) {
	if !rc.enabled {
		return nil, false
	}
	v, ok := rc.c.Get(key)
	if !ok {
		return nil, false
	}
	res, ok := v.(*runResult)
	return res, ok
}

func (rc *runCache) put(key string, res *runResult) {
	if rc.enabled {
		rc.c.Set(key, res, cache.NoExpiration)
	}
}

// Invalidate drops every memoized run.
func (rc *runCache) Invalidate() {
	rc.c.Flush()
}

func (rc *runCache) len() int {
	return rc.c.ItemCount()
}
