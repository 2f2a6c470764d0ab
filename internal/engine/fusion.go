package engine

import (
	"sort"

	"github.com/shikshalabs/prashna/internal/store"
)

// DefaultRRFConstant is the standard RRF smoothing parameter. k=60 is
// empirically validated across domains.
const DefaultRRFConstant = 60

// FusedResult is a single document after Reciprocal Rank Fusion.
type FusedResult struct {
	DocumentID   string
	RRFScore     float64 // combined score, normalized to 0-1
	KeywordScore float64
	KeywordRank  int // 1-indexed, 0 if absent
	VecScore     float64
	VecRank      int // 1-indexed, 0 if absent
	InBothLists  bool
}

// RRFFusion combines keyword and vector results using
// Reciprocal Rank Fusion:
//
//	RRF_score(d) = Σ weight_i / (k + rank_i)
type RRFFusion struct {
	K int
}

// NewRRFFusion creates a fusion instance; k <= 0 uses the default.
func NewRRFFusion(k int) *RRFFusion {
	if k <= 0 {
		k = DefaultRRFConstant
	}
	return &RRFFusion{K: k}
}

// Fuse merges the two ranked lists. Documents present in only one list
// get the missing source's contribution at missing_rank =
// max(len(keyword), len(vec)) + 1, so single-list hits are penalized
// but not discarded. Results sort by RRFScore, then both-lists, then
// keyword score, then ID for determinism.
func (f *RRFFusion) Fuse(keyword []*store.KeywordResult, vec []*store.VectorResult, weights Weights) []*FusedResult {
	if len(keyword) == 0 && len(vec) == 0 {
		return []*FusedResult{}
	}

	scores := make(map[string]*FusedResult, len(keyword)+len(vec))

	for rank, r := range keyword {
		result := f.getOrCreate(scores, r.ID)
		result.KeywordScore = r.Score
		result.KeywordRank = rank + 1
		result.RRFScore += weights.Keyword / float64(f.K+rank+1)
	}

	for rank, r := range vec {
		result := f.getOrCreate(scores, r.ID)
		result.VecScore = r.Score
		result.VecRank = rank + 1
		result.RRFScore += weights.Semantic / float64(f.K+rank+1)
		if result.KeywordRank > 0 {
			result.InBothLists = true
		}
	}

	missingRank := max(len(keyword), len(vec)) + 1
	for _, r := range scores {
		if r.KeywordRank == 0 && r.VecRank > 0 {
			r.RRFScore += weights.Keyword / float64(f.K+missingRank)
		}
		if r.VecRank == 0 && r.KeywordRank > 0 {
			r.RRFScore += weights.Semantic / float64(f.K+missingRank)
		}
	}

	results := make([]*FusedResult, 0, len(scores))
	for _, r := range scores {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return f.compare(results[i], results[j])
	})

	f.normalize(results)
	return results
}

func (f *RRFFusion) getOrCreate(m map[string]*FusedResult, id string) *FusedResult {
	if r, ok := m[id]; ok {
		return r
	}
	r := &FusedResult{DocumentID: id}
	m[id] = r
	return r
}

// compare returns true if a should rank before b.
func (f *RRFFusion) compare(a, b *FusedResult) bool {
	if a.RRFScore != b.RRFScore {
		return a.RRFScore > b.RRFScore
	}
	if a.InBothLists != b.InBothLists {
		return a.InBothLists
	}
	if a.KeywordScore != b.KeywordScore {
		return a.KeywordScore > b.KeywordScore
	}
	return a.DocumentID < b.DocumentID
}

// normalize scales scores so the top result is 1.0.
func (f *RRFFusion) normalize(results []*FusedResult) {
	if len(results) == 0 {
		return
	}
	maxScore := results[0].RRFScore
	if maxScore == 0 {
		return
	}
	for _, r := range results {
		r.RRFScore /= maxScore
	}
}
