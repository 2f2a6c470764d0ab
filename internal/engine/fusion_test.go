package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shikshalabs/prashna/internal/query"
	"github.com/shikshalabs/prashna/internal/store"
)

func defaultWeights() Weights {
	return Weights{Keyword: 0.35, Semantic: 0.65}
}

// =============================================================================
// RRF Fusion Tests
// =============================================================================

func TestFuseEmptyInputs(t *testing.T) {
	f := NewRRFFusion(0)
	results := f.Fuse(nil, nil, defaultWeights())
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestFuseDefaultConstant(t *testing.T) {
	assert.Equal(t, DefaultRRFConstant, NewRRFFusion(0).K)
	assert.Equal(t, DefaultRRFConstant, NewRRFFusion(-5).K)
	assert.Equal(t, 10, NewRRFFusion(10).K)
}

func TestFuseBothListsRankFirst(t *testing.T) {
	f := NewRRFFusion(60)

	keyword := []*store.KeywordResult{
		{ID: "both", Score: 2.0},
		{ID: "kw-only", Score: 1.5},
	}
	vec := []*store.VectorResult{
		{ID: "both", Score: 0.9},
		{ID: "vec-only", Score: 0.8},
	}

	results := f.Fuse(keyword, vec, defaultWeights())
	require.Len(t, results, 3)
	assert.Equal(t, "both", results[0].DocumentID)
	assert.True(t, results[0].InBothLists)
	assert.InDelta(t, 1.0, results[0].RRFScore, 0.001, "top score normalizes to 1")
}

func TestFuseSingleListStillScores(t *testing.T) {
	f := NewRRFFusion(60)

	keyword := []*store.KeywordResult{{ID: "a", Score: 1.0}}
	results := f.Fuse(keyword, nil, defaultWeights())

	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].DocumentID)
	assert.Equal(t, 1, results[0].KeywordRank)
	assert.Zero(t, results[0].VecRank)
	assert.False(t, results[0].InBothLists)
	assert.Greater(t, results[0].RRFScore, 0.0)
}

func TestFusePreservesOriginalScores(t *testing.T) {
	f := NewRRFFusion(60)

	keyword := []*store.KeywordResult{{ID: "a", Score: 3.7}}
	vec := []*store.VectorResult{{ID: "a", Score: 0.42}}

	results := f.Fuse(keyword, vec, defaultWeights())
	require.Len(t, results, 1)
	assert.InDelta(t, 3.7, results[0].KeywordScore, 0.001)
	assert.InDelta(t, 0.42, results[0].VecScore, 0.001)
}

func TestFuseDeterministicTieBreak(t *testing.T) {
	f := NewRRFFusion(60)

	// Two documents with identical rank positions in opposite lists and
	// equal weights tie on RRF score; ID breaks the tie
	weights := Weights{Keyword: 0.5, Semantic: 0.5}
	keyword := []*store.KeywordResult{{ID: "b", Score: 1.0}}
	vec := []*store.VectorResult{{ID: "a", Score: 1.0}}

	first := f.Fuse(keyword, vec, weights)
	second := f.Fuse(keyword, vec, weights)

	require.Len(t, first, 2)
	for i := range first {
		assert.Equal(t, first[i].DocumentID, second[i].DocumentID, "ordering must be stable")
	}
}

// =============================================================================
// MakeDecision Tests
// =============================================================================

func TestMakeDecision(t *testing.T) {
	tests := []struct {
		name         string
		queryType    query.Type
		hasDocuments bool
		historyLen   int
		wantStrategy string
	}{
		{name: "greeting", queryType: query.TypeGreeting, wantStrategy: StrategyGreeting},
		{name: "direct answer", queryType: query.TypeDirectAnswer, wantStrategy: StrategyDirectAnswer},
		{name: "out of scope", queryType: query.TypeOutOfScope, wantStrategy: StrategyOutOfScope},
		{name: "retrieval with documents", queryType: query.TypeRetrieval, hasDocuments: true, wantStrategy: StrategyRetrievalAugmented},
		{name: "retrieval empty collection", queryType: query.TypeRetrieval, hasDocuments: false, wantStrategy: StrategyGeneralKnowledge},
		{name: "ambiguous with history", queryType: query.TypeAmbiguous, hasDocuments: true, historyLen: 2, wantStrategy: StrategyClarification},
		{name: "ambiguous no history with documents", queryType: query.TypeAmbiguous, hasDocuments: true, wantStrategy: StrategyRetrievalAugmented},
		{name: "ambiguous no history no documents", queryType: query.TypeAmbiguous, wantStrategy: StrategyClarification},
		{name: "invalid maps to clarification", queryType: query.TypeInvalid, wantStrategy: StrategyClarification},
		{name: "unknown subtype with documents", queryType: query.Type("FACTUAL"), hasDocuments: true, wantStrategy: StrategyRetrievalAugmented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := MakeDecision(tt.queryType, tt.hasDocuments, tt.historyLen, "en")
			assert.Equal(t, tt.wantStrategy, d.Strategy)
			assert.Greater(t, d.Confidence, 0.0)
			assert.LessOrEqual(t, d.Confidence, 1.0)
		})
	}
}
