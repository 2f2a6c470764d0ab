package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache_RoundTrip(t *testing.T) {
	c := NewLRUResultCache(10)

	resp := &Response{Answer: "osmosis answer"}
	c.SetQueryResult("what is osmosis", "bio", resp)

	got, ok := c.GetQueryResult("what is osmosis", "bio")
	require.True(t, ok)
	assert.Equal(t, "osmosis answer", got.Answer)

	_, ok = c.GetQueryResult("what is osmosis", "chem")
	assert.False(t, ok, "entries are scoped to their collection")
}

func TestResultCache_PipeInKeyDoesNotAlias(t *testing.T) {
	c := NewLRUResultCache(10)

	// A "|" survives sanitization in query text and is legal in a
	// collection id, so these pairs must stay distinct entries.
	c.SetQueryResult("acid|base", "chem", &Response{Answer: "chem answer"})

	_, ok := c.GetQueryResult("acid", "base|chem")
	assert.False(t, ok, "distinct (query, collection) pairs must not share an entry")

	got, ok := c.GetQueryResult("acid|base", "chem")
	require.True(t, ok)
	assert.Equal(t, "chem answer", got.Answer)
}

func TestResultCache_Stats(t *testing.T) {
	c := NewLRUResultCache(10)

	c.SetQueryResult("q", "coll", &Response{Answer: "a"})
	c.GetQueryResult("q", "coll")
	c.GetQueryResult("missing", "coll")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}
