package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-sifter/internal/types"
)

func TestDedupKey_NormalizesText(t *testing.T) {
	start := &types.YearMonth{Year: 2021, Month: 3}
	a := DedupKey("Développeur Go", "ACME", start, nil)
	b := DedupKey("developpeur  go", "acme", &types.YearMonth{Year: 2021, Month: 3}, nil)
	assert.Equal(t, a, b)

	c := DedupKey("Développeur Go", "ACME", start, &types.YearMonth{Year: 2022})
	assert.NotEqual(t, a, c)
}

func TestDeduplicate_KeepsHighestConfidence(t *testing.T) {
	start := &types.YearMonth{Year: 2020}
	records := []types.Record{
		{Title: "Engineer", Organization: "ACME", StartDate: start, Confidence: 0.6, LineIndex: 1},
		{Title: "Analyst", Organization: "Globex", Confidence: 0.7, LineIndex: 4},
		{Title: "engineer", Organization: "Acme", StartDate: start, Confidence: 0.9, LineIndex: 8},
	}

	out, removed := Deduplicate(records)
	require.Len(t, out, 2)
	assert.Equal(t, 1, removed)
	assert.Equal(t, "Analyst", out[0].Title)
	assert.Equal(t, 8, out[1].LineIndex)
	assert.Equal(t, 0.9, out[1].Confidence)
}

func TestDeduplicate_TieKeepsEarliestLine(t *testing.T) {
	records := []types.Record{
		{Title: "Engineer", Organization: "ACME", Confidence: 0.8, LineIndex: 10},
		{Title: "Engineer", Organization: "ACME", Confidence: 0.8, LineIndex: 2},
	}

	out, removed := Deduplicate(records)
	require.Len(t, out, 1)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, out[0].LineIndex)
}

func TestDeduplicate_NoKeyCollisionsAfterwards(t *testing.T) {
	records := []types.Record{
		{Title: "A", Organization: "X", Confidence: 0.5},
		{Title: "a", Organization: "x", Confidence: 0.4},
		{Title: "A", Organization: "X", Confidence: 0.7},
		{Title: "B", Organization: "X", Confidence: 0.7},
	}

	out, _ := Deduplicate(records)
	seen := map[string]bool{}
	for _, r := range out {
		key := RecordKey(r)
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}

func TestSortRecords(t *testing.T) {
	records := []types.Record{
		{Title: "b", LineIndex: 3},
		{Title: "a", LineIndex: 3},
		{Title: "c", LineIndex: 1},
	}
	SortRecords(records)
	assert.Equal(t, []string{"c", "a", "b"}, []string{records[0].Title, records[1].Title, records[2].Title})
}
