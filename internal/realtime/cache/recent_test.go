package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dropscout/internal/contracts"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func result(name string, score int, at time.Time) contracts.ValidationResult {
	return contracts.ValidationResult{ProductName: name, CompositeScore: score, EvaluatedAt: at}
}

func TestRecentResults_Update(t *testing.T) {
	c := NewRecentResults(10, nil)

	assert.True(t, c.Update(result("a", 10, base)))
	assert.True(t, c.Update(result("a", 20, base.Add(time.Minute))))
	assert.False(t, c.Update(result("a", 5, base.Add(-time.Hour))), "older result must be rejected")

	got, ok := c.Get(contracts.ProductRef{Name: "a"})
	require.True(t, ok)
	assert.Equal(t, 20, got.CompositeScore)
	assert.Equal(t, 1, c.Len())
}

func TestRecentResults_EvictsOldest(t *testing.T) {
	c := NewRecentResults(2, nil)
	c.Update(result("a", 1, base))
	c.Update(result("b", 2, base.Add(time.Minute)))
	c.Update(result("c", 3, base.Add(2*time.Minute)))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(contracts.ProductRef{Name: "a"})
	assert.False(t, ok)
}

func TestRecentResults_RejectsResultOlderThanAllWhenFull(t *testing.T) {
	c := NewRecentResults(2, nil)
	require.True(t, c.Update(result("a", 1, base)))
	require.True(t, c.Update(result("b", 2, base.Add(time.Minute))))

	assert.False(t, c.Update(result("old", 3, base.Add(-time.Hour))))
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(contracts.ProductRef{Name: "old"})
	assert.False(t, ok)
	_, ok = c.Get(contracts.ProductRef{Name: "a"})
	assert.True(t, ok)
}

func TestRecentResults_Snapshot(t *testing.T) {
	c := NewRecentResults(0, nil)
	c.Update(result("a", 1, base))
	c.Update(result("b", 2, base.Add(2*time.Minute)))
	c.Update(result("c", 3, base.Add(time.Minute)))

	snap := c.Snapshot(0)
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{snap[0].ProductName, snap[1].ProductName, snap[2].ProductName})

	assert.Len(t, c.Snapshot(2), 2)
}

func TestRecentResults_Prune(t *testing.T) {
	c := NewRecentResults(0, nil)
	c.Update(result("a", 1, base))
	c.Update(result("b", 2, base.Add(time.Hour)))

	assert.Equal(t, 1, c.Prune(base.Add(time.Minute)))
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(contracts.ProductRef{Name: "b"})
	assert.True(t, ok)
	assert.Equal(t, 0, c.Prune(base))
}
