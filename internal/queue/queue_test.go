package queue

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopK(t *testing.T) {
	t.Run("keeps highest scores", func(t *testing.T) {
		q := NewTopK(2)
		q.Offer(Item{Pos: 0, Score: 0.1})
		q.Offer(Item{Pos: 1, Score: 0.9})
		q.Offer(Item{Pos: 2, Score: 0.5})
		q.Offer(Item{Pos: 3, Score: 0.7})

		ranked := q.Ranked()
		require.Len(t, ranked, 2)
		assert.Equal(t, Item{Pos: 1, Score: 0.9}, ranked[0])
		assert.Equal(t, Item{Pos: 3, Score: 0.7}, ranked[1])
	})

	t.Run("fewer items than k", func(t *testing.T) {
		q := NewTopK(10)
		q.Offer(Item{Pos: 0, Score: 0.2})
		q.Offer(Item{Pos: 1, Score: 0.8})

		ranked := q.Ranked()
		require.Len(t, ranked, 2)
		assert.Equal(t, uint32(1), ranked[0].Pos)
		assert.Equal(t, uint32(0), ranked[1].Pos)
	})

	t.Run("ties resolve to lower position", func(t *testing.T) {
		q := NewTopK(3)
		q.Offer(Item{Pos: 5, Score: 0.5})
		q.Offer(Item{Pos: 1, Score: 0.5})
		q.Offer(Item{Pos: 9, Score: 0.5})
		q.Offer(Item{Pos: 3, Score: 0.5})

		ranked := q.Ranked()
		require.Len(t, ranked, 3)
		assert.Equal(t, uint32(1), ranked[0].Pos)
		assert.Equal(t, uint32(3), ranked[1].Pos)
		assert.Equal(t, uint32(5), ranked[2].Pos)
	})

	t.Run("tie with current worst prefers earlier position", func(t *testing.T) {
		q := NewTopK(1)
		q.Offer(Item{Pos: 0, Score: 0.5})
		q.Offer(Item{Pos: 1, Score: 0.5})

		ranked := q.Ranked()
		require.Len(t, ranked, 1)
		assert.Equal(t, uint32(0), ranked[0].Pos)
	})

	t.Run("matches stable sort", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))

		// Coarse scores force plenty of ties.
		items := make([]Item, 200)
		for i := range items {
			items[i] = Item{Pos: uint32(i), Score: float32(rng.Intn(10)) / 10}
		}

		const k = 25

		q := NewTopK(k)
		for _, it := range items {
			q.Offer(it)
		}

		want := make([]Item, len(items))
		copy(want, items)
		sort.SliceStable(want, func(i, j int) bool {
			return want[i].Score > want[j].Score
		})

		assert.Equal(t, want[:k], q.Ranked())
	})
}
