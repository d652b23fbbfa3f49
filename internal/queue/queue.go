// Package queue provides a bounded top-k selector used by the index search
// paths.
package queue

// Item is a scored candidate. Pos is the candidate's position in the index
// snapshot, which doubles as its insertion order.
type Item struct {
	Pos   uint32
	Score float32
}

// worse reports whether a ranks after b: lower score loses, and equal scores
// resolve to the higher position. Keeping the comparison in one place makes
// bounded selection agree exactly with a stable descending sort.
func worse(a, b Item) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}

	return a.Pos > b.Pos
}

// TopK keeps the k best items seen so far. The backing heap is rooted at the
// current worst kept item, so each new candidate costs one comparison when it
// does not qualify.
type TopK struct {
	k     int
	items []Item
}

// NewTopK creates a selector for the k best items. k must be positive.
func NewTopK(k int) *TopK {
	return &TopK{
		k:     k,
		items: make([]Item, 0, k),
	}
}

// Len returns the number of items currently kept.
func (q *TopK) Len() int { return len(q.items) }

// Offer considers an item for the top k. Items that rank after the current
// worst kept item are discarded.
func (q *TopK) Offer(item Item) {
	if len(q.items) < q.k {
		q.items = append(q.items, item)
		q.siftUp(len(q.items) - 1)

		return
	}

	if worse(item, q.items[0]) {
		return
	}

	q.items[0] = item
	q.siftDown(0)
}

// Ranked drains the selector and returns the kept items best-first. Equal
// scores come out in ascending position order.
func (q *TopK) Ranked() []Item {
	ranked := make([]Item, len(q.items))
	for i := len(q.items) - 1; i >= 0; i-- {
		ranked[i] = q.pop()
	}

	return ranked
}

// pop removes and returns the worst kept item.
func (q *TopK) pop() Item {
	n := len(q.items)
	root := q.items[0]
	last := q.items[n-1]
	q.items = q.items[:n-1]

	if n-1 > 0 {
		q.items[0] = last
		q.siftDown(0)
	}

	return root
}

func (q *TopK) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !worse(q.items[i], q.items[p]) {
			return
		}

		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *TopK) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}

		next := l
		if r := l + 1; r < n && worse(q.items[r], q.items[l]) {
			next = r
		}

		if !worse(q.items[next], q.items[i]) {
			return
		}

		q.items[i], q.items[next] = q.items[next], q.items[i]
		i = next
	}
}
