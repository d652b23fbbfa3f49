package metadata

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// InvertedIndex maps attribute key/value pairs to the positions of the
// records carrying them. It is populated once while an index snapshot is
// built and read-only afterwards, so lookups need no locking.
type InvertedIndex struct {
	fields map[string]map[string]*roaring.Bitmap
}

// NewInvertedIndex creates an empty inverted index.
func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		fields: make(map[string]map[string]*roaring.Bitmap),
	}
}

// Add posts every attribute of the document under the given position.
func (ii *InvertedIndex) Add(pos uint32, doc Document) {
	for key, value := range doc {
		values, ok := ii.fields[key]
		if !ok {
			values = make(map[string]*roaring.Bitmap)
			ii.fields[key] = values
		}

		vk := value.Key()

		bm, ok := values[vk]
		if !ok {
			bm = roaring.New()
			values[vk] = bm
		}

		bm.Add(pos)
	}
}

// Compile intersects the posting lists of all filter conditions into a
// single bitmap of candidate positions.
//
// A nil result means the filter is empty and places no restriction. An
// empty bitmap means no record can match, which covers filters naming a
// key or value never posted.
func (ii *InvertedIndex) Compile(f Filter) *roaring.Bitmap {
	if len(f) == 0 {
		return nil
	}

	postings := make([]*roaring.Bitmap, 0, len(f))

	for key, value := range f {
		values, ok := ii.fields[key]
		if !ok {
			return roaring.New()
		}

		bm, ok := values[value.Key()]
		if !ok {
			return roaring.New()
		}

		postings = append(postings, bm)
	}

	// Intersect smallest-first to keep intermediate bitmaps small.
	sort.Slice(postings, func(i, j int) bool {
		return postings[i].GetCardinality() < postings[j].GetCardinality()
	})

	result := postings[0].Clone()
	for _, bm := range postings[1:] {
		result.And(bm)
		if result.IsEmpty() {
			break
		}
	}

	return result
}

// SizeInBytes returns the approximate heap footprint of all posting lists.
func (ii *InvertedIndex) SizeInBytes() uint64 {
	var total uint64
	for _, values := range ii.fields {
		for _, bm := range values {
			total += bm.GetSizeInBytes()
		}
	}
	return total
}
