package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEqual(t *testing.T) {
	t.Run("same kind", func(t *testing.T) {
		assert.True(t, Int(42).Equal(Int(42)))
		assert.False(t, Int(42).Equal(Int(43)))
		assert.True(t, Float(3.14).Equal(Float(3.14)))
		assert.True(t, String("tech").Equal(String("tech")))
		assert.False(t, String("tech").Equal(String("Tech")))
		assert.True(t, Bool(true).Equal(Bool(true)))
		assert.False(t, Bool(true).Equal(Bool(false)))
		assert.True(t, Null().Equal(Null()))
	})

	t.Run("numeric across kinds", func(t *testing.T) {
		assert.True(t, Int(1).Equal(Float(1.0)))
		assert.True(t, Float(1.0).Equal(Int(1)))
		assert.False(t, Int(1).Equal(Float(1.5)))
		assert.True(t, Int(0).Equal(Float(0)))
	})

	t.Run("mismatched kinds", func(t *testing.T) {
		assert.False(t, Int(1).Equal(String("1")))
		assert.False(t, Bool(false).Equal(Null()))
		assert.False(t, String("").Equal(Null()))
	})

	t.Run("arrays elementwise", func(t *testing.T) {
		a := Array(String("a"), Int(1))
		assert.True(t, a.Equal(Array(String("a"), Int(1))))
		assert.True(t, a.Equal(Array(String("a"), Float(1.0))))
		assert.False(t, a.Equal(Array(Int(1), String("a"))))
		assert.False(t, a.Equal(Array(String("a"))))
	})

	t.Run("invalid never equal", func(t *testing.T) {
		assert.False(t, Value{}.Equal(Value{}))
		assert.False(t, Value{}.Equal(Null()))
	})
}

func TestValueKey(t *testing.T) {
	t.Run("agrees with equal for integral numerics", func(t *testing.T) {
		assert.Equal(t, Int(1).Key(), Float(1.0).Key())
		assert.Equal(t, Int(-7).Key(), Float(-7.0).Key())
		assert.NotEqual(t, Int(1).Key(), Float(1.5).Key())
	})

	t.Run("distinct kinds stay distinct", func(t *testing.T) {
		assert.NotEqual(t, Int(1).Key(), String("1").Key())
		assert.NotEqual(t, Bool(true).Key(), Int(1).Key())
		assert.NotEqual(t, Null().Key(), String("null").Key())
	})

	t.Run("arrays compose element keys", func(t *testing.T) {
		assert.Equal(t, Array(Int(1), Int(2)).Key(), Array(Float(1.0), Int(2)).Key())
		assert.NotEqual(t, Array(Int(1)).Key(), Array(Int(1), Int(2)).Key())
		assert.NotEqual(t, Array().Key(), Null().Key())
	})
}

func TestValueAccessors(t *testing.T) {
	i, ok := Int(42).AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(42), i)

	_, ok = Int(42).AsString()
	assert.False(t, ok)

	s, ok := String("x").AsString()
	require.True(t, ok)
	assert.Equal(t, "x", s)

	a, ok := Array(Int(1)).AsArray()
	require.True(t, ok)
	assert.Len(t, a, 1)
}

func TestValueJSONRoundTrip(t *testing.T) {
	doc := Document{
		"category": String("tech"),
		"year":     Int(2024),
		"score":    Float(0.5),
		"tags":     Array(String("a"), String("b")),
		"archived": Bool(false),
		"note":     Null(),
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Len(t, decoded, len(doc))
	for k, v := range doc {
		assert.True(t, decoded[k].Equal(v), "key %q", k)
	}
}

func TestDocumentClone(t *testing.T) {
	doc := Document{
		"tags": Array(String("a")),
		"year": Int(2024),
	}

	clone := doc.Clone()
	clone["year"] = Int(2025)
	clone["tags"].A[0] = String("changed")

	assert.True(t, doc["year"].Equal(Int(2024)))
	assert.True(t, doc["tags"].A[0].Equal(String("a")))

	assert.Nil(t, Document(nil).Clone())
}

func TestFilterMatches(t *testing.T) {
	doc := Document{
		"category": String("tech"),
		"year":     Int(2024),
		"rating":   Float(4.0),
	}

	t.Run("all conditions must hold", func(t *testing.T) {
		assert.True(t, Filter{"category": String("tech")}.Matches(doc))
		assert.True(t, Filter{"category": String("tech"), "year": Int(2024)}.Matches(doc))
		assert.False(t, Filter{"category": String("tech"), "year": Int(2023)}.Matches(doc))
	})

	t.Run("missing key excludes", func(t *testing.T) {
		assert.False(t, Filter{"author": String("anyone")}.Matches(doc))
		assert.False(t, Filter{"author": Null()}.Matches(doc))
	})

	t.Run("empty filter matches everything", func(t *testing.T) {
		assert.True(t, Filter{}.Matches(doc))
		assert.True(t, Filter(nil).Matches(doc))
		assert.True(t, Filter{}.Matches(Document{}))
	})

	t.Run("numeric across kinds", func(t *testing.T) {
		assert.True(t, Filter{"rating": Int(4)}.Matches(doc))
		assert.True(t, Filter{"year": Float(2024.0)}.Matches(doc))
	})
}

func TestFilterClone(t *testing.T) {
	f := Filter{"tags": Array(String("a"))}

	clone := f.Clone()
	clone["tags"].A[0] = String("changed")
	clone["extra"] = Int(1)

	assert.True(t, f["tags"].A[0].Equal(String("a")))
	assert.Len(t, f, 1)

	assert.Nil(t, Filter(nil).Clone())
}
