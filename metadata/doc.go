// Package metadata provides typed attribute documents and equality
// filtering for vecsearch.
//
// Filtering is conjunctive: a Filter names attribute key/value pairs and a
// record matches only when every named key is present with an equal value.
// Records missing a filtered key are excluded.
//
// # Attribute Types
//
// Attribute values can be:
//
//   - String: metadata.String("tech")
//   - Int: metadata.Int(2024)
//   - Float: metadata.Float(3.14)
//   - Bool: metadata.Bool(true)
//   - Array: metadata.Array(metadata.String("a"), metadata.String("b"))
//   - Null: metadata.Null()
//
// Example:
//
//	doc := metadata.Document{
//	    "category":  metadata.String("tech"),
//	    "year":      metadata.Int(2024),
//	    "published": metadata.Bool(true),
//	}
//
// Int and Float compare numerically across kinds, so a filter carrying
// Int(2024) matches a document storing Float(2024.0).
//
// # Filtered Search
//
// Indexes pre-compile filters against a Roaring Bitmap inverted index
// built alongside each snapshot, intersecting posting lists instead of
// testing every record:
//
//	results, err := engine.Search(libraryID).
//	    Text("query").
//	    KNN(10).
//	    Filter(metadata.Filter{"category": metadata.String("tech")}).
//	    Execute(ctx)
package metadata
