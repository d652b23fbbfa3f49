// Package model defines the core data types shared across vecsearch.
//
//   - VectorRecord: a stable ID, a fixed-length embedding, and optional
//     filterable attributes
//   - Library: a named collection of records, owned by the record source
//
// Identifiers are UUID strings; NewID generates them.
package model
