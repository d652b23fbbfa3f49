// Package store provides the in-memory reference implementation of the
// record source the engine builds indexes from. Libraries hold records in
// insertion order; listing a library returns a stable snapshot of deep
// copies, so callers and index builds never share mutable state.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/vecsearch/container"
	"github.com/hupe1980/vecsearch/model"
)

var (
	// ErrNotFound is returned when a library or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating a library whose ID is
	// already taken.
	ErrAlreadyExists = errors.New("already exists")
)

// libraryRecords holds one library's records plus their insertion order.
type libraryRecords struct {
	records *container.Map[string, model.VectorRecord]
	order   *container.List[string]
}

func newLibraryRecords() *libraryRecords {
	return &libraryRecords{
		records: container.NewMap[string, model.VectorRecord](),
		order:   container.NewList[string](),
	}
}

// Memory is a concurrency-safe in-memory record store. Operations on
// different libraries never contend.
type Memory struct {
	libraries *container.Map[string, model.Library]
	records   *container.Map[string, *libraryRecords]
}

// New creates an empty store.
func New() *Memory {
	return &Memory{
		libraries: container.NewMap[string, model.Library](),
		records:   container.NewMap[string, *libraryRecords](),
	}
}

// CreateLibrary registers a new library.
func (m *Memory) CreateLibrary(ctx context.Context, lib model.Library) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.libraries.Contains(lib.ID) {
		return fmt.Errorf("%w: library %q", ErrAlreadyExists, lib.ID)
	}

	m.libraries.Set(lib.ID, lib)
	m.records.Set(lib.ID, newLibraryRecords())

	return nil
}

// Library returns the library with the given ID.
func (m *Memory) Library(ctx context.Context, id string) (model.Library, error) {
	if err := ctx.Err(); err != nil {
		return model.Library{}, err
	}

	lib, ok := m.libraries.Get(id)
	if !ok {
		return model.Library{}, fmt.Errorf("%w: library %q", ErrNotFound, id)
	}

	return lib, nil
}

// Libraries returns all registered libraries.
func (m *Memory) Libraries(ctx context.Context) ([]model.Library, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	libs := make([]model.Library, 0, m.libraries.Len())
	for lib := range m.libraries.Values() {
		libs = append(libs, lib)
	}

	return libs, nil
}

// DeleteLibrary removes a library and all of its records.
func (m *Memory) DeleteLibrary(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !m.libraries.Delete(id) {
		return fmt.Errorf("%w: library %q", ErrNotFound, id)
	}

	m.records.Delete(id)

	return nil
}

// UpsertRecord inserts or replaces a record. A replaced record keeps its
// original insertion position; a new one appends.
func (m *Memory) UpsertRecord(ctx context.Context, libraryID string, rec model.VectorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lr, ok := m.records.Get(libraryID)
	if !ok {
		return fmt.Errorf("%w: library %q", ErrNotFound, libraryID)
	}

	existed := lr.records.Contains(rec.ID)

	// Store the record before exposing its ID in the order list, so a
	// concurrent listing never sees an ID it cannot resolve.
	lr.records.Set(rec.ID, rec.Clone())

	if !existed {
		lr.order.Append(rec.ID)
	}

	return nil
}

// DeleteRecord removes a record from a library.
func (m *Memory) DeleteRecord(ctx context.Context, libraryID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lr, ok := m.records.Get(libraryID)
	if !ok {
		return fmt.Errorf("%w: library %q", ErrNotFound, libraryID)
	}

	if !lr.order.Remove(id) {
		return fmt.Errorf("%w: record %q", ErrNotFound, id)
	}

	lr.records.Delete(id)

	return nil
}

// GetRecord returns a deep copy of a single record.
func (m *Memory) GetRecord(ctx context.Context, libraryID, id string) (model.VectorRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.VectorRecord{}, err
	}

	lr, ok := m.records.Get(libraryID)
	if !ok {
		return model.VectorRecord{}, fmt.Errorf("%w: library %q", ErrNotFound, libraryID)
	}

	rec, ok := lr.records.Get(id)
	if !ok {
		return model.VectorRecord{}, fmt.Errorf("%w: record %q", ErrNotFound, id)
	}

	return rec.Clone(), nil
}

// ListVectorRecords returns deep copies of a library's records in insertion
// order. The result is a snapshot: concurrent mutations affect neither the
// slice nor the records in it.
func (m *Memory) ListVectorRecords(ctx context.Context, libraryID string) ([]model.VectorRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lr, ok := m.records.Get(libraryID)
	if !ok {
		return nil, fmt.Errorf("%w: library %q", ErrNotFound, libraryID)
	}

	ids := lr.order.Snapshot()

	records := make([]model.VectorRecord, 0, len(ids))
	for _, id := range ids {
		rec, ok := lr.records.Get(id)
		if !ok {
			// Record deleted between the order snapshot and the lookup.
			continue
		}
		records = append(records, rec.Clone())
	}

	return records, nil
}

// RecordCount returns the number of records in a library.
func (m *Memory) RecordCount(ctx context.Context, libraryID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	lr, ok := m.records.Get(libraryID)
	if !ok {
		return 0, fmt.Errorf("%w: library %q", ErrNotFound, libraryID)
	}

	return lr.order.Len(), nil
}
