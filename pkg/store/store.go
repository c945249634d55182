// Package store persists annotation records: the source box, the recipe that
// was applied and the resulting box, so a dataset's augmented labels can be
// audited and re-exported.
//
// Three backends implement [Store]:
//   - [MemoryStore]: in-process, for tests and the ephemeral API server
//   - [FileStore]: one JSON file per record, for CLI use
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// Record IDs are random UUIDs assigned by [Store.Put] when empty.
package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/augment/pkg/augment"
	"github.com/matzehuels/augment/pkg/boxtf"
	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/geom"
)

// Record is one augmented sample.
type Record struct {
	ID           string          `json:"id" bson:"_id"`
	Source       string          `json:"source,omitempty" bson:"source,omitempty"`
	Output       string          `json:"output,omitempty" bson:"output,omitempty"`
	Recipe       augment.Recipe  `json:"recipe" bson:"recipe"`
	RecipeHash   string          `json:"recipe_hash" bson:"recipe_hash"`
	SourceExtent geom.Extent     `json:"source_extent" bson:"source_extent"`
	Extent       geom.Extent     `json:"extent" bson:"extent"`
	SourceBox    geom.OptBox     `json:"source_box" bson:"source_box"`
	Box          geom.OptBox     `json:"box" bson:"box"`
	Warnings     []boxtf.Warning `json:"warnings,omitempty" bson:"warnings,omitempty"`
	CreatedAt    time.Time       `json:"created_at" bson:"created_at"`
}

// ListOptions filters [Store.List].
type ListOptions struct {
	// Source keeps only records of this source path when non-empty.
	Source string

	// Limit caps the number of records; zero means no limit.
	Limit int
}

// Store is the interface for record storage backends.
type Store interface {
	// Put inserts or replaces a record, assigning ID and CreatedAt if unset.
	Put(ctx context.Context, r *Record) error

	// Get returns the record or a RECORD_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns matching records, newest first.
	List(ctx context.Context, opts ListOptions) ([]*Record, error)

	// Delete removes a record or returns RECORD_NOT_FOUND.
	Delete(ctx context.Context, id string) error

	Close() error
}

// NewID returns a fresh record ID.
func NewID() string { return uuid.NewString() }

// prepare fills in ID and CreatedAt.
func prepare(r *Record) error {
	if r == nil {
		return errors.New(errors.ErrCodeInvalidInput, "record is nil")
	}
	if r.ID == "" {
		r.ID = NewID()
	} else if err := errors.ValidateRecordID(r.ID); err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeRecordNotFound, "record %s not found", id)
}

// filterSort applies opts to records loaded by an unindexed backend.
func filterSort(all []*Record, opts ListOptions) []*Record {
	out := make([]*Record, 0, len(all))
	for _, r := range all {
		if opts.Source == "" || r.Source == opts.Source {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}
