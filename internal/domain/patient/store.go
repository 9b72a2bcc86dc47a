package patient

import (
	"context"

	"github.com/google/uuid"
)

// Mutation edits one section of a loaded patient. Returning an error
// aborts the write; nothing is persisted.
type Mutation func(p *Patient) error

// Store is the only component that reads or writes Patient records.
//
// Apply loads the patient, runs mutate and persists only the named
// section. The write is atomic per patient: a concurrent reader sees the
// section either before or after the mutation. Two writers to the same
// section are ordered by the store and the last one wins; writers to
// different sections do not overwrite each other.
type Store interface {
	Create(ctx context.Context, p *Patient) error
	Get(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error)
	Apply(ctx context.Context, id uuid.UUID, section Section, mutate Mutation) (*Patient, error)
}
