package medicalhistory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
	"github.com/ehr/intake/internal/platform/attachment"
	"github.com/ehr/intake/internal/platform/respond"
)

// Kind names as they appear in paths.
const (
	KindConditions        = "conditions"
	KindSurgeries         = "surgeries"
	KindAllergies         = "allergies"
	KindImmunizations     = "immunizations"
	KindLabReports        = "lab-reports"
	KindDiagnosticReports = "diagnostic-reports"
)

// Kinds lists the sub-lists of the medical history in display order.
var Kinds = []string{
	KindConditions, KindSurgeries, KindAllergies,
	KindImmunizations, KindLabReports, KindDiagnosticReports,
}

// kind is one sub-list. Payloads arrive undecoded so each kind binds its
// own request type.
type kind interface {
	list(ctx context.Context, id uuid.UUID) (any, error)
	add(ctx context.Context, id uuid.UUID, raw []byte) (any, error)
	replace(ctx context.Context, id uuid.UUID, raw []byte) (any, error)
	updateAt(ctx context.Context, id uuid.UUID, ref patient.Ref, raw []byte) (any, error)
	removeAt(ctx context.Context, id uuid.UUID, ref patient.Ref) (any, error)
	clear(ctx context.Context, id uuid.UUID) (any, error)
	attach(ctx context.Context, id uuid.UUID, ref patient.Ref, file *attachment.Reference) error
	acceptsFiles() bool
}

// record is implemented by the request type of each list kind.
type record[T any] interface {
	normalize(v *apperr.Validator, opts normalize.Options) T
}

type listKind[T any, P patient.Element[T], R record[T]] struct {
	name    string
	section patient.ListSection[T, P]
	opts    normalize.Options
	// file points at the element's attachment field; nil for kinds that
	// take no attachment.
	file func(elem *T) **attachment.Reference
}

func (k *listKind[T, P, R]) decodeOne(raw []byte) (T, error) {
	var r R
	var zero T
	if err := respond.Decode(raw, &r); err != nil {
		return zero, err
	}
	v := apperr.NewValidator()
	out := r.normalize(v, k.opts)
	return out, v.Err()
}

func (k *listKind[T, P, R]) decodeAll(raw []byte) ([]T, error) {
	var rs []R
	if err := respond.Decode(raw, &rs); err != nil {
		return nil, err
	}
	v := apperr.NewValidator()
	out := make([]T, 0, len(rs))
	for i := range rs {
		nv := v.Nested(fmt.Sprintf("%s[%d]", k.name, i))
		out = append(out, rs[i].normalize(nv, k.opts))
		v.Merge(nv)
	}
	return out, v.Err()
}

func (k *listKind[T, P, R]) list(ctx context.Context, id uuid.UUID) (any, error) {
	return k.section.Get(ctx, id)
}

func (k *listKind[T, P, R]) add(ctx context.Context, id uuid.UUID, raw []byte) (any, error) {
	return k.section.Add(ctx, id, func() ([]T, error) {
		item, err := k.decodeOne(raw)
		if err != nil {
			return nil, err
		}
		return []T{item}, nil
	})
}

func (k *listKind[T, P, R]) replace(ctx context.Context, id uuid.UUID, raw []byte) (any, error) {
	return k.section.Replace(ctx, id, func(current []T) ([]T, error) {
		next, err := k.decodeAll(raw)
		if err != nil || k.file == nil {
			return next, err
		}
		// Attachments are only set by upload. They follow the element ids
		// the payload names, never ids handed out by position.
		named := patient.Supplied[T, P](current, next)
		next = patient.ReplaceAll[T, P](current, next)
		for i := range next {
			id := P(&next[i]).ElementID()
			if !named[id] {
				continue
			}
			if j, err := patient.Locate[T, P](current, patient.Ref{ID: id}); err == nil {
				next[i] = k.keepFile(current[j], next[i])
			}
		}
		return next, nil
	})
}

func (k *listKind[T, P, R]) updateAt(ctx context.Context, id uuid.UUID, ref patient.Ref, raw []byte) (any, error) {
	return k.section.UpdateAt(ctx, id, ref, func(cur T) (T, error) {
		next, err := k.decodeOne(raw)
		if err != nil || k.file == nil {
			return next, err
		}
		return k.keepFile(cur, next), nil
	})
}

// keepFile copies the attachment of from onto to.
func (k *listKind[T, P, R]) keepFile(from, to T) T {
	*k.file(&to) = *k.file(&from)
	return to
}

func (k *listKind[T, P, R]) removeAt(ctx context.Context, id uuid.UUID, ref patient.Ref) (any, error) {
	return k.section.RemoveAt(ctx, id, ref)
}

func (k *listKind[T, P, R]) clear(ctx context.Context, id uuid.UUID) (any, error) {
	return k.section.Clear(ctx, id, nil)
}

func (k *listKind[T, P, R]) acceptsFiles() bool { return k.file != nil }

func (k *listKind[T, P, R]) attach(ctx context.Context, id uuid.UUID, ref patient.Ref, file *attachment.Reference) error {
	_, err := k.section.Modify(ctx, id, ref, func(elem *T) error {
		*k.file(elem) = file
		return nil
	})
	return err
}
