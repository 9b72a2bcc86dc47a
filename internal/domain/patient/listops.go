package patient

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ehr/intake/internal/platform/apperr"
)

// Element is implemented by every list item of the aggregate.
type Element[T any] interface {
	*T
	ElementID() uuid.UUID
	SetElementID(uuid.UUID)
}

// Ref addresses a list element either by position or by surrogate id.
type Ref struct {
	Index int
	ID    uuid.UUID
}

// ByID reports whether the ref carries an element id.
func (r Ref) ByID() bool { return r.ID != uuid.Nil }

func (r Ref) String() string {
	if r.ByID() {
		return r.ID.String()
	}
	return strconv.Itoa(r.Index)
}

// ParseRef reads a path parameter that is either a non-negative integer
// position or an element id.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return Ref{}, apperr.NotFound("no element at index %d", n)
		}
		return Ref{Index: n}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return Ref{}, apperr.Invalid("index", apperr.ConstraintFormat, "%q is neither an index nor an element id", s)
	}
	return Ref{ID: id}, nil
}

// Locate returns the position of ref in list.
func Locate[T any, P Element[T]](list []T, ref Ref) (int, error) {
	if !ref.ByID() {
		if ref.Index < 0 || ref.Index >= len(list) {
			return -1, apperr.NotFound("no element at index %d", ref.Index)
		}
		return ref.Index, nil
	}
	for i := range list {
		if P(&list[i]).ElementID() == ref.ID {
			return i, nil
		}
	}
	return -1, apperr.NotFound("no element with id %s", ref.ID)
}

// Append adds v with a fresh id.
func Append[T any, P Element[T]](list []T, v T) []T {
	P(&v).SetElementID(uuid.New())
	return append(list, v)
}

// ReplaceAt swaps the element at ref for v. The element keeps its id.
func ReplaceAt[T any, P Element[T]](list []T, ref Ref, v T) ([]T, error) {
	i, err := Locate[T, P](list, ref)
	if err != nil {
		return nil, err
	}
	P(&v).SetElementID(P(&list[i]).ElementID())
	out := append([]T(nil), list...)
	out[i] = v
	return out, nil
}

// RemoveAt deletes the element at ref.
func RemoveAt[T any, P Element[T]](list []T, ref Ref) ([]T, error) {
	i, err := Locate[T, P](list, ref)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), nil
}

// Supplied returns the ids of incoming that the caller named explicitly
// and that belong to existing. Ids ReplaceAll hands out by position are
// not included.
func Supplied[T any, P Element[T]](existing, incoming []T) map[uuid.UUID]bool {
	known := make(map[uuid.UUID]bool, len(existing))
	for i := range existing {
		known[P(&existing[i]).ElementID()] = true
	}
	out := make(map[uuid.UUID]bool, len(incoming))
	for i := range incoming {
		if id := P(&incoming[i]).ElementID(); known[id] {
			out[id] = true
		}
	}
	return out
}

// ReplaceAll swaps the whole list. An incoming element keeps an id that
// already belongs to the list; otherwise it inherits the id at its
// position, so replacing a list with itself leaves it unchanged.
func ReplaceAll[T any, P Element[T]](existing, incoming []T) []T {
	known := make(map[uuid.UUID]bool, len(existing))
	for i := range existing {
		known[P(&existing[i]).ElementID()] = true
	}
	used := make(map[uuid.UUID]bool, len(incoming))
	out := make([]T, len(incoming))
	copy(out, incoming)
	for i := range out {
		if id := P(&out[i]).ElementID(); known[id] && !used[id] {
			used[id] = true
			continue
		}
		P(&out[i]).SetElementID(uuid.Nil)
	}
	for i := range out {
		if P(&out[i]).ElementID() != uuid.Nil {
			continue
		}
		id := uuid.Nil
		if i < len(existing) {
			if pos := P(&existing[i]).ElementID(); !used[pos] {
				id = pos
			}
		}
		if id == uuid.Nil {
			id = uuid.New()
		}
		used[id] = true
		P(&out[i]).SetElementID(id)
	}
	return out
}
