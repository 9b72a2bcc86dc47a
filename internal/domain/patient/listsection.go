package patient

import (
	"context"

	"github.com/google/uuid"
)

// ListSection binds the list operations of one list-valued sub-path of
// the aggregate to a Store. Every mutation runs inside Store.Apply, so an
// unknown patient is reported before the payload is looked at.
type ListSection[T any, P Element[T]] struct {
	Store   Store
	Section Section
	Of      func(p *Patient) *[]T
}

func (l ListSection[T, P]) Get(ctx context.Context, id uuid.UUID) ([]T, error) {
	p, err := l.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return *l.Of(p), nil
}

// Add appends the elements returned by build, each with a fresh id.
func (l ListSection[T, P]) Add(ctx context.Context, id uuid.UUID, build func() ([]T, error)) ([]T, error) {
	return l.apply(ctx, id, func(list *[]T) error {
		items, err := build()
		if err != nil {
			return err
		}
		for _, item := range items {
			*list = Append[T, P](*list, item)
		}
		return nil
	})
}

// Replace swaps the whole list for the one build returns. Ids are kept
// as ReplaceAll describes.
func (l ListSection[T, P]) Replace(ctx context.Context, id uuid.UUID, build func(current []T) ([]T, error)) ([]T, error) {
	return l.apply(ctx, id, func(list *[]T) error {
		next, err := build(*list)
		if err != nil {
			return err
		}
		*list = ReplaceAll[T, P](*list, next)
		return nil
	})
}

// UpdateAt replaces the element at ref with what build derives from it.
func (l ListSection[T, P]) UpdateAt(ctx context.Context, id uuid.UUID, ref Ref, build func(current T) (T, error)) ([]T, error) {
	return l.apply(ctx, id, func(list *[]T) error {
		i, err := Locate[T, P](*list, ref)
		if err != nil {
			return err
		}
		next, err := build((*list)[i])
		if err != nil {
			return err
		}
		*list, err = ReplaceAt[T, P](*list, ref, next)
		return err
	})
}

// Modify edits the element at ref in place.
func (l ListSection[T, P]) Modify(ctx context.Context, id uuid.UUID, ref Ref, edit func(elem *T) error) ([]T, error) {
	return l.apply(ctx, id, func(list *[]T) error {
		i, err := Locate[T, P](*list, ref)
		if err != nil {
			return err
		}
		return edit(&(*list)[i])
	})
}

func (l ListSection[T, P]) RemoveAt(ctx context.Context, id uuid.UUID, ref Ref) ([]T, error) {
	return l.apply(ctx, id, func(list *[]T) error {
		next, err := RemoveAt[T, P](*list, ref)
		if err != nil {
			return err
		}
		*list = next
		return nil
	})
}

// Clear empties the list, keeping the elements for which keep is true.
// A nil keep removes everything.
func (l ListSection[T, P]) Clear(ctx context.Context, id uuid.UUID, keep func(T) bool) ([]T, error) {
	return l.apply(ctx, id, func(list *[]T) error {
		next := make([]T, 0, len(*list))
		for _, item := range *list {
			if keep != nil && keep(item) {
				next = append(next, item)
			}
		}
		*list = next
		return nil
	})
}

func (l ListSection[T, P]) apply(ctx context.Context, id uuid.UUID, mutate func(list *[]T) error) ([]T, error) {
	p, err := l.Store.Apply(ctx, id, l.Section, func(p *Patient) error {
		return mutate(l.Of(p))
	})
	if err != nil {
		return nil, err
	}
	return *l.Of(p), nil
}
