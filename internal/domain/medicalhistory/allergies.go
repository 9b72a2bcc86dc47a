package medicalhistory

import (
	"context"

	"github.com/google/uuid"

	"github.com/ehr/intake/internal/domain/allergy"
	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/platform/attachment"
	"github.com/ehr/intake/internal/platform/respond"
)

// allergyKind routes the medical-history allergy list to the patient's
// single allergy list, tagging new rows as medical history.
type allergyKind struct {
	svc *allergy.Service
}

func (k allergyKind) list(ctx context.Context, id uuid.UUID) (any, error) {
	return k.svc.List(ctx, id)
}

func (k allergyKind) add(ctx context.Context, id uuid.UUID, raw []byte) (any, error) {
	var req allergy.Request
	if err := respond.Decode(raw, &req); err != nil {
		return nil, err
	}
	return k.svc.Add(ctx, id, []allergy.Request{req})
}

func (k allergyKind) replace(ctx context.Context, id uuid.UUID, raw []byte) (any, error) {
	var reqs []allergy.Request
	if err := respond.Decode(raw, &reqs); err != nil {
		return nil, err
	}
	return k.svc.Replace(ctx, id, reqs)
}

func (k allergyKind) updateAt(ctx context.Context, id uuid.UUID, ref patient.Ref, raw []byte) (any, error) {
	var req allergy.Request
	if err := respond.Decode(raw, &req); err != nil {
		return nil, err
	}
	return k.svc.UpdateAt(ctx, id, ref, req)
}

func (k allergyKind) removeAt(ctx context.Context, id uuid.UUID, ref patient.Ref) (any, error) {
	return k.svc.RemoveAt(ctx, id, ref)
}

func (k allergyKind) clear(ctx context.Context, id uuid.UUID) (any, error) {
	return k.svc.Clear(ctx, id)
}

func (k allergyKind) acceptsFiles() bool { return false }

func (k allergyKind) attach(context.Context, uuid.UUID, patient.Ref, *attachment.Reference) error {
	return nil
}
