package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/intake/internal/platform/apperr"
	"github.com/ehr/intake/internal/platform/db"
)

// PGStore keeps each patient in one intake_patient row with a JSONB
// column per section.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// sectionCols lists the JSONB columns in Sections order.
var sectionCols = func() string {
	names := make([]string, len(Sections))
	for i, s := range Sections {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}()

var patientCols = `id, ` + sectionCols + `, version, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	raws := make([][]byte, len(Sections))
	dest := make([]any, 0, len(Sections)+4)
	dest = append(dest, &p.ID)
	for i := range raws {
		dest = append(dest, &raws[i])
	}
	dest = append(dest, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	for i, s := range Sections {
		if err := p.decodeSection(s, raws[i]); err != nil {
			return nil, fmt.Errorf("decode %s: %w", s, err)
		}
	}
	p.ensureLists()
	return &p, nil
}

func (s *PGStore) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.ensureLists()
	args := []any{p.ID, p.Name.First, p.Name.Last, p.DateOfBirth}
	placeholders := make([]string, len(Sections))
	for i, sec := range Sections {
		raw, err := p.encodeSection(sec)
		if err != nil {
			return apperr.Storage(err, "encode %s", sec)
		}
		args = append(args, raw)
		placeholders[i] = fmt.Sprintf("$%d", i+5)
	}
	err := db.Conn(ctx, s.pool).QueryRow(ctx, `
		INSERT INTO intake_patient (id, first_name, last_name, date_of_birth, `+sectionCols+`)
		VALUES ($1, $2, $3, NULLIF($4, '')::date, `+strings.Join(placeholders, ", ")+`)
		RETURNING version, created_at, updated_at`, args...,
	).Scan(&p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return apperr.Storage(err, "create patient")
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(db.Conn(ctx, s.pool).QueryRow(ctx,
		`SELECT `+patientCols+` FROM intake_patient WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, id)
	}
	return p, nil
}

func (s *PGStore) List(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	q = strings.TrimSpace(q)
	const where = `WHERE $1 = '' OR (first_name || ' ' || last_name) ILIKE '%' || $1 || '%'`

	conn := db.Conn(ctx, s.pool)
	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM intake_patient `+where, q).Scan(&total); err != nil {
		return nil, 0, apperr.Storage(err, "count patients")
	}
	rows, err := conn.Query(ctx, `SELECT `+patientCols+` FROM intake_patient `+where+`
		ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, q, limit, offset)
	if err != nil {
		return nil, 0, apperr.Storage(err, "list patients")
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, apperr.Storage(err, "scan patient")
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Storage(err, "list patients")
	}
	return items, total, nil
}

// Apply locks the row, runs mutate against the current aggregate and
// updates only the columns owned by section.
func (s *PGStore) Apply(ctx context.Context, id uuid.UUID, section Section, mutate Mutation) (*Patient, error) {
	if (&Patient{}).ptr(section) == nil {
		return nil, apperr.NotFound("unknown section %q", section)
	}
	var out *Patient
	err := db.WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		p, err := scanPatient(tx.QueryRow(ctx,
			`SELECT `+patientCols+` FROM intake_patient WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return translate(err, id)
		}
		if err := mutate(p); err != nil {
			return err
		}
		raw, err := p.encodeSection(section)
		if err != nil {
			return apperr.Storage(err, "encode %s", section)
		}

		var row pgx.Row
		if section == SectionDemographics {
			row = tx.QueryRow(ctx, `
				UPDATE intake_patient SET demographics = $2, first_name = $3, last_name = $4,
					date_of_birth = NULLIF($5, '')::date, version = version + 1, updated_at = NOW()
				WHERE id = $1
				RETURNING version, updated_at`,
				id, raw, p.Name.First, p.Name.Last, p.DateOfBirth)
		} else {
			col := pgx.Identifier{string(section)}.Sanitize()
			row = tx.QueryRow(ctx, `
				UPDATE intake_patient SET `+col+` = $2, version = version + 1, updated_at = NOW()
				WHERE id = $1
				RETURNING version, updated_at`, id, raw)
		}
		if err := row.Scan(&p.Version, &p.UpdatedAt); err != nil {
			return apperr.Storage(err, "update %s", section)
		}
		out = p
		return nil
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.Storage(err, "apply %s", section)
	}
	return out, nil
}

func translate(err error, id uuid.UUID) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("patient %s not found", id)
	}
	return apperr.Storage(err, "load patient")
}
