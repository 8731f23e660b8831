package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/coach-call-booking/internal/model"
)

// ProgramRepo provides data access to the programs table.  Programs
// live in one of two partitions ("current"/"upcoming") and carry an
// integer rank (ord) that defines their display order within the
// partition.  Rank changes go through SwapOrderTx, which guards both
// writes with the rank values the caller read, so overlapping swaps on
// the same pair abort instead of corrupting the ordering.
type ProgramRepo struct {
	db *sql.DB
}

// NewProgramRepo returns a new ProgramRepo bound to the given database.
func NewProgramRepo(db *sql.DB) *ProgramRepo { return &ProgramRepo{db: db} }

// DB exposes the underlying handle so handlers can run the two-write
// swap inside a single transaction.
func (r *ProgramRepo) DB() *sql.DB { return r.db }

const programColumns = `id, partition_key, ord, title, subtitle, overview, image,
       content, outcomes, differences, format, audience, full_description,
       created_at, updated_at`

// scanProgram reads one programs row, unmarshalling the JSON columns.
// Empty JSON columns decode to nil slices which is fine for responses.
func scanProgram(scan func(dest ...any) error) (model.Program, error) {
	var p model.Program
	var content, outcomes, differences, format, audience []byte
	if err := scan(&p.ID, &p.Partition, &p.Order, &p.Title, &p.Subtitle, &p.Overview,
		&p.Image, &content, &outcomes, &differences, &format, &audience,
		&p.FullDescription, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return model.Program{}, err
	}
	for _, pair := range []struct {
		raw []byte
		dst any
	}{
		{content, &p.Content},
		{outcomes, &p.Outcomes},
		{differences, &p.Differences},
		{format, &p.Format},
		{audience, &p.Audience},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return model.Program{}, err
		}
	}
	return p, nil
}

// ListByPartition returns all programs of one partition sorted
// ascending by rank.  When the partition is empty an empty slice is
// returned.
func (r *ProgramRepo) ListByPartition(ctx context.Context, partition string) ([]model.Program, error) {
	const q = `SELECT ` + programColumns + ` FROM programs WHERE partition_key = ? ORDER BY ord ASC`
	rows, err := r.db.QueryContext(ctx, q, partition)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	programs := make([]model.Program, 0)
	for rows.Next() {
		p, err := scanProgram(rows.Scan)
		if err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return programs, nil
}

// GetByID returns a single program.  ErrNotFound is returned when the
// id does not exist.
func (r *ProgramRepo) GetByID(ctx context.Context, id uint64) (model.Program, error) {
	const q = `SELECT ` + programColumns + ` FROM programs WHERE id = ?`
	p, err := scanProgram(r.db.QueryRowContext(ctx, q, id).Scan)
	if err == sql.ErrNoRows {
		return model.Program{}, ErrNotFound
	}
	return p, err
}

// marshalJSONColumns serializes the slice/struct fields of a program
// for storage in the JSON TEXT columns.
func marshalJSONColumns(p model.Program) (content, outcomes, differences, format, audience []byte, err error) {
	if content, err = json.Marshal(p.Content); err != nil {
		return
	}
	if outcomes, err = json.Marshal(p.Outcomes); err != nil {
		return
	}
	if differences, err = json.Marshal(p.Differences); err != nil {
		return
	}
	if format, err = json.Marshal(p.Format); err != nil {
		return
	}
	audience, err = json.Marshal(p.Audience)
	return
}

// Create inserts a program with its caller-supplied rank.  A rank that
// is already taken within the partition is rejected with
// ErrDuplicateOrder so that collisions never have to be untangled by
// hand later.  On success the id is populated on the passed record.
func (r *ProgramRepo) Create(ctx context.Context, p *model.Program) error {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM programs WHERE partition_key = ? AND ord = ?)`,
		p.Partition, p.Order).Scan(&taken)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateOrder
	}
	content, outcomes, differences, format, audience, err := marshalJSONColumns(*p)
	if err != nil {
		return err
	}
	const q = `INSERT INTO programs
               (partition_key, ord, title, subtitle, overview, image,
                content, outcomes, differences, format, audience, full_description)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		p.Partition, p.Order, p.Title, p.Subtitle, p.Overview, p.Image,
		content, outcomes, differences, format, audience, p.FullDescription)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// Update rewrites a program's content fields.  Partition and rank are
// deliberately untouched: partitions are immutable and rank only
// changes through SwapOrderTx.  ErrNotFound is returned when the id
// does not exist.
func (r *ProgramRepo) Update(ctx context.Context, p model.Program) error {
	content, outcomes, differences, format, audience, err := marshalJSONColumns(p)
	if err != nil {
		return err
	}
	const q = `UPDATE programs
               SET title = ?, subtitle = ?, overview = ?, image = ?,
                   content = ?, outcomes = ?, differences = ?, format = ?,
                   audience = ?, full_description = ?
               WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		p.Title, p.Subtitle, p.Overview, p.Image,
		content, outcomes, differences, format, audience, p.FullDescription,
		p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	// RowsAffected is 0 both for a missing row and for a no-change
	// update; distinguish with an existence probe.
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM programs WHERE id = ?)`, p.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

// Delete removes a program by id.  Surrounding ranks are not
// compacted.  ErrNotFound is returned when no row matched.
func (r *ProgramRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM programs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SwapOrderTx exchanges the ranks of two programs in the same
// partition within the provided transaction.  Each UPDATE is guarded
// by the rank value the caller read; when a guard matches no row the
// ranks moved underneath us and ErrOrderConflict is returned so the
// caller rolls the whole swap back.  Exactly two rows change on
// success and every other rank in the partition is untouched.
func (r *ProgramRepo) SwapOrderTx(ctx context.Context, tx *sql.Tx, partition string, aID uint64, aOrd int, bID uint64, bOrd int) error {
	const q = `UPDATE programs SET ord = ? WHERE id = ? AND partition_key = ? AND ord = ?`
	res, err := tx.ExecContext(ctx, q, bOrd, aID, partition, aOrd)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrOrderConflict
	}
	res, err = tx.ExecContext(ctx, q, aOrd, bID, partition, bOrd)
	if err != nil {
		return err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrOrderConflict
	}
	return nil
}
