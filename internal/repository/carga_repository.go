package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cegyard/dock-scheduler/internal/model"
)

// CargaRepo encapsulates persistence for load records.  The extra
// column stores unrecognized imported fields as a JSON object; it is
// NULL for records without any.
type CargaRepo struct{ DB *sql.DB }

// NewCargaRepo constructs a CargaRepo given a DB handle.
func NewCargaRepo(db *sql.DB) *CargaRepo { return &CargaRepo{DB: db} }

// List returns every load record in insertion order.
func (r *CargaRepo) List(ctx context.Context) ([]model.Carga, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, hora, viagem, frota, prebox, boxd, status, extra FROM cargas ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list cargas: %w", err)
	}
	defer rows.Close()

	var out []model.Carga
	for rows.Next() {
		c, err := scanCarga(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get fetches one record by id.
func (r *CargaRepo) Get(ctx context.Context, id string) (model.Carga, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT id, hora, viagem, frota, prebox, boxd, status, extra FROM cargas WHERE id=? LIMIT 1", id)
	c, err := scanCarga(row)
	if err == sql.ErrNoRows {
		return model.Carga{}, ErrCargaNotFound
	}
	return c, err
}

// GetByViagem fetches a record by trip number; imports use it to
// decide between update and create.
func (r *CargaRepo) GetByViagem(ctx context.Context, viagem string) (model.Carga, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT id, hora, viagem, frota, prebox, boxd, status, extra FROM cargas WHERE viagem=? LIMIT 1",
		strings.TrimSpace(viagem))
	c, err := scanCarga(row)
	if err == sql.ErrNoRows {
		return model.Carga{}, ErrCargaNotFound
	}
	return c, err
}

// Create inserts a record, assigning a UUID when the caller did not.
func (r *CargaRepo) Create(ctx context.Context, c *model.Carga) error {
	if strings.TrimSpace(c.ID) == "" {
		c.ID = uuid.NewString()
	}
	extra, err := marshalExtra(c.Extra)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO cargas (id, hora, viagem, frota, prebox, boxd, status, extra) VALUES (?,?,?,?,?,?,?,?)",
		c.ID, c.Hora, c.Viagem, c.Frota, c.Prebox, c.BoxD, c.Status, extra)
	if err != nil {
		return fmt.Errorf("create carga: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of one record.
func (r *CargaRepo) Update(ctx context.Context, id string, c model.Carga) error {
	extra, err := marshalExtra(c.Extra)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE cargas SET hora=?, viagem=?, frota=?, prebox=?, boxd=?, status=?, extra=? WHERE id=?",
		c.Hora, c.Viagem, c.Frota, c.Prebox, c.BoxD, c.Status, extra, id)
	if err != nil {
		return fmt.Errorf("update carga: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 for a no-op update, so confirm the
		// row actually exists before reporting not found.
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes one record.
func (r *CargaRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM cargas WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("delete carga: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCargaNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanCarga(row rowScanner) (model.Carga, error) {
	var (
		c     model.Carga
		extra sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Hora, &c.Viagem, &c.Frota, &c.Prebox, &c.BoxD, &c.Status, &extra); err != nil {
		return model.Carga{}, err
	}
	if extra.Valid && extra.String != "" {
		if err := json.Unmarshal([]byte(extra.String), &c.Extra); err != nil {
			return model.Carga{}, fmt.Errorf("decode extra for carga %s: %w", c.ID, err)
		}
	}
	return c, nil
}

func marshalExtra(extra map[string]string) (sql.NullString, error) {
	if len(extra) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(extra)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode extra: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
