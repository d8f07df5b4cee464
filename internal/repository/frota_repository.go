package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cegyard/dock-scheduler/internal/model"
)

// FrotaRepo encapsulates persistence for fleet vehicles.
type FrotaRepo struct{ DB *sql.DB }

// NewFrotaRepo constructs a FrotaRepo given a DB handle.
func NewFrotaRepo(db *sql.DB) *FrotaRepo { return &FrotaRepo{DB: db} }

const frotaColumns = "id, numero, status, rampa, galpao, carregada, rampa_despacho, galpao_despacho, created_at, updated_at"

// List returns every vehicle, oldest first.
func (r *FrotaRepo) List(ctx context.Context) ([]model.Frota, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+frotaColumns+" FROM frotas ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list frotas: %w", err)
	}
	defer rows.Close()

	var out []model.Frota
	for rows.Next() {
		f, err := scanFrota(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Get fetches one vehicle by id.
func (r *FrotaRepo) Get(ctx context.Context, id uint64) (model.Frota, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+frotaColumns+" FROM frotas WHERE id=? LIMIT 1", id)
	f, err := scanFrota(row)
	if err == sql.ErrNoRows {
		return model.Frota{}, ErrFrotaNotFound
	}
	return f, err
}

// Create registers a new vehicle in the patio.  Display numbers are
// unique; a duplicate yields ErrFrotaExists.
func (r *FrotaRepo) Create(ctx context.Context, numero string) (model.Frota, error) {
	numero = strings.TrimSpace(numero)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO frotas (numero, status) VALUES (?,?)", numero, model.FrotaPatio)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Frota{}, ErrFrotaExists
		}
		return model.Frota{}, fmt.Errorf("create frota: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Frota{}, err
	}
	return r.Get(ctx, uint64(id))
}

// Update persists the full lifecycle state of one vehicle.
func (r *FrotaRepo) Update(ctx context.Context, f model.Frota) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE frotas SET status=?, rampa=?, galpao=?, carregada=?, rampa_despacho=?, galpao_despacho=? WHERE id=?",
		f.Status, f.Rampa, f.Galpao, f.Carregada, f.RampaDespacho, f.GalpaoDespacho, f.ID)
	if err != nil {
		return fmt.Errorf("update frota: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.Get(ctx, f.ID); err != nil {
			return err
		}
	}
	return nil
}

// UpdateAll persists a slice of vehicles one by one.  The collections
// are small, so no batching is needed.
func (r *FrotaRepo) UpdateAll(ctx context.Context, frotas []model.Frota) error {
	for _, f := range frotas {
		if err := r.Update(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes one vehicle.
func (r *FrotaRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM frotas WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("delete frota: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrFrotaNotFound
	}
	return nil
}

func scanFrota(row rowScanner) (model.Frota, error) {
	var (
		f                  model.Frota
		rampa, galpao      sql.NullInt64
		rampaD, galpaoD    sql.NullInt64
	)
	err := row.Scan(&f.ID, &f.Numero, &f.Status, &rampa, &galpao, &f.Carregada,
		&rampaD, &galpaoD, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return model.Frota{}, err
	}
	f.Rampa = nullableInt(rampa)
	f.Galpao = nullableInt(galpao)
	f.RampaDespacho = nullableInt(rampaD)
	f.GalpaoDespacho = nullableInt(galpaoD)
	return f, nil
}

func nullableInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
