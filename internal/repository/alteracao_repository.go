package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cegyard/dock-scheduler/internal/model"
)

// AlteracaoRepo persists the change log.  Entries are append-only;
// the only destructive operation is a full clear.
type AlteracaoRepo struct{ DB *sql.DB }

// NewAlteracaoRepo constructs an AlteracaoRepo given a DB handle.
func NewAlteracaoRepo(db *sql.DB) *AlteracaoRepo { return &AlteracaoRepo{DB: db} }

// List returns the change log, newest first.
func (r *AlteracaoRepo) List(ctx context.Context) ([]model.Alteracao, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, tipo, dados, timestamp FROM alteracoes ORDER BY timestamp DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list alteracoes: %w", err)
	}
	defer rows.Close()

	var out []model.Alteracao
	for rows.Next() {
		var a model.Alteracao
		if err := rows.Scan(&a.ID, &a.Tipo, &a.Dados, &a.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Append records one accepted mutation and returns the stored entry.
func (r *AlteracaoRepo) Append(ctx context.Context, tipo, dados string) (model.Alteracao, error) {
	a := model.Alteracao{
		ID:        uuid.NewString(),
		Tipo:      tipo,
		Dados:     dados,
		Timestamp: time.Now().UTC(),
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO alteracoes (id, tipo, dados, timestamp) VALUES (?,?,?,?)",
		a.ID, a.Tipo, a.Dados, a.Timestamp)
	if err != nil {
		return model.Alteracao{}, fmt.Errorf("append alteracao: %w", err)
	}
	return a, nil
}

// Clear wipes the change log.
func (r *AlteracaoRepo) Clear(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM alteracoes"); err != nil {
		return fmt.Errorf("clear alteracoes: %w", err)
	}
	return nil
}
