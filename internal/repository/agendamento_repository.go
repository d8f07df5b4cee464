package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cegyard/dock-scheduler/internal/model"
)

// AgendamentoRepo persists operator scheduling entries.
type AgendamentoRepo struct{ DB *sql.DB }

// NewAgendamentoRepo constructs an AgendamentoRepo given a DB handle.
func NewAgendamentoRepo(db *sql.DB) *AgendamentoRepo { return &AgendamentoRepo{DB: db} }

const agendamentoColumns = "id, titulo, descricao, data, usuario_id, status, created_at, updated_at"

// List returns every entry ordered by its scheduled date.
func (r *AgendamentoRepo) List(ctx context.Context) ([]model.Agendamento, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+agendamentoColumns+" FROM agendamentos ORDER BY data, id")
	if err != nil {
		return nil, fmt.Errorf("list agendamentos: %w", err)
	}
	defer rows.Close()

	var out []model.Agendamento
	for rows.Next() {
		a, err := scanAgendamento(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Get fetches one entry by id.
func (r *AgendamentoRepo) Get(ctx context.Context, id uint64) (model.Agendamento, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+agendamentoColumns+" FROM agendamentos WHERE id=? LIMIT 1", id)
	a, err := scanAgendamento(row)
	if err == sql.ErrNoRows {
		return model.Agendamento{}, ErrAgendamentoNotFound
	}
	return a, err
}

// Create inserts an entry and returns it with its assigned id.
func (r *AgendamentoRepo) Create(ctx context.Context, a model.Agendamento) (model.Agendamento, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO agendamentos (titulo, descricao, data, usuario_id, status) VALUES (?,?,?,?,?)",
		a.Titulo, a.Descricao, a.Data, a.UsuarioID, a.Status)
	if err != nil {
		return model.Agendamento{}, fmt.Errorf("create agendamento: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Agendamento{}, err
	}
	return r.Get(ctx, uint64(id))
}

// Update overwrites the mutable columns of one entry.
func (r *AgendamentoRepo) Update(ctx context.Context, a model.Agendamento) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE agendamentos SET titulo=?, descricao=?, data=?, status=? WHERE id=?",
		a.Titulo, a.Descricao, a.Data, a.Status, a.ID)
	if err != nil {
		return fmt.Errorf("update agendamento: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.Get(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes one entry.
func (r *AgendamentoRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM agendamentos WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("delete agendamento: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAgendamentoNotFound
	}
	return nil
}

func scanAgendamento(row rowScanner) (model.Agendamento, error) {
	var (
		a    model.Agendamento
		desc sql.NullString
	)
	err := row.Scan(&a.ID, &a.Titulo, &desc, &a.Data, &a.UsuarioID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Agendamento{}, err
	}
	if desc.Valid {
		a.Descricao = &desc.String
	}
	return a, nil
}
