package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cegyard/dock-scheduler/internal/model"
)

// Defaults applied when no yard configuration row exists yet.
const (
	DefaultVaos         = 4
	DefaultRampasPorVao = 4
)

// YardRepo persists the ramp-block records and the single-row yard
// configuration (bays and ramps per bay).
type YardRepo struct{ DB *sql.DB }

// NewYardRepo constructs a YardRepo given a DB handle.
func NewYardRepo(db *sql.DB) *YardRepo { return &YardRepo{DB: db} }

// Config returns the current grid shape, falling back to the default
// 4x4 grid when none has been saved.
func (r *YardRepo) Config(ctx context.Context) (model.YardConfig, error) {
	var cfg model.YardConfig
	err := r.DB.QueryRowContext(ctx,
		"SELECT vaos, rampas_por_vao FROM yard_config WHERE id=1").Scan(&cfg.Vaos, &cfg.RampasPorVao)
	if err == sql.ErrNoRows {
		return model.YardConfig{Vaos: DefaultVaos, RampasPorVao: DefaultRampasPorVao}, nil
	}
	if err != nil {
		return model.YardConfig{}, fmt.Errorf("load yard config: %w", err)
	}
	return cfg, nil
}

// SetConfig stores the grid shape, creating the row on first use.
func (r *YardRepo) SetConfig(ctx context.Context, cfg model.YardConfig) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO yard_config (id, vaos, rampas_por_vao) VALUES (1,?,?) "+
			"ON DUPLICATE KEY UPDATE vaos=VALUES(vaos), rampas_por_vao=VALUES(rampas_por_vao)",
		cfg.Vaos, cfg.RampasPorVao)
	if err != nil {
		return fmt.Errorf("save yard config: %w", err)
	}
	return nil
}

// Blocks returns every ramp-block record, including cleared ones.
func (r *YardRepo) Blocks(ctx context.Context) ([]model.RampaBloqueada, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT rampa, galpao, bloqueada FROM rampas_bloqueadas ORDER BY galpao, rampa")
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var out []model.RampaBloqueada
	for rows.Next() {
		var b model.RampaBloqueada
		if err := rows.Scan(&b.Rampa, &b.Galpao, &b.Bloqueada); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ReplaceBlocks overwrites the block table with the given records.
// Used after toggles and after a reconfiguration discards
// out-of-bounds blocks; the table stays tiny.
func (r *YardRepo) ReplaceBlocks(ctx context.Context, blocks []model.RampaBloqueada) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace blocks: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM rampas_bloqueadas"); err != nil {
		return fmt.Errorf("clear blocks: %w", err)
	}
	for _, b := range blocks {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO rampas_bloqueadas (rampa, galpao, bloqueada) VALUES (?,?,?)",
			b.Rampa, b.Galpao, b.Bloqueada); err != nil {
			return fmt.Errorf("insert block %d/%d: %w", b.Rampa, b.Galpao, err)
		}
	}
	return tx.Commit()
}
