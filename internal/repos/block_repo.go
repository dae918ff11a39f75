package repos

import (
	"equiform/internal/domain"

	"github.com/jmoiron/sqlx"
)

type BlockRepo struct{ db *sqlx.DB }

func NewBlockRepo(db *sqlx.DB) *BlockRepo { return &BlockRepo{db: db} }

// ByIDs batch-loads blocks, preserving the caller's id order. An empty id
// list returns nothing without touching the store.
func (r *BlockRepo) ByIDs(ids []string) ([]domain.FormBlock, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
	  SELECT id, name, kind, is_system, raw_fields
	  FROM form_blocks
	  WHERE id IN (?)
	`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.FormBlock
	if err := r.db.Select(&rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	byID := make(map[string]domain.FormBlock, len(rows))
	for _, b := range rows {
		byID[b.ID] = b
	}
	out := make([]domain.FormBlock, 0, len(rows))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}
