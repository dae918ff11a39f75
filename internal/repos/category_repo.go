package repos

import (
	"database/sql"
	"errors"
	"strconv"

	"equiform/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `id, marketplace_id, slug, name, parent_id, sort_order, has_engine`

// FindByIDOrSlug resolves a caller-supplied ref: a purely numeric ref is
// tried as an id first, then as a slug, so a category whose slug is all
// digits still resolves when no id collides. marketplaceID narrows the
// lookup and may be empty.
func (r *CategoryRepo) FindByIDOrSlug(marketplaceID, ref string) (*domain.Category, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		c, err := r.findOne(marketplaceID, `id = ?`, id)
		if err != nil || c != nil {
			return c, err
		}
	}
	return r.findOne(marketplaceID, `slug = ?`, ref)
}

func (r *CategoryRepo) findOne(marketplaceID, cond string, arg any) (*domain.Category, error) {
	query := `SELECT ` + categoryCols + ` FROM categories WHERE ` + cond
	args := []any{arg}
	if marketplaceID != "" {
		query += ` AND marketplace_id = ?`
		args = append(args, marketplaceID)
	}
	var c domain.Category
	if err := r.db.Get(&c, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) ByID(id int64) (*domain.Category, error) {
	return r.findOne("", `id = ?`, id)
}

func (r *CategoryRepo) ListByMarketplace(marketplaceID string) ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.Select(&out, `
	  SELECT `+categoryCols+`
	  FROM categories
	  WHERE marketplace_id = ?
	  ORDER BY sort_order, name
	`, marketplaceID)
	return out, err
}

func (r *CategoryRepo) MarketplaceExists(marketplaceID string) (bool, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM marketplaces WHERE id = ?`, marketplaceID); err != nil {
		return false, err
	}
	return n > 0, nil
}
