package repos

import (
	"database/sql"
	"errors"

	"equiform/internal/domain"

	"github.com/jmoiron/sqlx"
)

type TemplateRepo struct{ db *sqlx.DB }

func NewTemplateRepo(db *sqlx.DB) *TemplateRepo { return &TemplateRepo{db: db} }

const templateCols = `id, category_id, version, is_active, block_ids, created_at`

const fieldCols = `id, template_id, field_key, label, type, required, sort_order, section,
  validation, visible_if, required_if, config`

// ActiveForCategory returns the category's active templates, highest version
// first, each with its ordered fields and their ordered options.
func (r *TemplateRepo) ActiveForCategory(categoryID int64) ([]domain.FormTemplate, error) {
	var tmpls []domain.FormTemplate
	err := r.db.Select(&tmpls, `
	  SELECT `+templateCols+`
	  FROM form_templates
	  WHERE category_id = ? AND is_active = 1
	  ORDER BY version DESC
	`, categoryID)
	if err != nil {
		return nil, err
	}
	for i := range tmpls {
		if err := r.attachFields(&tmpls[i]); err != nil {
			return nil, err
		}
	}
	return tmpls, nil
}

// ByID loads one template with its ordered fields and options; nil when the
// id is unknown.
func (r *TemplateRepo) ByID(id string) (*domain.FormTemplate, error) {
	var t domain.FormTemplate
	if err := r.db.Get(&t, `SELECT `+templateCols+` FROM form_templates WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.attachFields(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepo) attachFields(t *domain.FormTemplate) error {
	err := r.db.Select(&t.Fields, `
	  SELECT `+fieldCols+`
	  FROM template_fields
	  WHERE template_id = ?
	  ORDER BY sort_order, rowid
	`, t.ID)
	if err != nil {
		return err
	}
	if len(t.Fields) == 0 {
		return nil
	}

	ids := make([]string, len(t.Fields))
	byField := make(map[string]*domain.TemplateField, len(t.Fields))
	for i := range t.Fields {
		ids[i] = t.Fields[i].ID
		byField[t.Fields[i].ID] = &t.Fields[i]
	}

	query, args, err := sqlx.In(`
	  SELECT id, field_id, value, label, sort_order
	  FROM field_options
	  WHERE field_id IN (?)
	  ORDER BY sort_order, rowid
	`, ids)
	if err != nil {
		return err
	}
	var opts []domain.FieldOption
	if err := r.db.Select(&opts, r.db.Rebind(query), args...); err != nil {
		return err
	}
	for _, o := range opts {
		if f := byField[o.FieldID]; f != nil {
			f.Options = append(f.Options, o)
		}
	}
	return nil
}

// SiblingActive returns, for every category whose parent is parentID, that
// category's effective template (the highest version among its active ones),
// joined with the owner's slug/has_engine and the template's own field count
// for ranking. Superseded lower versions never surface here.
func (r *TemplateRepo) SiblingActive(parentID int64) ([]domain.SiblingTemplate, error) {
	var out []domain.SiblingTemplate
	err := r.db.Select(&out, `
	  SELECT t.id, t.category_id, t.version, t.is_active, t.block_ids, t.created_at,
	         c.slug AS owner_slug, c.has_engine AS owner_has_engine,
	         (SELECT COUNT(*) FROM template_fields f WHERE f.template_id = t.id) AS field_count
	  FROM form_templates t
	  JOIN categories c ON c.id = t.category_id
	  WHERE c.parent_id = ? AND t.is_active = 1
	    AND t.version = (SELECT MAX(t2.version) FROM form_templates t2
	                     WHERE t2.category_id = t.category_id AND t2.is_active = 1)
	  ORDER BY t.category_id, t.id
	`, parentID)
	return out, err
}
