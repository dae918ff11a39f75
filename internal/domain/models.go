package domain

import "encoding/json"

type Marketplace struct {
	ID   string `db:"id" json:"id"`
	Slug string `db:"slug" json:"slug"`
	Name string `db:"name" json:"name"`
}

type Category struct {
	ID            int64  `db:"id" json:"id"`
	MarketplaceID string `db:"marketplace_id" json:"marketplaceId"`
	Slug          string `db:"slug" json:"slug"`
	Name          string `db:"name" json:"name"`
	ParentID      *int64 `db:"parent_id" json:"parentId"`
	SortOrder     int    `db:"sort_order" json:"sortOrder"`
	HasEngine     bool   `db:"has_engine" json:"hasEngine"`
}

// CategoryNode is one node of the browse tree built from flat category rows.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

type FormTemplate struct {
	ID           string `db:"id" json:"id"`
	CategoryID   int64  `db:"category_id" json:"categoryId"`
	Version      int    `db:"version" json:"version"`
	IsActive     bool   `db:"is_active" json:"isActive"`
	BlockIDsJSON string `db:"block_ids" json:"-"`
	CreatedAt    string `db:"created_at" json:"createdAt"`

	Fields []TemplateField `json:"-"`
}

// BlockIDs decodes the persisted block id list; malformed JSON yields none.
func (t FormTemplate) BlockIDs() []string {
	if t.BlockIDsJSON == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(t.BlockIDsJSON), &ids); err != nil {
		return nil
	}
	return ids
}

// SiblingTemplate is an active template joined with its owning category,
// as returned by the sibling-fallback lookup.
type SiblingTemplate struct {
	FormTemplate
	OwnerSlug      string `db:"owner_slug"`
	OwnerHasEngine bool   `db:"owner_has_engine"`
	FieldCount     int    `db:"field_count"`
}

type TemplateField struct {
	ID             string `db:"id"`
	TemplateID     string `db:"template_id"`
	Key            string `db:"field_key"`
	Label          string `db:"label"`
	Type           string `db:"type"`
	Required       bool   `db:"required"`
	SortOrder      int    `db:"sort_order"`
	Section        string `db:"section"`
	ValidationJSON string `db:"validation"`
	VisibleIfJSON  string `db:"visible_if"`
	RequiredIfJSON string `db:"required_if"`
	ConfigJSON     string `db:"config"`

	Options []FieldOption
}

type FieldOption struct {
	ID        string `db:"id" json:"id"`
	FieldID   string `db:"field_id" json:"-"`
	Value     string `db:"value" json:"value"`
	Label     string `db:"label" json:"label"`
	SortOrder int    `db:"sort_order" json:"-"`
}

type FormBlock struct {
	ID            string `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	Kind          string `db:"kind" json:"kind"` // engine | general
	IsSystem      bool   `db:"is_system" json:"isSystem"`
	RawFieldsJSON string `db:"raw_fields" json:"-"`
}

// BlockKindEngine marks the reusable motorized-equipment bundle; sibling
// fallback ranks templates referencing such a block first.
const BlockKindEngine = "engine"

type BlockRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsSystem bool   `json:"isSystem"`
}

type CategoryRef struct {
	ID        int64  `json:"id"`
	Slug      string `json:"slug"`
	HasEngine bool   `json:"hasEngine"`
}

// ResolvedTemplate is the merged schema returned for a category. Category
// always names the originally requested category, even when the fields were
// inherited from an ancestor or borrowed from a sibling.
type ResolvedTemplate struct {
	ID         string          `json:"id"`
	CategoryID int64           `json:"categoryId"`
	Version    int             `json:"version"`
	IsActive   bool            `json:"isActive"`
	CreatedAt  string          `json:"createdAt"`
	BlockIDs   []string        `json:"blockIds"`
	Blocks     []BlockRef      `json:"blocks"`
	Category   CategoryRef     `json:"category"`
	Fields     []ResponseField `json:"fields"`
}

type StaticOption struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

type ResponseOption struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// ResponseField is the wire shape dynamic form renderers consume. The
// duplicated spellings (visibleIf/visibilityIf, validationRules/validations,
// required/isRequired) are kept for older renderers and always carry the
// same value.
type ResponseField struct {
	ID              string           `json:"id,omitempty"`
	Key             string           `json:"key"`
	Label           string           `json:"label"`
	Type            string           `json:"type"`
	Component       string           `json:"component"`
	Required        bool             `json:"required"`
	IsRequired      bool             `json:"isRequired"`
	Placeholder     string           `json:"placeholder,omitempty"`
	Group           string           `json:"group,omitempty"`
	Section         string           `json:"section,omitempty"`
	Order           int              `json:"order"`
	DataSource      string           `json:"dataSource"`
	StaticOptions   []StaticOption   `json:"staticOptions"`
	Options         []ResponseOption `json:"options"`
	OptionsEndpoint string           `json:"optionsEndpoint,omitempty"`
	OptionsQuery    map[string]any   `json:"optionsQuery,omitempty"`
	DependsOn       []string         `json:"dependsOn"`
	OptionsMapping  map[string]any   `json:"optionsMapping,omitempty"`
	VisibleIf       map[string]any   `json:"visibleIf"`
	VisibilityIf    map[string]any   `json:"visibilityIf"`
	RequiredIf      map[string]any   `json:"requiredIf"`
	ResetOnChange   []string         `json:"resetOnChange"`
	ValidationRules map[string]any   `json:"validationRules"`
	Validations     map[string]any   `json:"validations"`
}
