package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"equiform/internal/domain"
)

// Field types as persisted on template fields and accepted in authored input.
const (
	TypeText          = "TEXT"
	TypeNumber        = "NUMBER"
	TypePrice         = "PRICE"
	TypeRichText      = "RICHTEXT"
	TypeSelect        = "SELECT"
	TypeMultiSelect   = "MULTISELECT"
	TypeRadio         = "RADIO"
	TypeCheckboxGroup = "CHECKBOX_GROUP"
	TypeBoolean       = "BOOLEAN"
	TypeDate          = "DATE"
	TypeYearRange     = "YEAR_RANGE"
	TypeColor         = "COLOR"
	TypeLocation      = "LOCATION"
	TypeMedia         = "MEDIA"
)

const (
	DataSourceStatic = "static"
	DataSourceAPI    = "api"
)

var typeToComponent = map[string]string{
	TypeText:          "text",
	TypeNumber:        "number",
	TypePrice:         "text",
	TypeRichText:      "textarea",
	TypeSelect:        "select",
	TypeMultiSelect:   "select",
	TypeColor:         "select",
	TypeRadio:         "radio",
	TypeCheckboxGroup: "checkbox",
	TypeBoolean:       "checkbox",
	TypeDate:          "date",
	TypeYearRange:     "number",
	TypeLocation:      "text",
	TypeMedia:         "text",
}

// componentToType picks one canonical type per component; the forward table
// is many-to-one so the inverse chooses the most common source type.
var componentToType = map[string]string{
	"text":     TypeText,
	"number":   TypeNumber,
	"textarea": TypeRichText,
	"select":   TypeSelect,
	"radio":    TypeRadio,
	"checkbox": TypeBoolean,
	"date":     TypeDate,
}

// ComponentForType returns the rendering component for a semantic field type,
// falling back to a plain text input.
func ComponentForType(fieldType string) string {
	if c, ok := typeToComponent[strings.ToUpper(strings.TrimSpace(fieldType))]; ok {
		return c
	}
	return "text"
}

// TypeForComponent returns the canonical semantic type for a component,
// falling back to TEXT.
func TypeForComponent(component string) string {
	if t, ok := componentToType[strings.ToLower(strings.TrimSpace(component))]; ok {
		return t
	}
	return TypeText
}

// AuthoredOption is one selectable value as written by an administrator.
// It accepts either a bare scalar ("4x4", 2021) or a {value,label} object.
type AuthoredOption struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

func (o *AuthoredOption) UnmarshalJSON(b []byte) error {
	var obj struct {
		Value any    `json:"value"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		o.Value = obj.Value
		o.Label = obj.Label
		return nil
	}
	var scalar any
	if err := json.Unmarshal(b, &scalar); err != nil {
		return err
	}
	o.Value = scalar
	return nil
}

// AuthoredField is a loosely-typed field definition as produced by the admin
// template editor or embedded in a block's raw field list. Several concepts
// accept two spellings; normalization collapses them.
type AuthoredField struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Component   string `json:"component"`
	Placeholder string `json:"placeholder"`

	Required     *bool `json:"required"`
	IsRequired   *bool `json:"isRequired"`
	BaseRequired *bool `json:"baseRequired"`

	Order     *int `json:"order"`
	SortOrder *int `json:"sortOrder"`

	Group   string `json:"group"`
	Section string `json:"section"`

	ValidationRules map[string]any `json:"validationRules"`
	Validations     map[string]any `json:"validations"`
	VisibleIf       map[string]any `json:"visibleIf"`
	VisibilityIf    map[string]any `json:"visibilityIf"`
	RequiredIf      map[string]any `json:"requiredIf"`

	Config map[string]any `json:"config"`

	StaticOptions []AuthoredOption `json:"staticOptions"`
	Options       []AuthoredOption `json:"options"`

	OptionsEndpoint string         `json:"optionsEndpoint"`
	OptionsQuery    map[string]any `json:"optionsQuery"`
	OptionsMapping  map[string]any `json:"optionsMapping"`
	DependsOn       []string       `json:"dependsOn"`
	ResetOnChange   []string       `json:"resetOnChange"`
}

// RenderConfig is the normalized rendering configuration of a canonical field.
type RenderConfig struct {
	Component       string
	Placeholder     string
	Group           string
	Order           int
	DataSource      string
	StaticOptions   []domain.StaticOption
	OptionsEndpoint string
	OptionsQuery    map[string]any
	OptionsMapping  map[string]any
	DependsOn       []string
	ResetOnChange   []string
}

// CanonicalField is the single shape every authored field variant collapses to.
type CanonicalField struct {
	Key             string
	Label           string
	Type            string
	Required        bool
	Order           int
	Section         string
	ValidationRules map[string]any
	VisibleIf       map[string]any
	RequiredIf      map[string]any
	Config          RenderConfig
	StaticOptions   []domain.StaticOption
}

// NormalizeAuthoredField collapses one authored field onto the canonical
// shape. It never fails: missing or contradictory input degrades to safe
// defaults (component text, type TEXT, not required, no options) so that
// authored content cannot break resolution for end users.
func NormalizeAuthoredField(raw AuthoredField, position int) CanonicalField {
	component := strings.ToLower(strings.TrimSpace(raw.Component))
	if component == "" {
		if c, ok := raw.Config["component"].(string); ok {
			component = strings.ToLower(strings.TrimSpace(c))
		}
	}
	if component == "" && raw.Type != "" {
		component = ComponentForType(raw.Type)
	}
	if component == "" {
		component = "text"
	}

	fieldType := strings.ToUpper(strings.TrimSpace(raw.Type))
	if fieldType == "" {
		fieldType = TypeForComponent(component)
	}

	required := false
	for _, p := range []*bool{raw.Required, raw.IsRequired, raw.BaseRequired} {
		if p != nil && *p {
			required = true
		}
	}

	order := position
	if raw.Order != nil {
		order = *raw.Order
	} else if raw.SortOrder != nil {
		order = *raw.SortOrder
	}

	section := raw.Section
	if section == "" {
		section = raw.Group
	}
	group := raw.Group
	if group == "" {
		group = raw.Section
	}

	validation := raw.ValidationRules
	if validation == nil {
		validation = raw.Validations
	}
	visibleIf := raw.VisibleIf
	if visibleIf == nil {
		visibleIf = raw.VisibilityIf
	}

	opts := raw.StaticOptions
	if len(opts) == 0 {
		opts = raw.Options
	}
	staticOpts := make([]domain.StaticOption, 0, len(opts))
	for _, o := range opts {
		if o.Value == nil && o.Label == "" {
			continue
		}
		label := o.Label
		if label == "" {
			label = fmt.Sprintf("%v", o.Value)
		}
		value := o.Value
		if value == nil {
			value = o.Label
		}
		staticOpts = append(staticOpts, domain.StaticOption{Value: value, Label: label})
	}

	dataSource := DataSourceAPI
	if len(staticOpts) > 0 {
		dataSource = DataSourceStatic
	}

	endpoint := raw.OptionsEndpoint
	if endpoint == "" {
		endpoint, _ = raw.Config["optionsEndpoint"].(string)
	}
	placeholder := raw.Placeholder
	if placeholder == "" {
		placeholder, _ = raw.Config["placeholder"].(string)
	}

	label := raw.Label
	if label == "" {
		label = raw.Key
	}

	return CanonicalField{
		Key:             raw.Key,
		Label:           label,
		Type:            fieldType,
		Required:        required,
		Order:           order,
		Section:         section,
		ValidationRules: validation,
		VisibleIf:       visibleIf,
		RequiredIf:      raw.RequiredIf,
		Config: RenderConfig{
			Component:       component,
			Placeholder:     placeholder,
			Group:           group,
			Order:           order,
			DataSource:      dataSource,
			StaticOptions:   staticOpts,
			OptionsEndpoint: endpoint,
			OptionsQuery:    raw.OptionsQuery,
			OptionsMapping:  raw.OptionsMapping,
			DependsOn:       raw.DependsOn,
			ResetOnChange:   raw.ResetOnChange,
		},
		StaticOptions: staticOpts,
	}
}
