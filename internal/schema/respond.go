package schema

import (
	"encoding/json"
	"fmt"

	"equiform/internal/domain"
)

func decodeMap(raw string) map[string]any {
	if raw == "" || raw == "null" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}
	return m
}

func decodeStaticOptions(v any) []domain.StaticOption {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.StaticOption, 0, len(list))
	for _, item := range list {
		switch o := item.(type) {
		case map[string]any:
			label, _ := o["label"].(string)
			value := o["value"]
			if value == nil && label == "" {
				continue
			}
			if label == "" {
				label = fmt.Sprintf("%v", value)
			}
			if value == nil {
				value = label
			}
			out = append(out, domain.StaticOption{Value: value, Label: label})
		case nil:
		default:
			out = append(out, domain.StaticOption{Value: o, Label: fmt.Sprintf("%v", o)})
		}
	}
	return out
}

func toStringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ensureLists keeps the list-valued response properties as [] rather than
// null, which some renderers choke on.
func ensureLists(rf domain.ResponseField) domain.ResponseField {
	if rf.StaticOptions == nil {
		rf.StaticOptions = []domain.StaticOption{}
	}
	if rf.Options == nil {
		rf.Options = []domain.ResponseOption{}
	}
	if rf.DependsOn == nil {
		rf.DependsOn = []string{}
	}
	if rf.ResetOnChange == nil {
		rf.ResetOnChange = []string{}
	}
	return rf
}

// MapStoredField converts one canonical stored field, with its persisted
// options, into the wire shape. Pure and total: malformed JSON columns
// degrade to empty values, never to an error.
func MapStoredField(f domain.TemplateField) domain.ResponseField {
	cfg := decodeMap(f.ConfigJSON)

	component, _ := cfg["component"].(string)
	if component == "" {
		component = ComponentForType(f.Type)
	}

	// Options on the field force a static source; the config's dataSource
	// only speaks for option-less fields.
	staticOpts := decodeStaticOptions(cfg["staticOptions"])
	dataSource := DataSourceAPI
	if len(f.Options) > 0 || len(staticOpts) > 0 {
		dataSource = DataSourceStatic
	} else if ds, _ := cfg["dataSource"].(string); ds != "" {
		dataSource = ds
	}

	options := make([]domain.ResponseOption, 0, len(f.Options))
	for _, o := range f.Options {
		label := o.Label
		if label == "" {
			label = o.Value
		}
		options = append(options, domain.ResponseOption{ID: o.ID, Value: o.Value, Label: label})
	}

	label := f.Label
	if label == "" {
		label = f.Key
	}
	group, _ := cfg["group"].(string)
	if group == "" {
		group = f.Section
	}
	placeholder, _ := cfg["placeholder"].(string)
	endpoint, _ := cfg["optionsEndpoint"].(string)
	query, _ := cfg["optionsQuery"].(map[string]any)
	mapping, _ := cfg["optionsMapping"].(map[string]any)

	visibleIf := decodeMap(f.VisibleIfJSON)
	validation := decodeMap(f.ValidationJSON)

	return ensureLists(domain.ResponseField{
		ID:              f.ID,
		Key:             f.Key,
		Label:           label,
		Type:            f.Type,
		Component:       component,
		Required:        f.Required,
		IsRequired:      f.Required,
		Placeholder:     placeholder,
		Group:           group,
		Section:         f.Section,
		Order:           f.SortOrder,
		DataSource:      dataSource,
		StaticOptions:   staticOpts,
		Options:         options,
		OptionsEndpoint: endpoint,
		OptionsQuery:    query,
		DependsOn:       toStringSlice(cfg["dependsOn"]),
		OptionsMapping:  mapping,
		VisibleIf:       visibleIf,
		VisibilityIf:    visibleIf,
		RequiredIf:      decodeMap(f.RequiredIfJSON),
		ResetOnChange:   toStringSlice(cfg["resetOnChange"]),
		ValidationRules: validation,
		Validations:     validation,
	})
}
