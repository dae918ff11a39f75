package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"equiform/internal/domain"
)

// responseFromCanonical shapes a block-sourced canonical field for the wire.
// Block fields are never persisted rows, so their ids and option ids are
// namespaced under the owning block to keep them apart from stored field ids.
func responseFromCanonical(cf CanonicalField, blockID string) domain.ResponseField {
	options := make([]domain.ResponseOption, 0, len(cf.StaticOptions))
	for i, o := range cf.StaticOptions {
		options = append(options, domain.ResponseOption{
			ID:    fmt.Sprintf("%s:%s:%d", blockID, cf.Key, i),
			Value: fmt.Sprintf("%v", o.Value),
			Label: o.Label,
		})
	}

	return ensureLists(domain.ResponseField{
		ID:              blockID + ":" + cf.Key,
		Key:             cf.Key,
		Label:           cf.Label,
		Type:            cf.Type,
		Component:       cf.Config.Component,
		Required:        cf.Required,
		IsRequired:      cf.Required,
		Placeholder:     cf.Config.Placeholder,
		Group:           cf.Config.Group,
		Section:         cf.Section,
		Order:           cf.Order,
		DataSource:      cf.Config.DataSource,
		StaticOptions:   cf.StaticOptions,
		Options:         options,
		OptionsEndpoint: cf.Config.OptionsEndpoint,
		OptionsQuery:    cf.Config.OptionsQuery,
		DependsOn:       cf.Config.DependsOn,
		OptionsMapping:  cf.Config.OptionsMapping,
		VisibleIf:       cf.VisibleIf,
		VisibilityIf:    cf.VisibleIf,
		RequiredIf:      cf.RequiredIf,
		ResetOnChange:   cf.Config.ResetOnChange,
		ValidationRules: cf.ValidationRules,
		Validations:     cf.ValidationRules,
	})
}

// BlockFields expands a block's raw authored field list into wire fields,
// using the block's name as the default section. Malformed raw JSON yields
// an empty list.
func BlockFields(b domain.FormBlock) []domain.ResponseField {
	if b.RawFieldsJSON == "" {
		return nil
	}
	var raw []AuthoredField
	if err := json.Unmarshal([]byte(b.RawFieldsJSON), &raw); err != nil {
		return nil
	}
	out := make([]domain.ResponseField, 0, len(raw))
	for i, af := range raw {
		cf := NormalizeAuthoredField(af, i)
		if cf.Key == "" {
			continue
		}
		if cf.Section == "" {
			cf.Section = b.Name
		}
		out = append(out, responseFromCanonical(cf, b.ID))
	}
	return out
}

// MergeFieldsWithBlocks combines a template's own fields with the expanded
// fields of its referenced blocks into one ordered list, deduplicated by
// field key. Template fields are indexed first and a block field is only
// admitted when its key is still absent, so a template field always beats a
// same-key block field no matter how the blocks are ordered.
func MergeFieldsWithBlocks(templateFields []domain.TemplateField, blocks []domain.FormBlock) []domain.ResponseField {
	out := make([]domain.ResponseField, 0, len(templateFields))
	seen := make(map[string]struct{}, len(templateFields))

	for _, f := range templateFields {
		rf := MapStoredField(f)
		if _, dup := seen[rf.Key]; dup {
			continue
		}
		seen[rf.Key] = struct{}{}
		out = append(out, rf)
	}

	for _, b := range blocks {
		for _, rf := range BlockFields(b) {
			if _, dup := seen[rf.Key]; dup {
				continue
			}
			seen[rf.Key] = struct{}{}
			out = append(out, rf)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
