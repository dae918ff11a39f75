package services

import (
	"equiform/internal/domain"
	"equiform/internal/repos"
	"equiform/internal/schema"
)

// maxAncestorDepth bounds the parent-chain walk. Category data is
// administered externally; an accidental cycle degrades to the no-schema
// outcome instead of looping.
const maxAncestorDepth = 256

type ResolverService struct {
	Cats      *repos.CategoryRepo
	Templates *repos.TemplateRepo
	Blocks    *repos.BlockRepo
}

func NewResolverService(cats *repos.CategoryRepo, tmpls *repos.TemplateRepo, blocks *repos.BlockRepo) *ResolverService {
	return &ResolverService{Cats: cats, Templates: tmpls, Blocks: blocks}
}

// Resolve finds the effective form schema for a category ref (slug or
// numeric id string). The outcome is two-stage: a nil category means the ref
// did not resolve; a category with a nil schema means the category exists
// but no template applies anywhere in its ancestry or sibling set. The
// returned schema is always attributed to the requested category, even when
// its fields came from an ancestor or sibling template.
func (s *ResolverService) Resolve(marketplaceID, ref string) (*domain.Category, *domain.ResolvedTemplate, error) {
	cat, err := s.Cats.FindByIDOrSlug(marketplaceID, ref)
	if err != nil || cat == nil {
		return nil, nil, err
	}

	t, err := s.activeTemplate(cat.ID)
	if err != nil {
		return cat, nil, err
	}
	if t != nil {
		resolved, err := s.buildResolved(t, cat)
		return cat, resolved, err
	}

	// Walk the parent chain one level at a time.
	cur := cat
	for depth := 0; depth < maxAncestorDepth && cur.ParentID != nil; depth++ {
		parent, err := s.Cats.ByID(*cur.ParentID)
		if err != nil {
			return cat, nil, err
		}
		if parent == nil {
			break
		}
		t, err := s.activeTemplate(parent.ID)
		if err != nil {
			return cat, nil, err
		}
		if t != nil {
			resolved, err := s.buildResolved(t, cat)
			return cat, resolved, err
		}
		cur = parent
	}

	// No template anywhere above: borrow the best-ranked sibling template.
	if cat.ParentID != nil {
		winner, err := s.bestSibling(*cat.ParentID)
		if err != nil {
			return cat, nil, err
		}
		if winner != nil {
			// Resolve the ranked template itself, not a re-fetch of the
			// winning category that could land on a different version.
			t, err := s.Templates.ByID(winner.ID)
			if err != nil {
				return cat, nil, err
			}
			if t != nil {
				resolved, err := s.buildResolved(t, cat)
				return cat, resolved, err
			}
		}
	}

	return cat, nil, nil
}

// activeTemplate returns the effectively active template for a category:
// the highest version among its active templates, with fields and options
// loaded; nil when the category has none.
func (s *ResolverService) activeTemplate(categoryID int64) (*domain.FormTemplate, error) {
	tmpls, err := s.Templates.ActiveForCategory(categoryID)
	if err != nil || len(tmpls) == 0 {
		return nil, err
	}
	return &tmpls[0], nil
}

// bestSibling ranks the effective templates under parentID (one per sibling
// category, its highest active version): templates that reference an
// engine-kind block beat those that do not, ties go to the template with
// more own fields.
func (s *ResolverService) bestSibling(parentID int64) (*domain.SiblingTemplate, error) {
	sibs, err := s.Templates.SiblingActive(parentID)
	if err != nil || len(sibs) == 0 {
		return nil, err
	}

	allIDs := make([]string, 0, len(sibs))
	for _, sib := range sibs {
		allIDs = append(allIDs, sib.BlockIDs()...)
	}
	blocks, err := s.Blocks.ByIDs(allIDs)
	if err != nil {
		return nil, err
	}
	engineBlocks := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		if b.Kind == domain.BlockKindEngine {
			engineBlocks[b.ID] = true
		}
	}
	hasEngine := func(t domain.SiblingTemplate) bool {
		for _, id := range t.BlockIDs() {
			if engineBlocks[id] {
				return true
			}
		}
		return false
	}

	best := 0
	bestEngine := hasEngine(sibs[0])
	for i := 1; i < len(sibs); i++ {
		engine := hasEngine(sibs[i])
		if engine != bestEngine {
			if engine {
				best, bestEngine = i, true
			}
			continue
		}
		if sibs[i].FieldCount > sibs[best].FieldCount {
			best = i
		}
	}
	return &sibs[best], nil
}

func (s *ResolverService) buildResolved(t *domain.FormTemplate, attributedTo *domain.Category) (*domain.ResolvedTemplate, error) {
	blockIDs := t.BlockIDs()
	blocks, err := s.Blocks.ByIDs(blockIDs)
	if err != nil {
		return nil, err
	}

	refs := make([]domain.BlockRef, 0, len(blocks))
	for _, b := range blocks {
		refs = append(refs, domain.BlockRef{ID: b.ID, Name: b.Name, IsSystem: b.IsSystem})
	}
	if blockIDs == nil {
		blockIDs = []string{}
	}

	return &domain.ResolvedTemplate{
		ID:         t.ID,
		CategoryID: t.CategoryID,
		Version:    t.Version,
		IsActive:   t.IsActive,
		CreatedAt:  t.CreatedAt,
		BlockIDs:   blockIDs,
		Blocks:     refs,
		Category: domain.CategoryRef{
			ID:        attributedTo.ID,
			Slug:      attributedTo.Slug,
			HasEngine: attributedTo.HasEngine,
		},
		Fields: schema.MergeFieldsWithBlocks(t.Fields, blocks),
	}, nil
}
