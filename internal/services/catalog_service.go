package services

import (
	"equiform/internal/domain"
	"equiform/internal/repos"
)

type CatalogService struct {
	Cats *repos.CategoryRepo
}

func NewCatalogService(cats *repos.CategoryRepo) *CatalogService {
	return &CatalogService{Cats: cats}
}

func (s *CatalogService) MarketplaceExists(marketplaceID string) (bool, error) {
	return s.Cats.MarketplaceExists(marketplaceID)
}

func (s *CatalogService) ListCategories(marketplaceID string) ([]domain.Category, error) {
	return s.Cats.ListByMarketplace(marketplaceID)
}

// Tree assembles the category forest for a marketplace from the flat row
// list. Children keep the repo's sort_order/name ordering. Orphans (parent
// id pointing at a missing or self row) surface as roots instead of being
// dropped; nodes trapped in a parent cycle never reach a root and are
// omitted.
func (s *CatalogService) Tree(marketplaceID string) ([]*domain.CategoryNode, error) {
	cats, err := s.Cats.ListByMarketplace(marketplaceID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[int64]*domain.CategoryNode, len(cats))
	for _, c := range cats {
		nodes[c.ID] = &domain.CategoryNode{Category: c, Children: []*domain.CategoryNode{}}
	}

	roots := make([]*domain.CategoryNode, 0, len(cats))
	for _, c := range cats {
		node := nodes[c.ID]
		if c.ParentID == nil || *c.ParentID == c.ID {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*c.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots, nil
}
