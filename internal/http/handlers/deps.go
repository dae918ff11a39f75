package handlers

import (
	"equiform/internal/repos"
	"equiform/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	TemplateHandler *TemplateHandler
	CategoryHandler *CategoryHandler
}

func NewDeps(db *sqlx.DB) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	tmplRepo := repos.NewTemplateRepo(db)
	blockRepo := repos.NewBlockRepo(db)

	resolverSvc := services.NewResolverService(catRepo, tmplRepo, blockRepo)
	catalogSvc := services.NewCatalogService(catRepo)

	return &Deps{
		TemplateHandler: &TemplateHandler{Resolver: resolverSvc},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
	}
}
