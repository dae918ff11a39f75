package services_test

import (
	"encoding/json"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"equiform/internal/repos"
	"equiform/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func newResolver(db *sqlx.DB) *services.ResolverService {
	return services.NewResolverService(
		repos.NewCategoryRepo(db),
		repos.NewTemplateRepo(db),
		repos.NewBlockRepo(db),
	)
}

// fixture ids start at 100 to stay clear of the seeded catalog.
func seedScenario(t *testing.T, db *sqlx.DB) {
	t.Helper()
	db.MustExec(`INSERT INTO marketplaces(id,slug,name) VALUES ('tm','tm','Test Marketplace')`)

	// Fallback chain: grand (template) <- mid <- leaf
	db.MustExec(`INSERT INTO categories(id,marketplace_id,slug,name,parent_id,sort_order,has_engine) VALUES
	  (100,'tm','grand','Grand',NULL,1,0),
	  (101,'tm','mid','Mid',100,1,0),
	  (102,'tm','leaf','Leaf',101,1,1)`)
	db.MustExec(`INSERT INTO form_templates(id,category_id,version,is_active,block_ids) VALUES
	  ('tpl-grand-v1',100,1,1,'[]'),
	  ('tpl-grand-v2',100,2,1,'["blk-test-engine"]'),
	  ('tpl-grand-v9',100,9,0,'[]')`)
	db.MustExec(`INSERT INTO template_fields(id,template_id,field_key,label,type,required,sort_order,section) VALUES
	  ('f-g-year','tpl-grand-v2','year','Year','NUMBER',1,1,'General'),
	  ('f-g-cond','tpl-grand-v2','condition','Condition','SELECT',1,2,'General'),
	  ('f-g-old','tpl-grand-v1','legacy','Legacy','TEXT',0,1,'')`)

	// Sibling fallback: parent with no template, three children; s1 has a
	// small template referencing the engine block, s2 a bigger one without.
	db.MustExec(`INSERT INTO categories(id,marketplace_id,slug,name,parent_id,sort_order,has_engine) VALUES
	  (110,'tm','sib-parent','Sibling Parent',NULL,2,0),
	  (111,'tm','s1','S1',110,1,1),
	  (112,'tm','s2','S2',110,2,0),
	  (113,'tm','needy','Needy',110,3,0)`)
	db.MustExec(`INSERT INTO form_templates(id,category_id,version,is_active,block_ids) VALUES
	  ('tpl-s1',111,1,1,'["blk-test-engine"]'),
	  ('tpl-s2',112,1,1,'[]')`)
	db.MustExec(`INSERT INTO template_fields(id,template_id,field_key,label,type,required,sort_order,section) VALUES
	  ('f-s1-a','tpl-s1','brand','Brand','SELECT',1,1,''),
	  ('f-s1-b','tpl-s1','price','Price','PRICE',1,2,''),
	  ('f-s2-a','tpl-s2','a','A','TEXT',0,1,''),
	  ('f-s2-b','tpl-s2','b','B','TEXT',0,2,''),
	  ('f-s2-c','tpl-s2','c','C','TEXT',0,3,''),
	  ('f-s2-d','tpl-s2','d','D','TEXT',0,4,''),
	  ('f-s2-e','tpl-s2','e','E','TEXT',0,5,'')`)

	// No schema anywhere: lone root with one child, no templates.
	db.MustExec(`INSERT INTO categories(id,marketplace_id,slug,name,parent_id,sort_order,has_engine) VALUES
	  (130,'tm','lone-root','Lone Root',NULL,3,0),
	  (131,'tm','lone-child','Lone Child',130,1,0)`)

	db.MustExec(`INSERT INTO form_blocks(id,name,kind,is_system,raw_fields) VALUES
	  ('blk-test-engine','Engine Bundle','engine',1,
	   '[{"key":"year","label":"Block Year","type":"NUMBER","order":10},{"key":"mileage","type":"NUMBER","order":11}]')`)
}

func TestResolveOwnTemplatePicksHighestActiveVersion(t *testing.T) {
	db := memdb(t)
	seedScenario(t, db)
	svc := newResolver(db)

	cat, resolved, err := svc.Resolve("tm", "grand")
	if err != nil {
		t.Fatal(err)
	}
	if cat == nil || resolved == nil {
		t.Fatalf("want category and schema, got %v / %v", cat, resolved)
	}
	if resolved.ID != "tpl-grand-v2" || resolved.Version != 2 {
		t.Fatalf("want active v2 (not inactive v9, not v1), got %s v%d", resolved.ID, resolved.Version)
	}
}

func TestResolveWalksAncestorsAndAttributesToRequested(t *testing.T) {
	db := memdb(t)
	seedScenario(t, db)
	svc := newResolver(db)

	cat, resolved, err := svc.Resolve("tm", "leaf")
	if err != nil {
		t.Fatal(err)
	}
	if cat == nil || resolved == nil {
		t.Fatal("leaf must inherit the grandparent template")
	}
	if resolved.ID != "tpl-grand-v2" {
		t.Fatalf("want tpl-grand-v2, got %s", resolved.ID)
	}
	// attribution: requested category, not the donor
	if resolved.Category.ID != 102 || resolved.Category.Slug != "leaf" || !resolved.Category.HasEngine {
		t.Fatalf("schema must be attributed to leaf, got %+v", resolved.Category)
	}
	// fields still from the donor template, merged with its block
	keys := map[string]string{}
	for _, f := range resolved.Fields {
		keys[f.Key] = f.ID
	}
	if keys["year"] != "f-g-year" {
		t.Fatalf("template year must win over block year, got id %q", keys["year"])
	}
	if keys["mileage"] == "" {
		t.Fatal("block mileage field missing")
	}
}

func TestResolveSiblingPrefersEngineBlockOverFieldCount(t *testing.T) {
	db := memdb(t)
	seedScenario(t, db)
	svc := newResolver(db)

	cat, resolved, err := svc.Resolve("tm", "needy")
	if err != nil {
		t.Fatal(err)
	}
	if cat == nil || resolved == nil {
		t.Fatal("needy must borrow a sibling template")
	}
	if resolved.ID != "tpl-s1" {
		t.Fatalf("engine-block sibling must outrank the larger one, got %s", resolved.ID)
	}
	if resolved.Category.ID != 113 || resolved.Category.Slug != "needy" {
		t.Fatalf("schema must be attributed to needy, got %+v", resolved.Category)
	}
}

func TestResolveSiblingRanksEffectiveTemplatesOnly(t *testing.T) {
	db := memdb(t)
	seedScenario(t, db)
	// Sibling X carries a superseded v1 referencing the engine block and an
	// effective v2 without blocks; sibling Y's only template has more
	// fields. Ranking must see X's v2, so Y wins on field count — and the
	// returned template must be the ranked one, never another version of
	// the winning category.
	db.MustExec(`INSERT INTO categories(id,marketplace_id,slug,name,parent_id,sort_order,has_engine) VALUES
	  (150,'tm','stale-parent','Stale Parent',NULL,5,0),
	  (151,'tm','x','X',150,1,0),
	  (152,'tm','y','Y',150,2,0),
	  (153,'tm','bare','Bare',150,3,0)`)
	db.MustExec(`INSERT INTO form_templates(id,category_id,version,is_active,block_ids) VALUES
	  ('tpl-x-v1',151,1,1,'["blk-test-engine"]'),
	  ('tpl-x-v2',151,2,1,'[]'),
	  ('tpl-y',152,1,1,'[]')`)
	db.MustExec(`INSERT INTO template_fields(id,template_id,field_key,label,type,required,sort_order,section) VALUES
	  ('f-x1','tpl-x-v1','a','A','TEXT',0,1,''),
	  ('f-x2','tpl-x-v2','a','A','TEXT',0,1,''),
	  ('f-y1','tpl-y','a','A','TEXT',0,1,''),
	  ('f-y2','tpl-y','b','B','TEXT',0,2,''),
	  ('f-y3','tpl-y','c','C','TEXT',0,3,'')`)
	svc := newResolver(db)

	cat, resolved, err := svc.Resolve("tm", "bare")
	if err != nil {
		t.Fatal(err)
	}
	if cat == nil || resolved == nil {
		t.Fatal("bare must borrow a sibling template")
	}
	if resolved.ID != "tpl-y" {
		t.Fatalf("superseded v1 must not rank; want tpl-y, got %s", resolved.ID)
	}
}

func TestResolveSiblingFieldCountTieBreak(t *testing.T) {
	db := memdb(t)
	seedScenario(t, db)
	// No engine blocks anywhere: the bigger template must win.
	db.MustExec(`INSERT INTO categories(id,marketplace_id,slug,name,parent_id,sort_order,has_engine) VALUES
	  (160,'tm','plain-parent','Plain Parent',NULL,6,0),
	  (161,'tm','small','Small',160,1,0),
	  (162,'tm','big','Big',160,2,0),
	  (163,'tm','plain','Plain',160,3,0)`)
	db.MustExec(`INSERT INTO form_templates(id,category_id,version,is_active,block_ids) VALUES
	  ('tpl-small',161,1,1,'[]'),
	  ('tpl-big',162,1,1,'[]')`)
	db.MustExec(`INSERT INTO template_fields(id,template_id,field_key,label,type,required,sort_order,section) VALUES
	  ('f-sm-1','tpl-small','a','A','TEXT',0,1,''),
	  ('f-bg-1','tpl-big','a','A','TEXT',0,1,''),
	  ('f-bg-2','tpl-big','b','B','TEXT',0,2,''),
	  ('f-bg-3','tpl-big','c','C','TEXT',0,3,'')`)
	svc := newResolver(db)

	cat, resolved, err := svc.Resolve("tm", "plain")
	if err != nil {
		t.Fatal(err)
	}
	if cat == nil || resolved == nil {
		t.Fatal("plain must borrow a sibling template")
	}
	if resolved.ID != "tpl-big" {
		t.Fatalf("field count must break the tie; want tpl-big, got %s", resolved.ID)
	}
	if resolved.Category.ID != 163 || resolved.Category.Slug != "plain" {
		t.Fatalf("schema must be attributed to plain, got %+v", resolved.Category)
	}
}

func TestResolveNotFoundVsNoSchema(t *testing.T) {
	db := memdb(t)
	seedScenario(t, db)
	svc := newResolver(db)

	cat, resolved, err := svc.Resolve("tm", "no-such-category")
	if err != nil {
		t.Fatal(err)
	}
	if cat != nil || resolved != nil {
		t.Fatalf("unknown ref must yield nothing, got %v / %v", cat, resolved)
	}

	cat, resolved, err = svc.Resolve("tm", "lone-child")
	if err != nil {
		t.Fatal(err)
	}
	if cat == nil {
		t.Fatal("lone-child exists and must be found")
	}
	if resolved != nil {
		t.Fatalf("lone-child has no schema anywhere, got %+v", resolved)
	}
}

func TestResolveNumericSlugDisambiguation(t *testing.T) {
	db := memdb(t)
	seedScenario(t, db)
	db.MustExec(`INSERT INTO marketplaces(id,slug,name) VALUES ('tn','tn','Other')`)
	db.MustExec(`INSERT INTO categories(id,marketplace_id,slug,name,parent_id,sort_order,has_engine) VALUES
	  (123,'tm','loaders','Loaders',NULL,9,0),
	  (900,'tn','123','All Digits',NULL,1,0)`)
	svc := newResolver(db)

	cat, _, err := svc.Resolve("tm", "123")
	if err != nil {
		t.Fatal(err)
	}
	if cat == nil || cat.ID != 123 || cat.Slug != "loaders" {
		t.Fatalf("numeric ref must hit the id in tm, got %+v", cat)
	}

	cat, _, err = svc.Resolve("tn", "123")
	if err != nil {
		t.Fatal(err)
	}
	if cat == nil || cat.ID != 900 || cat.Slug != "123" {
		t.Fatalf("numeric ref must fall through to the slug in tn, got %+v", cat)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	db := memdb(t)
	seedScenario(t, db)
	svc := newResolver(db)

	_, first, err := svc.Resolve("tm", "leaf")
	if err != nil {
		t.Fatal(err)
	}
	_, second, err := svc.Resolve("tm", "leaf")
	if err != nil {
		t.Fatal(err)
	}
	b1, _ := json.Marshal(first)
	b2, _ := json.Marshal(second)
	if string(b1) != string(b2) {
		t.Fatalf("resolution must be idempotent:\n%s\n%s", b1, b2)
	}
}

func TestResolveFieldsNonDecreasingByOrder(t *testing.T) {
	db := memdb(t)
	seedScenario(t, db)
	svc := newResolver(db)

	for _, ref := range []string{"grand", "leaf", "needy", "tractors"} {
		_, resolved, err := svc.Resolve("", ref)
		if err != nil {
			t.Fatal(err)
		}
		if resolved == nil {
			t.Fatalf("%s: expected a schema", ref)
		}
		for i := 1; i < len(resolved.Fields); i++ {
			if resolved.Fields[i].Order < resolved.Fields[i-1].Order {
				t.Fatalf("%s: fields not ordered at %d", ref, i)
			}
		}
	}
}

func TestResolveSurvivesParentCycle(t *testing.T) {
	db := memdb(t)
	seedScenario(t, db)
	// Administered data gone wrong: two categories parenting each other.
	db.MustExec(`INSERT INTO categories(id,marketplace_id,slug,name,parent_id,sort_order,has_engine) VALUES
	  (140,'tm','cyc-a','Cycle A',NULL,4,0),
	  (141,'tm','cyc-b','Cycle B',140,1,0)`)
	db.MustExec(`UPDATE categories SET parent_id = 141 WHERE id = 140`)
	svc := newResolver(db)

	cat, resolved, err := svc.Resolve("tm", "cyc-a")
	if err != nil {
		t.Fatal(err)
	}
	if cat == nil {
		t.Fatal("cycle member must still be found")
	}
	if resolved != nil {
		t.Fatalf("cycle must degrade to no schema, got %+v", resolved)
	}
}
