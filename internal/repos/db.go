package repos

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline catalog data if the DB is empty (marketplaces, category
	// trees, blocks, templates).
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Marketplaces
CREATE TABLE IF NOT EXISTS marketplaces(
  id   TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL
);

-- Categories (one tree per marketplace)
CREATE TABLE IF NOT EXISTS categories(
  id             INTEGER PRIMARY KEY,
  marketplace_id TEXT NOT NULL REFERENCES marketplaces(id) ON DELETE CASCADE,
  slug           TEXT NOT NULL,
  name           TEXT NOT NULL,
  parent_id      INTEGER NULL,
  sort_order     INTEGER NOT NULL DEFAULT 0,
  has_engine     INTEGER NOT NULL DEFAULT 0,
  UNIQUE(marketplace_id, slug)
);
CREATE INDEX IF NOT EXISTS idx_categories_parent ON categories(parent_id);

-- Form templates (versioned attribute schemas, one category each)
CREATE TABLE IF NOT EXISTS form_templates(
  id          TEXT PRIMARY KEY,
  category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  version     INTEGER NOT NULL DEFAULT 1,
  is_active   INTEGER NOT NULL DEFAULT 1,
  block_ids   TEXT NOT NULL DEFAULT '[]',
  created_at  TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_templates_category ON form_templates(category_id, is_active);

CREATE TABLE IF NOT EXISTS template_fields(
  id          TEXT PRIMARY KEY,
  template_id TEXT NOT NULL REFERENCES form_templates(id) ON DELETE CASCADE,
  field_key   TEXT NOT NULL,
  label       TEXT NOT NULL DEFAULT '',
  type        TEXT NOT NULL DEFAULT 'TEXT',
  required    INTEGER NOT NULL DEFAULT 0,
  sort_order  INTEGER NOT NULL DEFAULT 0,
  section     TEXT NOT NULL DEFAULT '',
  validation  TEXT NOT NULL DEFAULT '',
  visible_if  TEXT NOT NULL DEFAULT '',
  required_if TEXT NOT NULL DEFAULT '',
  config      TEXT NOT NULL DEFAULT '',
  UNIQUE(template_id, field_key)
);
CREATE INDEX IF NOT EXISTS idx_fields_template ON template_fields(template_id);

CREATE TABLE IF NOT EXISTS field_options(
  id         TEXT PRIMARY KEY,
  field_id   TEXT NOT NULL REFERENCES template_fields(id) ON DELETE CASCADE,
  value      TEXT NOT NULL,
  label      TEXT NOT NULL DEFAULT '',
  sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_options_field ON field_options(field_id);

-- Reusable field bundles referenced by id from templates
CREATE TABLE IF NOT EXISTS form_blocks(
  id         TEXT PRIMARY KEY,
  name       TEXT NOT NULL,
  kind       TEXT NOT NULL DEFAULT 'general',
  is_system  INTEGER NOT NULL DEFAULT 0,
  raw_fields TEXT NOT NULL DEFAULT '[]'
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM marketplaces`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting baseline marketplaces/categories/blocks/templates")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO marketplaces(id,slug,name) VALUES
	  ('agri','agri','Agricultural Equipment'),
	  ('cv','cv','Commercial Vehicles')`)

	tx.MustExec(`INSERT INTO categories(id,marketplace_id,slug,name,parent_id,sort_order,has_engine) VALUES
	  (1,'agri','agricultural-machinery','Agricultural Machinery',NULL,1,0),
	  (2,'agri','tractors','Tractors',1,1,1),
	  (3,'agri','compact-tractors','Compact Tractors',2,1,1),
	  (4,'agri','harvesters','Harvesters',1,2,1),
	  (5,'agri','tillage','Tillage Equipment',1,3,0),
	  (6,'agri','ploughs','Ploughs',5,1,0),
	  (7,'agri','seeders','Seeders',5,2,0),
	  (20,'cv','commercial-vehicles','Commercial Vehicles',NULL,1,0),
	  (21,'cv','trucks','Trucks',20,1,1),
	  (22,'cv','box-trucks','Box Trucks',21,1,1),
	  (23,'cv','trailers','Trailers',20,2,0),
	  (30,'cv','services','Services',NULL,2,0),
	  (31,'cv','vehicle-repair','Vehicle Repair',30,1,0)`)

	tx.MustExec(`INSERT INTO form_blocks(id,name,kind,is_system,raw_fields) VALUES
	  ('blk-motorized','Motorized Vehicle','engine',1,?),
	  ('blk-contact','Contact & Location','general',1,?)`,
		motorizedBlockFields, contactBlockFields)

	tx.MustExec(`INSERT INTO form_templates(id,category_id,version,is_active,block_ids) VALUES
	  ('tpl-tractors-v1',2,1,0,'[]'),
	  ('tpl-tractors-v2',2,2,1,'["blk-motorized","blk-contact"]'),
	  ('tpl-harvesters-v1',4,1,1,'["blk-motorized"]'),
	  ('tpl-ploughs-v1',6,1,1,'["blk-contact"]'),
	  ('tpl-trucks-v1',21,1,1,'["blk-motorized","blk-contact"]')`)

	seedField(tx, "tpl-tractors-v2", "brand", "Brand", "SELECT", true, 1, "General",
		``, ``, `{"component":"select","dataSource":"api","optionsEndpoint":"/api/v1/brands","optionsQuery":{"marketplace":"agri"},"resetOnChange":["model"]}`)
	seedField(tx, "tpl-tractors-v2", "model", "Model", "TEXT", true, 2, "General",
		``, ``, `{"dependsOn":["brand"]}`)
	seedField(tx, "tpl-tractors-v2", "year", "Year of Manufacture", "NUMBER", true, 3, "General",
		`{"min":1950,"max":2026}`, ``, ``)
	fid := seedField(tx, "tpl-tractors-v2", "condition", "Condition", "SELECT", true, 4, "General", ``, ``, ``)
	seedOption(tx, fid, "new", "New", 1)
	seedOption(tx, fid, "used", "Used", 2)
	seedField(tx, "tpl-tractors-v2", "price", "Price", "PRICE", true, 5, "General",
		`{"min":0,"unit":"EUR"}`, ``, ``)

	seedField(tx, "tpl-harvesters-v1", "brand", "Brand", "SELECT", true, 1, "General",
		``, ``, `{"dataSource":"api","optionsEndpoint":"/api/v1/brands"}`)
	seedField(tx, "tpl-harvesters-v1", "year", "Year of Manufacture", "NUMBER", true, 2, "General",
		`{"min":1950,"max":2026}`, ``, ``)
	seedField(tx, "tpl-harvesters-v1", "harvest-capacity", "Harvest Capacity", "NUMBER", false, 3, "Specs",
		`{"min":0,"unit":"t/h"}`, ``, ``)
	seedField(tx, "tpl-harvesters-v1", "price", "Price", "PRICE", true, 4, "General",
		`{"min":0,"unit":"EUR"}`, ``, ``)

	seedField(tx, "tpl-ploughs-v1", "working-width", "Working Width", "NUMBER", true, 1, "Specs",
		`{"min":0,"unit":"m"}`, ``, ``)
	seedField(tx, "tpl-ploughs-v1", "bodies", "Number of Bodies", "NUMBER", false, 2, "Specs",
		`{"min":1,"max":24}`, ``, ``)
	fid = seedField(tx, "tpl-ploughs-v1", "condition", "Condition", "SELECT", true, 3, "General", ``, ``, ``)
	seedOption(tx, fid, "new", "New", 1)
	seedOption(tx, fid, "used", "Used", 2)
	seedField(tx, "tpl-ploughs-v1", "price", "Price", "PRICE", true, 4, "General",
		`{"min":0,"unit":"EUR"}`, ``, ``)

	seedField(tx, "tpl-trucks-v1", "brand", "Brand", "SELECT", true, 1, "General",
		``, ``, `{"dataSource":"api","optionsEndpoint":"/api/v1/brands","optionsQuery":{"marketplace":"cv"},"resetOnChange":["model"]}`)
	seedField(tx, "tpl-trucks-v1", "model", "Model", "TEXT", true, 2, "General",
		``, ``, `{"dependsOn":["brand"]}`)
	seedField(tx, "tpl-trucks-v1", "gross-weight", "Gross Vehicle Weight", "NUMBER", false, 3, "Specs",
		`{"min":0,"unit":"kg"}`, ``, ``)
	seedField(tx, "tpl-trucks-v1", "price", "Price", "PRICE", true, 4, "General",
		`{"min":0,"unit":"EUR"}`, ``, ``)

	return tx.Commit()
}

func seedField(tx *sqlx.Tx, templateID, key, label, fieldType string, required bool, order int, section, validation, visibleIf, config string) string {
	id := uuid.NewString()
	tx.MustExec(`INSERT INTO template_fields(id,template_id,field_key,label,type,required,sort_order,section,validation,visible_if,config)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		id, templateID, key, label, fieldType, required, order, section, validation, visibleIf, config)
	return id
}

func seedOption(tx *sqlx.Tx, fieldID, value, label string, order int) {
	tx.MustExec(`INSERT INTO field_options(id,field_id,value,label,sort_order) VALUES(?,?,?,?,?)`,
		uuid.NewString(), fieldID, value, label, order)
}

// Raw authored field lists for the built-in blocks. The mixed spellings
// (order vs sortOrder, options vs staticOptions, validations vs
// validationRules, group vs section) mirror what the admin editor emits.
const motorizedBlockFields = `[
  {"key":"engine-make","label":"Engine Make","type":"TEXT","order":10},
  {"key":"engine-model","label":"Engine Model","type":"TEXT","order":11},
  {"key":"engine-power","label":"Engine Power","type":"NUMBER","order":12,"validations":{"min":0,"max":2000,"unit":"hp"}},
  {"key":"cylinders","label":"Cylinders","type":"NUMBER","sortOrder":13,"validations":{"min":1,"max":16}},
  {"key":"displacement","label":"Displacement","type":"NUMBER","sortOrder":14,"validations":{"min":0,"unit":"cc"}},
  {"key":"fuel-type","label":"Fuel Type","type":"SELECT","order":15,"staticOptions":[
    {"value":"diesel","label":"Diesel"},{"value":"petrol","label":"Petrol"},
    {"value":"electric","label":"Electric"},{"value":"hybrid","label":"Hybrid"}]},
  {"key":"transmission","label":"Transmission","type":"SELECT","order":16,"options":[
    {"value":"manual","label":"Manual"},{"value":"automatic","label":"Automatic"},
    {"value":"semi-automatic","label":"Semi-automatic"}]},
  {"key":"drive-type","label":"Drive Type","type":"RADIO","order":17,"options":["4x2","4x4","6x4"]},
  {"key":"year","label":"Year of Manufacture","type":"NUMBER","order":18,"validationRules":{"min":1950,"max":2026}},
  {"key":"mileage","label":"Mileage","type":"NUMBER","sortOrder":19,"validationRules":{"min":0,"unit":"km"}},
  {"key":"operating-hours","label":"Operating Hours","type":"NUMBER","sortOrder":20,"validationRules":{"min":0,"unit":"h"}},
  {"key":"max-speed","label":"Maximum Speed","type":"NUMBER","order":21,"validations":{"min":0,"unit":"km/h"}},
  {"key":"emission-class","label":"Emission Class","type":"SELECT","order":22,"staticOptions":[
    {"value":"euro-3","label":"Euro 3"},{"value":"euro-4","label":"Euro 4"},
    {"value":"euro-5","label":"Euro 5"},{"value":"euro-6","label":"Euro 6"}]},
  {"key":"axle-count","label":"Number of Axles","type":"NUMBER","order":23,"validations":{"min":1,"max":10}},
  {"key":"first-registration","label":"First Registration","type":"DATE","order":24,
    "visibilityIf":{"field":"condition","equals":"used"}},
  {"key":"vin","label":"VIN","type":"TEXT","order":25,"validations":{"pattern":"^[A-HJ-NPR-Z0-9]{17}$"}},
  {"key":"ad-blue","label":"AdBlue","component":"checkbox","order":26},
  {"key":"color","label":"Colour","type":"COLOR","order":27,"options":[
    {"value":"red","label":"Red"},{"value":"green","label":"Green"},
    {"value":"blue","label":"Blue"},{"value":"white","label":"White"}]}
]`

const contactBlockFields = `[
  {"key":"location","label":"Location","type":"LOCATION","order":90,"isRequired":true},
  {"key":"seller-name","label":"Seller Name","type":"TEXT","order":91,"group":"Seller"},
  {"key":"phone","label":"Phone","type":"TEXT","order":92,"group":"Seller",
    "validations":{"pattern":"^\\+?[0-9 ()-]{6,20}$"},
    "requiredIf":{"field":"seller-name","present":true}},
  {"key":"email","label":"Email","type":"TEXT","order":93,"group":"Seller"},
  {"key":"photos","label":"Photos","type":"MEDIA","order":94}
]`
