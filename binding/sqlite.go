package binding

import (
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/hhkbp2/loadbench"
	_ "modernc.org/sqlite"
)

const (
	PropertySqlitePath               = "sqlite.path"
	PropertySqlitePathDefault        = "test.db"
	PropertySqlitePrimaryKey         = "sqlite.primarykey"
	PropertySqlitePrimaryKeyDefault  = "y_id"
	PropertySqliteCreateTable        = "sqlite.createtable"
	PropertySqliteCreateTableDefault = "true"
)

// NewSqliteDB opens a sqlite database file. Writers are serialized over a
// single connection.
func NewSqliteDB(p loadbench.Properties) (loadbench.DB, error) {
	createTable, err := parseBool(p, PropertySqliteCreateTable, PropertySqliteCreateTableDefault)
	if err != nil {
		return nil, err
	}
	return newSQLDB(p, sqlConfig{
		driver:      "sqlite",
		dialect:     "sqlite3",
		dsn:         p.GetDefault(PropertySqlitePath, PropertySqlitePathDefault),
		primaryKey:  p.GetDefault(PropertySqlitePrimaryKey, PropertySqlitePrimaryKeyDefault),
		createTable: createTable,
		maxConns:    1,
	}), nil
}
