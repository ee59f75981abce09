package binding

import (
	"fmt"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/hhkbp2/loadbench"
	_ "github.com/lib/pq"
)

const (
	PropertyPostgresHost               = "postgres.host"
	PropertyPostgresHostDefault        = "127.0.0.1"
	PropertyPostgresPort               = "postgres.port"
	PropertyPostgresPortDefault        = "5432"
	PropertyPostgresDatabase           = "postgres.db"
	PropertyPostgresDatabaseDefault    = "postgres"
	PropertyPostgresUser               = "postgres.user"
	PropertyPostgresUserDefault        = "postgres"
	PropertyPostgresPassword           = "postgres.password"
	PropertyPostgresPasswordDefault    = ""
	PropertyPostgresSSLMode            = "postgres.sslmode"
	PropertyPostgresSSLModeDefault     = "disable"
	PropertyPostgresPrimaryKey         = "postgres.primarykey"
	PropertyPostgresPrimaryKeyDefault  = "y_id"
	PropertyPostgresCreateTable        = "postgres.createtable"
	PropertyPostgresCreateTableDefault = "false"
)

func postgresDSN(p loadbench.Properties) string {
	dsn := fmt.Sprintf("host=%s port=%s dbname=%s user=%s sslmode=%s",
		p.GetDefault(PropertyPostgresHost, PropertyPostgresHostDefault),
		p.GetDefault(PropertyPostgresPort, PropertyPostgresPortDefault),
		p.GetDefault(PropertyPostgresDatabase, PropertyPostgresDatabaseDefault),
		p.GetDefault(PropertyPostgresUser, PropertyPostgresUserDefault),
		p.GetDefault(PropertyPostgresSSLMode, PropertyPostgresSSLModeDefault))
	if password := p.GetDefault(PropertyPostgresPassword, PropertyPostgresPasswordDefault); password != "" {
		dsn += fmt.Sprintf(" password='%s'", password)
	}
	return dsn
}

func NewPostgresDB(p loadbench.Properties) (loadbench.DB, error) {
	createTable, err := parseBool(p, PropertyPostgresCreateTable, PropertyPostgresCreateTableDefault)
	if err != nil {
		return nil, err
	}
	return newSQLDB(p, sqlConfig{
		driver:      "postgres",
		dialect:     "postgres",
		dsn:         postgresDSN(p),
		primaryKey:  p.GetDefault(PropertyPostgresPrimaryKey, PropertyPostgresPrimaryKeyDefault),
		createTable: createTable,
	}), nil
}
