package binding

import (
	"fmt"

	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	driver "github.com/go-sql-driver/mysql"
	"github.com/hhkbp2/loadbench"
)

const (
	PropertyMysqlHost               = "mysql.host"
	PropertyMysqlHostDefault        = "127.0.0.1"
	PropertyMysqlPort               = "mysql.port"
	PropertyMysqlPortDefault        = "3306"
	PropertyMysqlDatabase           = "mysql.db"
	PropertyMysqlDatabaseDefault    = "db"
	PropertyMysqlUser               = "mysql.user"
	PropertyMysqlUserDefault        = "user"
	PropertyMysqlPassword           = "mysql.password"
	PropertyMysqlPasswordDefault    = "password"
	PropertyMysqlPrimaryKey         = "mysql.primarykey"
	PropertyMysqlPrimaryKeyDefault  = "y_id"
	PropertyMysqlCreateTable        = "mysql.createtable"
	PropertyMysqlCreateTableDefault = "false"
)

func mysqlDSN(p loadbench.Properties) string {
	cfg := driver.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%s",
		p.GetDefault(PropertyMysqlHost, PropertyMysqlHostDefault),
		p.GetDefault(PropertyMysqlPort, PropertyMysqlPortDefault))
	cfg.DBName = p.GetDefault(PropertyMysqlDatabase, PropertyMysqlDatabaseDefault)
	cfg.User = p.GetDefault(PropertyMysqlUser, PropertyMysqlUserDefault)
	cfg.Passwd = p.GetDefault(PropertyMysqlPassword, PropertyMysqlPasswordDefault)
	cfg.Params = map[string]string{"charset": "utf8"}
	return cfg.FormatDSN()
}

func NewMysqlDB(p loadbench.Properties) (loadbench.DB, error) {
	createTable, err := parseBool(p, PropertyMysqlCreateTable, PropertyMysqlCreateTableDefault)
	if err != nil {
		return nil, err
	}
	return newSQLDB(p, sqlConfig{
		driver:      "mysql",
		dialect:     "mysql",
		dsn:         mysqlDSN(p),
		primaryKey:  p.GetDefault(PropertyMysqlPrimaryKey, PropertyMysqlPrimaryKeyDefault),
		createTable: createTable,
	}), nil
}
