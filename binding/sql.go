package binding

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/doug-martin/goqu/v9"
	"github.com/hhkbp2/loadbench"
	"github.com/pkg/errors"
)

const (
	ConnectAttempts = 5
	ConnectDelay    = 200 * time.Millisecond
)

// sqlConfig describes how to reach one SQL database.
type sqlConfig struct {
	driver      string
	dialect     string
	dsn         string
	primaryKey  string
	createTable bool
	maxConns    int
}

// SQLDB stores every record as one row: the key in the primary key column
// and the fields in the columns field0, field1, ...
type SQLDB struct {
	*loadbench.DBBase
	config sqlConfig
	db     *sql.DB
	gdb    *goqu.Database
}

func newSQLDB(p loadbench.Properties, config sqlConfig) *SQLDB {
	return &SQLDB{
		DBBase: loadbench.NewDBBase(p),
		config: config,
	}
}

func (self *SQLDB) Init(ctx context.Context) error {
	db, err := sql.Open(self.config.driver, self.config.dsn)
	if err != nil {
		return err
	}
	if self.config.maxConns > 0 {
		db.SetMaxOpenConns(self.config.maxConns)
	}
	err = retry.Do(
		func() error {
			return db.PingContext(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(ConnectAttempts),
		retry.Delay(ConnectDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			loadbench.Warnf("fail to connect to %s (attempt %d): %s", self.config.driver, n+1, err)
		}),
	)
	if err != nil {
		db.Close()
		return errors.Wrapf(err, "fail to connect to %s", self.config.driver)
	}
	self.db = db
	self.gdb = goqu.New(self.config.dialect, db)
	if self.config.createTable {
		if err := self.createTable(ctx); err != nil {
			db.Close()
			return err
		}
	}
	return nil
}

func (self *SQLDB) createTable(ctx context.Context) error {
	p := self.GetProperties()
	table := p.GetDefault(loadbench.PropertyTableName, loadbench.PropertyTableNameDefault)
	fieldCount, err := parseInt(p, loadbench.PropertyFieldCount, loadbench.PropertyFieldCountDefault)
	if err != nil {
		return err
	}
	columns := make([]string, 0, fieldCount+1)
	columns = append(columns, fmt.Sprintf("%s VARCHAR(255) PRIMARY KEY", self.config.primaryKey))
	for i := int64(0); i < fieldCount; i++ {
		columns = append(columns, fmt.Sprintf("field%d TEXT", i))
	}
	statement := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(columns, ", "))
	loadbench.Debugf("%s", statement)
	if _, err := self.db.ExecContext(ctx, statement); err != nil {
		return errors.Wrapf(err, "fail to create table %s", table)
	}
	return nil
}

func (self *SQLDB) Cleanup() error {
	if self.db != nil {
		return self.db.Close()
	}
	return nil
}

func (self *SQLDB) selectColumns(fields []string) []interface{} {
	if len(fields) == 0 {
		return []interface{}{goqu.Star()}
	}
	columns := make([]interface{}, 0, len(fields)+1)
	columns = append(columns, goqu.C(self.config.primaryKey))
	for _, f := range fields {
		columns = append(columns, goqu.C(f))
	}
	return columns
}

// query runs a select and returns one KVMap per row, without the primary
// key column.
func (self *SQLDB) query(ctx context.Context, ds *goqu.SelectDataset) ([]loadbench.KVMap, error) {
	statement, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := self.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	ret := make([]loadbench.KVMap, 0)
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		record := make(loadbench.KVMap, len(columns))
		for i, c := range columns {
			if c == self.config.primaryKey || !values[i].Valid {
				continue
			}
			record[c] = values[i].String
		}
		ret = append(ret, record)
	}
	return ret, rows.Err()
}

func (self *SQLDB) Read(ctx context.Context, table string, key string, fields []string) (loadbench.KVMap, error) {
	ds := self.gdb.From(table).
		Select(self.selectColumns(fields)...).
		Where(goqu.C(self.config.primaryKey).Eq(key))
	records, err := self.query(ctx, ds)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, loadbench.ErrNotFound
	}
	return records[0], nil
}

func (self *SQLDB) Scan(ctx context.Context, table string, startKey string, recordCount int64, fields []string) ([]loadbench.KVMap, error) {
	if recordCount <= 0 {
		return nil, nil
	}
	ds := self.gdb.From(table).
		Select(self.selectColumns(fields)...).
		Where(goqu.C(self.config.primaryKey).Gte(startKey)).
		Order(goqu.C(self.config.primaryKey).Asc()).
		Limit(uint(recordCount))
	return self.query(ctx, ds)
}

// Insert writes the record, replacing the given fields if the key exists.
func (self *SQLDB) Insert(ctx context.Context, table string, key string, values loadbench.KVMap) error {
	row := goqu.Record{self.config.primaryKey: key}
	updates := goqu.Record{}
	for k, v := range values {
		row[k] = v
		updates[k] = v
	}
	ds := self.gdb.Insert(table).Prepared(true).Rows(row)
	if len(updates) > 0 {
		ds = ds.OnConflict(goqu.DoUpdate(self.config.primaryKey, updates))
	} else {
		ds = ds.OnConflict(goqu.DoNothing())
	}
	_, err := ds.Executor().ExecContext(ctx)
	return err
}
