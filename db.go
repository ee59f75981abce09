package loadbench

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotFound       = errors.New("the requested record was not found")
	ErrNotImplemented = errors.New("the operation is not implemented for the current binding")
)

// KVMap maps field names to field values of one record.
type KVMap map[string]string

// DB is a layer for accessing a database to be benchmarked.
// One instance is shared by every client goroutine, so implementations must
// be safe for concurrent use.
//
// Insert has upsert semantics: writing an existing key replaces the given
// fields. The workload issues updates through Insert for that reason.
type DB interface {
	// Initialize any state for this DB.
	// Called once before the first phase runs.
	Init(ctx context.Context) error

	// Insert a record in the database. Any field/value pairs in the specified
	// values will be written into the record with the specified record key.
	Insert(ctx context.Context, table string, key string, values KVMap) error

	// Read a record from the database.
	// Only the given fields are returned, or every field if fields is empty.
	Read(ctx context.Context, table string, key string, fields []string) (KVMap, error)
}

// Scanner is implemented by databases that support ordered range scans.
type Scanner interface {
	// Perform a range scan for a set of records in the database, starting at
	// startKey, returning at most recordCount records in key order.
	Scan(ctx context.Context, table string, startKey string, recordCount int64, fields []string) ([]KVMap, error)
}

// Cleaner is implemented by databases holding resources to release.
type Cleaner interface {
	// Cleanup any state for this DB.
	// Called once after the last phase.
	Cleanup() error
}

type DBBase struct {
	p Properties
}

func NewDBBase(p Properties) *DBBase {
	return &DBBase{
		p: p,
	}
}

func (self *DBBase) GetProperties() Properties {
	return self.p
}

// MakeDBFunc constructs a binding from the properties of the run.
type MakeDBFunc func(p Properties) (DB, error)

var (
	Databases = map[string]MakeDBFunc{
		"basic": func(p Properties) (DB, error) {
			return NewBasicDB(p), nil
		},
	}
)

// RegisterDB makes a binding available under name.
func RegisterDB(name string, f MakeDBFunc) {
	Databases[name] = f
}

// DatabaseNames lists the registered bindings.
func DatabaseNames() []string {
	names := make([]string, 0, len(Databases))
	for name := range Databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func NewDB(database string, props Properties) (DB, error) {
	f, ok := Databases[database]
	if !ok {
		return nil, newConfigErrorf(PropertyDB, database,
			"unsupported database, available: %s", strings.Join(DatabaseNames(), ", "))
	}
	return f(props)
}

// SelectFields returns the given fields of values, or all of them when
// fields is empty.
func SelectFields(values KVMap, fields []string) KVMap {
	if len(fields) == 0 {
		ret := make(KVMap, len(values))
		for k, v := range values {
			ret[k] = v
		}
		return ret
	}
	ret := make(KVMap, len(fields))
	for _, f := range fields {
		if v, ok := values[f]; ok {
			ret[f] = v
		}
	}
	return ret
}
