package loadbench

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/hhkbp2/testify/require"
)

// mapDB is an in-process database recording the calls it receives.
type mapDB struct {
	lock    sync.Mutex
	tables  map[string]map[string]KVMap
	inits   int
	cleaned bool
	inserts int
	reads   int
	// the insert failing with failErr, counted from 1. Zero never fails.
	failAt  int
	failErr error
}

func newMapDB() *mapDB {
	return &mapDB{
		tables: make(map[string]map[string]KVMap),
	}
}

func (self *mapDB) Init(ctx context.Context) error {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.inits++
	return nil
}

func (self *mapDB) Cleanup() error {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.cleaned = true
	return nil
}

func (self *mapDB) Insert(ctx context.Context, table string, key string, values KVMap) error {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.inserts++
	if self.failAt > 0 && self.inserts >= self.failAt {
		return self.failErr
	}
	t, ok := self.tables[table]
	if !ok {
		t = make(map[string]KVMap)
		self.tables[table] = t
	}
	record, ok := t[key]
	if !ok {
		record = make(KVMap)
		t[key] = record
	}
	for k, v := range values {
		record[k] = v
	}
	return nil
}

func (self *mapDB) Read(ctx context.Context, table string, key string, fields []string) (KVMap, error) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.reads++
	record, ok := self.tables[table][key]
	if !ok {
		return nil, ErrNotFound
	}
	return SelectFields(record, fields), nil
}

func (self *mapDB) Scan(ctx context.Context, table string, startKey string, recordCount int64, fields []string) ([]KVMap, error) {
	self.lock.Lock()
	defer self.lock.Unlock()
	keys := make([]string, 0)
	for k := range self.tables[table] {
		if k >= startKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	ret := make([]KVMap, 0, recordCount)
	for _, k := range keys {
		if int64(len(ret)) >= recordCount {
			break
		}
		ret = append(ret, SelectFields(self.tables[table][k], fields))
	}
	return ret, nil
}

func (self *mapDB) count(table string) int {
	self.lock.Lock()
	defer self.lock.Unlock()
	return len(self.tables[table])
}

// readOnlyDB hides every method but those of DB.
type readOnlyDB struct {
	DB
}

func TestSelectFields(t *testing.T) {
	values := KVMap{"a": "1", "b": "2", "c": "3"}
	require.Equal(t, values, SelectFields(values, nil))
	require.Equal(t, KVMap{"b": "2"}, SelectFields(values, []string{"b", "d"}))

	// the result is a copy
	ret := SelectFields(values, nil)
	ret["a"] = "changed"
	require.Equal(t, "1", values["a"])
}

func TestNewDB(t *testing.T) {
	db, err := NewDB("basic", NewProperties())
	require.Nil(t, err)
	_, ok := db.(*BasicDB)
	require.True(t, ok)

	_, err = NewDB("nosuchdb", NewProperties())
	require.NotNil(t, err)
	configErr, ok := err.(*ConfigError)
	require.True(t, ok)
	require.Equal(t, PropertyDB, configErr.Param)

	RegisterDB("map", func(p Properties) (DB, error) {
		return newMapDB(), nil
	})
	defer delete(Databases, "map")
	require.Contains(t, DatabaseNames(), "map")
	db, err = NewDB("map", NewProperties())
	require.Nil(t, err)
	_, ok = db.(*mapDB)
	require.True(t, ok)
}

func TestBasicDBVerbose(t *testing.T) {
	p := NewProperties()
	p.Add(ConfigBasicDBVerbose, "true")
	db := NewBasicDB(p)
	var buf bytes.Buffer
	db.out = &buf
	ctx := context.Background()
	require.Nil(t, db.Init(ctx))
	require.Nil(t, db.Insert(ctx, "usertable", "user1", KVMap{"field0": "x"}))
	ret, err := db.Read(ctx, "usertable", "user1", nil)
	require.Nil(t, err)
	require.Equal(t, 0, len(ret))

	out := buf.String()
	require.Contains(t, out, `"basicdb.verbose"="true"`)
	require.Contains(t, out, "INSERT usertable user1")
	require.Contains(t, out, "READ usertable user1")
}

func TestBasicDBInvalidProperty(t *testing.T) {
	p := NewProperties()
	p.Add(ConfigSimulateDelay, "soon")
	err := NewBasicDB(p).Init(context.Background())
	configErr, ok := err.(*ConfigError)
	require.True(t, ok)
	require.Equal(t, ConfigSimulateDelay, configErr.Param)
}
