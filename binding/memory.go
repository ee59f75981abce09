package binding

import (
	"context"

	"github.com/hashicorp/go-memdb"
	"github.com/hhkbp2/loadbench"
)

const (
	recordsTable = "records"
	idIndex      = "id"
)

type memoryRecord struct {
	Table  string
	Key    string
	Fields loadbench.KVMap
}

func memorySchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			recordsTable: {
				Name: recordsTable,
				Indexes: map[string]*memdb.IndexSchema{
					idIndex: {
						Name:   idIndex,
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "Table"},
								&memdb.StringFieldIndex{Field: "Key"},
							},
						},
					},
				},
			},
		},
	}
}

// MemoryDB keeps every record in process memory. Records are immutable once
// stored; writes replace them inside a write transaction.
type MemoryDB struct {
	*loadbench.DBBase
	db *memdb.MemDB
}

func NewMemoryDB(p loadbench.Properties) (loadbench.DB, error) {
	return &MemoryDB{
		DBBase: loadbench.NewDBBase(p),
	}, nil
}

func (self *MemoryDB) Init(ctx context.Context) error {
	db, err := memdb.NewMemDB(memorySchema())
	if err != nil {
		return err
	}
	self.db = db
	return nil
}

func (self *MemoryDB) Read(ctx context.Context, table string, key string, fields []string) (loadbench.KVMap, error) {
	txn := self.db.Txn(false)
	defer txn.Abort()
	obj, err := txn.First(recordsTable, idIndex, table, key)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, loadbench.ErrNotFound
	}
	return loadbench.SelectFields(obj.(*memoryRecord).Fields, fields), nil
}

func (self *MemoryDB) Scan(ctx context.Context, table string, startKey string, recordCount int64, fields []string) ([]loadbench.KVMap, error) {
	txn := self.db.Txn(false)
	defer txn.Abort()
	it, err := txn.LowerBound(recordsTable, idIndex, table, startKey)
	if err != nil {
		return nil, err
	}
	ret := make([]loadbench.KVMap, 0)
	for obj := it.Next(); obj != nil && int64(len(ret)) < recordCount; obj = it.Next() {
		record := obj.(*memoryRecord)
		if record.Table != table {
			break
		}
		ret = append(ret, loadbench.SelectFields(record.Fields, fields))
	}
	return ret, nil
}

func (self *MemoryDB) Insert(ctx context.Context, table string, key string, values loadbench.KVMap) error {
	txn := self.db.Txn(true)
	defer txn.Abort()
	record := &memoryRecord{
		Table:  table,
		Key:    key,
		Fields: make(loadbench.KVMap, len(values)),
	}
	obj, err := txn.First(recordsTable, idIndex, table, key)
	if err != nil {
		return err
	}
	if obj != nil {
		for k, v := range obj.(*memoryRecord).Fields {
			record.Fields[k] = v
		}
	}
	for k, v := range values {
		record.Fields[k] = v
	}
	if err := txn.Insert(recordsTable, record); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// Len returns the number of records stored in table.
func (self *MemoryDB) Len(table string) (int, error) {
	txn := self.db.Txn(false)
	defer txn.Abort()
	it, err := txn.LowerBound(recordsTable, idIndex, table, "")
	if err != nil {
		return 0, err
	}
	n := 0
	for obj := it.Next(); obj != nil && obj.(*memoryRecord).Table == table; obj = it.Next() {
		n++
	}
	return n, nil
}
