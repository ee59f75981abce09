package loadbench

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	g "github.com/hhkbp2/loadbench/generator"
)

func concatFieldsStr(fields []string) string {
	if len(fields) == 0 {
		return "<all fields>"
	}
	return strings.Join(fields, ", ")
}

func concatKVStr(values KVMap) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+values[k])
	}
	return strings.Join(parts, ", ")
}

// BasicDB is a database that does nothing but echo the operations, with an
// optional simulated delay.
type BasicDB struct {
	*DBBase
	out            io.Writer
	verbose        bool
	randomizeDelay bool
	toDelay        int64
}

func NewBasicDB(p Properties) *BasicDB {
	return &BasicDB{
		DBBase: NewDBBase(p),
		out:    os.Stdout,
	}
}

func (self *BasicDB) delay(ctx context.Context) {
	if self.toDelay <= 0 {
		return
	}
	millis := self.toDelay
	if self.randomizeDelay {
		millis = g.NextInt64(self.toDelay)
		if millis == 0 {
			return
		}
	}
	t := time.NewTimer(time.Duration(millis) * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Initialize any state for this DB.
func (self *BasicDB) Init(ctx context.Context) error {
	p := self.GetProperties()
	var err error
	if self.verbose, err = p.boolValue(ConfigBasicDBVerbose, ConfigBasicDBVerboseDefault); err != nil {
		return err
	}
	if self.toDelay, err = p.int64Value(ConfigSimulateDelay, ConfigSimulateDelayDefault); err != nil {
		return err
	}
	if self.randomizeDelay, err = p.boolValue(ConfigRandomizeDelay, ConfigRandomizeDelayDefault); err != nil {
		return err
	}
	if self.verbose {
		Fprintf(self.out, "***************** properties *****************")
		for _, k := range p.Keys() {
			Fprintf(self.out, "%q=%q", k, p[k])
		}
		Fprintf(self.out, "**********************************************")
	}
	return nil
}

// Read a record from the database.
func (self *BasicDB) Read(ctx context.Context, table string, key string, fields []string) (KVMap, error) {
	self.delay(ctx)
	if self.verbose {
		Fprintf(self.out, "READ %s %s [%s]", table, key, concatFieldsStr(fields))
	}
	return KVMap{}, nil
}

// Perform a range scan for a set of records in the database.
func (self *BasicDB) Scan(ctx context.Context, table string, startKey string, recordCount int64, fields []string) ([]KVMap, error) {
	self.delay(ctx)
	if self.verbose {
		Fprintf(self.out, "SCAN %s %s %d [%s]", table, startKey, recordCount, concatFieldsStr(fields))
	}
	return nil, nil
}

// Insert a record in the database.
func (self *BasicDB) Insert(ctx context.Context, table string, key string, values KVMap) error {
	self.delay(ctx)
	if self.verbose {
		Fprintf(self.out, "INSERT %s %s [%s]", table, key, concatKVStr(values))
	}
	return nil
}
