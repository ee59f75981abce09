package binding

import (
	"context"
	"testing"

	"github.com/hhkbp2/loadbench"
	"github.com/hhkbp2/testify/require"
)

func newTestMemoryDB(t *testing.T) *MemoryDB {
	db, err := NewMemoryDB(testProperties(nil))
	require.Nil(t, err)
	return db.(*MemoryDB)
}

func TestMemoryDB(t *testing.T) {
	db := newTestMemoryDB(t)
	require.Nil(t, db.Init(context.Background()))
	exerciseDB(t, db)
}

func TestMemoryDBTables(t *testing.T) {
	ctx := context.Background()
	db := newTestMemoryDB(t)
	require.Nil(t, db.Init(ctx))
	require.Nil(t, db.Insert(ctx, "a", "user1", loadbench.KVMap{"field0": "x"}))
	require.Nil(t, db.Insert(ctx, "ab", "user0", loadbench.KVMap{"field0": "y"}))
	require.Nil(t, db.Insert(ctx, "b", "user0", loadbench.KVMap{"field0": "z"}))

	_, err := db.Read(ctx, "b", "user1", nil)
	require.Equal(t, loadbench.ErrNotFound, err)

	records, err := db.Scan(ctx, "a", "user0", 10, nil)
	require.Nil(t, err)
	require.Equal(t, []loadbench.KVMap{{"field0": "x"}}, records)

	n, err := db.Len("a")
	require.Nil(t, err)
	require.Equal(t, 1, n)
}

func TestMemoryDBBenchmark(t *testing.T) {
	db := newTestMemoryDB(t)
	runBenchmark(t, db)
	n, err := db.Len(testTable)
	require.Nil(t, err)
	// every load insert plus the inserts of the run phase
	require.True(t, n >= 200)
}
