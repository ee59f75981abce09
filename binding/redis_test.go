package binding

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis"
	"github.com/hhkbp2/loadbench"
	"github.com/hhkbp2/testify/require"
)

func newTestRedisDB(t *testing.T) (loadbench.DB, *miniredis.Miniredis) {
	server, err := miniredis.Run()
	require.Nil(t, err)
	t.Cleanup(server.Close)
	db, err := NewRedisDB(testProperties(map[string]string{
		PropertyRedisAddr: server.Addr(),
	}))
	require.Nil(t, err)
	t.Cleanup(func() { db.(loadbench.Cleaner).Cleanup() })
	return db, server
}

func TestRedisDB(t *testing.T) {
	db, server := newTestRedisDB(t)
	require.Nil(t, db.Init(context.Background()))
	exerciseDB(t, db)
	require.Equal(t, "auser0", server.HGet(testTable+":user0", "field0"))
}

func TestRedisDBTablesShareKeys(t *testing.T) {
	db, _ := newTestRedisDB(t)
	ctx := context.Background()
	require.Nil(t, db.Init(ctx))

	require.Nil(t, db.Insert(ctx, "orders", "k1", loadbench.KVMap{"field0": "order"}))
	require.Nil(t, db.Insert(ctx, "customers", "k1", loadbench.KVMap{"field0": "customer"}))

	record, err := db.Read(ctx, "orders", "k1", nil)
	require.Nil(t, err)
	require.Equal(t, loadbench.KVMap{"field0": "order"}, record)
	record, err = db.Read(ctx, "customers", "k1", []string{"field0"})
	require.Nil(t, err)
	require.Equal(t, loadbench.KVMap{"field0": "customer"}, record)

	records, err := db.(loadbench.Scanner).Scan(ctx, "orders", "k0", 10, nil)
	require.Nil(t, err)
	require.Equal(t, []loadbench.KVMap{{"field0": "order"}}, records)

	_, err = db.Read(ctx, "invoices", "k1", nil)
	require.Equal(t, loadbench.ErrNotFound, err)
}

func TestRedisDBBenchmark(t *testing.T) {
	db, _ := newTestRedisDB(t)
	runBenchmark(t, db)
}

func TestRedisDBUnreachable(t *testing.T) {
	server, err := miniredis.Run()
	require.Nil(t, err)
	addr := server.Addr()
	server.Close()
	db, err := NewRedisDB(testProperties(map[string]string{
		PropertyRedisAddr: addr,
	}))
	require.Nil(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NotNil(t, db.Init(ctx))
}
