package loadbench

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hhkbp2/testify/require"
	"github.com/pkg/errors"
)

func newTestClient(t *testing.T, db DB, threads int, kv map[string]string) (*Client, *DefaultMeasurements) {
	measurements, err := NewDefaultMeasurements(NewProperties())
	require.Nil(t, err)
	workload := newTestWorkload(t, workloadProperties(kv), measurements)
	return NewClient(db, workload, measurements, threads), measurements
}

func TestClientLoadAndRun(t *testing.T) {
	db := newMapDB()
	client, measurements := newTestClient(t, db, 4, map[string]string{
		PropertyRecordCount:      "100",
		PropertyOperationCount:   "100",
		PropertyReadProportion:   "0.5",
		PropertyUpdateProportion: "0.5",
	})
	results, err := client.Run(context.Background(), []string{PhaseLoad, PhaseRun})
	require.Nil(t, err)
	require.Equal(t, 2, len(results))
	require.Equal(t, 1, db.inits)
	require.True(t, db.cleaned)
	require.Equal(t, 100, db.count("usertable"))

	for i, phase := range []string{PhaseLoad, PhaseRun} {
		r := results[i]
		require.Equal(t, phase, r.Phase)
		require.Equal(t, 4, r.Threads)
		require.Equal(t, int64(100), r.Operations)
		require.Equal(t, int64(100), r.Completed)
		require.True(t, r.Elapsed > 0)
		require.Equal(t, float64(100)/r.Elapsed.Seconds(), r.Throughput)
	}

	var buf bytes.Buffer
	require.Nil(t, ExportMeasurements(NewProperties(), measurements, &buf))
	out := buf.String()
	require.Contains(t, out, "[INSERT], Operations, 100\n")
	require.Contains(t, out, "[INSERT], Return=OK, 100\n")
	// update goes through insert, so only reads can be counted apart
	require.Equal(t, db.reads, 100-(db.inserts-100))
}

func TestClientUnknownPhase(t *testing.T) {
	db := newMapDB()
	client, _ := newTestClient(t, db, 2, map[string]string{
		PropertyRecordCount:    "10",
		PropertyOperationCount: "10",
	})
	_, err := client.Run(context.Background(), []string{PhaseLoad, "scan_only"})
	var phaseErr *UnknownPhaseError
	require.True(t, errors.As(err, &phaseErr))
	require.Equal(t, "scan_only", phaseErr.Phase)
	// nothing runs before every phase is known to be valid
	require.Equal(t, 0, db.inits)
	require.Equal(t, 0, db.inserts)

	_, err = client.Run(context.Background(), nil)
	var configErr *ConfigError
	require.True(t, errors.As(err, &configErr))
}

func TestClientThreadShare(t *testing.T) {
	db := newMapDB()
	client, _ := newTestClient(t, db, 3, map[string]string{
		PropertyOperationCount: "10",
	})
	results, err := client.Run(context.Background(), []string{PhaseLoad})
	require.Nil(t, err)
	// every goroutine issues floor(10 / 3) operations
	require.Equal(t, int64(10), results[0].Operations)
	require.Equal(t, int64(9), results[0].Completed)
	require.Equal(t, 9, db.count("usertable"))
	require.Equal(t, float64(10)/results[0].Elapsed.Seconds(), results[0].Throughput)
}

func TestClientBackendError(t *testing.T) {
	db := newMapDB()
	boom := errors.New("boom")
	db.failAt, db.failErr = 5, boom
	client, _ := newTestClient(t, db, 2, map[string]string{
		PropertyRecordCount:    "100",
		PropertyOperationCount: "100",
	})
	results, err := client.Run(context.Background(), []string{PhaseLoad, PhaseRun})
	require.NotNil(t, err)
	require.Equal(t, 0, len(results))
	var backendErr *BackendError
	require.True(t, errors.As(err, &backendErr))
	require.Equal(t, string(OperationInsert), backendErr.Op)
	require.True(t, errors.Is(err, boom))
	// the run phase never started
	require.Equal(t, 0, db.reads)
	require.True(t, db.cleaned)
	require.True(t, db.inserts < 100)
}

func TestClientNotFoundIsNotFatal(t *testing.T) {
	db := newMapDB()
	client, measurements := newTestClient(t, db, 2, map[string]string{
		PropertyRecordCount:      "10",
		PropertyOperationCount:   "20",
		PropertyReadProportion:   "1",
		PropertyUpdateProportion: "0",
	})
	results, err := client.Run(context.Background(), []string{PhaseRun})
	require.Nil(t, err)
	require.Equal(t, int64(20), results[0].Completed)
	require.Equal(t, 20, db.reads)

	var buf bytes.Buffer
	require.Nil(t, ExportMeasurements(NewProperties(), measurements, &buf))
	require.Contains(t, buf.String(), "[READ], Return=NOT_FOUND, 20\n")
}

func TestClientNotFoundFatal(t *testing.T) {
	db := newMapDB()
	client, _ := newTestClient(t, db, 1, map[string]string{
		PropertyRecordCount:      "10",
		PropertyOperationCount:   "20",
		PropertyReadProportion:   "1",
		PropertyUpdateProportion: "0",
		PropertyNotFoundFatal:    "true",
	})
	_, err := client.Run(context.Background(), []string{PhaseRun})
	require.True(t, errors.Is(err, ErrNotFound))
	var backendErr *BackendError
	require.True(t, errors.As(err, &backendErr))
	require.Equal(t, 1, db.reads)
	require.True(t, db.cleaned)
}

func TestClientScanUnsupported(t *testing.T) {
	db := newMapDB()
	client, _ := newTestClient(t, readOnlyDB{db}, 1, map[string]string{
		PropertyOperationCount:   "10",
		PropertyReadProportion:   "0.5",
		PropertyUpdateProportion: "0",
		PropertyScanProportion:   "0.5",
	})
	_, err := client.Run(context.Background(), []string{PhaseLoad, PhaseRun})
	var configErr *ConfigError
	require.True(t, errors.As(err, &configErr))
	require.Equal(t, 0, db.inits)
}

func TestClientCanceled(t *testing.T) {
	db := newMapDB()
	client, _ := newTestClient(t, db, 2, map[string]string{
		PropertyOperationCount: "10",
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Run(ctx, []string{PhaseLoad})
	require.True(t, errors.Is(err, context.Canceled))
	require.Equal(t, 0, db.inserts)
}

func TestClientTarget(t *testing.T) {
	db := newMapDB()
	client, _ := newTestClient(t, db, 2, map[string]string{
		PropertyOperationCount: "10",
	})
	client.SetTarget(100)
	results, err := client.Run(context.Background(), []string{PhaseLoad})
	require.Nil(t, err)
	// the first operation passes at once, the other 9 wait 10ms each
	require.True(t, results[0].Elapsed >= 80*time.Millisecond)
}

// slowDB delays every insert.
type slowDB struct {
	*mapDB
	delay time.Duration
}

func (self *slowDB) Insert(ctx context.Context, table string, key string, values KVMap) error {
	time.Sleep(self.delay)
	return self.mapDB.Insert(ctx, table, key, values)
}

func TestClientStatus(t *testing.T) {
	db := &slowDB{mapDB: newMapDB(), delay: 2 * time.Millisecond}
	client, _ := newTestClient(t, db, 1, map[string]string{
		PropertyOperationCount: "50",
	})
	var buf bytes.Buffer
	client.SetStatus(&buf, 10*time.Millisecond)
	_, err := client.Run(context.Background(), []string{PhaseLoad})
	require.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.True(t, len(lines) > 0)
	require.Contains(t, lines[0], " load ")
	require.Contains(t, lines[0], "current ops/sec")
	require.NotEqual(t, "", client.RunID())
}

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer
	WriteResults(&buf, []*PhaseResult{
		newPhaseResult(PhaseLoad, 4, 1500*time.Millisecond, 100, 100),
		newPhaseResult(PhaseRun, 2, 2*time.Second, 100, 100),
	})
	require.Equal(t, `[OVERALL], ThreadCount, 4
[OVERALL], RunTime(ms), 1500
[OVERALL], Throughput(ops/sec), 66.66666666666667
[OVERALL], ThreadCount, 2
[OVERALL], RunTime(ms), 2000
[OVERALL], Throughput(ops/sec), 50
`, buf.String())
}
