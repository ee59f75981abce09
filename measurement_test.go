package loadbench

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hhkbp2/testify/require"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStatusOf(t *testing.T) {
	require.Equal(t, StatusOK, StatusOf(nil))
	require.Equal(t, StatusNotFound, StatusOf(NewBackendError("READ", "t", "k", ErrNotFound)))
	require.Equal(t, StatusNotImplemented, StatusOf(errors.Wrap(ErrNotImplemented, "scan")))
	require.Equal(t, StatusError, StatusOf(errors.New("boom")))
	require.Equal(t, "UNEXPECTED_STATE", StatusUnexpectedState.String())
}

func exportText(t *testing.T, m OneMeasurement) string {
	var buf bytes.Buffer
	exporter := NewTextMeasurementExporter(nopCloser{&buf})
	require.Nil(t, m.ExportMeasurements(exporter))
	require.Nil(t, exporter.Close())
	return buf.String()
}

func TestOneMeasurementHistogram(t *testing.T) {
	p := NewProperties()
	p.Add(Buckets, "5")
	m, err := NewOneMeasurementHistogram("READ", p)
	require.Nil(t, err)
	for _, latency := range []int64{500, 1500, 1500, 2500, 9000} {
		m.Measure(latency)
	}
	m.ReportStatus(StatusOK)
	m.ReportStatus(StatusError)
	require.Equal(t, "[READ AverageLatency(us)=3000.00]", m.GetSummary())
	require.Equal(t, "", m.GetSummary())

	out := exportText(t, m)
	require.Contains(t, out, "[READ], Operations, 5\n")
	require.Contains(t, out, "[READ], AverageLatency(us), 3000\n")
	require.Contains(t, out, "[READ], MinLatency(us), 500\n")
	require.Contains(t, out, "[READ], MaxLatency(us), 9000\n")
	require.Contains(t, out, "[READ], 1, 2\n")
	require.Contains(t, out, "[READ], >5, 1\n")
	require.True(t, strings.Index(out, "Return=OK") < strings.Index(out, "Return=ERROR"))

	p.Add(Buckets, "0")
	_, err = NewOneMeasurementHistogram("READ", p)
	require.NotNil(t, err)
}

func TestOneMeasurementHdrHistogram(t *testing.T) {
	p := NewProperties()
	p.Add(PropertyPercentiles, "50,99")
	m, err := NewOneMeasurementHdrHistogram("UPDATE", p)
	require.Nil(t, err)
	for i := int64(1); i <= 100; i++ {
		m.Measure(i * 10)
	}
	// beyond the trackable range
	m.Measure(1 << 40)
	m.ReportStatus(StatusOK)
	require.True(t, strings.HasPrefix(m.GetSummary(), "[UPDATE: Count=101"))
	require.Equal(t, "", m.GetSummary())

	out := exportText(t, m)
	require.Contains(t, out, "[UPDATE], Operations, 101\n")
	require.Contains(t, out, "[UPDATE], MinLatency(us), 10\n")
	require.Contains(t, out, "[UPDATE], 50thPercentileLatency(us), 510\n")
	require.Contains(t, out, "[UPDATE], 99thPercentileLatency(us), 1000\n")
	require.Contains(t, out, "[UPDATE], Return=OK, 1\n")

	for _, percentiles := range []string{"0", "100", "95,x"} {
		p.Add(PropertyPercentiles, percentiles)
		_, err = NewOneMeasurementHdrHistogram("UPDATE", p)
		configErr, ok := err.(*ConfigError)
		require.True(t, ok)
		require.Equal(t, PropertyPercentiles, configErr.Param)
	}
}

func TestNewDefaultMeasurements(t *testing.T) {
	p := NewProperties()
	p.Add(PropertyMeasurementType, "timeseries")
	_, err := NewDefaultMeasurements(p)
	configErr, ok := err.(*ConfigError)
	require.True(t, ok)
	require.Equal(t, PropertyMeasurementType, configErr.Param)

	p.Add(PropertyMeasurementType, "hdrhistogram")
	p.Add(PropertyHdrHistogramSig, "9")
	_, err = NewDefaultMeasurements(p)
	configErr, ok = err.(*ConfigError)
	require.True(t, ok)
	require.Equal(t, PropertyHdrHistogramSig, configErr.Param)
}

func TestDefaultMeasurements(t *testing.T) {
	p := NewProperties()
	p.Add(PropertyMeasurementType, "hdrhistogram+histogram")
	m, err := NewDefaultMeasurements(p)
	require.Nil(t, err)
	m.Measure("UPDATE", 100)
	m.ReportStatus("UPDATE", StatusOK)
	m.Measure("READ", 200)
	m.ReportStatus("READ", StatusNotFound)
	m.ReportStatus("READ", StatusOK)

	require.Equal(t, float64(1), testutil.ToFloat64(m.metrics.operations.WithLabelValues("READ", "NOT_FOUND")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.metrics.operations.WithLabelValues("UPDATE", "OK")))

	summary := m.GetSummary()
	require.True(t, strings.Index(summary, "READ") < strings.Index(summary, "UPDATE"))

	var buf bytes.Buffer
	p.Add(PropertyExporter, "json")
	require.Nil(t, ExportMeasurements(p, m, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	metrics := make(map[string]bool)
	for _, line := range lines {
		var entry innerJSONMeasurement
		require.Nil(t, json.Unmarshal([]byte(line), &entry))
		metrics[entry.Metric] = true
	}
	require.Equal(t, map[string]bool{
		"HdrREAD": true, "BucketREAD": true, "HdrUPDATE": true, "BucketUPDATE": true,
	}, metrics)
	require.Contains(t, buf.String(), `{"metric":"HdrREAD","measurement":"Return=NOT_FOUND","value":1}`)
}

func TestJSONArrayExporter(t *testing.T) {
	var buf bytes.Buffer
	exporter, err := NewMeasurementExporter("jsonarray", nopCloser{&buf})
	require.Nil(t, err)
	require.Nil(t, exporter.Write("READ", "Operations", 3))
	require.Nil(t, exporter.Write("READ", "MaxLatency(us)", 12))
	require.Nil(t, exporter.Close())
	var entries []innerJSONMeasurement
	require.Nil(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Equal(t, 2, len(entries))
	require.Equal(t, "MaxLatency(us)", entries[1].Measurement)

	_, err = NewMeasurementExporter("xml", nopCloser{&buf})
	require.NotNil(t, err)
}
