package loadbench

import (
	"io"
	"os"
	"strconv"
)

// WriteResults prints the overall lines of every phase, in order.
func WriteResults(w io.Writer, results []*PhaseResult) {
	for _, r := range results {
		Fprintf(w, "[OVERALL], ThreadCount, %d", r.Threads)
		Fprintf(w, "[OVERALL], RunTime(ms), %d", r.Elapsed.Milliseconds())
		Fprintf(w, "[OVERALL], Throughput(ops/sec), %s", strconv.FormatFloat(r.Throughput, 'f', -1, 64))
	}
}

// ExportMeasurements writes the per operation measurements with the
// exporter named by the "exporter" property, to "exportfile" or to w when
// no file is set.
func ExportMeasurements(p Properties, m Measurements, w io.Writer) error {
	var out io.WriteCloser
	if fileName := p.GetDefault(PropertyExportFile, PropertyExportFileDefault); len(fileName) > 0 {
		f, err := os.Create(fileName)
		if err != nil {
			return err
		}
		out = f
	} else {
		out = nopCloser{w}
	}
	exporter, err := NewMeasurementExporter(p.GetDefault(PropertyExporter, PropertyExporterDefault), out)
	if err != nil {
		out.Close()
		return err
	}
	if err := m.ExportMeasurements(exporter); err != nil {
		exporter.Close()
		return err
	}
	return exporter.Close()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
