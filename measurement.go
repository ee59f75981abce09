package loadbench

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type MeasurementType uint8

const (
	MeasurementHistogram MeasurementType = 1 + iota
	MeasurementHDRHistogram
	MeasurementHDRHistogramAndHistogram
)

type StatusType uint8

const (
	StatusOK StatusType = 1 + iota
	StatusError
	StatusNotFound
	StatusNotImplemented
	StatusUnexpectedState
)

func (self StatusType) String() string {
	switch self {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusNotImplemented:
		return "NOT_IMPLEMENTED"
	case StatusUnexpectedState:
		return "UNEXPECTED_STATE"
	default:
		return "UNKNOWN_STATUS"
	}
}

// StatusOf maps the error of one operation to the status reported for it.
func StatusOf(err error) StatusType {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrNotFound):
		return StatusNotFound
	case errors.Is(err, ErrNotImplemented):
		return StatusNotImplemented
	default:
		return StatusError
	}
}

// Used to export the collected measuremrnts into a usefull format, for example
// human readable text or machine readable JSON.
type MeasurementExporter interface {
	// Write a measurement to the exported format. v should be int64 or float64
	Write(metric string, measurement string, v interface{}) error
	io.Closer
}

type MakeMeasurementExporterFunc func(w io.WriteCloser) MeasurementExporter

var (
	MeasurementExporters = map[string]MakeMeasurementExporterFunc{
		"text": func(w io.WriteCloser) MeasurementExporter {
			return NewTextMeasurementExporter(w)
		},
		"json": func(w io.WriteCloser) MeasurementExporter {
			return NewJSONMeasurementExporter(w)
		},
		"jsonarray": func(w io.WriteCloser) MeasurementExporter {
			return NewJSONArrayMeasurementExporter(w)
		},
	}
)

func NewMeasurementExporter(name string, w io.WriteCloser) (MeasurementExporter, error) {
	f, ok := MeasurementExporters[name]
	if !ok {
		return nil, newConfigErrorf(PropertyExporter, name, "unsupported measurement exporter")
	}
	return f(w), nil
}

// A single measured metric (such as READ LATENCY)
type OneMeasurement interface {
	Measure(latency int64)
	GetName() string
	GetSummary() string
	// Report a return code.
	ReportStatus(status StatusType)
	// Exports the current measurements to a suitable format.
	ExportMeasurements(exporter MeasurementExporter) error
}

type OneMeasurementBase struct {
	Name            string
	MeasureLock     sync.Mutex
	ReturnCodes     map[StatusType]uint32
	ReturnCodesLock sync.Mutex
}

func NewOneMeasurementBase(name string) *OneMeasurementBase {
	return &OneMeasurementBase{
		Name:        name,
		ReturnCodes: make(map[StatusType]uint32),
	}
}

func (self *OneMeasurementBase) GetName() string {
	return self.Name
}

func (self *OneMeasurementBase) ReportStatus(status StatusType) {
	self.ReturnCodesLock.Lock()
	defer self.ReturnCodesLock.Unlock()
	self.ReturnCodes[status]++
}

func (self *OneMeasurementBase) ExportStatusCounts(exporter MeasurementExporter) error {
	self.ReturnCodesLock.Lock()
	statuses := make([]StatusType, 0, len(self.ReturnCodes))
	for status := range self.ReturnCodes {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })
	counts := make([]uint32, 0, len(statuses))
	for _, status := range statuses {
		counts = append(counts, self.ReturnCodes[status])
	}
	self.ReturnCodesLock.Unlock()

	for i, status := range statuses {
		if err := exporter.Write(self.GetName(), fmt.Sprintf("Return=%s", status), counts[i]); err != nil {
			return err
		}
	}
	return nil
}

// Collects latency measurements, and reports them when requested.
type Measurements interface {
	// Report a single value of a single metric. E.g. for read latency,
	// operation="READ" and latency is the measured value in microseconds.
	Measure(operation string, latency int64)

	// Return a one line summary of the measurements.
	GetSummary() string

	// Report a return code for a single DB operation.
	ReportStatus(operation string, status StatusType)

	// Export the current measurements to a suitable format.
	ExportMeasurements(exporter MeasurementExporter) error
}

type DefaultMeasurements struct {
	props              Properties
	measurementType    MeasurementType
	opToMeasurementMap map[string]OneMeasurement
	lock               sync.RWMutex
	metrics            *metrics
}

func NewDefaultMeasurements(props Properties) (*DefaultMeasurements, error) {
	var measurementType MeasurementType
	propStr := props.GetDefault(PropertyMeasurementType, PropertyMeasurementTypeDefault)
	switch propStr {
	case "histogram":
		measurementType = MeasurementHistogram
	case "hdrhistogram":
		measurementType = MeasurementHDRHistogram
	case "hdrhistogram+histogram":
		measurementType = MeasurementHDRHistogramAndHistogram
	default:
		return nil, newConfigErrorf(PropertyMeasurementType, propStr, "unknown measurement type")
	}
	object := &DefaultMeasurements{
		props:              props,
		measurementType:    measurementType,
		opToMeasurementMap: make(map[string]OneMeasurement),
		metrics:            newMetrics(),
	}
	// fail early on bad histogram properties rather than on the first operation
	if _, err := object.constructOneMeasurement("CHECK"); err != nil {
		return nil, err
	}
	return object, nil
}

// Registry returns the prometheus registry counting the measured operations.
func (self *DefaultMeasurements) Registry() *prometheus.Registry {
	return self.metrics.registry
}

func (self *DefaultMeasurements) constructOneMeasurement(name string) (OneMeasurement, error) {
	switch self.measurementType {
	case MeasurementHistogram:
		return NewOneMeasurementHistogram(name, self.props)
	case MeasurementHDRHistogram:
		return NewOneMeasurementHdrHistogram(name, self.props)
	case MeasurementHDRHistogramAndHistogram:
		hdr, err := NewOneMeasurementHdrHistogram("Hdr"+name, self.props)
		if err != nil {
			return nil, err
		}
		bucket, err := NewOneMeasurementHistogram("Bucket"+name, self.props)
		if err != nil {
			return nil, err
		}
		return NewTwoInOneMeasurement(name, hdr, bucket), nil
	default:
		return nil, errors.Errorf("unknown measurement type %d", self.measurementType)
	}
}

// Report a single value of a single metric. E.g. for read latency,
// operation="READ" and latency is the measured value.
func (self *DefaultMeasurements) Measure(operation string, latency int64) {
	self.getOpMeasurement(operation).Measure(latency)
	self.metrics.latency.WithLabelValues(operation).Observe(float64(latency) / 1e6)
}

func (self *DefaultMeasurements) GetSummary() string {
	self.lock.RLock()
	defer self.lock.RUnlock()
	parts := make([]string, 0, len(self.opToMeasurementMap))
	for _, op := range self.operations() {
		if s := self.opToMeasurementMap[op].GetSummary(); len(s) > 0 {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func (self *DefaultMeasurements) ReportStatus(operation string, status StatusType) {
	self.getOpMeasurement(operation).ReportStatus(status)
	self.metrics.operations.WithLabelValues(operation, status.String()).Inc()
}

func (self *DefaultMeasurements) ExportMeasurements(exporter MeasurementExporter) error {
	self.lock.RLock()
	defer self.lock.RUnlock()
	for _, op := range self.operations() {
		if err := self.opToMeasurementMap[op].ExportMeasurements(exporter); err != nil {
			return err
		}
	}
	return nil
}

// operations returns the measured operation names in lexical order.
// The caller must hold the lock.
func (self *DefaultMeasurements) operations() []string {
	ops := make([]string, 0, len(self.opToMeasurementMap))
	for op := range self.opToMeasurementMap {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

func (self *DefaultMeasurements) getOpMeasurement(operation string) OneMeasurement {
	self.lock.RLock()
	m, ok := self.opToMeasurementMap[operation]
	self.lock.RUnlock()
	if ok {
		return m
	}
	self.lock.Lock()
	defer self.lock.Unlock()
	if m, ok = self.opToMeasurementMap[operation]; ok {
		return m
	}
	// the properties were checked in NewDefaultMeasurements
	m, err := self.constructOneMeasurement(operation)
	if err != nil {
		panic(fmt.Sprintf("unexpected error: %s", err))
	}
	self.opToMeasurementMap[operation] = m
	return m
}

type metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loadbench",
			Name:      "operations_total",
			Help:      "Number of operations issued against the database.",
		}, []string{"operation", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "loadbench",
			Name:      "operation_latency_seconds",
			Help:      "Latency of the operations issued against the database.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 12),
		}, []string{"operation"}),
	}
	m.registry.MustRegister(m.operations, m.latency)
	return m
}

// Write human readable text. Tries to emulate the previous print report method.
type TextMeasurementExporter struct {
	io.WriteCloser
	buf *bufio.Writer
}

func NewTextMeasurementExporter(w io.WriteCloser) *TextMeasurementExporter {
	return &TextMeasurementExporter{
		WriteCloser: w,
		buf:         bufio.NewWriter(w),
	}
}

func (self *TextMeasurementExporter) Write(metric string, measurement string, v interface{}) error {
	_, err := fmt.Fprintf(self.buf, "[%s], %s, %v\n", metric, measurement, v)
	return err
}

func (self *TextMeasurementExporter) Close() error {
	err := self.buf.Flush()
	err2 := self.WriteCloser.Close()
	if err != nil {
		return err
	}
	return err2
}

type innerJSONMeasurement struct {
	Metric      string      `json:"metric"`
	Measurement string      `json:"measurement"`
	Value       interface{} `json:"value"`
}

// Export measurements into a machine readable JSON file, one object per line.
type JSONMeasurementExporter struct {
	io.WriteCloser
	buf *bufio.Writer
}

func NewJSONMeasurementExporter(w io.WriteCloser) *JSONMeasurementExporter {
	return &JSONMeasurementExporter{
		WriteCloser: w,
		buf:         bufio.NewWriter(w),
	}
}

func (self *JSONMeasurementExporter) Write(metric string, measurement string, v interface{}) error {
	b, err := json.Marshal(&innerJSONMeasurement{
		Metric:      metric,
		Measurement: measurement,
		Value:       v,
	})
	if err != nil {
		return err
	}
	if _, err = self.buf.Write(b); err != nil {
		return err
	}
	return self.buf.WriteByte('\n')
}

func (self *JSONMeasurementExporter) Close() error {
	err := self.buf.Flush()
	err2 := self.WriteCloser.Close()
	if err != nil {
		return err
	}
	return err2
}

// Export measurements into a machine readable JSON Array of measurement objects.
type JSONArrayMeasurementExporter struct {
	io.WriteCloser
	buf        *bufio.Writer
	afterFirst bool
}

func NewJSONArrayMeasurementExporter(w io.WriteCloser) *JSONArrayMeasurementExporter {
	object := &JSONArrayMeasurementExporter{
		WriteCloser: w,
		buf:         bufio.NewWriter(w),
	}
	object.buf.WriteString("[")
	return object
}

func (self *JSONArrayMeasurementExporter) Write(metric string, measurement string, v interface{}) error {
	b, err := json.Marshal(&innerJSONMeasurement{
		Metric:      metric,
		Measurement: measurement,
		Value:       v,
	})
	if err != nil {
		return err
	}
	if self.afterFirst {
		if _, err = self.buf.WriteString(","); err != nil {
			return err
		}
	} else {
		self.afterFirst = true
	}
	_, err = self.buf.Write(b)
	return err
}

func (self *JSONArrayMeasurementExporter) Close() error {
	_, err := self.buf.WriteString("]")
	if err == nil {
		err = self.buf.Flush()
	}
	err2 := self.WriteCloser.Close()
	if err != nil {
		return err
	}
	return err2
}

// Take measurements and maintain a histogram of a given metric, such as
// READ LATENCY.
type OneMeasurementHistogram struct {
	*OneMeasurementBase
	// Specify the range of latencies to track in the histogram.
	buckets int64
	// Groups operations in discrete blocks of 1ms width.
	histogram []int64
	// Counts all operations outside the histogram's range.
	histogramOverflow int64
	// The total number of reported operations.
	operations int64
	// The sum of each latency measurement over all operations, in us.
	totalLatency int64
	// The sum of each latency Measurement squared over all operations.
	// Used to calculate variance of latency.
	totalSquaredLatency float64
	// Keep a windowed version of these stats for printing status
	windowOperations   int64
	windowTotalLatency int64
	min                int64
	max                int64
}

func NewOneMeasurementHistogram(name string, props Properties) (*OneMeasurementHistogram, error) {
	buckets, err := props.int64Value(Buckets, BucketsDefault)
	if err != nil {
		return nil, err
	}
	if buckets <= 0 {
		return nil, newConfigErrorf(Buckets, strconv.FormatInt(buckets, 10), "must be positive")
	}
	object := &OneMeasurementHistogram{
		OneMeasurementBase: NewOneMeasurementBase(name),
		buckets:            buckets,
		histogram:          make([]int64, buckets),
		min:                -1,
		max:                -1,
	}
	return object, nil
}

func (self *OneMeasurementHistogram) Measure(latency int64) {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()

	// latency reported in us and collected in buckets by ms.
	bucket := latency / 1000
	if bucket >= self.buckets {
		self.histogramOverflow++
	} else {
		self.histogram[bucket]++
	}
	self.operations++
	self.totalLatency += latency
	self.totalSquaredLatency += math.Pow(float64(latency), 2.0)
	self.windowOperations++
	self.windowTotalLatency += latency

	if (self.min < 0) || (latency < self.min) {
		self.min = latency
	}
	if (self.max < 0) || (latency > self.max) {
		self.max = latency
	}
}

func (self *OneMeasurementHistogram) GetSummary() string {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()
	if self.windowOperations == 0 {
		return ""
	}
	report := float64(self.windowTotalLatency) / float64(self.windowOperations)
	self.windowOperations = 0
	self.windowTotalLatency = 0
	return fmt.Sprintf("[%s AverageLatency(us)=%.2f]", self.GetName(), report)
}

func (self *OneMeasurementHistogram) ExportMeasurements(exporter MeasurementExporter) error {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()
	name := self.GetName()
	var mean, variance float64
	if self.operations > 0 {
		mean = float64(self.totalLatency) / float64(self.operations)
		variance = self.totalSquaredLatency/float64(self.operations) - math.Pow(mean, 2.0)
	}
	type entry struct {
		measurement string
		value       interface{}
	}
	entries := []entry{
		{"Operations", self.operations},
		{"AverageLatency(us)", mean},
		{"LatencyVariance(us)", variance},
		{"MinLatency(us)", self.min},
		{"MaxLatency(us)", self.max},
	}
	opCounter := int64(0)
	done95th := false
	for i := int64(0); i < self.buckets && self.operations > 0; i++ {
		opCounter += self.histogram[i]
		percentage := float64(opCounter) / float64(self.operations)
		if (!done95th) && (percentage >= 0.95) {
			entries = append(entries, entry{"95thPercentileLatency(us)", i * 1000})
			done95th = true
		}
		if percentage >= 0.99 {
			entries = append(entries, entry{"99thPercentileLatency(us)", i * 1000})
			break
		}
	}
	for _, e := range entries {
		if err := exporter.Write(name, e.measurement, e.value); err != nil {
			return err
		}
	}
	if err := self.ExportStatusCounts(exporter); err != nil {
		return err
	}
	for i := int64(0); i < self.buckets; i++ {
		if err := exporter.Write(name, strconv.FormatInt(i, 10), self.histogram[i]); err != nil {
			return err
		}
	}
	return exporter.Write(name, fmt.Sprintf(">%d", self.buckets), self.histogramOverflow)
}

// Take measurements and maintain a HdrHistogram of a given metric, such as READ LATENCY.
type OneMeasurementHdrHistogram struct {
	*OneMeasurementBase
	histogram *hdrhistogram.Histogram
	// the part of the histogram not yet reported by GetSummary()
	window      *hdrhistogram.Histogram
	percentiles []int64
}

// Helper function to parse the given percentile value string.
func parsePercentileValues(prop string) ([]int64, error) {
	parts := strings.Split(prop, ",")
	ret := make([]int64, 0, len(parts))
	for _, p := range parts {
		i, err := strconv.ParseInt(strings.TrimSpace(p), 0, 64)
		if err != nil || i <= 0 || i >= 100 {
			return nil, newConfigErrorf(PropertyPercentiles, prop, "percentiles must be integers within (0, 100)")
		}
		ret = append(ret, i)
	}
	return ret, nil
}

func NewOneMeasurementHdrHistogram(name string, props Properties) (*OneMeasurementHdrHistogram, error) {
	percentiles, err := parsePercentileValues(props.GetDefault(PropertyPercentiles, PropertyPercentilesDefault))
	if err != nil {
		return nil, err
	}
	max, err := props.int64Value(PropertyHdrHistogramMax, PropertyHdrHistogramMaxDefault)
	if err != nil {
		return nil, err
	}
	if max <= 1 {
		return nil, newConfigErrorf(PropertyHdrHistogramMax, strconv.FormatInt(max, 10), "must be greater than 1")
	}
	sig, err := props.int64Value(PropertyHdrHistogramSig, PropertyHdrHistogramSigDefault)
	if err != nil {
		return nil, err
	}
	if sig < 1 || sig > 5 {
		return nil, newConfigErrorf(PropertyHdrHistogramSig, strconv.FormatInt(sig, 10), "must be within [1, 5]")
	}
	object := &OneMeasurementHdrHistogram{
		OneMeasurementBase: NewOneMeasurementBase(name),
		histogram:          hdrhistogram.New(1, max, int(sig)),
		window:             hdrhistogram.New(1, max, int(sig)),
		percentiles:        percentiles,
	}
	return object, nil
}

// It appears latency is reported in micros.
func (self *OneMeasurementHdrHistogram) Measure(latency int64) {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()

	if latency > self.histogram.HighestTrackableValue() {
		latency = self.histogram.HighestTrackableValue()
	}
	// values below the lowest discernible value land in its bucket
	self.histogram.RecordValue(latency)
	self.window.RecordValue(latency)
}

// This is called periodically from the status goroutine. There's a single
// status goroutine per client process.
func (self *OneMeasurementHdrHistogram) GetSummary() string {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()
	if self.window.TotalCount() == 0 {
		return ""
	}
	format := "[%s: Count=%d, Max=%d, Min=%d, Avg=%.2f, 90=%d, 99=%d, 99.9=%d, 99.99=%d]"
	ret := fmt.Sprintf(format,
		self.GetName(),
		self.window.TotalCount(),
		self.window.Max(),
		self.window.Min(),
		self.window.Mean(),
		self.window.ValueAtQuantile(90),
		self.window.ValueAtQuantile(99),
		self.window.ValueAtQuantile(99.9),
		self.window.ValueAtQuantile(99.99))
	self.window.Reset()
	return ret
}

var (
	Suffixes = []string{"th", "st", "nd", "rd", "th", "th", "th", "th", "th", "th"}
)

func ordinal(p int64) string {
	switch p % 100 {
	case 11, 12, 13:
		return fmt.Sprintf("%dth", p)
	default:
		return fmt.Sprintf("%d%s", p, Suffixes[p%10])
	}
}

// This is called from the main goroutine, on orderly termination.
func (self *OneMeasurementHdrHistogram) ExportMeasurements(exporter MeasurementExporter) error {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()
	name := self.GetName()
	if err := exporter.Write(name, "Operations", self.histogram.TotalCount()); err != nil {
		return err
	}
	if err := exporter.Write(name, "AverageLatency(us)", self.histogram.Mean()); err != nil {
		return err
	}
	if err := exporter.Write(name, "MinLatency(us)", self.histogram.Min()); err != nil {
		return err
	}
	if err := exporter.Write(name, "MaxLatency(us)", self.histogram.Max()); err != nil {
		return err
	}
	for _, p := range self.percentiles {
		err := exporter.Write(name, ordinal(p)+"PercentileLatency(us)", self.histogram.ValueAtQuantile(float64(p)))
		if err != nil {
			return err
		}
	}
	return self.ExportStatusCounts(exporter)
}

// Delegates to 2 measurement instances.
type TwoInOneMeasurement struct {
	*OneMeasurementBase
	thing1 OneMeasurement
	thing2 OneMeasurement
}

func NewTwoInOneMeasurement(name string, thing1, thing2 OneMeasurement) *TwoInOneMeasurement {
	return &TwoInOneMeasurement{
		OneMeasurementBase: NewOneMeasurementBase(name),
		thing1:             thing1,
		thing2:             thing2,
	}
}

// It appears latency is reported in microseconds.
func (self *TwoInOneMeasurement) Measure(latency int64) {
	self.thing1.Measure(latency)
	self.thing2.Measure(latency)
}

func (self *TwoInOneMeasurement) ReportStatus(status StatusType) {
	self.thing1.ReportStatus(status)
	self.thing2.ReportStatus(status)
}

// This is called periodically from the status goroutine.
func (self *TwoInOneMeasurement) GetSummary() string {
	return self.thing1.GetSummary() + " " + self.thing2.GetSummary()
}

// This is called from the main goroutine, on orderly termination.
func (self *TwoInOneMeasurement) ExportMeasurements(exporter MeasurementExporter) error {
	if err := self.thing1.ExportMeasurements(exporter); err != nil {
		return err
	}
	return self.thing2.ExportMeasurements(exporter)
}
