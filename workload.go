package loadbench

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"

	g "github.com/hhkbp2/loadbench/generator"
	"github.com/pkg/errors"
)

// Operation is the kind of one workload operation.
type Operation string

const (
	OperationRead            Operation = "READ"
	OperationUpdate          Operation = "UPDATE"
	OperationInsert          Operation = "INSERT"
	OperationScan            Operation = "SCAN"
	OperationReadModifyWrite Operation = "READ-MODIFY-WRITE"
	OperationVerify          Operation = "VERIFY"
)

// The tolerance for the sum of the operation proportions.
const proportionTolerance = 1e-9

// WorkloadConfig is the parsed and validated configuration of the core
// workload. It is never modified after NewWorkloadConfig returns, so one
// instance is shared by every client goroutine.
type WorkloadConfig struct {
	Table string
	// RecordCount is the number of records the load phase creates, and the
	// key space the transaction phase draws from.
	RecordCount    int64
	OperationCount int64
	InsertStart    int64

	FieldCount               int64
	FieldLength              int64
	FieldLengthDistribution  string
	FieldLengthHistogramFile string
	ReadAllFields            bool
	WriteAllFields           bool
	DataIntegrity            bool
	// NotFoundFatal stops the phase on a read of a missing record.
	NotFoundFatal bool

	ReadProportion            float64
	UpdateProportion          float64
	InsertProportion          float64
	ScanProportion            float64
	ReadModifyWriteProportion float64

	RequestDistribution   string
	ZipfianConstant       float64
	HotspotDataFraction   float64
	HotspotOpnFraction    float64
	ExponentialPercentile float64
	ExponentialFraction   float64

	MaxScanLength          int64
	ScanLengthDistribution string
	OrderedInserts         bool
}

// NewWorkloadConfig reads the workload properties. Every invalid value is
// reported, as a *ConfigError or several of them aggregated.
func NewWorkloadConfig(p Properties) (*WorkloadConfig, error) {
	var errs configErrors
	int64Value := func(key, defaultValue string) int64 {
		v, err := p.int64Value(key, defaultValue)
		errs.add(err)
		return v
	}
	float64Value := func(key, defaultValue string) float64 {
		v, err := p.float64Value(key, defaultValue)
		errs.add(err)
		return v
	}
	boolValue := func(key, defaultValue string) bool {
		v, err := p.boolValue(key, defaultValue)
		errs.add(err)
		return v
	}

	c := &WorkloadConfig{
		Table:                     p.GetDefault(PropertyTableName, PropertyTableNameDefault),
		RecordCount:               int64Value(PropertyRecordCount, PropertyRecordCountDefault),
		OperationCount:            int64Value(PropertyOperationCount, PropertyOperationCountDefault),
		InsertStart:               int64Value(PropertyInsertStart, PropertyInsertStartDefault),
		FieldCount:                int64Value(PropertyFieldCount, PropertyFieldCountDefault),
		FieldLength:               int64Value(PropertyFieldLength, PropertyFieldLengthDefault),
		FieldLengthDistribution:   p.GetDefault(PropertyFieldLengthDistribution, PropertyFieldLengthDistributionDefault),
		FieldLengthHistogramFile:  p.GetDefault(PropertyFieldLengthHistogramFile, PropertyFieldLengthHistogramFileDefault),
		ReadAllFields:             boolValue(PropertyReadAllFields, PropertyReadAllFieldsDefault),
		WriteAllFields:            boolValue(PropertyWriteAllFields, PropertyWriteAllFieldsDefault),
		DataIntegrity:             boolValue(PropertyDataIntegrity, PropertyDataIntegrityDefault),
		NotFoundFatal:             boolValue(PropertyNotFoundFatal, PropertyNotFoundFatalDefault),
		ReadProportion:            float64Value(PropertyReadProportion, PropertyReadProportionDefault),
		UpdateProportion:          float64Value(PropertyUpdateProportion, PropertyUpdateProportionDefault),
		InsertProportion:          float64Value(PropertyInsertProportion, PropertyInsertProportionDefault),
		ScanProportion:            float64Value(PropertyScanProportion, PropertyScanProportionDefault),
		ReadModifyWriteProportion: float64Value(PropertyReadModifyWriteProportion, PropertyReadModifyWriteProportionDefault),
		RequestDistribution:       p.GetDefault(PropertyRequestDistribution, PropertyRequestDistributionDefault),
		ZipfianConstant:           float64Value(PropertyZipfianConstant, PropertyZipfianConstantDefault),
		HotspotDataFraction:       float64Value(HotspotDataFraction, HotspotDataFractionDefault),
		HotspotOpnFraction:        float64Value(HotspotOpnFraction, HotspotOpnFractionDefault),
		ExponentialPercentile:     float64Value(PropertyExponentialPercentile, PropertyExponentialPercentileDefault),
		ExponentialFraction:       float64Value(PropertyExponentialFraction, PropertyExponentialFractionDefault),
		MaxScanLength:             int64Value(PropertyMaxScanLength, PropertyMaxScanLengthDefault),
		ScanLengthDistribution:    p.GetDefault(PropertyScanLengthDistribution, PropertyScanLengthDistributionDefault),
	}
	insertOrder := p.GetDefault(PropertyInsertOrder, PropertyInsertOrderDefault)
	switch insertOrder {
	case "hashed":
		c.OrderedInserts = false
	case "ordered":
		c.OrderedInserts = true
	default:
		errs.add(newConfigErrorf(PropertyInsertOrder, insertOrder, "must be hashed or ordered"))
	}
	if err := errs.errorOrNil(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (self *WorkloadConfig) validate() error {
	var errs configErrors
	itoa := func(v int64) string { return strconv.FormatInt(v, 10) }
	ftoa := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

	if self.RecordCount < 0 {
		errs.add(newConfigErrorf(PropertyRecordCount, itoa(self.RecordCount), "must not be negative"))
	}
	if self.OperationCount < 0 {
		errs.add(newConfigErrorf(PropertyOperationCount, itoa(self.OperationCount), "must not be negative"))
	}
	if self.InsertStart < 0 {
		errs.add(newConfigErrorf(PropertyInsertStart, itoa(self.InsertStart), "must not be negative"))
	}
	if self.FieldCount <= 0 {
		errs.add(newConfigErrorf(PropertyFieldCount, itoa(self.FieldCount), "must be positive"))
	}
	if self.FieldLength <= 0 {
		errs.add(newConfigErrorf(PropertyFieldLength, itoa(self.FieldLength), "must be positive"))
	}
	proportions := []struct {
		name  string
		value float64
	}{
		{PropertyReadProportion, self.ReadProportion},
		{PropertyUpdateProportion, self.UpdateProportion},
		{PropertyInsertProportion, self.InsertProportion},
		{PropertyScanProportion, self.ScanProportion},
		{PropertyReadModifyWriteProportion, self.ReadModifyWriteProportion},
	}
	var sum float64
	for _, p := range proportions {
		if math.IsNaN(p.value) || p.value < 0 {
			errs.add(newConfigErrorf(p.name, ftoa(p.value), "must not be negative"))
		}
		sum += p.value
	}
	if math.Abs(sum-1.0) > proportionTolerance {
		errs.add(newConfigErrorf("proportions", ftoa(sum), "operation proportions must sum to 1.0"))
	}
	switch self.RequestDistribution {
	case "uniform", "zipfian", "latest", "sequential", "hotspot", "exponential":
	default:
		errs.add(newConfigErrorf(PropertyRequestDistribution, self.RequestDistribution, "unknown request distribution"))
	}
	switch self.FieldLengthDistribution {
	case "constant", "uniform", "zipfian", "histogram":
	default:
		errs.add(newConfigErrorf(PropertyFieldLengthDistribution, self.FieldLengthDistribution, "unknown field length distribution"))
	}
	switch self.ScanLengthDistribution {
	case "uniform", "zipfian":
	default:
		errs.add(newConfigErrorf(PropertyScanLengthDistribution, self.ScanLengthDistribution, "distribution not allowed for scan length"))
	}
	if self.ScanProportion > 0 && self.MaxScanLength <= 0 {
		errs.add(newConfigErrorf(PropertyMaxScanLength, itoa(self.MaxScanLength), "must be positive"))
	}
	if self.DataIntegrity && self.FieldLengthDistribution != "constant" {
		errs.add(newConfigErrorf(PropertyDataIntegrity, "true", "must have constant field size to check data integrity"))
	}
	return errs.errorOrNil()
}

// keySpace is the number of records the transaction phase may address when
// it starts. Without a record count, the load phase is assumed to have
// inserted operation count records.
func (self *WorkloadConfig) keySpace() int64 {
	n := self.RecordCount
	if n == 0 {
		n = self.OperationCount
	}
	if n <= 0 {
		n = 1
	}
	return n
}

// RoutineState is the state owned by one client goroutine.
type RoutineState struct {
	ID     int
	random *rand.Rand
}

// CoreWorkload represents the core benchmark scenario.
// It's a set of clients doing simple CRUD operations. The relative proportion
// of different kinds of operations, and other properties of the workload,
// are controlled by a WorkloadConfig. All its methods are safe for
// concurrent use.
type CoreWorkload struct {
	config                       *WorkloadConfig
	fieldNames                   []string
	fieldLengthGenerator         g.IntegerGenerator
	keySequence                  g.IntegerGenerator
	operationChooser             *g.DiscreteGenerator
	keyChooser                   g.IntegerGenerator
	fieldChooser                 g.IntegerGenerator
	transactionInsertKeySequence *g.AcknowledgedCounterGenerator
	scanLengthChooser            g.IntegerGenerator
	measurements                 Measurements
}

// generatorError turns a generator construction failure into a ConfigError
// naming the property it came from.
func generatorError(param, value string, err error) error {
	if err == nil {
		return nil
	}
	return NewConfigError(param, value, err)
}

func NewCoreWorkload(config *WorkloadConfig, measurements Measurements) (*CoreWorkload, error) {
	fieldNames := make([]string, 0, config.FieldCount)
	for i := int64(0); i < config.FieldCount; i++ {
		fieldNames = append(fieldNames, fmt.Sprintf("field%d", i))
	}
	fieldLengthGenerator, err := newFieldLengthGenerator(config)
	if err != nil {
		return nil, err
	}

	weights := []*g.Pair{
		{Weight: config.ReadProportion, Value: string(OperationRead)},
		{Weight: config.UpdateProportion, Value: string(OperationUpdate)},
		{Weight: config.InsertProportion, Value: string(OperationInsert)},
		{Weight: config.ScanProportion, Value: string(OperationScan)},
		{Weight: config.ReadModifyWriteProportion, Value: string(OperationReadModifyWrite)},
	}
	operationChooser, err := g.NewDiscreteGenerator(weights)
	if err != nil {
		return nil, generatorError("proportions", "", err)
	}

	recordCount := config.keySpace()
	transactionInsertKeySequence := g.NewAcknowledgedCounterGenerator(recordCount)
	var keyChooser g.IntegerGenerator
	distribution := config.RequestDistribution
	switch distribution {
	case "uniform":
		keyChooser, err = g.NewUniformIntegerGenerator(0, recordCount-1), nil
	case "sequential":
		keyChooser, err = g.NewSequentialGenerator(0, recordCount-1)
	case "zipfian":
		// The key space is sized for the records inserted during the run
		// too, so the popular keys do not move as the record count grows.
		// Keys not inserted yet are skipped by nextKeyNumber().
		// 2.0 is fudge factor
		expectedNewKeys := int64(float64(config.OperationCount) * config.InsertProportion * 2.0)
		keyChooser, err = g.NewScrambledZipfianGeneratorWithConstant(
			0, recordCount+expectedNewKeys-1, config.ZipfianConstant)
	case "latest":
		keyChooser, err = g.NewSkewedLatestGenerator(transactionInsertKeySequence)
	case "hotspot":
		keyChooser, err = g.NewHotspotIntegerGenerator(
			0, recordCount-1, config.HotspotDataFraction, config.HotspotOpnFraction)
	case "exponential":
		keyChooser, err = g.NewExponentialGenerator(
			config.ExponentialPercentile, float64(recordCount)*config.ExponentialFraction)
	}
	if err != nil {
		return nil, generatorError(PropertyRequestDistribution, distribution, err)
	}

	fieldChooser := g.NewUniformIntegerGenerator(0, config.FieldCount-1)
	var scanLengthChooser g.IntegerGenerator
	if config.ScanProportion > 0 {
		switch config.ScanLengthDistribution {
		case "uniform":
			scanLengthChooser = g.NewUniformIntegerGenerator(1, config.MaxScanLength)
		case "zipfian":
			scanLengthChooser, err = g.NewZipfianGeneratorByInterval(1, config.MaxScanLength)
		}
		if err != nil {
			return nil, generatorError(PropertyScanLengthDistribution, config.ScanLengthDistribution, err)
		}
	}

	return &CoreWorkload{
		config:                       config,
		fieldNames:                   fieldNames,
		fieldLengthGenerator:         fieldLengthGenerator,
		keySequence:                  g.NewCounterGenerator(config.InsertStart),
		operationChooser:             operationChooser,
		keyChooser:                   keyChooser,
		fieldChooser:                 fieldChooser,
		transactionInsertKeySequence: transactionInsertKeySequence,
		scanLengthChooser:            scanLengthChooser,
		measurements:                 measurements,
	}, nil
}

func newFieldLengthGenerator(config *WorkloadConfig) (g.IntegerGenerator, error) {
	var gen g.IntegerGenerator
	var err error
	fieldLength := config.FieldLength
	switch config.FieldLengthDistribution {
	case "constant":
		gen = g.NewConstantIntegerGenerator(fieldLength)
	case "uniform":
		gen = g.NewUniformIntegerGenerator(1, fieldLength)
	case "zipfian":
		gen, err = g.NewZipfianGeneratorByInterval(1, fieldLength)
	case "histogram":
		gen, err = g.NewHistogramGeneratorFromFile(config.FieldLengthHistogramFile)
		if err != nil {
			return nil, generatorError(PropertyFieldLengthHistogramFile, config.FieldLengthHistogramFile, err)
		}
	}
	if err != nil {
		return nil, generatorError(PropertyFieldLengthDistribution, config.FieldLengthDistribution, err)
	}
	return gen, nil
}

// Config returns the configuration the workload was built from.
func (self *CoreWorkload) Config() *WorkloadConfig {
	return self.config
}

// Validate checks the database supports every operation the workload may
// issue.
func (self *CoreWorkload) Validate(db DB) error {
	if self.config.ScanProportion > 0 {
		if _, ok := db.(Scanner); !ok {
			return newConfigErrorf(PropertyScanProportion,
				strconv.FormatFloat(self.config.ScanProportion, 'g', -1, 64),
				"database %T does not support scans", db)
		}
	}
	return nil
}

// Initialize any state for a particular client goroutine.
// The returned object must only be used by that goroutine.
func (self *CoreWorkload) InitRoutine(id int) *RoutineState {
	return &RoutineState{
		ID:     id,
		random: rand.New(rand.NewSource(g.NextInt64(math.MaxInt64))),
	}
}

// BuildKeyName returns the record key for keyNumber.
func (self *CoreWorkload) BuildKeyName(keyNumber int64) string {
	if !self.config.OrderedInserts {
		keyNumber = g.Hash(keyNumber)
	}
	return "user" + strconv.FormatInt(keyNumber, 10)
}

func (self *CoreWorkload) buildSingleValue(state *RoutineState, key string) KVMap {
	fieldKey := self.fieldNames[self.fieldChooser.NextInt()]
	return KVMap{
		fieldKey: self.buildValue(state, key, fieldKey),
	}
}

func (self *CoreWorkload) buildValues(state *RoutineState, key string) KVMap {
	ret := make(KVMap, len(self.fieldNames))
	for _, fieldKey := range self.fieldNames {
		ret[fieldKey] = self.buildValue(state, key, fieldKey)
	}
	return ret
}

func (self *CoreWorkload) buildValue(state *RoutineState, key, fieldKey string) string {
	if self.config.DataIntegrity {
		return self.buildDeterministicValue(key, fieldKey)
	}
	// fill with random data
	return g.RandomString(state.random, self.fieldLengthGenerator.NextInt())
}

func javaStringHashcode(b []byte) int32 {
	hash := int32(0)
	for i := 0; i < len(b); i++ {
		hash = 31*hash + int32(b[i])
	}
	return hash
}

func (self *CoreWorkload) buildDeterministicValue(key string, fieldKey string) string {
	size := self.fieldLengthGenerator.NextInt()
	buf := bytes.NewBuffer(make([]byte, 0, size))
	buf.WriteString(key)
	buf.WriteString(":")
	buf.WriteString(fieldKey)
	for int64(buf.Len()) < size {
		buf.WriteString(":")
		buf.WriteString(strconv.FormatInt(int64(javaStringHashcode(buf.Bytes())), 10))
	}
	buf.Truncate(int(size))
	return buf.String()
}

// Do one insert operation of the load phase, with the next key of the
// shared key sequence. Backend failures are returned as *BackendError.
func (self *CoreWorkload) DoInsert(ctx context.Context, db DB, state *RoutineState) error {
	keyNumber := self.keySequence.NextInt()
	dbKey := self.BuildKeyName(keyNumber)
	values := self.buildValues(state, dbKey)
	if err := db.Insert(ctx, self.config.Table, dbKey, values); err != nil {
		return NewBackendError(string(OperationInsert), self.config.Table, dbKey, err)
	}
	return nil
}

// Do one transaction operation, chosen by the configured proportions.
// It returns the kind of the operation performed.
func (self *CoreWorkload) DoTransaction(ctx context.Context, db DB, state *RoutineState) (Operation, error) {
	op := Operation(self.operationChooser.NextString())
	var err error
	switch op {
	case OperationRead:
		err = self.DoTransactionRead(ctx, db, state)
	case OperationUpdate:
		err = self.DoTransactionUpdate(ctx, db, state)
	case OperationInsert:
		err = self.DoTransactionInsert(ctx, db, state)
	case OperationScan:
		err = self.DoTransactionScan(ctx, db, state)
	default:
		err = self.DoTransactionReadModifyWrite(ctx, db, state)
	}
	return op, err
}

// nextKeyNumber draws a key from the request distribution, bounded to the
// records known to be inserted.
func (self *CoreWorkload) nextKeyNumber() int64 {
	var ret int64
	if c, ok := self.keyChooser.(*g.ExponentialGenerator); ok {
		for {
			ret = self.transactionInsertKeySequence.LastInt() - c.NextInt()
			if ret >= 0 {
				break
			}
		}
	} else {
		for {
			ret = self.keyChooser.NextInt()
			if ret <= self.transactionInsertKeySequence.LastInt() {
				break
			}
		}
	}
	return ret
}

// Verify the dataset returned from transaction.
// The result is reported under the operation "VERIFY":
// OK means the expected data was returned, UNEXPECTED_STATE means incorrect
// data was returned, and ERROR means no data was returned when some data was
// expected.
func (self *CoreWorkload) verifyRow(key string, cells KVMap) StatusType {
	status := StatusOK
	if len(cells) == 0 {
		// This assumes that empty dataset is never valid
		status = StatusError
	} else {
		for k, v := range cells {
			if v != self.buildDeterministicValue(key, k) {
				status = StatusUnexpectedState
				break
			}
		}
	}
	if self.measurements != nil {
		self.measurements.ReportStatus(string(OperationVerify), status)
	}
	return status
}

func (self *CoreWorkload) readFields() []string {
	if !self.config.ReadAllFields {
		// read a random field
		return []string{self.fieldNames[self.fieldChooser.NextInt()]}
	}
	if self.config.DataIntegrity {
		// pass the full field list if dataIntegrity is on for verification
		return self.fieldNames
	}
	return nil
}

func (self *CoreWorkload) writeValues(state *RoutineState, key string) KVMap {
	if self.config.WriteAllFields {
		// new data for all the fields
		return self.buildValues(state, key)
	}
	// update a random field
	return self.buildSingleValue(state, key)
}

func (self *CoreWorkload) DoTransactionRead(ctx context.Context, db DB, state *RoutineState) error {
	keyName := self.BuildKeyName(self.nextKeyNumber())
	ret, err := db.Read(ctx, self.config.Table, keyName, self.readFields())
	if err != nil {
		return NewBackendError(string(OperationRead), self.config.Table, keyName, err)
	}
	if self.config.DataIntegrity {
		self.verifyRow(keyName, ret)
	}
	return nil
}

func (self *CoreWorkload) DoTransactionReadModifyWrite(ctx context.Context, db DB, state *RoutineState) error {
	keyName := self.BuildKeyName(self.nextKeyNumber())
	values := self.writeValues(state, keyName)
	ret, err := db.Read(ctx, self.config.Table, keyName, self.readFields())
	if err != nil && !errors.Is(err, ErrNotFound) {
		return NewBackendError(string(OperationRead), self.config.Table, keyName, err)
	}
	if err == nil && self.config.DataIntegrity {
		self.verifyRow(keyName, ret)
	}
	if err := db.Insert(ctx, self.config.Table, keyName, values); err != nil {
		return NewBackendError(string(OperationUpdate), self.config.Table, keyName, err)
	}
	return nil
}

func (self *CoreWorkload) DoTransactionScan(ctx context.Context, db DB, state *RoutineState) error {
	startKeyName := self.BuildKeyName(self.nextKeyNumber())
	scanner, ok := db.(Scanner)
	if !ok {
		return NewBackendError(string(OperationScan), self.config.Table, startKeyName, ErrNotImplemented)
	}
	length := self.scanLengthChooser.NextInt()
	var fields []string
	if !self.config.ReadAllFields {
		// read a random field
		fields = []string{self.fieldNames[self.fieldChooser.NextInt()]}
	}
	if _, err := scanner.Scan(ctx, self.config.Table, startKeyName, length, fields); err != nil {
		return NewBackendError(string(OperationScan), self.config.Table, startKeyName, err)
	}
	return nil
}

// Update writes fresh values for a key drawn from the request distribution
// through the upsert of the database.
func (self *CoreWorkload) DoTransactionUpdate(ctx context.Context, db DB, state *RoutineState) error {
	keyName := self.BuildKeyName(self.nextKeyNumber())
	values := self.writeValues(state, keyName)
	if err := db.Insert(ctx, self.config.Table, keyName, values); err != nil {
		return NewBackendError(string(OperationUpdate), self.config.Table, keyName, err)
	}
	return nil
}

func (self *CoreWorkload) DoTransactionInsert(ctx context.Context, db DB, state *RoutineState) error {
	// choose the next key
	keyNumber := self.transactionInsertKeySequence.NextInt()
	keyName := self.BuildKeyName(keyNumber)
	values := self.buildValues(state, keyName)
	if err := db.Insert(ctx, self.config.Table, keyName, values); err != nil {
		return NewBackendError(string(OperationInsert), self.config.Table, keyName, err)
	}
	self.transactionInsertKeySequence.Acknowledge(keyNumber)
	return nil
}
