package loadbench

const (
	// BasicDB
	ConfigBasicDBVerbose        = "basicdb.verbose"
	ConfigBasicDBVerboseDefault = "false"
	ConfigSimulateDelay         = "basicdb.simulatedelay"
	ConfigSimulateDelayDefault  = "0"
	ConfigRandomizeDelay        = "basicdb.randomizedelay"
	ConfigRandomizeDelayDefault = "true"

	// Client
	// The number of records to load into the database initially.
	PropertyRecordCount = "recordcount"
	// The default value of `PropertyRecordCount`
	PropertyRecordCountDefault = "0"
	// The target number of operations to perform in each phase.
	PropertyOperationCount        = "operationcount"
	PropertyOperationCountDefault = "0"
	// The database binding to be used.
	PropertyDB        = "db"
	PropertyDBDefault = "basic"
	// The exporter to be used: text, json or jsonarray.
	PropertyExporter        = "exporter"
	PropertyExporterDefault = "text"
	// If set to the path of a file, measurements are written to this file.
	PropertyExportFile        = "exportfile"
	PropertyExportFileDefault = ""
	// The number of client goroutines to run.
	PropertyThreadCount        = "threadcount"
	PropertyThreadCountDefault = "1"
	// Target number of operations per second, shared by all goroutines.
	// Zero means unthrottled.
	PropertyTarget        = "target"
	PropertyTargetDefault = "0"
	// Seconds between two status lines.
	PropertyStatusInterval        = "status.interval"
	PropertyStatusIntervalDefault = "10"
	// Seed for the shared random source of the generators. Zero keeps the
	// time based seed.
	PropertySeed        = "seed"
	PropertySeedDefault = "0"

	// workload
	PropertyInsertStart        = "insertstart"
	PropertyInsertStartDefault = "0"

	// The name of the database table to run queries against.
	PropertyTableName = "table"
	// The default value of `PropertyTableName`
	PropertyTableNameDefault = "usertable"
	// The name of property for the number of fields in a record
	PropertyFieldCount = "fieldcount"
	// The default value of `PropertyFieldCount`.
	PropertyFieldCountDefault = "10"
	// The name of the property for the field length distribution.
	// Options are "uniform", "zipfian"(favoring short records), "constant",
	// and "histogram".
	// If "uniform", "zipfian" or "constant", the maximum field length will
	// be that specified by the fieldlength property. If "histogram", then
	// the histogram will be read from the filename specified in the
	// "fieldlengthhistogram" property.
	PropertyFieldLengthDistribution = "fieldlengthdistribution"
	// The default value of `PropertyFieldLengthDistribution`
	PropertyFieldLengthDistributionDefault = "constant"
	// The name of the property for the length of a field in bytes.
	PropertyFieldLength = "fieldlength"
	// The default value of `PropertyFieldLength`
	PropertyFieldLengthDefault = "100"
	// The name of a property that specifies the filename containing the field
	// length histogram (only used if fieldlengthdistribution is "histogram").
	PropertyFieldLengthHistogramFile = "fieldlengthhistogram"
	// The default value of `PropertyFieldLengthHistogramFile`
	PropertyFieldLengthHistogramFileDefault = "hist.txt"
	// The name of the property for deciding whether to read one field (false)
	// or all fields (true) of a record.
	PropertyReadAllFields = "readallfields"
	// The default value of `PropertyReadAllFields`
	PropertyReadAllFieldsDefault = "true"
	// The name of the property for deciding whether to write one field (false)
	// or all fields (true) of a record.
	PropertyWriteAllFields = "writeallfields"
	// The default value of `PropertyWriteAllFields`
	PropertyWriteAllFieldsDefault = "false"
	// The name of the property for deciding whether to check all returned
	// data against the formation template to ensure data integrity.
	PropertyDataIntegrity = "dataintegrity"
	// The default value of `PropertyDataIntegrity`
	PropertyDataIntegrityDefault = "false"
	// The name of the property for the proportion of transactions
	// that are reads.
	PropertyReadProportion = "readproportion"
	// The default value of `PropertyReadProportion`
	PropertyReadProportionDefault = "0.95"
	// The name of the property for proportion of transactions
	// that are updates.
	PropertyUpdateProportion = "updateproportion"
	// The default value of `PropertyUpdateProportion`
	PropertyUpdateProportionDefault = "0.05"
	// The name of the property for proportion of transactions
	// that are inserts.
	PropertyInsertProportion = "insertproportion"
	// The default value of `PropertyInsertProportion`
	PropertyInsertProportionDefault = "0.0"
	// The name of the property for proportion of transactions
	// that are scans.
	PropertyScanProportion = "scanproportion"
	// The default value of `PropertyScanProportion`
	PropertyScanProportionDefault = "0.0"
	// The name of the property for porportion of transcations
	// that are read-modify-write.
	PropertyReadModifyWriteProportion = "readmodifywriteproportion"
	// The default value of `PropertyReadModifyWriteProportion`
	PropertyReadModifyWriteProportionDefault = "0.0"
	// The name of the property for the distribution of requests
	// across the keyspace. Options are "uniform", "zipfian", "latest",
	// "sequential", "hotspot" and "exponential".
	PropertyRequestDistribution = "requestdistribution"
	// The default value of `PropertyRequestDistribution`
	PropertyRequestDistributionDefault = "uniform"
	// The zipfian constant used by the "zipfian" request distribution.
	PropertyZipfianConstant        = "zipfianconstant"
	PropertyZipfianConstantDefault = "0.99"
	// The name of the property for the max scan length (number of records)
	PropertyMaxScanLength = "maxscanlength"
	// The default max scan length
	PropertyMaxScanLengthDefault = "1000"
	// The name of the property for the scan length distribution.
	// Options are "uniform" and "zipfian" (favoring short scans)
	PropertyScanLengthDistribution = "scanlengthdistribution"
	// The default value of `PropertyScanLengthDistribution`
	PropertyScanLengthDistributionDefault = "uniform"
	// The name of the property for the order to insert records.
	// Options are "ordered" or "hashed"
	PropertyInsertOrder = "insertorder"
	// The default value of `PropertyInsertOrder`
	PropertyInsertOrderDefault = "hashed"
	// Percentage data items that constitute the hot set.
	HotspotDataFraction = "hotspotdatafraction"
	// The default value of `HotspotDataFraction`
	HotspotDataFractionDefault = "0.2"
	// Percentage opertions that access the hot set.
	HotspotOpnFraction = "hotspotopnfraction"
	// The default value of `HotspotOpnFraction`
	HotspotOpnFractionDefault = "0.8"

	// Whether a read of a missing record fails the phase instead of being
	// counted as NOT_FOUND.
	PropertyNotFoundFatal        = "notfoundfatal"
	PropertyNotFoundFatalDefault = "false"

	// measurement
	PropertyMeasurementType        = "measurementtype"
	PropertyMeasurementTypeDefault = "hdrhistogram"

	Buckets        = "histogram.buckets"
	BucketsDefault = "1000"

	// The name of the property for deciding what percentile values to output.
	PropertyPercentiles = "hdrhistogram.percentiles"
	// The default value of `PropertyPercentiles`
	PropertyPercentilesDefault = "95,99"
	// The highest latency in microseconds the hdrhistogram can track.
	PropertyHdrHistogramMax        = "hdrhistogram.max"
	PropertyHdrHistogramMaxDefault = "60000000"
	// The number of significant value digits kept by the hdrhistogram.
	PropertyHdrHistogramSig        = "hdrhistogram.sig"
	PropertyHdrHistogramSigDefault = "3"

	// generator
	// What percentage of the readings should be within the most recent
	// exponential.fracportion of the dataset?
	PropertyExponentialPercentile        = "exponential.percentile"
	PropertyExponentialPercentileDefault = "95"
	// What fraction of the dataset should be accessed exponential.percentile
	// of the time?
	PropertyExponentialFraction        = "exponential.frac"
	PropertyExponentialFractionDefault = "0.8571428571" // 1/7
)

// PropertyAliases maps the snake_case names used by TOML and YAML workload
// files to the property names above.
var PropertyAliases = map[string]string{
	"record_count":                 PropertyRecordCount,
	"operation_count":              PropertyOperationCount,
	"thread_count":                 PropertyThreadCount,
	"insert_start":                 PropertyInsertStart,
	"field_count":                  PropertyFieldCount,
	"field_length":                 PropertyFieldLength,
	"field_length_distribution":    PropertyFieldLengthDistribution,
	"read_all_fields":              PropertyReadAllFields,
	"write_all_fields":             PropertyWriteAllFields,
	"data_integrity":               PropertyDataIntegrity,
	"read_proportion":              PropertyReadProportion,
	"update_proportion":            PropertyUpdateProportion,
	"insert_proportion":            PropertyInsertProportion,
	"scan_proportion":              PropertyScanProportion,
	"read_modify_write_proportion": PropertyReadModifyWriteProportion,
	"request_distribution":         PropertyRequestDistribution,
	"zipfian_constant":             PropertyZipfianConstant,
	"max_scan_length":              PropertyMaxScanLength,
	"scan_length_distribution":     PropertyScanLengthDistribution,
	"insert_order":                 PropertyInsertOrder,
	"hotspot_data_fraction":        HotspotDataFraction,
	"hotspot_opn_fraction":         HotspotOpnFraction,
	"measurement_type":             PropertyMeasurementType,
	"not_found_fatal":              PropertyNotFoundFatal,
	"percentiles":                  PropertyPercentiles,
	"histogram_buckets":            Buckets,
	"hdrhistogram_max":             PropertyHdrHistogramMax,
	"hdrhistogram_sig":             PropertyHdrHistogramSig,
	"exporter":                     PropertyExporter,
	"export_file":                  PropertyExportFile,
	"status_interval":              PropertyStatusInterval,
	"field_length_histogram":       PropertyFieldLengthHistogramFile,
	"exponential_percentile":       PropertyExponentialPercentile,
	"exponential_frac":             PropertyExponentialFraction,
}

// Properties without a "." in their name that are read by the core. Names
// with a "." belong to a namespace, such as a binding, and are not checked.
var knownProperties = map[string]bool{
	PropertyRecordCount:               true,
	PropertyOperationCount:            true,
	PropertyDB:                        true,
	PropertyExporter:                  true,
	PropertyExportFile:                true,
	PropertyThreadCount:               true,
	PropertyTarget:                    true,
	PropertySeed:                      true,
	PropertyInsertStart:               true,
	PropertyTableName:                 true,
	PropertyFieldCount:                true,
	PropertyFieldLengthDistribution:   true,
	PropertyFieldLength:               true,
	PropertyFieldLengthHistogramFile:  true,
	PropertyReadAllFields:             true,
	PropertyWriteAllFields:            true,
	PropertyDataIntegrity:             true,
	PropertyReadProportion:            true,
	PropertyUpdateProportion:          true,
	PropertyInsertProportion:          true,
	PropertyScanProportion:            true,
	PropertyReadModifyWriteProportion: true,
	PropertyRequestDistribution:       true,
	PropertyZipfianConstant:           true,
	PropertyMaxScanLength:             true,
	PropertyScanLengthDistribution:    true,
	PropertyInsertOrder:               true,
	HotspotDataFraction:               true,
	HotspotOpnFraction:                true,
	PropertyMeasurementType:           true,
	PropertyNotFoundFatal:             true,
}
