package tpcc

const (
	// Server
	// The RMDB server host to connect to.
	PropertyHost        = "host"
	PropertyHostDefault = "127.0.0.1"
	// The RMDB server port.
	PropertyPort        = "port"
	PropertyPortDefault = "8765"
	// The database binding to be used.
	PropertyDB        = "db"
	PropertyDBDefault = "rmdb"

	// Scale
	// The number of warehouses to populate and to run against.
	PropertyScaleFactor        = "scalefactor"
	PropertyScaleFactorDefault = "1"

	// Benchmark
	// The number of client goroutines to run.
	PropertyThreadCount        = "threadcount"
	PropertyThreadCountDefault = "1"
	// The number of transactions each client goroutine executes.
	PropertyTransactionCount        = "transactionsperthread"
	PropertyTransactionCountDefault = "100"
	// The proportion of read-write transactions (NewOrder, Payment,
	// Delivery) versus read-only ones (OrderStatus, StockLevel).
	PropertyReadWriteRatio        = "rwratio"
	PropertyReadWriteRatioDefault = "0.5"
	// Comma-separated probability weights for the five transaction types,
	// in the order NewOrder, Payment, Delivery, OrderStatus, StockLevel.
	PropertyTransactionWeights        = "txnweights"
	PropertyTransactionWeightsDefault = "0.45,0.43,0.04,0.04,0.04"
	// Optional seed for the per-worker random generators. Empty means
	// seed from the wall clock.
	PropertySeed        = "seed"
	PropertySeedDefault = ""

	// Connection establishment
	// How many times to retry establishing a worker connection.
	PropertyConnectRetryLimit        = "connectretrylimit"
	PropertyConnectRetryLimitDefault = "3"

	// Loader
	// How many rows to load between progress log lines.
	PropertyLoadReportInterval        = "load.reportinterval"
	PropertyLoadReportIntervalDefault = "10000"

	// Measurement
	// Highest trackable latency of the per-type histograms, in
	// microseconds.
	PropertyHdrHistogramMax        = "hdrhistogram.max"
	PropertyHdrHistogramMaxDefault = "60000000"
	// Number of significant value digits kept by the histograms.
	PropertyHdrHistogramSig        = "hdrhistogram.sig"
	PropertyHdrHistogramSigDefault = "3"
)
