package tpcc

import (
	"fmt"
	"sync"
	"time"

	"github.com/codahale/hdrhistogram"
)

// TransactionResult records the outcome of one transaction, retries
// included.
type TransactionResult struct {
	Type        TransactionType
	Success     bool
	ElapsedTime time.Duration
	Timestamp   time.Time
	WorkerID    int
}

// OneMeasurement tracks the latency distribution of a single
// transaction type.
type OneMeasurement struct {
	name        string
	measureLock *sync.Mutex
	histogram   *hdrhistogram.Histogram
	operations  int64
	failures    int64
}

func NewOneMeasurement(name string, max int64, sig int64) *OneMeasurement {
	return &OneMeasurement{
		name:        name,
		measureLock: &sync.Mutex{},
		histogram:   hdrhistogram.New(0, max, int(sig)),
	}
}

func (self *OneMeasurement) Measure(result *TransactionResult) {
	self.measureLock.Lock()
	defer self.measureLock.Unlock()
	self.operations++
	if !result.Success {
		self.failures++
	}
	self.histogram.RecordValue(NanosecondToMicrosecond(result.ElapsedTime.Nanoseconds()))
}

func (self *OneMeasurement) GetName() string {
	return self.name
}

func (self *OneMeasurement) Operations() int64 {
	self.measureLock.Lock()
	defer self.measureLock.Unlock()
	return self.operations
}

func (self *OneMeasurement) Failures() int64 {
	self.measureLock.Lock()
	defer self.measureLock.Unlock()
	return self.failures
}

func (self *OneMeasurement) GetSummary() string {
	self.measureLock.Lock()
	defer self.measureLock.Unlock()
	return fmt.Sprintf(
		"[%s: Count=%d, Failed=%d, Avg=%.2fus, 90=%dus, 99=%dus, 99.9=%dus]",
		self.name,
		self.operations,
		self.failures,
		self.histogram.Mean(),
		self.histogram.ValueAtQuantile(90),
		self.histogram.ValueAtQuantile(99),
		self.histogram.ValueAtQuantile(99.9))
}

// Measurements collects per-type latency histograms for a benchmark
// run. Safe for concurrent use by all workers.
type Measurements struct {
	histogramMax int64
	histogramSig int64

	lock         *sync.Mutex
	measurements map[TransactionType]*OneMeasurement
}

func NewMeasurements(p Properties) *Measurements {
	max, err := parseInt(p.GetDefault(PropertyHdrHistogramMax, PropertyHdrHistogramMaxDefault))
	if err != nil {
		max, _ = parseInt(PropertyHdrHistogramMaxDefault)
	}
	sig, err := parseInt(p.GetDefault(PropertyHdrHistogramSig, PropertyHdrHistogramSigDefault))
	if err != nil {
		sig, _ = parseInt(PropertyHdrHistogramSigDefault)
	}
	return &Measurements{
		histogramMax: max,
		histogramSig: sig,
		lock:         &sync.Mutex{},
		measurements: make(map[TransactionType]*OneMeasurement),
	}
}

func (self *Measurements) getMeasurement(txType TransactionType) *OneMeasurement {
	self.lock.Lock()
	defer self.lock.Unlock()
	m, ok := self.measurements[txType]
	if !ok {
		m = NewOneMeasurement(txType.String(), self.histogramMax, self.histogramSig)
		self.measurements[txType] = m
	}
	return m
}

func (self *Measurements) Measure(result *TransactionResult) {
	self.getMeasurement(result.Type).Measure(result)
}

func (self *Measurements) GetSummary() string {
	self.lock.Lock()
	defer self.lock.Unlock()
	summary := ""
	for txType := TxNewOrder; txType < TransactionTypeCount; txType++ {
		if m, ok := self.measurements[txType]; ok {
			summary += m.GetSummary() + " "
		}
	}
	return summary
}

// BenchmarkResult aggregates the results of a whole benchmark run.
type BenchmarkResult struct {
	TotalTransactions      int64
	SuccessfulTransactions int64
	FailedTransactions     int64
	AvgResponseTime        time.Duration
	ThroughputTPS          float64
	TotalDuration          time.Duration
	TransactionBreakdown   map[TransactionType]int64
	PerWorkerResults       [][]*TransactionResult
}

// Aggregate rolls the per-worker results into a BenchmarkResult.
func Aggregate(
	perWorkerResults [][]*TransactionResult,
	totalDuration time.Duration) *BenchmarkResult {

	result := &BenchmarkResult{
		TotalDuration:        totalDuration,
		TransactionBreakdown: make(map[TransactionType]int64),
		PerWorkerResults:     perWorkerResults,
	}
	var totalElapsed time.Duration
	for _, workerResults := range perWorkerResults {
		for _, r := range workerResults {
			result.TotalTransactions++
			if r.Success {
				result.SuccessfulTransactions++
			} else {
				result.FailedTransactions++
			}
			result.TransactionBreakdown[r.Type]++
			totalElapsed += r.ElapsedTime
		}
	}
	if result.TotalTransactions > 0 {
		result.AvgResponseTime =
			totalElapsed / time.Duration(result.TotalTransactions)
	}
	if totalDuration > 0 {
		result.ThroughputTPS =
			float64(result.TotalTransactions) / totalDuration.Seconds()
	}
	return result
}
