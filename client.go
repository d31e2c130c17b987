package tpcc

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/hhkbp2/tpcc/generator"
)

// notifyOnInterrupt cancels the run context on the first SIGINT or
// SIGTERM so workers can finish their current transaction and report
// partial results.
func notifyOnInterrupt(cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-signals
		Infof("received signal %s, cancelling benchmark...", sig)
		cancel()
	}()
}

// Client is a single benchmark command: initialize, check, stats or
// run.
type Client interface {
	Main() error
}

func connect(p Properties) (Conn, error) {
	database := p.GetDefault(PropertyDB, PropertyDBDefault)
	return NewConn(database, p)
}

func scaleFactor(p Properties) (int64, error) {
	scale, err := parseInt(p.GetDefault(
		PropertyScaleFactor, PropertyScaleFactorDefault))
	if err != nil || scale < 1 {
		return 0, fmt.Errorf("scale factor must be a number >= 1")
	}
	return scale, nil
}

// Init creates the schema and loads the initial population.
type Init struct {
	p Properties
}

func NewInit(p Properties) *Init {
	return &Init{
		p: p,
	}
}

func (self *Init) Main() error {
	scale, err := scaleFactor(self.p)
	if err != nil {
		return err
	}
	conn, err := connect(self.p)
	if err != nil {
		return err
	}
	defer conn.Close()

	Infof("initializing benchmark database with scale factor %d", scale)
	schema := NewSchema(conn)
	if err := schema.Drop(); err != nil {
		return err
	}
	if err := schema.Create(); err != nil {
		return err
	}
	if err := schema.CreateIndexes(); err != nil {
		return err
	}

	seed := seedFromProperties(self.p)
	population := generator.NewPopulation(scale, generator.NewRandom(seed))
	loader := NewLoader(conn, population, self.p)
	return loader.Load()
}

// Check runs the consistency checks against a loaded database.
type Check struct {
	p Properties
}

func NewCheck(p Properties) *Check {
	return &Check{
		p: p,
	}
}

func (self *Check) Main() error {
	scale, err := scaleFactor(self.p)
	if err != nil {
		return err
	}
	conn, err := connect(self.p)
	if err != nil {
		return err
	}
	defer conn.Close()

	checks := NewChecker(conn, scale).RunChecks()
	if !AllPassed(checks) {
		return fmt.Errorf("some consistency checks failed")
	}
	Infof("all consistency checks passed")
	return nil
}

// Stats prints the row count of every table.
type Stats struct {
	p Properties
}

func NewStats(p Properties) *Stats {
	return &Stats{
		p: p,
	}
}

func (self *Stats) Main() error {
	conn, err := connect(self.p)
	if err != nil {
		return err
	}
	defer conn.Close()

	counts, err := NewSchema(conn).TableCounts()
	if err != nil {
		return err
	}
	Infof("database statistics:")
	for _, name := range TableNames {
		Infof("  %s: %d", name, counts[name])
	}
	return nil
}

// Runner drives the benchmark: a pool of workers, each with its own
// connection, executing the configured number of transactions drawn
// from the weighted mix.
type Runner struct {
	p Properties
}

func NewRunner(p Properties) *Runner {
	return &Runner{
		p: p,
	}
}

func (self *Runner) Main() error {
	scale, err := scaleFactor(self.p)
	if err != nil {
		return err
	}
	threadCount, err := parseInt(self.p.GetDefault(
		PropertyThreadCount, PropertyThreadCountDefault))
	if err != nil || threadCount < 1 {
		return fmt.Errorf("thread count must be a number >= 1")
	}
	txPerThread, err := parseInt(self.p.GetDefault(
		PropertyTransactionCount, PropertyTransactionCountDefault))
	if err != nil || txPerThread < 1 {
		return fmt.Errorf("transaction count must be a number >= 1")
	}
	rwRatio, err := parseFloat(self.p.GetDefault(
		PropertyReadWriteRatio, PropertyReadWriteRatioDefault))
	if err != nil || rwRatio < 0 || rwRatio > 1 {
		return fmt.Errorf("read-write ratio must be within [0.0, 1.0]")
	}
	weights, err := ParseTransactionWeights(self.p.GetDefault(
		PropertyTransactionWeights, PropertyTransactionWeightsDefault))
	if err != nil {
		return err
	}

	Infof("starting benchmark with %d workers", threadCount)
	Infof("transactions per worker: %d", txPerThread)
	Infof("read-write ratio: %g", rwRatio)
	Infof("press Ctrl+C to cancel the benchmark")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifyOnInterrupt(cancel)

	measurements := NewMeasurements(self.p)
	seed := seedFromProperties(self.p)

	startTime := time.Now()
	perWorkerResults := make([][]*TransactionResult, threadCount)
	var waitGroup sync.WaitGroup
	for i := int64(0); i < threadCount; i++ {
		workerID := int(i)
		workerSeed := seed
		if workerSeed != 0 {
			workerSeed += i
		}
		w := newWorker(workerID, self.p, scale, workerSeed,
			txPerThread, rwRatio, weights, measurements)
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			perWorkerResults[workerID] = w.run(ctx)
		}()
	}
	waitGroup.Wait()
	totalDuration := time.Since(startTime)

	if ctx.Err() != nil {
		Infof("benchmark cancelled, reporting partial results")
	}
	result := Aggregate(perWorkerResults, totalDuration)
	self.report(result, threadCount, txPerThread, scale, rwRatio)
	Infof("latency summary: %s", measurements.GetSummary())
	return nil
}

func (self *Runner) report(
	result *BenchmarkResult,
	threadCount, txPerThread, scale int64,
	rwRatio float64) {

	line := strings.Repeat("=", 60)
	Printf("\n%s", line)
	Printf("CONCURRENT BENCHMARK RESULTS")
	Printf("%s", line)
	Printf("Configuration: %d threads, %d transactions/thread",
		threadCount, txPerThread)
	Printf("Scale Factor: %d warehouses", scale)
	Printf("Read-Write Ratio: %g", rwRatio)
	Printf("")
	Printf("Performance:")
	Printf("  Total Transactions: %d", result.TotalTransactions)
	Printf("  Successful: %d", result.SuccessfulTransactions)
	Printf("  Failed: %d", result.FailedTransactions)
	if result.TotalTransactions > 0 {
		Printf("  Success Rate: %.2f%%",
			float64(result.SuccessfulTransactions)/
				float64(result.TotalTransactions)*100)
	}
	Printf("  Total Duration: %.2f seconds", result.TotalDuration.Seconds())
	Printf("  Average Response Time: %.2f ms",
		float64(NanosecondToMillisecond(result.AvgResponseTime.Nanoseconds())))
	Printf("  Throughput: %.2f TPS", result.ThroughputTPS)
	Printf("")
	Printf("Transaction Mix:")
	for txType := TxNewOrder; txType < TransactionTypeCount; txType++ {
		count := result.TransactionBreakdown[txType]
		if count > 0 {
			Printf("  %s: %d (%.1f%%)", txType, count,
				float64(count)/float64(result.TotalTransactions)*100)
		}
	}
	Printf("%s", line)
}

// ParseTransactionWeights parses the comma-separated mix weights, in
// the order NewOrder, Payment, Delivery, OrderStatus, StockLevel.
func ParseTransactionWeights(value string) ([]float64, error) {
	parts := strings.Split(value, ",")
	if len(parts) != int(TransactionTypeCount) {
		return nil, fmt.Errorf(
			"expected %d transaction weights, got %d",
			int(TransactionTypeCount), len(parts))
	}
	weights := make([]float64, len(parts))
	total := float64(0)
	for i, part := range parts {
		weight, err := parseFloat(strings.TrimSpace(part))
		if err != nil || weight < 0 {
			return nil, fmt.Errorf("invalid transaction weight: %q", part)
		}
		weights[i] = weight
		total += weight
	}
	if total <= 0 {
		return nil, fmt.Errorf("transaction weights sum to zero: %q", value)
	}
	return weights, nil
}

// worker runs transactions over a single lazily established
// connection.
type worker struct {
	id                int
	p                 Properties
	txCount           int64
	rwRatio           float64
	input             *generator.Input
	chooser           *mixChooser
	measurements      *Measurements
	connectRetryLimit int64
	conn              Conn
}

func newWorker(
	id int,
	p Properties,
	scale int64,
	seed int64,
	txCount int64,
	rwRatio float64,
	weights []float64,
	measurements *Measurements) *worker {

	random := generator.NewRandom(seed)
	retryLimit, err := parseInt(p.GetDefault(
		PropertyConnectRetryLimit, PropertyConnectRetryLimitDefault))
	if err != nil || retryLimit < 1 {
		retryLimit, _ = parseInt(PropertyConnectRetryLimitDefault)
	}
	return &worker{
		id:                id,
		p:                 p,
		txCount:           txCount,
		rwRatio:           rwRatio,
		input:             generator.NewInput(scale, random),
		chooser:           newMixChooser(weights, random),
		measurements:      measurements,
		connectRetryLimit: retryLimit,
	}
}

// connection returns the worker connection, dialing on first use with
// a bounded number of attempts.
func (self *worker) connection() (Conn, error) {
	if self.conn != nil {
		return self.conn, nil
	}
	var lastErr error
	for attempt := int64(1); attempt <= self.connectRetryLimit; attempt++ {
		conn, err := connect(self.p)
		if err == nil {
			Debugf("worker %d established its connection", self.id)
			self.conn = conn
			return conn, nil
		}
		lastErr = err
		Warnf("worker %d failed to connect (attempt %d/%d): %s",
			self.id, attempt, self.connectRetryLimit, err)
		if attempt < self.connectRetryLimit {
			time.Sleep(shortRetryDelay * time.Duration(attempt))
		}
	}
	return nil, fmt.Errorf("worker %d could not connect after %d attempts: %s",
		self.id, self.connectRetryLimit, lastErr)
}

func (self *worker) run(ctx context.Context) []*TransactionResult {
	results := make([]*TransactionResult, 0, self.txCount)
	defer self.close()

	for i := int64(0); i < self.txCount; i++ {
		select {
		case <-ctx.Done():
			Debugf("worker %d stopping after %d transactions", self.id, i)
			return results
		default:
		}

		conn, err := self.connection()
		if err != nil {
			Errorf("%s", err)
			return results
		}

		txType := self.chooser.next(self.rwRatio)
		tx := NewTransactions(conn, self.input)
		result := RunWithRetry(ctx, tx, txType, self.id)
		self.measurements.Measure(result)
		results = append(results, result)
	}
	return results
}

func (self *worker) close() {
	if self.conn != nil {
		self.conn.Close()
		self.conn = nil
	}
}

// mixChooser picks a transaction type for each iteration: first the
// read-write or read-only class by ratio, then a type within the
// class by its weight relative to the class total.
type mixChooser struct {
	random         *rand.Rand
	readWrite      *generator.DiscreteGenerator
	readOnly       *generator.DiscreteGenerator
	readWriteCount int
	readOnlyCount  int
}

var mixNameToType = map[string]TransactionType{
	TxNewOrder.String():    TxNewOrder,
	TxPayment.String():     TxPayment,
	TxDelivery.String():    TxDelivery,
	TxOrderStatus.String(): TxOrderStatus,
	TxStockLevel.String():  TxStockLevel,
}

func newMixChooser(weights []float64, random *rand.Rand) *mixChooser {
	chooser := &mixChooser{
		random:    random,
		readWrite: generator.NewDiscreteGenerator(random),
		readOnly:  generator.NewDiscreteGenerator(random),
	}
	for txType := TxNewOrder; txType < TransactionTypeCount; txType++ {
		weight := weights[int(txType)]
		if weight <= 0 {
			continue
		}
		if txType.IsReadWrite() {
			chooser.readWrite.AddValue(weight, txType.String())
			chooser.readWriteCount++
		} else {
			chooser.readOnly.AddValue(weight, txType.String())
			chooser.readOnlyCount++
		}
	}
	return chooser
}

func (self *mixChooser) next(rwRatio float64) TransactionType {
	preferReadWrite := self.random.Float64() < rwRatio
	// A class with all-zero weights yields to the other.
	if preferReadWrite && self.readWriteCount == 0 {
		preferReadWrite = false
	} else if !preferReadWrite && self.readOnlyCount == 0 {
		preferReadWrite = true
	}
	var chosen string
	if preferReadWrite {
		chosen = self.readWrite.NextString()
	} else {
		chosen = self.readOnly.NextString()
	}
	return mixNameToType[chosen]
}

func seedFromProperties(p Properties) int64 {
	value := p.GetDefault(PropertySeed, PropertySeedDefault)
	if value == "" {
		return 0
	}
	seed, err := parseInt(value)
	if err != nil {
		Warnf("invalid seed %q, seeding from the clock", value)
		return 0
	}
	return seed
}
