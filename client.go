package loadbench

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	strftime "github.com/hhkbp2/go-strftime"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// PhaseLoad inserts the initial records.
	PhaseLoad = "load"
	// PhaseRun replays the configured transaction mix.
	PhaseRun = "run"
)

// PhaseResult is the outcome of one phase.
type PhaseResult struct {
	Phase   string
	Threads int
	Elapsed time.Duration
	// Operations is the requested operation count of the phase.
	Operations int64
	// Completed is the number of operations actually issued. The operation
	// count is split evenly between the goroutines and the remainder is
	// dropped, so it may be lower than Operations.
	Completed int64
	// Throughput is Operations per second of Elapsed.
	Throughput float64
}

func newPhaseResult(phase string, threads int, elapsed time.Duration, operations, completed int64) *PhaseResult {
	var throughput float64
	if elapsed > 0 {
		throughput = float64(operations) / elapsed.Seconds()
	}
	return &PhaseResult{
		Phase:      phase,
		Threads:    threads,
		Elapsed:    elapsed,
		Operations: operations,
		Completed:  completed,
		Throughput: throughput,
	}
}

// Client drives a workload against a database for a list of phases.
type Client struct {
	db             DB
	workload       *CoreWorkload
	measurements   Measurements
	threads        int
	operationCount int64
	limiter        *rate.Limiter
	statusOut      io.Writer
	statusInterval time.Duration
	runID          string
}

func NewClient(db DB, workload *CoreWorkload, measurements Measurements, threads int) *Client {
	return &Client{
		db:             db,
		workload:       workload,
		measurements:   measurements,
		threads:        threads,
		operationCount: workload.Config().OperationCount,
		runID:          uuid.New().String(),
	}
}

// SetTarget throttles all goroutines together to opsPerSec operations per
// second. Zero disables throttling.
func (self *Client) SetTarget(opsPerSec float64) {
	if opsPerSec <= 0 {
		self.limiter = nil
		return
	}
	self.limiter = rate.NewLimiter(rate.Limit(opsPerSec), 1)
}

// SetStatus prints a status line to w every interval while a phase runs.
func (self *Client) SetStatus(w io.Writer, interval time.Duration) {
	self.statusOut = w
	self.statusInterval = interval
}

// RunID identifies this client in the logs.
func (self *Client) RunID() string {
	return self.runID
}

// ValidatePhases checks every phase name before anything runs.
func ValidatePhases(phases []string) error {
	if len(phases) == 0 {
		return NewConfigError("phases", "", errors.New("no phase specified"))
	}
	for _, phase := range phases {
		switch phase {
		case PhaseLoad, PhaseRun:
		default:
			return &UnknownPhaseError{Phase: phase}
		}
	}
	return nil
}

// Run executes the phases in order and returns one result per phase.
// The first failing operation aborts its phase: the other goroutines stop
// before their next operation, and no later phase is run.
func (self *Client) Run(ctx context.Context, phases []string) (results []*PhaseResult, err error) {
	if err := ValidatePhases(phases); err != nil {
		return nil, err
	}
	if self.threads <= 0 {
		return nil, newConfigErrorf(PropertyThreadCount, fmt.Sprint(self.threads), "must be positive")
	}
	if err := self.workload.Validate(self.db); err != nil {
		return nil, err
	}
	log := Logger().With().Str("run", self.runID).Int("threads", self.threads).Logger()
	if err := self.db.Init(ctx); err != nil {
		return nil, NewBackendError("INIT", self.workload.Config().Table, "", err)
	}
	if cleaner, ok := self.db.(Cleaner); ok {
		defer func() {
			if cerr := cleaner.Cleanup(); cerr != nil {
				log.Warn().Err(cerr).Msg("cleanup failed")
				if err != nil {
					err = multierror.Append(err, cerr)
				}
			}
		}()
	}

	for _, phase := range phases {
		log.Info().Str("phase", phase).Int64("operations", self.operationCount).Msg("starting phase")
		result, err := self.runPhase(ctx, phase)
		if err != nil {
			log.Error().Str("phase", phase).Err(err).Msg("phase failed")
			return results, errors.Wrapf(err, "phase %s", phase)
		}
		log.Info().
			Str("phase", phase).
			Dur("elapsed", result.Elapsed).
			Float64("throughput", result.Throughput).
			Msg("finished phase")
		results = append(results, result)
	}
	return results, nil
}

func (self *Client) runPhase(ctx context.Context, phase string) (*PhaseResult, error) {
	share := self.operationCount / int64(self.threads)
	notFoundFatal := self.workload.Config().NotFoundFatal
	var done int64

	type operationFunc func(state *RoutineState) (Operation, error)
	var do operationFunc
	if phase == PhaseLoad {
		do = func(state *RoutineState) (Operation, error) {
			return OperationInsert, self.workload.DoInsert(ctx, self.db, state)
		}
	} else {
		do = func(state *RoutineState) (Operation, error) {
			return self.workload.DoTransaction(ctx, self.db, state)
		}
	}

	start := time.Now()
	stopStatus := self.startStatus(phase, start, &done)
	group, gctx := errgroup.WithContext(ctx)
	for i := 0; i < self.threads; i++ {
		state := self.workload.InitRoutine(i)
		group.Go(func() error {
			for j := int64(0); j < share; j++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if self.limiter != nil {
					if err := self.limiter.Wait(gctx); err != nil {
						return err
					}
				}
				opStart := time.Now()
				op, err := do(state)
				latency := time.Since(opStart)
				status := StatusOf(err)
				self.measurements.Measure(string(op), int64(latency/time.Microsecond))
				self.measurements.ReportStatus(string(op), status)
				if err != nil && (status != StatusNotFound || notFoundFatal) {
					return err
				}
				atomic.AddInt64(&done, 1)
			}
			return nil
		})
	}
	err := group.Wait()
	elapsed := time.Since(start)
	stopStatus()
	if err != nil {
		return nil, err
	}
	return newPhaseResult(phase, self.threads, elapsed, self.operationCount, share*int64(self.threads)), nil
}

// startStatus starts the status goroutine if configured, and returns the
// function stopping it.
func (self *Client) startStatus(phase string, start time.Time, done *int64) func() {
	if self.statusOut == nil || self.statusInterval <= 0 {
		return func() {}
	}
	stop := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(self.statusInterval)
		defer ticker.Stop()
		var lastDone int64
		lastTime := start
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				total := atomic.LoadInt64(done)
				current := float64(total-lastDone) / now.Sub(lastTime).Seconds()
				Fprintf(self.statusOut, "%s %s %d sec: %d operations; %.2f current ops/sec; %s",
					strftime.Format("%Y-%m-%d %H:%M:%S", now),
					phase,
					int64(now.Sub(start).Seconds()),
					total,
					current,
					self.measurements.GetSummary())
				lastDone, lastTime = total, now
			}
		}
	}()
	return func() {
		close(stop)
		<-stopped
	}
}
