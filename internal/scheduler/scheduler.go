package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-cli/internal/models"
	"github.com/bobby-s-dev/weather-cli/internal/services"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Refresher is the part of services.Forecaster the scheduler drives.
type Refresher interface {
	Watchlist(ctx context.Context) ([]models.City, error)
	Sweep(ctx context.Context, cities []models.City, offsets []int) ([]services.SweepResult, error)
}

type Status struct {
	Running  bool      `json:"running"`
	Schedule string    `json:"schedule"`
	LastRun  time.Time `json:"last_run"`
	NextRun  time.Time `json:"next_run"`
}

// Scheduler refreshes the favourites and every stored city on a cron schedule.
type Scheduler struct {
	refresher Refresher
	logger    *zap.Logger
	schedule  string
	timeout   time.Duration
	cron      *cron.Cron

	runMu   sync.Mutex     // one refresh at a time
	initial sync.WaitGroup // the run started by Start

	mu      sync.Mutex
	running bool
	entryID cron.EntryID
	lastRun time.Time
}

func NewScheduler(refresher Refresher, schedule string, logger *zap.Logger) *Scheduler {
	cronLog := cronLogger{logger.Sugar()}
	return &Scheduler{
		refresher: refresher,
		logger:    logger,
		schedule:  schedule,
		timeout:   5 * time.Minute,
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
	}
}

// Start registers the refresh job, runs it once right away and starts the
// cron loop. It fails if the schedule cannot be parsed.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	id, err := s.cron.AddFunc(s.schedule, s.runScheduled)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.schedule, err)
	}
	s.entryID = id
	s.running = true
	s.cron.Start()

	s.logger.Info("Scheduler started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", s.cron.Entry(id).Next))

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.runScheduled()
	}()
	return nil
}

// Stop halts the cron loop and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.initial.Wait()
}

// RunNow refreshes the watch list immediately. The returned error combines
// the failures of individual cities.
func (s *Scheduler) RunNow(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.Lock()
	s.lastRun = time.Now()
	s.mu.Unlock()

	cities, err := s.refresher.Watchlist(ctx)
	if err != nil {
		return fmt.Errorf("load watch list: %w", err)
	}

	startTime := time.Now()
	s.logger.Info("Starting scheduled forecast refresh", zap.Int("cities", len(cities)))

	_, err = s.refresher.Sweep(ctx, cities, []int{0})
	if err != nil {
		s.logger.Error("Scheduled forecast refresh had failures",
			zap.Int("failure", len(multierr.Errors(err))),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err))
		return err
	}

	s.logger.Info("Scheduled forecast refresh completed",
		zap.Duration("duration", time.Since(startTime)))
	return nil
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:  s.running,
		Schedule: s.schedule,
		LastRun:  s.lastRun,
	}
	if s.running {
		status.NextRun = s.cron.Entry(s.entryID).Next
	}
	return status
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	// Failures are logged by RunNow.
	_ = s.RunNow(ctx)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	*zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Errorw(msg, append(keysAndValues, "error", err)...)
}
