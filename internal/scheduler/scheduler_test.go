package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bobby-s-dev/weather-cli/internal/models"
	"github.com/bobby-s-dev/weather-cli/internal/services"
	"go.uber.org/zap/zaptest"
)

type fakeRefresher struct {
	mu       sync.Mutex
	sweeps   [][]models.City
	sweepErr error
	listErr  error
	swept    chan struct{}
}

func newFakeRefresher() *fakeRefresher {
	return &fakeRefresher{swept: make(chan struct{}, 10)}
}

func (f *fakeRefresher) Watchlist(context.Context) ([]models.City, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []models.City{{Name: "Brussels", Latitude: 50.85045, Longitude: 4.34878}}, nil
}

func (f *fakeRefresher) Sweep(_ context.Context, cities []models.City, _ []int) ([]services.SweepResult, error) {
	f.mu.Lock()
	f.sweeps = append(f.sweeps, cities)
	f.mu.Unlock()
	f.swept <- struct{}{}
	return nil, f.sweepErr
}

func TestStartRunsImmediately(t *testing.T) {
	refresher := newFakeRefresher()
	s := NewScheduler(refresher, "@every 1h", zaptest.NewLogger(t))

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case <-refresher.swept:
	case <-time.After(5 * time.Second):
		t.Fatal("no refresh after Start")
	}

	status := s.Status()
	if !status.Running || status.Schedule != "@every 1h" {
		t.Errorf("unexpected status: %+v", status)
	}
	if status.NextRun.IsZero() {
		t.Error("next run not reported")
	}
}

func TestStartInvalidSchedule(t *testing.T) {
	s := NewScheduler(newFakeRefresher(), "every now and then", zaptest.NewLogger(t))

	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if s.Status().Running {
		t.Error("scheduler running after failed start")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := NewScheduler(newFakeRefresher(), "@every 1h", zaptest.NewLogger(t))
	s.Stop()

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
	s.Stop()

	if s.Status().Running {
		t.Error("scheduler still running")
	}
}

func TestStopWaitsForInitialRun(t *testing.T) {
	for i := 0; i < 50; i++ {
		refresher := newFakeRefresher()
		s := NewScheduler(refresher, "@every 1h", zaptest.NewLogger(t))

		if err := s.Start(); err != nil {
			t.Fatalf("Start: %v", err)
		}
		s.Stop()

		refresher.mu.Lock()
		sweeps := len(refresher.sweeps)
		refresher.mu.Unlock()
		if sweeps != 1 {
			t.Fatalf("round %d: %d sweeps finished before Stop returned, want 1", i, sweeps)
		}
	}
}

func TestRunNow(t *testing.T) {
	type test struct {
		listErr  error
		sweepErr error
		wantErr  bool
		sweeps   int
	}

	tests := map[string]test{
		"success":           {sweeps: 1},
		"sweep failure":     {sweepErr: errors.New("fetch forecast for \"Brussels\": boom"), wantErr: true, sweeps: 1},
		"watchlist failure": {listErr: errors.New("database is locked"), wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			refresher := newFakeRefresher()
			refresher.listErr = tc.listErr
			refresher.sweepErr = tc.sweepErr
			s := NewScheduler(refresher, "@every 1h", zaptest.NewLogger(t))

			err := s.RunNow(context.Background())
			if (err != nil) != tc.wantErr {
				t.Fatalf("RunNow error = %v, wantErr %v", err, tc.wantErr)
			}
			if len(refresher.sweeps) != tc.sweeps {
				t.Errorf("got %d sweeps, want %d", len(refresher.sweeps), tc.sweeps)
			}
			if tc.sweeps > 0 && refresher.sweeps[0][0].Name != "Brussels" {
				t.Errorf("swept %v", refresher.sweeps[0])
			}
			if s.Status().LastRun.IsZero() {
				t.Error("last run not recorded")
			}
		})
	}
}
