package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"DCASimulator/internal/collector"
	"DCASimulator/internal/config"
	"DCASimulator/internal/model"
	"DCASimulator/internal/recorder"
	"DCASimulator/internal/simulator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.sent = append(f.sent, text)
	return f.err
}

type fakeRecorder struct {
	recorder.NoopRecorder
	simulations int
	scenarios   int
	goals       int
	historyErr  error
}

func (f *fakeRecorder) RecordSimulation(_ *recorder.SimulationRun) (string, error) {
	f.simulations++
	return "id", nil
}

func (f *fakeRecorder) RecordScenarios(_ model.SimulationParams, _ *model.ScenarioSet) (string, error) {
	f.scenarios++
	return "batch", nil
}

func (f *fakeRecorder) RecordGoalSeek(_ *recorder.GoalSeekEvent) (string, error) {
	f.goals++
	return "id", nil
}

func (f *fakeRecorder) RecentRuns(_ int) ([]recorder.RunSummary, error) {
	return nil, f.historyErr
}

func newTestScheduler(t *testing.T) (*Scheduler, *fakeSender, *fakeRecorder) {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Simulation.Maturity = "2024-07-01"

	col := collector.NewCollector(&collector.MockFetcher{Price: 1300}, 0, 0)
	sender := &fakeSender{}
	rec := &fakeRecorder{}
	s := NewScheduler(context.Background(), cfg, simulator.NewEngine(col), col, sender, rec)
	return s, sender, rec
}

func TestHandleCommand_Simulate(t *testing.T) {
	s, _, rec := newTestScheduler(t)

	reply := s.HandleCommand("/simulate")
	assert.Contains(t, reply, "DCA simulation")
	assert.Contains(t, reply, "Purchases: 6 ×")
	assert.Equal(t, 1, rec.simulations)
}

func TestHandleCommand_ScenarioWithBotSuffix(t *testing.T) {
	s, _, rec := newTestScheduler(t)

	reply := s.HandleCommand("/scenario@dca_bot")
	assert.Contains(t, reply, "Risk scenarios")
	assert.Contains(t, reply, "Pessimistic")
	assert.Equal(t, 1, rec.scenarios)
}

func TestHandleCommand_Goal(t *testing.T) {
	s, _, rec := newTestScheduler(t)

	reply := s.HandleCommand("/goal 6m")
	assert.Contains(t, reply, "Required contribution:")
	assert.Contains(t, reply, "Converged")
	assert.Equal(t, 1, rec.goals)

	assert.Contains(t, s.HandleCommand("/goal"), "Usage")
	assert.Contains(t, s.HandleCommand("/goal lots"), "invalid target")
	assert.Contains(t, s.HandleCommand("/goal 1e15"), "goal seek failed")
	assert.Equal(t, 1, rec.goals)
}

func TestHandleCommand_InvalidConfiguration(t *testing.T) {
	s, _, rec := newTestScheduler(t)
	s.Config.Simulation.HoldingYears = 2

	reply := s.HandleCommand("/simulate")
	assert.True(t, strings.HasPrefix(reply, "❌ simulation failed"))
	assert.Equal(t, 0, rec.simulations)
}

func TestHandleCommand_Refresh(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	assert.Contains(t, s.HandleCommand("/refresh"), "Price cache cleared (0 entries)")
}

func TestHandleCommand_History(t *testing.T) {
	s, _, rec := newTestScheduler(t)
	assert.Equal(t, "No simulations recorded yet.", s.HandleCommand("/history"))

	rec.historyErr = errors.New("db locked")
	assert.Contains(t, s.HandleCommand("/history"), "history unavailable")
}

func TestHandleCommand_Help(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	assert.Equal(t, helpText, s.HandleCommand("hello"))
	assert.Equal(t, helpText, s.HandleCommand("   "))
}

func TestReportTaskSendsScenarios(t *testing.T) {
	s, sender, rec := newTestScheduler(t)

	s.RunReportNow()
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Risk scenarios")
	assert.Equal(t, 1, rec.scenarios)
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	assert.NoError(t, s.RegisterAll("0 0 * * * *", "0 0 9 * * 1"))
	assert.Len(t, s.Cron.Entries(), 2)

	assert.Error(t, s.RegisterAll("not a cron", "0 0 9 * * 1"))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"100000000", 1e8},
		{"100,000,000", 1e8},
		{"250k", 250_000},
		{"1.5M", 1_500_000},
		{"2b", 2e9},
		{"1e7", 1e7},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "abc", "-5", "0"} {
		_, err := parseAmount(bad)
		assert.Error(t, err, bad)
	}
}
