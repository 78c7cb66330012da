package recorder

import "DCASimulator/internal/model"

// NoopRecorder is a no-op implementation used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSimulation(_ *SimulationRun) (string, error) {
	return "", nil
}

func (n *NoopRecorder) RecordScenarios(_ model.SimulationParams, _ *model.ScenarioSet) (string, error) {
	return "", nil
}

func (n *NoopRecorder) RecordGoalSeek(_ *GoalSeekEvent) (string, error) {
	return "", nil
}

func (n *NoopRecorder) RecentRuns(_ int) ([]RunSummary, error) {
	return nil, nil
}

func (n *NoopRecorder) Close() error { return nil }
