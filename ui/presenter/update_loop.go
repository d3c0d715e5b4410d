package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// Intake and request results are applied first so that the state, stats and
// viewer presenters see them in the same tick. The zero value is usable
// (methods are nil-safe).
type Loop struct {
	Acquisition *AcquisitionPresenter
	Capture     *CapturePresenter
	Restore     *RestorePresenter
	State       *StatePresenter
	Stats       *StatsPresenter
	Viewer      *ViewerPresenter
	Schedule    func()
}

func NewLoop(acq *AcquisitionPresenter, capture *CapturePresenter, restore *RestorePresenter, state *StatePresenter, stats *StatsPresenter, viewer *ViewerPresenter, schedule func()) *Loop {
	return &Loop{Acquisition: acq, Capture: capture, Restore: restore, State: state, Stats: stats, Viewer: viewer, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	l.Capture.Tick()
	l.Acquisition.Tick()
	l.Restore.Tick()
	l.State.Tick(now)
	l.Stats.Tick(now)
	l.Viewer.Tick(now)
	if l.Schedule != nil {
		l.Schedule()
	}
}

// Close tears down presenters owning goroutines or engines.
func (l *Loop) Close() {
	if l == nil {
		return
	}
	l.Capture.Close()
	l.Restore.Close()
	l.Viewer.Close()
}
