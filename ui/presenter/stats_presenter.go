package presenter

import (
	"time"

	"github.com/Fettser/diplom-deploy/domain/restore"
)

// StatsSource exposes the request timing and outcome.
type StatsSource interface {
	State() restore.State
	Elapsed(now time.Time) time.Duration
	Result() *restore.Result
}

// StatsView displays request duration and result size.
type StatsView interface {
	SetStats(elapsed time.Duration, points int)
}

// StatsPresenter pushes request duration and point count to the view.
type StatsPresenter struct {
	src  StatsSource
	view StatsView
}

// NewStatsPresenter returns a new StatsPresenter.
func NewStatsPresenter(src StatsSource, view StatsView) *StatsPresenter {
	return &StatsPresenter{src: src, view: view}
}

// Tick updates the view from the source.
func (p *StatsPresenter) Tick(now time.Time) {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	if p.src.State() == restore.StateIdle {
		p.view.SetStats(0, 0)
		return
	}
	p.view.SetStats(p.src.Elapsed(now), p.src.Result().Points())
}
