package presenter

import (
	"time"

	"github.com/Fettser/diplom-deploy/domain/acquisition"
)

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// StatePresenter reflects intake form transitions in the state label.
type StatePresenter struct {
	view    StateView
	latest  acquisition.FormState
	shown   bool
	pending []acquisition.FormState
}

func NewStatePresenter(view StateView) *StatePresenter {
	return &StatePresenter{view: view}
}

// OnState queues a transition from the form listener.
//
// The latest queued state will be reflected on the next Tick.
func (p *StatePresenter) OnState(_, next acquisition.FormState) {
	if p == nil {
		return
	}
	p.pending = append(p.pending, next)
}

// Tick shows the most recent queued state and clears the queue.
func (p *StatePresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	if !p.shown {
		p.shown = true
		p.view.SetStateLabel("State: " + p.latest.String())
	}
	if len(p.pending) == 0 {
		return
	}
	last := p.pending[len(p.pending)-1]
	p.pending = p.pending[:0]
	if last != p.latest {
		p.latest = last
		p.view.SetStateLabel("State: " + last.String())
	}
}
