package view

import (
	"fmt"
	"time"

	"github.com/Fettser/diplom-deploy/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// RequestStats shows how long the last request took and how many points it returned.
type RequestStats interface {
	SetStats(elapsed time.Duration, points int)
}

type requestStats struct {
	elapsedLbl *TLabelWidget
	pointsLbl  *TLabelWidget
}

// NewRequestStats creates the two labels at (row, startCol) and (row, startCol+1) of parent.
func NewRequestStats(parent *FrameWidget, row, startCol int) RequestStats {
	s := &requestStats{
		elapsedLbl: TLabel(Style(theme.StyleMutedLabel), Width(14)),
		pointsLbl:  TLabel(Style(theme.StyleMutedLabel), Width(16)),
	}
	Grid(s.elapsedLbl, In(parent), Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
	Grid(s.pointsLbl, In(parent), Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	s.SetStats(0, 0)
	return s
}

func (s *requestStats) SetStats(elapsed time.Duration, points int) {
	if s == nil || s.elapsedLbl == nil {
		return
	}
	seconds := int(elapsed.Seconds())
	min, sec := seconds/60, seconds%60
	s.elapsedLbl.Configure(Txt(fmt.Sprintf("Time: %02d:%02d", min, sec)))
	s.pointsLbl.Configure(Txt(fmt.Sprintf("Points: %d", points)))
}
