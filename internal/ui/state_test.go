package ui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/curve"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

func figure(names ...string) *taoplot.Figure {
	fig := &taoplot.Figure{Region: "r1"}
	for _, n := range names {
		fig.Panels = append(fig.Panels, taoplot.Panel{Name: n, Kind: curve.KindData})
	}
	return fig
}

func TestNewState(t *testing.T) {
	s := NewState()
	snap := s.Snapshot()
	assert.Nil(t, snap.Figure)
	assert.Equal(t, -1, snap.Selected)
	assert.Nil(t, snap.Panel())
	assert.Equal(t, "Idle", snap.Status)
}

func TestSetFigureSelection(t *testing.T) {
	s := NewState()
	s.SetFigure(figure("r1.a", "r1.b", "r1.g"))
	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Selected, "the last panel is shown first")
	require.NotNil(t, snap.Panel())
	assert.Equal(t, "r1.g", snap.Panel().Name)

	s.SelectPanel(0)
	s.SetFigure(figure("r1.x", "r1.a", "r1.g"))
	assert.Equal(t, 1, s.Snapshot().Selected, "selection follows the panel name")

	s.SetFigure(figure("r1.y"))
	assert.Equal(t, 0, s.Snapshot().Selected)

	s.SetFigure(&taoplot.Figure{})
	assert.Equal(t, -1, s.Snapshot().Selected)
}

func TestSelectPanelIgnoresInvalid(t *testing.T) {
	s := NewState()
	s.SelectPanel(0)
	assert.Equal(t, -1, s.Snapshot().Selected)

	s.SetFigure(figure("a", "b"))
	s.SelectPanel(5)
	s.SelectPanel(-1)
	assert.Equal(t, 1, s.Snapshot().Selected)
}

func TestAppendLogTrims(t *testing.T) {
	s := NewState()
	for i := 0; i < 250; i++ {
		s.AppendLog(fmt.Sprintf("line %d", i))
	}
	logs := s.Snapshot().Logs
	require.Len(t, logs, 200)
	assert.Equal(t, "line 50", logs[0])
	assert.Equal(t, "line 249", logs[199])
}

func TestStatusAndError(t *testing.T) {
	s := NewState()
	s.SetBusy(true)
	s.SetStatus("Loading...")
	s.SetError(errors.New("pipe: closed"))
	snap := s.Snapshot()
	assert.True(t, snap.Busy)
	assert.True(t, s.Busy())
	assert.Equal(t, "Loading...", snap.Status)
	assert.EqualError(t, snap.LastError, "pipe: closed")
}

func TestPanelLabel(t *testing.T) {
	assert.Equal(t, "No panel", panelLabel(nil))
	assert.Equal(t, "r1.g (lat_layout)", panelLabel(&taoplot.Panel{Name: "r1.g", Kind: curve.KindLatLayout}))
	assert.Equal(t, "top.x: Orbit", panelLabel(&taoplot.Panel{Name: "top.x", Title: "Orbit"}))
}

func TestStepWraps(t *testing.T) {
	a := &App{State: NewState()}
	a.State.SetFigure(figure("a", "b", "c"))
	a.step(1)
	assert.Equal(t, 0, a.State.Snapshot().Selected)
	a.step(-1)
	assert.Equal(t, 2, a.State.Snapshot().Selected)
}
