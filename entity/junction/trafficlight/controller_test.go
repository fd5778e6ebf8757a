package trafficlight_test

import (
	"testing"

	"github.com/fuzzylts/fuzzylts-go/entity"
	"github.com/fuzzylts/fuzzylts-go/entity/junction/trafficlight"
	"github.com/fuzzylts/fuzzylts-go/entity/lane"
	"github.com/fuzzylts/fuzzylts-go/fuzzy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSim 只实现读取接口的仿真
type fakeSim struct {
	phases int32
	counts map[string]int
	reads  int
}

func (s *fakeSim) Time() (float64, error)          { return 0, nil }
func (s *fakeSim) DeltaT() (float64, error)        { return 1, nil }
func (s *fakeSim) MinExpectedNumber() (int, error) { return 1, nil }
func (s *fakeSim) SignalIDs() ([]string, error)    { return []string{"J"}, nil }
func (s *fakeSim) CurrentPhase(string) (int32, error) {
	return 0, nil
}
func (s *fakeSim) PhaseState(string) (string, error) { return "GGrr", nil }
func (s *fakeSim) PhaseCount(id string) (int32, error) {
	if id != "J" {
		return 0, entity.ErrUnknownSignal
	}
	return s.phases, nil
}
func (s *fakeSim) LaneVehicleCount(id string) (int, error) {
	s.reads++
	n, ok := s.counts[id]
	if !ok {
		return 0, entity.ErrUnknownLane
	}
	return n, nil
}

func newEngine(t *testing.T) *fuzzy.Engine {
	kb, err := fuzzy.NewKnowledgeBase(fuzzy.Config{})
	require.NoError(t, err)
	return fuzzy.NewEngine(kb)
}

func stepContext(sim *fakeSim, lanes entity.ILaneManager, now float64, phase int32, green bool, timers *trafficlight.SignalTimerState) *trafficlight.StepContext {
	return &trafficlight.StepContext{
		Sim:        sim,
		Lanes:      lanes,
		Now:        now,
		DT:         1,
		Phase:      phase,
		Green:      green,
		PhaseLanes: []string{"a", "b"},
		Mapped:     true,
		Timers:     timers,
	}
}

func TestRegistry(t *testing.T) {
	r := trafficlight.DefaultRegistry()
	deps := trafficlight.Deps{Engine: newEngine(t), GapOut: gapOut(2, 2)}
	for _, kind := range trafficlight.Kinds {
		c, err := r.New(kind, deps)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, c.Kind())
		assert.NoError(t, c.OnInit([]string{"J"}))
	}
	c, err := r.NewByName("gap_fuzzy", deps)
	require.NoError(t, err)
	assert.True(t, c.Adaptive())

	_, err = r.NewByName("max_pressure", deps)
	assert.ErrorIs(t, err, trafficlight.ErrUnknownController)
	_, err = r.New(trafficlight.KindFuzzy, trafficlight.Deps{})
	assert.Error(t, err)
	_, err = trafficlight.ParseKind("")
	assert.ErrorIs(t, err, trafficlight.ErrUnknownController)
}

func TestFuzzyDecide(t *testing.T) {
	sim := &fakeSim{phases: 2, counts: map[string]int{"a": 1, "b": 1}}
	c, err := trafficlight.DefaultRegistry().New(trafficlight.KindFuzzy, trafficlight.Deps{Engine: newEngine(t)})
	require.NoError(t, err)
	lanes := lane.NewManager()

	d, err := c.Decide("J", stepContext(sim, lanes, 0, 0, true, nil))
	require.NoError(t, err)
	assert.Equal(t, trafficlight.DecisionDuration, d.Kind)
	assert.Equal(t, 15.0, d.Duration, "small queue returns the output minimum")
	assert.Equal(t, 2, lanes.Len())

	sim.counts["a"] = 20
	sim.counts["b"] = 12
	d, err = c.Decide("J", stepContext(sim, lanes, 1, 0, true, nil))
	require.NoError(t, err)
	assert.Greater(t, d.Duration, 15.0)
	assert.LessOrEqual(t, d.Duration, 50.0)

	d, err = c.Decide("J", stepContext(sim, lanes, 2, 1, false, nil))
	require.NoError(t, err)
	assert.Equal(t, trafficlight.DecisionNone, d.Kind)

	sc := stepContext(sim, lanes, 3, 0, true, nil)
	sc.PhaseLanes = []string{"missing"}
	_, err = c.Decide("J", sc)
	assert.ErrorIs(t, err, entity.ErrCollaborator)
}

func TestGapFuzzyDecide(t *testing.T) {
	sim := &fakeSim{phases: 4, counts: map[string]int{"a": 0, "b": 0}}
	c, err := trafficlight.DefaultRegistry().New(trafficlight.KindGapFuzzy, trafficlight.Deps{
		Engine: newEngine(t),
		GapOut: gapOut(2, 2),
	})
	require.NoError(t, err)
	lanes := lane.NewManager()
	var timers trafficlight.SignalTimerState

	for step := 0; step < 2; step++ {
		d, err := c.Decide("J", stepContext(sim, lanes, float64(step), 3, true, &timers))
		require.NoError(t, err)
		assert.Equal(t, trafficlight.DecisionDuration, d.Kind, "step %d", step)
	}
	reads := sim.reads
	d, err := c.Decide("J", stepContext(sim, lanes, 2, 3, true, &timers))
	require.NoError(t, err)
	assert.Equal(t, trafficlight.DecisionAdvance, d.Kind)
	assert.Equal(t, int32(0), d.NextPhase, "wraps around the program")
	assert.Equal(t, reads+2, sim.reads)

	d, err = c.Decide("J", stepContext(sim, lanes, 3, 1, false, &timers))
	require.NoError(t, err)
	assert.Equal(t, trafficlight.DecisionNone, d.Kind)
}

func TestStepContextCachesCounts(t *testing.T) {
	sim := &fakeSim{counts: map[string]int{"a": 3, "b": 4}}
	sc := stepContext(sim, lane.NewManager(), 0, 0, true, nil)
	n, err := sc.Vehicles()
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	_, _, err = sc.Lanes.ObservePhase(sc, sc.PhaseLanes, sc.Now)
	require.NoError(t, err)
	assert.Equal(t, 2, sim.reads)
}

func TestNonAdaptiveControllers(t *testing.T) {
	sim := &fakeSim{phases: 2, counts: map[string]int{"a": 9, "b": 9}}
	r := trafficlight.DefaultRegistry()
	for _, kind := range []trafficlight.Kind{trafficlight.KindStatic, trafficlight.KindActuated} {
		c, err := r.New(kind, trafficlight.Deps{})
		require.NoError(t, err)
		assert.False(t, c.Adaptive())
		for step := 0; step < 4; step++ {
			d, err := c.Decide("J", stepContext(sim, lane.NewManager(), float64(step), int32(step/2), step < 2, nil))
			require.NoError(t, err)
			assert.Equal(t, trafficlight.DecisionNone, d.Kind)
		}
	}
	assert.Equal(t, 0, sim.reads)
}
