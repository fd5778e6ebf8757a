package junction_test

import (
	"fmt"
	"testing"

	"github.com/fuzzylts/fuzzylts-go/clock"
	"github.com/fuzzylts/fuzzylts-go/entity"
	"github.com/fuzzylts/fuzzylts-go/entity/junction"
	"github.com/fuzzylts/fuzzylts-go/entity/junction/trafficlight"
	"github.com/fuzzylts/fuzzylts-go/entity/lane"
	"github.com/fuzzylts/fuzzylts-go/entity/network"
	"github.com/fuzzylts/fuzzylts-go/fuzzy"
	"github.com/fuzzylts/fuzzylts-go/utils/config"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSim 由测试直接控制相位与车辆数的仿真
type scriptedSim struct {
	t, dt    float64
	programs map[string][]string
	phase    map[string]int32
	counts   map[string]int

	writes []string // 写回记录
	reads  []string // CurrentPhase调用顺序
}

func newScriptedSim(programs map[string][]string) *scriptedSim {
	s := &scriptedSim{
		dt:       1,
		programs: programs,
		phase:    make(map[string]int32),
		counts:   make(map[string]int),
	}
	for id := range programs {
		s.phase[id] = 0
	}
	return s
}

func (s *scriptedSim) signal(id string) ([]string, error) {
	p, ok := s.programs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownSignal, id)
	}
	return p, nil
}

func (s *scriptedSim) Time() (float64, error)          { return s.t, nil }
func (s *scriptedSim) DeltaT() (float64, error)        { return s.dt, nil }
func (s *scriptedSim) MinExpectedNumber() (int, error) { return 1, nil }
func (s *scriptedSim) SignalIDs() ([]string, error) {
	ids := make([]string, 0, len(s.programs))
	for id := range s.programs {
		ids = append(ids, id)
	}
	return ids, nil
}
func (s *scriptedSim) CurrentPhase(id string) (int32, error) {
	if _, err := s.signal(id); err != nil {
		return 0, err
	}
	s.reads = append(s.reads, id)
	return s.phase[id], nil
}
func (s *scriptedSim) PhaseState(id string) (string, error) {
	p, err := s.signal(id)
	if err != nil {
		return "", err
	}
	return p[s.phase[id]], nil
}
func (s *scriptedSim) PhaseCount(id string) (int32, error) {
	p, err := s.signal(id)
	return int32(len(p)), err
}
func (s *scriptedSim) LaneVehicleCount(id string) (int, error) {
	n, ok := s.counts[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", entity.ErrUnknownLane, id)
	}
	return n, nil
}
func (s *scriptedSim) Step() error {
	s.t += s.dt
	return nil
}
func (s *scriptedSim) SetPhase(id string, index int32) error {
	s.phase[id] = index
	s.writes = append(s.writes, fmt.Sprintf("phase %s %d", id, index))
	return nil
}
func (s *scriptedSim) SetPhaseDuration(id string, seconds float64) error {
	s.writes = append(s.writes, fmt.Sprintf("duration %s %d@%d", id, int(seconds), s.phase[id]))
	return nil
}
func (s *scriptedSim) Close() error { return nil }

type testContext struct {
	sim   *scriptedSim
	lanes *lane.LaneManager
	pl    network.PhaseLaneMap
	rc    *config.RuntimeConfig
}

func (c *testContext) Clock() *clock.Clock                      { return nil }
func (c *testContext) Simulation() entity.ISimulation           { return c.sim }
func (c *testContext) LaneManager() entity.ILaneManager         { return c.lanes }
func (c *testContext) JunctionManager() entity.IJunctionManager { return nil }
func (c *testContext) PhaseLanes() network.PhaseLaneMap         { return c.pl }
func (c *testContext) RuntimeConfig() *config.RuntimeConfig     { return c.rc }

func setup(t *testing.T, kind trafficlight.Kind, sim *scriptedSim, pl network.PhaseLaneMap, signals ...string) (*junction.JunctionManager, *testContext) {
	kb, err := fuzzy.NewKnowledgeBase(fuzzy.Config{})
	require.NoError(t, err)
	c := config.Config{Control: config.Control{Signals: signals}}
	ctx := &testContext{
		sim:   sim,
		lanes: lane.NewManager(),
		pl:    pl,
		rc:    config.NewRuntimeConfig(c),
	}
	ctl, err := trafficlight.DefaultRegistry().New(kind, trafficlight.Deps{
		Engine: fuzzy.NewEngine(kb),
		GapOut: config.GapOut{MinGreen: lo.ToPtr(2.0), NoVehicleLimit: lo.ToPtr(2.0)},
	})
	require.NoError(t, err)
	return junction.NewManager(ctx, ctl), ctx
}

func step(t *testing.T, m *junction.JunctionManager, sim *scriptedSim) {
	require.NoError(t, sim.Step())
	require.NoError(t, m.Update())
}

func TestGapOutScenario(t *testing.T) {
	sim := newScriptedSim(map[string][]string{"J": {"GGrr", "rrGG"}})
	sim.counts = map[string]int{"a": 0, "b": 0}
	pl := network.PhaseLaneMap{"J": {0: {"a"}, 1: {"b"}}}
	m, _ := setup(t, trafficlight.KindGapFuzzy, sim, pl)
	require.NoError(t, m.Init())

	step(t, m, sim)
	step(t, m, sim)
	assert.Empty(t, sim.writes)
	step(t, m, sim)
	assert.Equal(t, []string{"phase J 1"}, sim.writes, "gap-out on the 3rd call")

	// 下一步检测到绿灯相位进入，写回一次时长
	step(t, m, sim)
	assert.Equal(t, []string{"phase J 1", "duration J 15@1"}, sim.writes)
	step(t, m, sim)
	assert.Len(t, sim.writes, 2)
	step(t, m, sim)
	assert.Equal(t, "phase J 0", sim.writes[2])
	step(t, m, sim)
	assert.Equal(t, "duration J 15@0", sim.writes[3])
}

func TestDurationOnlyOnGreenEntry(t *testing.T) {
	sim := newScriptedSim(map[string][]string{"J": {"GGrr", "yyrr", "rrGG", "rryy"}})
	sim.counts = map[string]int{"a": 12, "b": 20}
	pl := network.PhaseLaneMap{"J": {0: {"a"}, 2: {"b"}}}
	m, _ := setup(t, trafficlight.KindFuzzy, sim, pl)
	require.NoError(t, m.Init())

	// 初始相位不视为进入
	step(t, m, sim)
	step(t, m, sim)
	assert.Empty(t, sim.writes)

	sim.phase["J"] = 1
	step(t, m, sim)
	assert.Empty(t, sim.writes, "yellow phase")

	sim.phase["J"] = 2
	step(t, m, sim)
	require.Len(t, sim.writes, 1)
	for i := 0; i < 5; i++ {
		step(t, m, sim)
	}
	assert.Len(t, sim.writes, 1, "idempotent within the same green phase")

	j, ok := m.Get("J")
	require.True(t, ok)
	assert.Equal(t, 1, j.Applied())
	assert.Equal(t, int32(2), j.LastPhase())
}

func TestNonAdaptiveNeverWrites(t *testing.T) {
	for _, kind := range []trafficlight.Kind{trafficlight.KindStatic, trafficlight.KindActuated} {
		sim := newScriptedSim(map[string][]string{"J": {"GGrr", "rrGG"}})
		sim.counts = map[string]int{"a": 30}
		pl := network.PhaseLaneMap{"J": {0: {"a"}, 1: {"a"}}}
		m, _ := setup(t, kind, sim, pl)
		require.NoError(t, m.Init())
		for i := 0; i < 6; i++ {
			sim.phase["J"] = int32(i / 2 % 2)
			step(t, m, sim)
		}
		assert.Empty(t, sim.writes, kind)
	}
}

func TestSignalsOrderAndSubset(t *testing.T) {
	programs := map[string][]string{"b": {"G", "r"}, "a": {"G", "r"}, "c": {"G", "r"}}
	sim := newScriptedSim(programs)
	m, _ := setup(t, trafficlight.KindStatic, sim, network.PhaseLaneMap{})
	require.NoError(t, m.Init())
	assert.Equal(t, []string{"a", "b", "c"}, m.Signals())
	sim.reads = nil
	step(t, m, sim)
	assert.Equal(t, []string{"a", "b", "c"}, sim.reads)

	m, _ = setup(t, trafficlight.KindStatic, sim, network.PhaseLaneMap{}, "c", "a")
	require.NoError(t, m.Init())
	assert.Equal(t, []string{"a", "c"}, m.Signals())

	m, _ = setup(t, trafficlight.KindStatic, sim, network.PhaseLaneMap{}, "a", "x")
	err := m.Init()
	assert.ErrorIs(t, err, entity.ErrUnknownSignal)
	assert.ErrorIs(t, err, entity.ErrCollaborator)
}

func TestCollaboratorErrorPropagates(t *testing.T) {
	sim := newScriptedSim(map[string][]string{"J": {"GGrr", "rrGG"}})
	pl := network.PhaseLaneMap{"J": {0: {"ghost"}}}
	m, _ := setup(t, trafficlight.KindFuzzy, sim, pl)
	require.NoError(t, m.Init())
	require.NoError(t, sim.Step())
	assert.ErrorIs(t, m.Update(), entity.ErrUnknownLane)

	// 映射中存在但仿真中不存在的信号灯
	m, _ = setup(t, trafficlight.KindStatic, sim, network.PhaseLaneMap{"ghost": {0: {"a"}}})
	assert.ErrorIs(t, m.Init(), entity.ErrUnknownSignal)
}
