package network_test

import (
	"testing"

	"github.com/fuzzylts/fuzzylts-go/entity/network"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试路网：
//
//	F -> C -(K)-> A#0 -> A#1 -(J)-> B
//	          D -l-> A#0      A#1 -r(J)-> S
//	M#0 -> :N_0 -> N -(J)-> S
func corridorNetwork() *network.Network {
	edges := []network.Edge{
		{ID: "A#0", Lanes: []string{"A#0_0"}},
		{ID: "A#1", Lanes: []string{"A#1_0", "A#1_1"}},
		{ID: "B", Lanes: []string{"B_0"}},
		{ID: "C", Lanes: []string{"C_0"}},
		{ID: "D", Lanes: []string{"D_0"}},
		{ID: "F", Lanes: []string{"F_0"}},
		{ID: "N", Lanes: []string{"N_0"}},
		{ID: "S", Lanes: []string{"S_0"}},
		{ID: "M#0", Lanes: []string{"M#0_0"}},
		{ID: ":N_0", Lanes: []string{":N_0_0"}},
	}
	connections := []network.Connection{
		{From: "A#1", FromLane: 0, To: "B", Dir: "s", TL: "J", LinkIndex: 0},
		{From: "A#1", FromLane: 1, To: "B", Dir: "s", TL: "J", LinkIndex: 1},
		{From: "N", FromLane: 0, To: "S", Dir: "s", TL: "J", LinkIndex: 2},
		{From: "A#1", FromLane: 1, To: "S", Dir: "r", TL: "J", LinkIndex: 3},
		{From: "N", FromLane: 0, To: "S", Dir: "s", TL: "J", LinkIndex: 9},
		{From: "A#0", To: "A#1", Dir: "s"},
		{From: "C", To: "A#0", Dir: "s", TL: "K", LinkIndex: 0},
		{From: "D", To: "A#0", Dir: "l"},
		{From: "F", To: "C", Dir: "s"},
		{From: ":N_0", To: "N", Dir: "s"},
		{From: "M#0", To: ":N_0", Dir: "s"},
	}
	programs := []network.SignalProgram{
		{ID: "J", Phases: []network.Phase{
			{Duration: 30, State: "GGrG"},
			{Duration: 30, State: "rrGr"},
			{Duration: 3, State: "yyyy"},
		}},
		{ID: "K", Phases: []network.Phase{{Duration: 20, State: "G"}, {Duration: 20, State: "r"}}},
		{ID: "Z", Phases: []network.Phase{{Duration: 20, State: "GG"}}},
	}
	return network.New(edges, connections, programs)
}

func TestBuildPhaseLaneMapDepthZero(t *testing.T) {
	m := network.BuildPhaseLaneMap(corridorNetwork(), 0, false)

	assert.Equal(t, []string{"J", "K"}, m.Signals())
	lanes, ok := m.Lanes("J", 0)
	require.True(t, ok)
	assert.Equal(t, []string{"A#1_0", "A#1_1"}, lanes)
	lanes, ok = m.Lanes("J", 1)
	require.True(t, ok)
	assert.Equal(t, []string{"N_0"}, lanes)
	_, ok = m.Lanes("J", 2)
	assert.False(t, ok, "phase without green links")
	_, ok = m.Lanes("Z", 0)
	assert.False(t, ok, "signal without connections")
	lanes, _ = m.Lanes("K", 0)
	assert.Equal(t, []string{"C_0"}, lanes)
	_, ok = m.Lanes("K", 1)
	assert.False(t, ok)
}

func TestBuildPhaseLaneMapStreetDepth(t *testing.T) {
	n := corridorNetwork()

	m := network.BuildPhaseLaneMap(n, 1, false)
	lanes, _ := m.Lanes("J", 0)
	// A#0与A#1同属街道A，不消耗深度；D为左转不参与
	assert.Equal(t, []string{"A#0_0", "A#1_0", "A#1_1", "C_0"}, lanes)
	lanes, _ = m.Lanes("J", 1)
	assert.Equal(t, []string{"N_0"}, lanes, "internal edge lanes are excluded")

	m = network.BuildPhaseLaneMap(n, 2, false)
	lanes, _ = m.Lanes("J", 0)
	assert.Equal(t, []string{"A#0_0", "A#1_0", "A#1_1", "C_0", "F_0"}, lanes)
	lanes, _ = m.Lanes("J", 1)
	assert.Equal(t, []string{"M#0_0", "N_0"}, lanes, "traversal passes through internal edges")
	lanes, _ = m.Lanes("K", 0)
	assert.Equal(t, []string{"C_0", "F_0"}, lanes)
}

func TestBuildPhaseLaneMapStopAtForeignSignal(t *testing.T) {
	m := network.BuildPhaseLaneMap(corridorNetwork(), 3, true)
	lanes, _ := m.Lanes("J", 0)
	assert.Equal(t, []string{"A#0_0", "A#1_0", "A#1_1"}, lanes)
	lanes, _ = m.Lanes("K", 0)
	assert.Equal(t, []string{"C_0", "F_0"}, lanes)
}

func TestBuildPhaseLaneMapInvariants(t *testing.T) {
	n := corridorNetwork()
	for _, stop := range []bool{false, true} {
		var prev network.PhaseLaneMap
		for depth := 0; depth <= 4; depth++ {
			m := network.BuildPhaseLaneMap(n, depth, stop)
			for signal, phases := range m {
				program, ok := n.Program(signal)
				require.True(t, ok)
				for phase, lanes := range phases {
					assert.True(t, network.IsGreen(program.Phases[phase].State), "%s/%d", signal, phase)
					assert.Equal(t, lo.Uniq(lanes), lanes)
					for _, lane := range lanes {
						edge, ok := n.LaneEdge(lane)
						require.True(t, ok, lane)
						assert.False(t, edge.Internal(), lane)
					}
				}
			}
			if depth == 0 {
				for signal, phases := range m {
					for _, lanes := range phases {
						for _, lane := range lanes {
							edge, _ := n.LaneEdge(lane)
							assert.Contains(t, []string{"A", "N", "C"}, edge.Base, "%s %s", signal, lane)
						}
					}
				}
			}
			for signal, phases := range prev {
				for phase, lanes := range phases {
					cur, ok := m.Lanes(signal, phase)
					require.True(t, ok)
					assert.Subset(t, cur, lanes, "depth %d stop %v", depth, stop)
				}
			}
			prev = m
		}
	}
}

func TestNetworkHelpers(t *testing.T) {
	assert.Equal(t, "337277951", network.BaseStreet("337277951#3"))
	assert.Equal(t, "49217102", network.BaseStreet("49217102"))
	assert.True(t, network.IsInternal(":J_0"))
	assert.True(t, network.IsGreen("rrgr"))
	assert.False(t, network.IsGreen("rryy"))
	assert.False(t, network.IsGreenAt("G", 3))

	n := corridorNetwork()
	e, ok := n.Edge(":N_0")
	require.True(t, ok)
	assert.True(t, e.Internal())
	assert.Equal(t, network.FunctionInternal, e.Function)
	assert.Len(t, n.LaneLinks("A#1_1"), 2)
	assert.Len(t, n.LaneLinks("A#0_0"), 0)
	assert.Equal(t, []string{"J", "K", "Z"}, n.SignalIDs())
}
