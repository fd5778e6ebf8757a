package network

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

const (
	// BaseDelimiter 路段后缀分隔符，"E#1"的基础街道为"E"
	BaseDelimiter = "#"
	// InternalPrefix 内部边ID前缀
	InternalPrefix = ":"
	// DirectionStraight 直行连接方向
	DirectionStraight = "s"
)

// EdgeFunction 边的功能分类
type EdgeFunction int

const (
	FunctionNormal EdgeFunction = iota
	FunctionInternal
	FunctionConnector
	FunctionWalkingArea
	FunctionCrossing
)

// ParseEdgeFunction 解析边的function属性，未知值视为normal
func ParseEdgeFunction(s string) EdgeFunction {
	switch s {
	case "internal":
		return FunctionInternal
	case "connector":
		return FunctionConnector
	case "walkingarea":
		return FunctionWalkingArea
	case "crossing":
		return FunctionCrossing
	default:
		return FunctionNormal
	}
}

func (f EdgeFunction) String() string {
	switch f {
	case FunctionInternal:
		return "internal"
	case FunctionConnector:
		return "connector"
	case FunctionWalkingArea:
		return "walkingarea"
	case FunctionCrossing:
		return "crossing"
	default:
		return "normal"
	}
}

// BaseStreet 获取边的基础街道ID（第一个分隔符之前的部分）
func BaseStreet(edgeID string) string {
	base, _, _ := strings.Cut(edgeID, BaseDelimiter)
	return base
}

// IsInternal 判断边ID是否为内部边
func IsInternal(edgeID string) bool {
	return strings.HasPrefix(edgeID, InternalPrefix)
}

// IsGreen 判断相位状态串中是否存在绿灯字符（g或G）
func IsGreen(state string) bool {
	return strings.ContainsAny(state, "gG")
}

// IsGreenAt 判断状态串指定位置是否为绿灯
func IsGreenAt(state string, index int) bool {
	if index < 0 || index >= len(state) {
		return false
	}
	return state[index] == 'g' || state[index] == 'G'
}

// Edge 边
type Edge struct {
	ID       string
	Base     string
	Lanes    []string
	Function EdgeFunction
}

// Internal 是否为内部边（ID以":"开头或function为internal）
func (e *Edge) Internal() bool {
	return e.Function == FunctionInternal || IsInternal(e.ID)
}

// Connection 车道级连接
// 说明：TL为空表示不受信号灯控制；LinkIndex<0表示无有效信号灯链接序号
type Connection struct {
	From      string
	FromLane  int
	To        string
	Dir       string
	TL        string
	LinkIndex int
}

// Straight 是否为直行连接
func (c Connection) Straight() bool {
	return strings.EqualFold(c.Dir, DirectionStraight)
}

// Phase 信号灯相位
type Phase struct {
	Duration float64
	State    string
}

// SignalProgram 信号灯程序
type SignalProgram struct {
	ID        string
	ProgramID string
	Phases    []Phase
}

// States 获取所有相位的状态串
func (p *SignalProgram) States() []string {
	return lo.Map(p.Phases, func(ph Phase, _ int) string { return ph.State })
}

// Network 静态路网
// 功能：存储拓扑分析所需的最小路网信息（边、车道、连接、信号灯程序），加载后只读
type Network struct {
	edges       map[string]*Edge
	edgeIDs     []string
	connections []Connection
	programs    map[string]*SignalProgram

	laneEdge  map[string]*Edge        // 车道ID -> 所属边
	upstream  map[string][]Connection // 下游边ID -> 驶入连接
	tlLinks   map[string][]Connection // 信号灯ID -> 受控连接（按LinkIndex排序）
	laneLinks map[string][]Connection // 车道ID -> 以该车道为起点的受控连接
}

// New 根据边、连接与信号灯程序构建路网
// 说明：重复的边ID与信号灯ID以先出现者为准；from或to为空的连接被忽略
func New(edges []Edge, connections []Connection, programs []SignalProgram) *Network {
	n := &Network{
		edges:       make(map[string]*Edge, len(edges)),
		edgeIDs:     make([]string, 0, len(edges)),
		connections: make([]Connection, 0, len(connections)),
		programs:    make(map[string]*SignalProgram, len(programs)),
		laneEdge:    make(map[string]*Edge),
		upstream:    make(map[string][]Connection),
		tlLinks:     make(map[string][]Connection),
		laneLinks:   make(map[string][]Connection),
	}
	for i := range edges {
		e := edges[i]
		if e.ID == "" {
			continue
		}
		if _, ok := n.edges[e.ID]; ok {
			log.Debugf("duplicated edge %s ignored", e.ID)
			continue
		}
		if e.Base == "" {
			e.Base = BaseStreet(e.ID)
		}
		if IsInternal(e.ID) {
			e.Function = FunctionInternal
		}
		n.edges[e.ID] = &e
		n.edgeIDs = append(n.edgeIDs, e.ID)
		for _, lane := range e.Lanes {
			n.laneEdge[lane] = &e
		}
	}
	for _, c := range connections {
		if c.From == "" || c.To == "" {
			continue
		}
		n.connections = append(n.connections, c)
		n.upstream[c.To] = append(n.upstream[c.To], c)
		if c.TL == "" {
			continue
		}
		n.tlLinks[c.TL] = append(n.tlLinks[c.TL], c)
		if from, ok := n.edges[c.From]; ok && c.FromLane >= 0 && c.FromLane < len(from.Lanes) {
			lane := from.Lanes[c.FromLane]
			n.laneLinks[lane] = append(n.laneLinks[lane], c)
		}
	}
	for _, links := range n.tlLinks {
		sort.SliceStable(links, func(i, j int) bool { return links[i].LinkIndex < links[j].LinkIndex })
	}
	for i := range programs {
		p := programs[i]
		if p.ID == "" {
			continue
		}
		if _, ok := n.programs[p.ID]; ok {
			log.Debugf("tlLogic %s program %s ignored, first program wins", p.ID, p.ProgramID)
			continue
		}
		n.programs[p.ID] = &p
	}
	return n
}

// Edge 获取边
func (n *Network) Edge(id string) (*Edge, bool) {
	e, ok := n.edges[id]
	return e, ok
}

// Edges 按加载顺序获取所有边
func (n *Network) Edges() []*Edge {
	return lo.Map(n.edgeIDs, func(id string, _ int) *Edge { return n.edges[id] })
}

// Connections 获取所有连接
func (n *Network) Connections() []Connection {
	return n.connections
}

// LaneEdge 获取车道所属边
func (n *Network) LaneEdge(laneID string) (*Edge, bool) {
	e, ok := n.laneEdge[laneID]
	return e, ok
}

// Upstream 获取驶入指定边的所有连接
func (n *Network) Upstream(edgeID string) []Connection {
	return n.upstream[edgeID]
}

// SignalLinks 获取信号灯的受控连接（按LinkIndex排序）
func (n *Network) SignalLinks(tlID string) []Connection {
	return n.tlLinks[tlID]
}

// LaneLinks 获取从车道出发的受控连接
func (n *Network) LaneLinks(laneID string) []Connection {
	return n.laneLinks[laneID]
}

// Program 获取信号灯程序
func (n *Network) Program(tlID string) (*SignalProgram, bool) {
	p, ok := n.programs[tlID]
	return p, ok
}

// SignalIDs 获取所有带程序的信号灯ID（已排序）
func (n *Network) SignalIDs() []string {
	ids := lo.Keys(n.programs)
	sort.Strings(ids)
	return ids
}
