package local

import (
	"fmt"
	"sort"

	"github.com/fuzzylts/fuzzylts-go/clock"
	"github.com/fuzzylts/fuzzylts-go/entity"
	"github.com/fuzzylts/fuzzylts-go/entity/network"
	"github.com/fuzzylts/fuzzylts-go/utils/config"
	"github.com/fuzzylts/fuzzylts-go/utils/randengine"
	"github.com/samber/lo"
)

var _ entity.ISimulation = (*Simulation)(nil)

// laneRuntime 本地车道排队状态
type laneRuntime struct {
	id        string
	demand    bool                 // 是否生成到达车辆（可驶离的普通边）
	drainable bool                 // 程序中存在可驶离的相位
	vehicles  int                  // 排队车辆数
	credit    float64              // 累计的可驶离车辆数
	links     []network.Connection // 以该车道为起点的受控连接
}

// Simulation 进程内步进仿真
// 功能：以时钟驱动固定程序信号灯与简化排队车道，实现entity.ISimulation，用于独立运行与测试
// 说明：
// 1. 每步每条普通车道以arrival_rate*dt的概率到达一辆车（仅在结束时刻前）
// 2. 车道存在绿灯受控连接或不受信号灯控制时，以discharge_rate辆/秒驶离
// 3. 可驶离车道的车辆数+（未到结束时刻时）1即为待处理数，为0时仿真结束
// 4. 受控连接在任何相位都不是绿灯的车道永远无法驶离，不生成到达也不计入待处理数
type Simulation struct {
	clock *clock.Clock
	rng   *randengine.Engine

	arrivalRate   float64
	dischargeRate float64

	signals   map[string]*signalRuntime
	signalIDs []string
	lanes     map[string]*laneRuntime
	laneIDs   []string

	closed bool
}

// New 根据路网创建本地仿真
// 参数：n-路网，c-时钟，cfg-本地仿真配置
// 返回：本地仿真实例
func New(n *network.Network, c *clock.Clock, cfg config.LocalSimulation) *Simulation {
	s := &Simulation{
		clock:         c,
		rng:           randengine.New(cfg.Seed),
		arrivalRate:   cfg.ArrivalRate,
		dischargeRate: cfg.DischargeRate,
		signals:       make(map[string]*signalRuntime),
		lanes:         make(map[string]*laneRuntime),
	}
	for _, id := range n.SignalIDs() {
		program, _ := n.Program(id)
		if len(program.Phases) == 0 {
			log.Warnf("signal %s has an empty program, ignored", id)
			continue
		}
		s.signals[id] = newSignalRuntime(program)
		s.signalIDs = append(s.signalIDs, id)
	}
	stranded := 0
	for _, e := range n.Edges() {
		if e.Internal() {
			continue
		}
		for _, id := range e.Lanes {
			l := &laneRuntime{
				id:    id,
				links: n.LaneLinks(id),
			}
			l.drainable = s.drainable(l)
			l.demand = l.drainable && e.Function == network.FunctionNormal
			if !l.drainable {
				stranded++
			}
			s.lanes[id] = l
		}
	}
	s.laneIDs = lo.Keys(s.lanes)
	sort.Strings(s.laneIDs)
	if stranded > 0 {
		log.Warnf("%d lanes are never green in any phase and will not receive demand", stranded)
	}
	log.Infof("local simulation: %d signals, %d lanes, until %.0fs", len(s.signalIDs), len(s.laneIDs), c.EndTime())
	return s
}

func (s *Simulation) signal(id string) (*signalRuntime, error) {
	if s.closed {
		return nil, fmt.Errorf("%w: simulation closed", entity.ErrCollaborator)
	}
	sig, ok := s.signals[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownSignal, id)
	}
	return sig, nil
}

// Step 推进一个仿真步
func (s *Simulation) Step() error {
	if s.closed {
		return fmt.Errorf("%w: simulation closed", entity.ErrCollaborator)
	}
	dt := s.clock.DT
	for _, id := range s.signalIDs {
		s.signals[id].update(dt)
	}
	arriving := !s.clock.Done()
	for _, id := range s.laneIDs {
		l := s.lanes[id]
		if arriving && l.demand && s.rng.PTrue(s.arrivalRate*dt) {
			l.vehicles++
		}
		if !s.canDischarge(l) {
			l.credit = 0
			continue
		}
		l.credit += s.dischargeRate * dt
		out := int(l.credit)
		l.credit -= float64(out)
		l.vehicles = max(l.vehicles-out, 0)
	}
	s.clock.Tick()
	return nil
}

// drainable 车道不受控，或某个受控连接在程序的某个非零时长相位中为绿灯
func (s *Simulation) drainable(l *laneRuntime) bool {
	if len(l.links) == 0 {
		return true
	}
	return lo.SomeBy(l.links, func(c network.Connection) bool {
		sig, ok := s.signals[c.TL]
		return !ok || sig.everGreenAt(c.LinkIndex)
	})
}

// canDischarge 车道不受控或存在绿灯受控连接
func (s *Simulation) canDischarge(l *laneRuntime) bool {
	if len(l.links) == 0 {
		return true
	}
	for _, c := range l.links {
		sig, ok := s.signals[c.TL]
		if !ok || sig.greenAt(c.LinkIndex) {
			return true
		}
	}
	return false
}

// Time 当前仿真时间
func (s *Simulation) Time() (float64, error) {
	return s.clock.T, nil
}

// DeltaT 仿真步长
func (s *Simulation) DeltaT() (float64, error) {
	return s.clock.DT, nil
}

// MinExpectedNumber 待处理车辆数
func (s *Simulation) MinExpectedNumber() (int, error) {
	if s.closed {
		return 0, nil
	}
	total := lo.SumBy(s.laneIDs, func(id string) int {
		if l := s.lanes[id]; l.drainable {
			return l.vehicles
		}
		return 0
	})
	if !s.clock.Done() {
		total++
	}
	return total, nil
}

// SignalIDs 所有信号灯ID（已排序）
func (s *Simulation) SignalIDs() ([]string, error) {
	return append([]string(nil), s.signalIDs...), nil
}

// CurrentPhase 当前相位
func (s *Simulation) CurrentPhase(signalID string) (int32, error) {
	sig, err := s.signal(signalID)
	if err != nil {
		return 0, err
	}
	return sig.phase, nil
}

// PhaseState 当前相位状态串
func (s *Simulation) PhaseState(signalID string) (string, error) {
	sig, err := s.signal(signalID)
	if err != nil {
		return "", err
	}
	return sig.state(), nil
}

// PhaseCount 相位数
func (s *Simulation) PhaseCount(signalID string) (int32, error) {
	sig, err := s.signal(signalID)
	if err != nil {
		return 0, err
	}
	return int32(len(sig.program.Phases)), nil
}

// RemainingTime 当前相位剩余时长
func (s *Simulation) RemainingTime(signalID string) (float64, error) {
	sig, err := s.signal(signalID)
	if err != nil {
		return 0, err
	}
	return sig.remaining, nil
}

// LaneVehicleCount 车道车辆数
func (s *Simulation) LaneVehicleCount(laneID string) (int, error) {
	if s.closed {
		return 0, fmt.Errorf("%w: simulation closed", entity.ErrCollaborator)
	}
	l, ok := s.lanes[laneID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", entity.ErrUnknownLane, laneID)
	}
	return l.vehicles, nil
}

// SetLaneVehicleCount 直接设置车道车辆数
func (s *Simulation) SetLaneVehicleCount(laneID string, count int) error {
	l, ok := s.lanes[laneID]
	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrUnknownLane, laneID)
	}
	l.vehicles = max(count, 0)
	return nil
}

// SetPhase 立即切换相位
func (s *Simulation) SetPhase(signalID string, index int32) error {
	sig, err := s.signal(signalID)
	if err != nil {
		return err
	}
	if index < 0 || int(index) >= len(sig.program.Phases) {
		return fmt.Errorf("%w: signal %s has no phase %d", entity.ErrCollaborator, signalID, index)
	}
	sig.setPhase(index)
	return nil
}

// SetPhaseDuration 修改当前相位剩余时长
func (s *Simulation) SetPhaseDuration(signalID string, seconds float64) error {
	sig, err := s.signal(signalID)
	if err != nil {
		return err
	}
	if seconds < 0 {
		return fmt.Errorf("%w: negative duration %v for signal %s", entity.ErrCollaborator, seconds, signalID)
	}
	sig.setRemaining(seconds)
	return nil
}

// Close 结束仿真
func (s *Simulation) Close() error {
	s.closed = true
	return nil
}
