package trafficlight

import (
	"errors"
	"fmt"

	"github.com/fuzzylts/fuzzylts-go/entity"
)

var (
	ErrUnknownController = errors.New("unknown controller kind")
)

// Kind 控制器族
type Kind string

const (
	KindStatic   Kind = "static"    // 固定配时，不干预仿真的原生配时
	KindActuated Kind = "actuated"  // 观察者，只记录绿灯持续时间
	KindFuzzy    Kind = "fuzzy"     // 模糊推理绿灯时长
	KindGapFuzzy Kind = "gap_fuzzy" // gap-out + 模糊推理
)

// Kinds 所有控制器族
var Kinds = []Kind{KindStatic, KindActuated, KindFuzzy, KindGapFuzzy}

// ParseKind 解析控制器族名称
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownController, s)
}

// DecisionKind 决策类型
type DecisionKind int

const (
	DecisionNone     DecisionKind = iota // 不做任何写回
	DecisionDuration                     // 设置当前相位时长（仅在绿灯相位进入时生效）
	DecisionAdvance                      // 立即切换到下一相位
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionDuration:
		return "duration"
	case DecisionAdvance:
		return "advance"
	default:
		return "none"
	}
}

// Decision 控制器对一个信号灯在一个仿真步的决策
type Decision struct {
	Kind      DecisionKind
	Duration  float64 // DecisionDuration时的绿灯时长（秒）
	NextPhase int32   // DecisionAdvance时的目标相位
}

// StepContext 单个信号灯在单个仿真步的输入
// 功能：汇总控制器决策所需的实时状态，同一步内车道车辆数只向仿真查询一次
type StepContext struct {
	Sim   entity.ISimulationGetter
	Lanes entity.ILaneManager

	Now   float64 // 当前仿真时间
	DT    float64 // 本步时长
	Phase int32   // 当前相位
	State string  // 当前相位状态串
	Green bool    // 当前相位是否包含绿灯
	Entry bool    // 本步是否为绿灯相位进入

	PhaseLanes []string          // 当前相位的上游车道
	Mapped     bool              // 当前相位是否存在车道映射
	Timers     *SignalTimerState // 该信号灯的gap-out计时器

	counts map[string]int
}

// LaneVehicleCount 读取车道车辆数（同一步内缓存）
func (sc *StepContext) LaneVehicleCount(laneID string) (int, error) {
	if n, ok := sc.counts[laneID]; ok {
		return n, nil
	}
	n, err := sc.Sim.LaneVehicleCount(laneID)
	if err != nil {
		return 0, err
	}
	if sc.counts == nil {
		sc.counts = make(map[string]int)
	}
	sc.counts[laneID] = n
	return n, nil
}

// Vehicles 当前相位上游车道的车辆总数
func (sc *StepContext) Vehicles() (int, error) {
	total := 0
	for _, id := range sc.PhaseLanes {
		n, err := sc.LaneVehicleCount(id)
		if err != nil {
			return 0, fmt.Errorf("lane %s: %w", id, err)
		}
		total += n
	}
	return total, nil
}

// Controller 信号灯控制器
// 说明：每个仿真步对每个受控信号灯调用一次Decide；非自适应控制器的时长决策不会写回仿真
type Controller interface {
	Kind() Kind
	Adaptive() bool                                            // 是否需要写回绿灯时长
	OnInit(signals []string) error                             // 控制开始前调用一次
	Decide(signalID string, sc *StepContext) (Decision, error) // 单步决策
}
