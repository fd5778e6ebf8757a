package trafficlight

import "github.com/fuzzylts/fuzzylts-go/utils/config"

// SignalTimerState 单个信号灯的gap-out计时器
// 说明：状态为NOT_GREEN时两个计时器均为0；GREEN_ACCUMULATING时随仿真步累加
type SignalTimerState struct {
	GreenElapsed float64 // 当前绿灯相位已持续时间
	EmptyElapsed float64 // 连续无车时间

	accumulating bool  // 是否处于GREEN_ACCUMULATING
	phase        int32 // 最近一次观测到的绿灯相位
}

// Accumulating 是否处于绿灯累计状态
func (s *SignalTimerState) Accumulating() bool {
	return s.accumulating
}

// Phase 最近一次观测到的绿灯相位
func (s *SignalTimerState) Phase() int32 {
	return s.phase
}

// Reset 清零计时器并回到NOT_GREEN
func (s *SignalTimerState) Reset() {
	*s = SignalTimerState{}
}

// GapOutSupervisor 间隙切断监督器
// 功能：绿灯至少持续MinGreen秒且相位上游车道连续NoVehicleLimit秒无车时，提前结束绿灯
type GapOutSupervisor struct {
	MinGreen       float64
	NoVehicleLimit float64
}

// NewGapOutSupervisor 根据配置创建监督器
func NewGapOutSupervisor(c config.GapOut) *GapOutSupervisor {
	return &GapOutSupervisor{
		MinGreen:       c.GetMinGreen(),
		NoVehicleLimit: c.GetNoVehicleLimit(),
	}
}

// Observe 用一个仿真步的观测更新计时器
// 参数：s-信号灯计时器，phase-当前相位，green-是否绿灯，mapped-相位是否存在车道映射，vehicles-上游车辆总数，dt-本步时长
// 返回：是否触发gap-out（触发后计时器已清零）
// 算法说明：
// 1. 非绿灯或无车道映射：清零，回到NOT_GREEN
// 2. 从非绿灯进入绿灯的首次观测：计时器从0开始，本步不累加
// 3. 此后每步green+=dt，无车时empty+=dt，有车时empty清零
// 说明：绿灯相位直接切换到另一个绿灯相位时计时器继续累计
// 4. green>=MinGreen且empty>=NoVehicleLimit时触发
func (g *GapOutSupervisor) Observe(s *SignalTimerState, phase int32, green, mapped bool, vehicles int, dt float64) bool {
	if !green || !mapped {
		s.Reset()
		return false
	}
	if !s.accumulating {
		*s = SignalTimerState{accumulating: true, phase: phase}
	} else {
		s.phase = phase
		s.GreenElapsed += dt
		if vehicles == 0 {
			s.EmptyElapsed += dt
		} else {
			s.EmptyElapsed = 0
		}
	}
	if s.GreenElapsed >= g.MinGreen && s.EmptyElapsed >= g.NoVehicleLimit {
		s.Reset()
		return true
	}
	return false
}
