package junction

import (
	"fmt"

	"github.com/fuzzylts/fuzzylts-go/entity"
	"github.com/fuzzylts/fuzzylts-go/entity/junction/trafficlight"
	"github.com/fuzzylts/fuzzylts-go/entity/network"
)

// Junction 单个受控信号灯
// 功能：保存信号灯的控制状态（上一步相位、gap-out计时器），每步调用控制器并写回决策
type Junction struct {
	ctx entity.ITaskContext

	id         string
	controller trafficlight.Controller

	lastPhase int32                         // 上一步观测到的相位
	timers    trafficlight.SignalTimerState // gap-out计时器
	applied   int                           // 已写回的绿灯时长次数
}

// newJunction 创建Junction
func newJunction(ctx entity.ITaskContext, id string, controller trafficlight.Controller) *Junction {
	return &Junction{
		ctx:        ctx,
		id:         id,
		controller: controller,
	}
}

// ID 信号灯ID
func (j *Junction) ID() string {
	return j.id
}

// LastPhase 上一步观测到的相位
func (j *Junction) LastPhase() int32 {
	return j.lastPhase
}

// Timers gap-out计时器
func (j *Junction) Timers() trafficlight.SignalTimerState {
	return j.timers
}

// Applied 已写回的绿灯时长次数
func (j *Junction) Applied() int {
	return j.applied
}

// init 记录初始相位，运行开始时处于的相位不视为相位进入
func (j *Junction) init() error {
	phase, err := j.ctx.Simulation().CurrentPhase(j.id)
	if err != nil {
		return fmt.Errorf("signal %s: %w", j.id, err)
	}
	j.lastPhase = phase
	return nil
}

// update 执行一个仿真步的控制
// 参数：now-当前仿真时间，dt-本步时长
// 算法说明：
// 1. 读取当前相位与状态串，状态串含g/G即为绿灯
// 2. 相位变化且新相位为绿灯即为绿灯相位进入
// 3. 调用控制器决策：
//   - 切换相位：立即写回，本步不再设置时长
//   - 设置时长：仅自适应控制器且在绿灯相位进入时写回
//
// 4. 记录本步相位（切换前的相位），供下一步比较
func (j *Junction) update(now, dt float64) error {
	sim := j.ctx.Simulation()
	phase, err := sim.CurrentPhase(j.id)
	if err != nil {
		return fmt.Errorf("signal %s: %w", j.id, err)
	}
	state, err := sim.PhaseState(j.id)
	if err != nil {
		return fmt.Errorf("signal %s: %w", j.id, err)
	}
	green := network.IsGreen(state)
	lanes, mapped := j.ctx.PhaseLanes().Lanes(j.id, phase)
	sc := &trafficlight.StepContext{
		Sim:        sim,
		Lanes:      j.ctx.LaneManager(),
		Now:        now,
		DT:         dt,
		Phase:      phase,
		State:      state,
		Green:      green,
		Entry:      green && phase != j.lastPhase,
		PhaseLanes: lanes,
		Mapped:     mapped,
		Timers:     &j.timers,
	}
	decision, err := j.controller.Decide(j.id, sc)
	if err != nil {
		return err
	}
	switch decision.Kind {
	case trafficlight.DecisionAdvance:
		if err := sim.SetPhase(j.id, decision.NextPhase); err != nil {
			return fmt.Errorf("signal %s set phase %d: %w", j.id, decision.NextPhase, err)
		}
	case trafficlight.DecisionDuration:
		if j.controller.Adaptive() && sc.Entry {
			if err := sim.SetPhaseDuration(j.id, decision.Duration); err != nil {
				return fmt.Errorf("signal %s set duration: %w", j.id, err)
			}
			j.applied++
			phaseDurationApplied.WithLabelValues(j.id).Inc()
			greenDuration.WithLabelValues(string(j.controller.Kind())).Observe(decision.Duration)
			log.Debugf("[%s] phase %d entered at %.1fs, green set to %.2fs", j.id, phase, now, decision.Duration)
		}
	}
	j.lastPhase = phase
	return nil
}
