package local

import (
	"github.com/fuzzylts/fuzzylts-go/entity/network"
	"github.com/samber/lo"
)

// signalRuntime 本地固定程序信号灯
// 功能：按程序中的相位时长循环切换相位，支持外部强制切换相位与修改剩余时长
type signalRuntime struct {
	program *network.SignalProgram

	phase     int32   // 当前相位
	total     float64 // 当前相位总时长
	remaining float64 // 当前相位剩余时长
}

func newSignalRuntime(program *network.SignalProgram) *signalRuntime {
	s := &signalRuntime{program: program}
	s.setPhase(0)
	return s
}

// everGreenAt 程序中是否存在时长大于0且index处为绿灯的相位
func (s *signalRuntime) everGreenAt(index int) bool {
	return lo.SomeBy(s.program.Phases, func(ph network.Phase) bool {
		return ph.Duration > 0 && network.IsGreenAt(ph.State, index)
	})
}

// state 当前相位状态串
func (s *signalRuntime) state() string {
	return s.program.Phases[s.phase].State
}

// setPhase 立即切换到指定相位，剩余时长为该相位的程序时长
func (s *signalRuntime) setPhase(index int32) {
	s.phase = index
	s.total = s.program.Phases[index].Duration
	s.remaining = s.total
}

// setRemaining 修改当前相位剩余时长
func (s *signalRuntime) setRemaining(seconds float64) {
	s.remaining = seconds
	s.total = seconds
}

// update 推进dt秒
// 算法说明：剩余时间耗尽后依次切换到下一相位，跳过时长为0的相位（全部为0时停在下一相位）
func (s *signalRuntime) update(dt float64) {
	s.remaining -= dt
	if s.remaining > 0 {
		return
	}
	n := int32(len(s.program.Phases))
	s.remaining = 0
	for i := int32(0); i < n; i++ {
		s.phase = (s.phase + 1) % n
		s.remaining += s.program.Phases[s.phase].Duration
		if s.remaining > 0 {
			break
		}
	}
	s.total = s.remaining
}

// greenAt 受控连接序号是否为绿灯
func (s *signalRuntime) greenAt(linkIndex int) bool {
	return network.IsGreenAt(s.state(), linkIndex)
}
