package lane

import (
	"fmt"

	"github.com/fuzzylts/fuzzylts-go/entity"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// LaneManager 车道观测状态管理器
// 功能：按需创建并维护每条车道的观测状态，估计到达率
// 说明：状态归属于单次运行的控制循环，不在协程间共享
type LaneManager struct {
	data map[string]*Lane
}

// NewManager 创建车道管理器
func NewManager() *LaneManager {
	return &LaneManager{
		data: make(map[string]*Lane),
	}
}

// Get 获取车道观测状态
func (m *LaneManager) Get(id string) (*Lane, bool) {
	l, ok := m.data[id]
	return l, ok
}

// Len 已观测过的车道数
func (m *LaneManager) Len() int {
	return len(m.data)
}

// Observe 记录车道在now时刻的车辆数
// 返回：自上次观测以来的到达率（veh/s），首次观测为0
func (m *LaneManager) Observe(laneID string, now float64, count int) float64 {
	l, ok := m.data[laneID]
	if !ok {
		m.data[laneID] = newLane(laneID, now, count)
		return 0
	}
	return l.observe(now, count)
}

// ObservePhase 观测相位对应的一组车道
// 功能：读取每条车道的车辆数并更新观测状态
// 参数：counter-车辆数读取接口，lanes-车道ID，now-当前时间
// 返回：车辆总数、严格为正的车道到达率的均值（没有时为0）与错误
func (m *LaneManager) ObservePhase(counter entity.ILaneCounter, lanes []string, now float64) (vehicles int, rate float64, err error) {
	rates := make([]float64, 0, len(lanes))
	for _, id := range lanes {
		count, err := counter.LaneVehicleCount(id)
		if err != nil {
			return 0, 0, fmt.Errorf("lane %s: %w", id, err)
		}
		vehicles += count
		rates = append(rates, m.Observe(id, now, count))
	}
	positive := lo.Filter(rates, func(r float64, _ int) bool { return r > 0 })
	if len(positive) == 0 {
		return vehicles, 0, nil
	}
	rate = stat.Mean(positive, nil)
	log.Tracef("observed %d lanes: vehicles=%d rate=%.3f", len(lanes), vehicles, rate)
	return vehicles, rate, nil
}
