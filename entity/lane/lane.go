package lane

import "math"

// minTimeDelta 到达率差分的最小时间分母（秒）
const minTimeDelta = 1e-3

// Lane 车道观测状态
// 功能：记录车道上一次被观测的时间与车辆数，用于有限差分估计到达率
// 说明：首次被引用时创建，运行期间不重置
type Lane struct {
	id string

	lastTime  float64 // 上次观测时间
	lastCount int     // 上次观测车辆数
}

// newLane 以首次观测值创建车道状态
func newLane(id string, now float64, count int) *Lane {
	return &Lane{
		id:        id,
		lastTime:  now,
		lastCount: count,
	}
}

// ID 车道ID
func (l *Lane) ID() string {
	return l.id
}

// LastObservation 上次观测的时间与车辆数
func (l *Lane) LastObservation() (float64, int) {
	return l.lastTime, l.lastCount
}

// observe 记录新观测并返回到达率
// 算法说明：rate=(count-lastCount)/max(now-lastTime, minTimeDelta)，小于0时取0
func (l *Lane) observe(now float64, count int) float64 {
	rate := float64(count-l.lastCount) / math.Max(now-l.lastTime, minTimeDelta)
	l.lastTime = now
	l.lastCount = count
	return math.Max(rate, 0)
}
