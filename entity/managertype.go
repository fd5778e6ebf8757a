package entity

// Manager依赖倒置

// entity/lane/manager.go的依赖倒置
type ILaneManager interface {
	// 记录车道在now时刻的车辆数，返回自上次观测以来的到达率（veh/s，不小于0）
	Observe(laneID string, now float64, count int) float64
	// 读取并记录一组车道的车辆数，返回车辆总数与正到达率的均值
	ObservePhase(counter ILaneCounter, lanes []string, now float64) (vehicles int, rate float64, err error)
	// 已观测过的车道数
	Len() int
}

// entity/junction/manager.go的依赖倒置
type IJunctionManager interface {
	Init() error   // 初始化，记录各信号灯初始相位
	Update() error // 每个仿真步执行一次控制决策

	// 受控信号灯ID（有序）
	Signals() []string
}
