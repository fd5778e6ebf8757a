package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrCollaborator 外部仿真协作方调用失败（查询、写回或推进仿真步），控制循环无法从中恢复
	ErrCollaborator = errors.New("simulation collaborator failure")
	// ErrUnknownSignal 信号灯ID在仿真中不存在
	ErrUnknownSignal = fmt.Errorf("%w: unknown signal", ErrCollaborator)
	// ErrUnknownLane 车道ID在仿真中不存在
	ErrUnknownLane = fmt.Errorf("%w: unknown lane", ErrCollaborator)
)

// 依赖倒置，表达控制核心对外部仿真引擎的能力需求

// ILaneCounter 车道车辆数读取接口
type ILaneCounter interface {
	LaneVehicleCount(laneID string) (int, error) // 车道上一步的车辆数
}

// ISimulationGetter 仿真状态读取接口
type ISimulationGetter interface {
	ILaneCounter

	Time() (float64, error)                      // 当前仿真时间（秒）
	DeltaT() (float64, error)                    // 本步的时间步长（秒），不假设为1.0
	MinExpectedNumber() (int, error)             // 仿真中仍待处理的车辆数，为0时仿真结束
	SignalIDs() ([]string, error)                // 所有信号灯ID
	CurrentPhase(signalID string) (int32, error) // 当前相位索引
	PhaseState(signalID string) (string, error)  // 当前相位状态串，每个字符对应一个受控连接
	PhaseCount(signalID string) (int32, error)   // 当前程序的相位数
}

// ISimulation 仿真引擎接口
type ISimulation interface {
	ISimulationGetter

	Step() error                                             // 推进一个仿真步（阻塞）
	SetPhase(signalID string, index int32) error             // 立即切换到指定相位
	SetPhaseDuration(signalID string, seconds float64) error // 修改当前相位的剩余时长
	Close() error                                            // 结束仿真连接
}
