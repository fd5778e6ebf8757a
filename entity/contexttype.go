package entity

import (
	"github.com/fuzzylts/fuzzylts-go/clock"
	"github.com/fuzzylts/fuzzylts-go/entity/network"
	"github.com/fuzzylts/fuzzylts-go/utils/config"
)

// ITaskContext 一次控制运行的上下文，取代全局变量
type ITaskContext interface {
	Clock() *clock.Clock
	Simulation() ISimulation
	LaneManager() ILaneManager
	JunctionManager() IJunctionManager
	PhaseLanes() network.PhaseLaneMap
	RuntimeConfig() *config.RuntimeConfig
}
