package task

import (
	"fmt"
	"sync/atomic"

	"github.com/fuzzylts/fuzzylts-go/clock"
	"github.com/fuzzylts/fuzzylts-go/entity"
	"github.com/fuzzylts/fuzzylts-go/entity/junction"
	"github.com/fuzzylts/fuzzylts-go/entity/junction/trafficlight"
	"github.com/fuzzylts/fuzzylts-go/entity/lane"
	"github.com/fuzzylts/fuzzylts-go/entity/network"
	"github.com/fuzzylts/fuzzylts-go/fuzzy"
	"github.com/fuzzylts/fuzzylts-go/simulation/bridge"
	"github.com/fuzzylts/fuzzylts-go/simulation/local"
	"github.com/fuzzylts/fuzzylts-go/utils/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var _ entity.ITaskContext = (*Context)(nil)

// SimulationFactory 仿真协作方构造函数
type SimulationFactory func(n *network.Network, step config.ControlStep) (entity.ISimulation, error)

// NewSimulation 根据配置选择仿真协作方
// 说明：local模式使用独立时钟驱动的进程内仿真，bridge模式连接外部仿真代理
func NewSimulation(cfg config.Simulation) SimulationFactory {
	return func(n *network.Network, step config.ControlStep) (entity.ISimulation, error) {
		switch cfg.Mode {
		case "local":
			return local.New(n, clock.New(step), cfg.Local), nil
		case "bridge":
			return bridge.Dial(cfg.Bridge)
		default:
			return nil, fmt.Errorf("unknown simulation mode %q", cfg.Mode)
		}
	}
}

// Context 控制任务上下文
// 功能：包含一次控制运行的所有组件和状态，替代全局变量
// 说明：管理时钟、仿真协作方、车道与路口管理器、相位车道映射与运行时配置
type Context struct {
	// 运行ID
	runID uuid.UUID
	log   *logrus.Entry
	// 停止指令
	stopped atomic.Bool
	// 已关闭
	closed atomic.Bool

	// 时钟，按仿真报告的时间对齐
	clock *clock.Clock
	// 仿真协作方
	sim entity.ISimulation

	// Lane管理器
	laneManager *lane.LaneManager
	// Junction管理器
	junctionManager *junction.JunctionManager
	// 相位 -> 上游车道
	phaseLanes network.PhaseLaneMap

	// 运行时配置
	runtimeConfig *config.RuntimeConfig
}

// NewContext 创建新的控制任务上下文
// 功能：构建拓扑映射、模糊知识库与控制器，并创建仿真协作方与各管理器
// 参数：c-已校验的配置，n-静态路网，newSim-仿真协作方构造函数
// 返回：上下文与错误
// 算法说明：
// 1. 按topology参数构建相位-上游车道映射
// 2. 由fuzzy配置构建知识库与推理引擎
// 3. 从注册表按control.controller构造控制器
// 4. 创建仿真协作方、车道管理器与路口管理器
func NewContext(c config.Config, n *network.Network, newSim SimulationFactory) (*Context, error) {
	runID := uuid.New()
	ctx := &Context{
		runID:         runID,
		log:           log.WithField("run", runID.String()),
		clock:         clock.New(c.Control.Step),
		runtimeConfig: config.NewRuntimeConfig(c),
	}

	topo := c.Control.Topology
	ctx.phaseLanes = network.BuildPhaseLaneMap(n, topo.MaxDepth, topo.StopAtForeignSignal)
	ctx.log.Infof("phase-lane map: %d signals (max_depth=%d, stop_at_foreign_signal=%v)",
		len(ctx.phaseLanes), topo.MaxDepth, topo.StopAtForeignSignal)

	kb, err := fuzzy.NewKnowledgeBase(c.Fuzzy)
	if err != nil {
		return nil, err
	}
	ctx.log.Infof("knowledge base: %d rules over %s/%s -> %s",
		len(kb.Rules), kb.Vehicle.Name, kb.Arrival.Name, kb.Output.Name)
	controller, err := trafficlight.DefaultRegistry().NewByName(c.Control.Controller, trafficlight.Deps{
		Engine: fuzzy.NewEngine(kb),
		GapOut: c.Control.GapOut,
	})
	if err != nil {
		return nil, err
	}

	ctx.sim, err = newSim(n, c.Control.Step)
	if err != nil {
		return nil, err
	}
	ctx.laneManager = lane.NewManager()
	ctx.junctionManager = junction.NewManager(ctx, controller)
	return ctx, nil
}

// RunID 运行ID
func (ctx *Context) RunID() string {
	return ctx.runID.String()
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) Simulation() entity.ISimulation {
	return ctx.sim
}

func (ctx *Context) LaneManager() entity.ILaneManager {
	return ctx.laneManager
}

func (ctx *Context) JunctionManager() entity.IJunctionManager {
	return ctx.junctionManager
}

func (ctx *Context) PhaseLanes() network.PhaseLaneMap {
	return ctx.phaseLanes
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Junctions 路口管理器的具体类型，供统计读取
func (ctx *Context) Junctions() *junction.JunctionManager {
	return ctx.junctionManager
}

// Stop 请求控制循环在当前步结束后退出
func (ctx *Context) Stop() {
	ctx.stopped.Store(true)
}

// Close 结束仿真协作方，可重复调用
func (ctx *Context) Close() error {
	if ctx.closed.Swap(true) {
		return nil
	}
	return ctx.sim.Close()
}
