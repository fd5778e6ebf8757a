package task

import (
	"flag"
	"fmt"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// Init 初始化
// 功能：读取仿真当前时间对齐时钟，并初始化受控信号灯
func (ctx *Context) Init() error {
	now, err := ctx.sim.Time()
	if err != nil {
		return fmt.Errorf("read time: %w", err)
	}
	ctx.clock.T = now
	if err := ctx.junctionManager.Init(); err != nil {
		return err
	}
	ctx.log.Infof("init complete at %s", ctx.clock)
	return nil
}

// step 单步：推进仿真、对齐时钟、执行全部信号灯控制
func (ctx *Context) step() error {
	if err := ctx.sim.Step(); err != nil {
		return fmt.Errorf("step: %w", err)
	}
	now, err := ctx.sim.Time()
	if err != nil {
		return fmt.Errorf("read time: %w", err)
	}
	ctx.clock.Sync(now)
	return ctx.junctionManager.Update()
}

// Run 运行
// 功能：在仿真仍有待处理车辆时循环推进并控制
// 返回：首个协作方错误，正常结束或收到Stop时返回nil
// 算法说明：
// 1. Init：对齐时钟、确定受控信号灯并记录初始相位
// 2. 循环：MinExpectedNumber>0时执行一步（Step、Sync、Update）
// 3. 每heartbeat_interval步输出一次心跳日志
func (ctx *Context) Run() error {
	if err := ctx.Init(); err != nil {
		return err
	}
	interval := int32(max(*heartBeatInterval, 1))
	for !ctx.stopped.Load() {
		pending, err := ctx.sim.MinExpectedNumber()
		if err != nil {
			return fmt.Errorf("read pending vehicles: %w", err)
		}
		if pending <= 0 {
			break
		}
		if err := ctx.step(); err != nil {
			return err
		}
		if ctx.clock.InternalStep%interval == 0 {
			hour, minute, second := ctx.clock.GetHourMinuteSecond()
			ctx.log.Infof(
				"STEP: %d(%d:%d:%.2f) pending=%d",
				ctx.clock.InternalStep,
				hour, minute, second, pending,
			)
		}
	}
	ctx.log.Infof("control loop complete after %d steps at %s", ctx.clock.InternalStep-ctx.clock.START_STEP, ctx.clock)
	return nil
}
