package junction

import (
	"fmt"
	"sort"

	"github.com/fuzzylts/fuzzylts-go/entity"
	"github.com/fuzzylts/fuzzylts-go/entity/junction/trafficlight"
	"github.com/fuzzylts/fuzzylts-go/utils"
	"github.com/samber/lo"
)

// JunctionManager 信号灯控制循环
// 功能：按信号灯ID顺序逐个执行单步控制，保证相同输入与随机种子下决策可复现
type JunctionManager struct {
	ctx        entity.ITaskContext
	controller trafficlight.Controller

	data      map[string]*Junction
	junctions []*Junction
}

// NewManager 创建Junction管理器实例
// 参数：ctx-任务上下文，controller-所有信号灯共用的控制器
// 返回：新创建的Junction管理器实例
func NewManager(ctx entity.ITaskContext, controller trafficlight.Controller) *JunctionManager {
	return &JunctionManager{
		ctx:        ctx,
		controller: controller,
		data:       make(map[string]*Junction),
		junctions:  make([]*Junction, 0),
	}
}

// Init 初始化受控信号灯
// 功能：确定受控信号灯集合，调用控制器OnInit，并记录各信号灯初始相位
// 返回：配置了仿真中不存在的信号灯时返回ErrUnknownSignal
// 说明：未配置control.signals时控制车道映射与仿真中的全部信号灯
func (m *JunctionManager) Init() error {
	simIDs, err := m.ctx.Simulation().SignalIDs()
	if err != nil {
		return fmt.Errorf("list signals: %w", err)
	}
	all := lo.Uniq(append(m.ctx.PhaseLanes().Signals(), simIDs...))
	sort.Strings(all)
	known := lo.SliceToMap(simIDs, func(id string) (string, string) { return id, id })
	ids, failed := utils.Find(known, all, m.ctx.RuntimeConfig().C.Signals)
	if len(failed) > 0 {
		return fmt.Errorf("%w: %v", entity.ErrUnknownSignal, failed)
	}
	ids = lo.Uniq(ids)
	sort.Strings(ids)

	m.junctions = lo.Map(ids, func(id string, _ int) *Junction {
		return newJunction(m.ctx, id, m.controller)
	})
	m.data = lo.SliceToMap(m.junctions, func(j *Junction) (string, *Junction) {
		return j.id, j
	})
	if err := m.controller.OnInit(ids); err != nil {
		return err
	}
	for _, j := range m.junctions {
		if err := j.init(); err != nil {
			return err
		}
	}
	log.Infof("controlling %d signals with %s controller", len(m.junctions), m.controller.Kind())
	return nil
}

// Get 根据ID获取Junction
func (m *JunctionManager) Get(id string) (*Junction, bool) {
	j, ok := m.data[id]
	return j, ok
}

// Signals 受控信号灯ID（有序）
func (m *JunctionManager) Signals() []string {
	return lo.Map(m.junctions, func(j *Junction, _ int) string { return j.id })
}

// Update 执行一个仿真步的控制
// 说明：单线程顺序执行，遇到第一个协作方错误即返回
func (m *JunctionManager) Update() error {
	sim := m.ctx.Simulation()
	now, err := sim.Time()
	if err != nil {
		return fmt.Errorf("read time: %w", err)
	}
	dt, err := sim.DeltaT()
	if err != nil {
		return fmt.Errorf("read delta t: %w", err)
	}
	for _, j := range m.junctions {
		if err := j.update(now, dt); err != nil {
			return err
		}
	}
	return nil
}
