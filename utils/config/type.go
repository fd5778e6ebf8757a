package config

import (
	"github.com/fuzzylts/fuzzylts-go/fuzzy"
	"github.com/samber/lo"
)

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义路网数据输入路径的配置结构
// 说明：File非空时优先从文件加载（支持.net.xml与.net.xml.gz），否则从MongoDB的db.col加载
type InputPath struct {
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
	File string `yaml:"file,omitempty"` // 文件路径（优先级高于MongoDB）
}

// GetDb 获取数据库名
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p InputPath) GetColl() string {
	return p.Col
}

// Input 指定控制器所有输入数据的配置项
type Input struct {
	URI     string    `yaml:"uri,omitempty"` // MongoDB连接字符串
	Network InputPath `yaml:"network"`       // 路网
}

// ControlStep 指定模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
// 说明：本地仿真器按此推进；外部仿真以自身时间为准，仅Interval用作期望步长
type ControlStep struct {
	Start    int32   `yaml:"start"`                    // 开始步数
	Total    int32   `yaml:"total" validate:"gte=0"`   // 总步数
	Interval float64 `yaml:"interval" validate:"gt=0"` // 每步的时间间隔
}

// Topology 相位-上游车道映射的拓扑分析参数
type Topology struct {
	MaxDepth            int  `yaml:"max_depth" validate:"gte=0"`       // 以街道变化次数计的最大回溯深度
	StopAtForeignSignal bool `yaml:"stop_at_foreign_signal,omitempty"` // 遇到其他信号灯控制的连接时停止回溯
}

// GapOut 间隙切断（gap-out）参数（秒）
// 说明：未配置（nil）时取默认值2，允许显式配置为0
type GapOut struct {
	MinGreen       *float64 `yaml:"min_green,omitempty" validate:"omitempty,gte=0"`        // 最小绿灯时间
	NoVehicleLimit *float64 `yaml:"no_vehicle_limit,omitempty" validate:"omitempty,gte=0"` // 连续无车时间阈值
}

// GetMinGreen 最小绿灯时间，未配置时取默认值
func (g GapOut) GetMinGreen() float64 {
	return lo.FromPtrOr(g.MinGreen, DefaultMinGreen)
}

// GetNoVehicleLimit 连续无车时间阈值，未配置时取默认值
func (g GapOut) GetNoVehicleLimit() float64 {
	return lo.FromPtrOr(g.NoVehicleLimit, DefaultNoVehicleLimit)
}

// Control 控制循环配置
// 功能：定义控制核心的运行参数
// 说明：Controller取值static|actuated|fuzzy|gap_fuzzy，Signals为空表示控制全部信号灯
type Control struct {
	Step       ControlStep `yaml:"step"`
	Controller string      `yaml:"controller"`
	Signals    []string    `yaml:"signals,omitempty"`
	Topology   Topology    `yaml:"topology"`
	GapOut     GapOut      `yaml:"gap_out"`
}

// LocalSimulation 内置仿真器参数
type LocalSimulation struct {
	Seed          uint64  `yaml:"seed"`
	ArrivalRate   float64 `yaml:"arrival_rate" validate:"gte=0,lte=1"` // 每条车道每秒到达概率
	DischargeRate float64 `yaml:"discharge_rate" validate:"gte=0"`     // 绿灯时每条车道每秒驶离车辆数
}

// BridgeSimulation 远程仿真桥接参数
type BridgeSimulation struct {
	Address string  `yaml:"address"`           // unix:///tmp/sumo_bridge.sock 或 tcp://host:port
	Timeout float64 `yaml:"timeout,omitempty"` // 单次请求超时（秒），0为不限
}

// Simulation 仿真协作方配置
type Simulation struct {
	Mode   string           `yaml:"mode" validate:"oneof=local bridge"`
	Local  LocalSimulation  `yaml:"local,omitempty"`
	Bridge BridgeSimulation `yaml:"bridge,omitempty"`
}

// Config YAML配置文件的根结构
// 功能：定义整个控制器的配置结构
// 说明：包含输入、控制、模糊知识库与仿真协作方配置
type Config struct {
	Input      Input        `yaml:"input"`      // 输入
	Control    Control      `yaml:"control"`    // 控制过程
	Fuzzy      fuzzy.Config `yaml:"fuzzy"`      // 模糊知识库
	Simulation Simulation   `yaml:"simulation"` // 仿真协作方
}
