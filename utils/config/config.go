package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v2"
)

// gap-out默认参数（秒）
const (
	DefaultMinGreen       = 2.0
	DefaultNoVehicleLimit = 2.0
)

const (
	defaultController     = "fuzzy"
	defaultSimulationMode = "local"
	defaultInterval       = 1.0
	defaultDischargeRate  = 0.5
)

var validate = validator.New()

// RuntimeConfig 运行时配置
// 功能：存储控制运行时的配置信息
// 说明：将YAML配置转换为运行时可用的配置对象
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象
// 参数：config-原始配置对象（应已经过Load的默认值填充与校验）
// 返回：初始化的运行时配置指针
func NewRuntimeConfig(config Config) *RuntimeConfig {
	return &RuntimeConfig{
		All: config,
		C:   config.Control,
	}
}

// Load 解析YAML配置
// 功能：严格解析YAML（未知字段报错），填充默认值并进行结构校验
// 参数：data-YAML文本
// 返回：配置对象与错误
func Load(data []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return c, fmt.Errorf("config file load err: %w", err)
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// SetDefaults 填充未指定的配置项
func (c *Config) SetDefaults() {
	if c.Control.Step.Interval == 0 {
		c.Control.Step.Interval = defaultInterval
	}
	if c.Control.Controller == "" {
		c.Control.Controller = defaultController
	}
	if c.Control.GapOut.MinGreen == nil {
		c.Control.GapOut.MinGreen = lo.ToPtr(DefaultMinGreen)
	}
	if c.Control.GapOut.NoVehicleLimit == nil {
		c.Control.GapOut.NoVehicleLimit = lo.ToPtr(DefaultNoVehicleLimit)
	}
	if c.Simulation.Mode == "" {
		c.Simulation.Mode = defaultSimulationMode
	}
	if c.Simulation.Local.DischargeRate == 0 {
		c.Simulation.Local.DischargeRate = defaultDischargeRate
	}
	c.Fuzzy.SetDefaults()
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Input.Network.File == "" && (c.Input.URI == "" || c.Input.Network.DB == "" || c.Input.Network.Col == "") {
		return fmt.Errorf("invalid config: input.network needs a file or uri+db+col")
	}
	if c.Simulation.Mode == "bridge" && c.Simulation.Bridge.Address == "" {
		return fmt.Errorf("invalid config: simulation.bridge.address is required in bridge mode")
	}
	return nil
}
