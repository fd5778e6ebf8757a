package fuzzy

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultVehicleVariable     = "vehicles"
	DefaultArrivalVariable     = "arrival"
	DefaultOutputVariable      = "green"
	DefaultSmallQueueThreshold = 3.0
	DefaultResolution          = 1000
)

var validate = validator.New()

// FunctionDef 语言变量定义
// 功能：描述一个语言变量的论域与有序等级
type FunctionDef struct {
	LMin   float64  `yaml:"lmin"`
	LMax   float64  `yaml:"lmax" validate:"gtfield=LMin"`
	Levels []string `yaml:"levels" validate:"min=2,unique,dive,required"`
}

// Config 模糊知识库配置
// 功能：定义语言变量、规则表与推理参数
// 说明：Rules为空且AutoRules为true时按等级序号自动生成规则；
// SmallQueueThreshold为nil时使用默认值，车辆数不超过该值时直接返回输出下界
type Config struct {
	Functions           map[string]FunctionDef `yaml:"functions" validate:"dive"`
	Rules               [][]string             `yaml:"rules,omitempty" validate:"dive,len=3,dive,required"`
	AutoRules           bool                   `yaml:"auto_rules,omitempty"`
	VehicleVariable     string                 `yaml:"vehicle_variable,omitempty"`
	ArrivalVariable     string                 `yaml:"arrival_variable,omitempty"`
	OutputVariable      string                 `yaml:"output_variable,omitempty"`
	SmallQueueThreshold *float64               `yaml:"small_queue_threshold,omitempty"`
	Resolution          int                    `yaml:"resolution,omitempty" validate:"gte=0"`
}

// SetDefaults 填充未指定的配置项
// 说明：未配置任何变量时使用内置的5x5等级知识库
func (c *Config) SetDefaults() {
	if c.VehicleVariable == "" {
		c.VehicleVariable = DefaultVehicleVariable
	}
	if c.ArrivalVariable == "" {
		c.ArrivalVariable = DefaultArrivalVariable
	}
	if c.OutputVariable == "" {
		c.OutputVariable = DefaultOutputVariable
	}
	if c.SmallQueueThreshold == nil {
		t := DefaultSmallQueueThreshold
		c.SmallQueueThreshold = &t
	}
	if c.Resolution == 0 {
		c.Resolution = DefaultResolution
	}
	if len(c.Functions) == 0 {
		c.Functions = DefaultFunctions(c.VehicleVariable, c.ArrivalVariable, c.OutputVariable)
		if len(c.Rules) == 0 && !c.AutoRules {
			c.Rules = DefaultRules()
		}
	}
}

// Validate 校验配置结构
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return nil
}

// DefaultFunctions 内置语言变量
func DefaultFunctions(vehicle, arrival, output string) map[string]FunctionDef {
	return map[string]FunctionDef{
		arrival: {
			LMin:   0,
			LMax:   1,
			Levels: []string{"very_slow", "slow", "medium", "moderate", "fast"},
		},
		vehicle: {
			LMin:   0,
			LMax:   30,
			Levels: []string{"very_few", "few", "normal", "moderate", "many"},
		},
		output: {
			LMin:   15,
			LMax:   50,
			Levels: []string{"very_short", "short", "normal", "long", "very_long"},
		},
	}
}

// DefaultRules 内置规则表（车辆数, 到达率, 绿灯时长）
func DefaultRules() [][]string {
	return [][]string{
		{"very_few", "very_slow", "very_short"},
		{"very_few", "slow", "very_short"},
		{"very_few", "medium", "very_short"},
		{"very_few", "moderate", "very_short"},
		{"very_few", "fast", "short"},

		{"few", "very_slow", "very_short"},
		{"few", "slow", "very_short"},
		{"few", "medium", "short"},
		{"few", "moderate", "short"},
		{"few", "fast", "short"},

		{"normal", "very_slow", "short"},
		{"normal", "slow", "short"},
		{"normal", "medium", "normal"},
		{"normal", "moderate", "normal"},
		{"normal", "fast", "normal"},

		{"moderate", "very_slow", "normal"},
		{"moderate", "slow", "normal"},
		{"moderate", "medium", "normal"},
		{"moderate", "moderate", "normal"},
		{"moderate", "fast", "normal"},

		{"many", "very_slow", "normal"},
		{"many", "slow", "normal"},
		{"many", "medium", "normal"},
		{"many", "moderate", "long"},
		{"many", "fast", "long"},
	}
}
