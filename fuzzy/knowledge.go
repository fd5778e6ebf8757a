package fuzzy

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// Rule 模糊规则：(车辆数等级, 到达率等级) -> 绿灯时长等级
type Rule struct {
	Vehicle string
	Arrival string
	Output  string
}

func (r Rule) String() string {
	return fmt.Sprintf("(%s, %s) -> %s", r.Vehicle, r.Arrival, r.Output)
}

// KnowledgeBase 模糊知识库
// 功能：持有两个输入变量、一个输出变量与规则表，初始化后只读，可被多个推理引擎共享
type KnowledgeBase struct {
	Vehicle *Variable
	Arrival *Variable
	Output  *Variable
	Rules   []Rule

	SmallQueueThreshold float64
	Resolution          int
}

// NewKnowledgeBase 根据配置构建知识库
// 功能：构建语言变量、解析或生成规则并进行一致性检查
// 参数：c-已填充默认值的配置
// 返回：知识库与错误（均为ErrConfiguration）
// 说明：
// 1. 输入变量与输出变量必须存在，且不允许出现未被使用的变量
// 2. 规则中的标签必须属于对应变量
// 3. 至少需要一条规则
func NewKnowledgeBase(c Config) (*KnowledgeBase, error) {
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	vars, err := BuildVariables(c.Functions)
	if err != nil {
		return nil, err
	}
	names := []string{c.VehicleVariable, c.ArrivalVariable, c.OutputVariable}
	if len(lo.Uniq(names)) != len(names) {
		return nil, fmt.Errorf("%w: vehicle, arrival and output variables must differ: %v", ErrConfiguration, names)
	}
	for _, name := range names {
		if _, ok := vars[name]; !ok {
			return nil, fmt.Errorf("%w: variable %s is not defined", ErrConfiguration, name)
		}
	}
	if extra, _ := lo.Difference(lo.Keys(vars), names); len(extra) > 0 {
		return nil, fmt.Errorf("%w: unused variables %v", ErrConfiguration, extra)
	}
	kb := &KnowledgeBase{
		Vehicle:             vars[c.VehicleVariable],
		Arrival:             vars[c.ArrivalVariable],
		Output:              vars[c.OutputVariable],
		SmallQueueThreshold: *c.SmallQueueThreshold,
		Resolution:          c.Resolution,
	}
	if kb.Resolution < 2 {
		kb.Resolution = 2
	}
	switch {
	case len(c.Rules) > 0:
		kb.Rules, err = kb.parseRules(c.Rules)
		if err != nil {
			return nil, err
		}
	case c.AutoRules:
		kb.Rules = GenerateRules(kb.Vehicle, kb.Arrival, kb.Output)
	default:
		return nil, fmt.Errorf("%w: no rules defined and auto_rules disabled", ErrConfiguration)
	}
	log.Debugf("knowledge base ready with %d rules", len(kb.Rules))
	return kb, nil
}

func (kb *KnowledgeBase) parseRules(triplets [][]string) ([]Rule, error) {
	rules := make([]Rule, 0, len(triplets))
	for i, t := range triplets {
		if len(t) != 3 {
			return nil, fmt.Errorf("%w: rule %d must have 3 labels, got %d", ErrConfiguration, i, len(t))
		}
		r := Rule{Vehicle: t[0], Arrival: t[1], Output: t[2]}
		for _, check := range []struct {
			v     *Variable
			label string
		}{{kb.Vehicle, r.Vehicle}, {kb.Arrival, r.Arrival}, {kb.Output, r.Output}} {
			if !check.v.Has(check.label) {
				return nil, fmt.Errorf("%w: rule %d %v: unknown level %q of %s", ErrConfiguration, i, r, check.label, check.v.Name)
			}
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// GenerateRules 按等级序号自动生成完整规则表
// 算法说明：车辆等级i、到达率等级j对应输出等级floor((i+j)/(nv+na-2)*(ng-1))
func GenerateRules(vehicle, arrival, output *Variable) []Rule {
	nv, na, ng := len(vehicle.Levels), len(arrival.Levels), len(output.Levels)
	rules := make([]Rule, 0, nv*na)
	for i, vl := range vehicle.Levels {
		for j, al := range arrival.Levels {
			k := int(math.Floor(float64(i+j) / float64(nv+na-2) * float64(ng-1)))
			rules = append(rules, Rule{Vehicle: vl, Arrival: al, Output: output.Levels[k]})
		}
	}
	return rules
}
