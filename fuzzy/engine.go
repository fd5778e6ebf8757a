package fuzzy

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Engine 模糊推理引擎
// 功能：基于只读知识库，将(车辆数, 到达率)映射为绿灯时长
// 说明：引擎本身不保存调用间状态，可在每个仿真步重复调用
type Engine struct {
	kb *KnowledgeBase

	universe    []float64            // 输出论域采样点
	consequents map[string][]float64 // 输出等级在采样点上的隶属度
}

// NewEngine 创建推理引擎
// 功能：在输出论域上预先采样各输出等级的隶属函数
func NewEngine(kb *KnowledgeBase) *Engine {
	out := kb.Output
	universe := floats.Span(make([]float64, kb.Resolution), out.LMin, out.LMax)
	consequents := make(map[string][]float64, len(out.Levels))
	for _, label := range out.Levels {
		mf, _ := out.Function(label)
		curve := make([]float64, len(universe))
		for i, x := range universe {
			curve[i] = mf.Degree(x)
		}
		consequents[label] = curve
	}
	return &Engine{
		kb:          kb,
		universe:    universe,
		consequents: consequents,
	}
}

// KnowledgeBase 获取引擎使用的知识库
func (e *Engine) KnowledgeBase() *KnowledgeBase {
	return e.kb
}

// Evaluate 执行一次完整的Mamdani推理
// 功能：模糊化、规则激活、聚合与重心法解模糊
// 参数：vehicles-车辆数，rate-到达率
// 返回：绿灯时长与错误（ErrInvalidInput或ErrNoRuleFired）
// 算法说明：
// 1. 输入截断到各自论域
// 2. 规则强度为两个前件隶属度的最小值（模糊与）
// 3. 各规则后件按强度截顶，取最大值聚合
// 4. 重心法解模糊并截断到输出论域
func (e *Engine) Evaluate(vehicles, rate float64) (float64, error) {
	if math.IsNaN(vehicles) || math.IsInf(vehicles, 0) || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("%w: vehicles=%v rate=%v", ErrInvalidInput, vehicles, rate)
	}
	vehicles = e.kb.Vehicle.Clip(vehicles)
	rate = e.kb.Arrival.Clip(rate)

	aggregated := make([]float64, len(e.universe))
	fired := false
	for _, r := range e.kb.Rules {
		mv, ok1 := e.kb.Vehicle.Membership(r.Vehicle, vehicles)
		ma, ok2 := e.kb.Arrival.Membership(r.Arrival, rate)
		curve, ok3 := e.consequents[r.Output]
		if !ok1 || !ok2 || !ok3 {
			return 0, fmt.Errorf("%w: incompatible rule %v", ErrInference, r)
		}
		strength := math.Min(mv, ma)
		if strength <= 0 {
			continue
		}
		fired = true
		for i, m := range curve {
			aggregated[i] = math.Max(aggregated[i], math.Min(strength, m))
		}
	}
	area := floats.Sum(aggregated)
	if !fired || area <= 0 {
		return 0, fmt.Errorf("%w: vehicles=%v rate=%v", ErrNoRuleFired, vehicles, rate)
	}
	value := floats.Dot(e.universe, aggregated) / area
	return e.kb.Output.Clip(value), nil
}

// Infer 计算推荐绿灯时长
// 功能：小队列时直接返回输出下界，否则执行推理；推理失败时记录日志并回退到输出下界
// 参数：vehicles-相位上游车道车辆总数，rate-平均到达率
// 返回：位于[output.lmin, output.lmax]内的绿灯时长（秒）
func (e *Engine) Infer(vehicles int, rate float64) float64 {
	lmin := e.kb.Output.LMin
	if float64(vehicles) <= e.kb.SmallQueueThreshold {
		return lmin
	}
	value, err := e.Evaluate(float64(vehicles), rate)
	if err != nil {
		reason := "inference"
		switch {
		case errors.Is(err, ErrNoRuleFired):
			reason = "no_rule_fired"
		case errors.Is(err, ErrInvalidInput):
			reason = "invalid_input"
		}
		fallbackTotal.WithLabelValues(reason).Inc()
		log.Warnf("inference fallback to %v: %v", lmin, err)
		return lmin
	}
	return value
}
