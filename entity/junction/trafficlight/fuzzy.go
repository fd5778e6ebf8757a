package trafficlight

import (
	"errors"
	"fmt"

	"github.com/fuzzylts/fuzzylts-go/fuzzy"
)

// fuzzyController 模糊控制器
// 功能：绿灯相位期间汇总上游车道车辆数与到达率，推理推荐绿灯时长
type fuzzyController struct {
	engine *fuzzy.Engine
}

func newFuzzy(deps Deps) (Controller, error) {
	if deps.Engine == nil {
		return nil, errors.New("fuzzy controller requires an inference engine")
	}
	return &fuzzyController{engine: deps.Engine}, nil
}

func (c *fuzzyController) Kind() Kind     { return KindFuzzy }
func (c *fuzzyController) Adaptive() bool { return true }

func (c *fuzzyController) OnInit(signals []string) error {
	kb := c.engine.KnowledgeBase()
	log.Infof("fuzzy control on %d signals with %d rules, green in [%v, %v]",
		len(signals), len(kb.Rules), kb.Output.LMin, kb.Output.LMax)
	return nil
}

// Decide 推理绿灯时长
// 说明：非绿灯相位或相位没有车道映射时不做决策
func (c *fuzzyController) Decide(signalID string, sc *StepContext) (Decision, error) {
	if !sc.Green || !sc.Mapped {
		return Decision{}, nil
	}
	vehicles, rate, err := sc.Lanes.ObservePhase(sc, sc.PhaseLanes, sc.Now)
	if err != nil {
		return Decision{}, fmt.Errorf("signal %s: %w", signalID, err)
	}
	green := c.engine.Infer(vehicles, rate)
	log.Tracef("[%s] phase %d: veh=%d rate=%.3f -> green=%.2fs", signalID, sc.Phase, vehicles, rate, green)
	return Decision{Kind: DecisionDuration, Duration: green}, nil
}
