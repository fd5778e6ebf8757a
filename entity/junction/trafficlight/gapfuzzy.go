package trafficlight

import "fmt"

// gapFuzzyController gap-out + 模糊控制器
// 功能：先由GapOutSupervisor判断是否提前结束绿灯，未触发时委托模糊控制器
type gapFuzzyController struct {
	supervisor *GapOutSupervisor
	fuzzy      *fuzzyController
}

func newGapFuzzy(deps Deps) (Controller, error) {
	f, err := newFuzzy(deps)
	if err != nil {
		return nil, err
	}
	return &gapFuzzyController{
		supervisor: NewGapOutSupervisor(deps.GapOut),
		fuzzy:      f.(*fuzzyController),
	}, nil
}

func (c *gapFuzzyController) Kind() Kind     { return KindGapFuzzy }
func (c *gapFuzzyController) Adaptive() bool { return true }

func (c *gapFuzzyController) OnInit(signals []string) error {
	log.Infof("gap-out min_green=%vs no_vehicle_limit=%vs", c.supervisor.MinGreen, c.supervisor.NoVehicleLimit)
	return c.fuzzy.OnInit(signals)
}

// Decide gap-out优先，其次模糊推理
func (c *gapFuzzyController) Decide(signalID string, sc *StepContext) (Decision, error) {
	vehicles := 0
	if sc.Green && sc.Mapped {
		n, err := sc.Vehicles()
		if err != nil {
			return Decision{}, fmt.Errorf("signal %s: %w", signalID, err)
		}
		vehicles = n
	}
	if !c.supervisor.Observe(sc.Timers, sc.Phase, sc.Green, sc.Mapped, vehicles, sc.DT) {
		return c.fuzzy.Decide(signalID, sc)
	}
	count, err := sc.Sim.PhaseCount(signalID)
	if err != nil {
		return Decision{}, err
	}
	if count <= 0 {
		return Decision{}, fmt.Errorf("signal %s reports %d phases", signalID, count)
	}
	next := (sc.Phase + 1) % count
	gapOutTotal.WithLabelValues(signalID).Inc()
	log.Debugf("[%s] gap-out: %d -> %d", signalID, sc.Phase, next)
	return Decision{Kind: DecisionAdvance, NextPhase: next}, nil
}
