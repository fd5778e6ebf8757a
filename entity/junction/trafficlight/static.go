package trafficlight

// staticController 固定配时控制器
// 功能：保持仿真原生配时，不做任何写回
type staticController struct{}

func newStatic(Deps) (Controller, error) {
	return &staticController{}, nil
}

func (c *staticController) Kind() Kind     { return KindStatic }
func (c *staticController) Adaptive() bool { return false }

func (c *staticController) OnInit(signals []string) error {
	log.Infof("static control keeps native timing of %d signals", len(signals))
	return nil
}

func (c *staticController) Decide(string, *StepContext) (Decision, error) {
	return Decision{}, nil
}
