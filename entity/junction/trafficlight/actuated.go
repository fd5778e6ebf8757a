package trafficlight

// greenRecord 观察者记录的当前相位
type greenRecord struct {
	phase int32
	green bool
	start float64
}

// actuatedController 观察者控制器
// 功能：不改变配时，只在绿灯相位结束时记录其持续时间
type actuatedController struct {
	current map[string]*greenRecord
}

func newActuated(Deps) (Controller, error) {
	return &actuatedController{current: make(map[string]*greenRecord)}, nil
}

func (c *actuatedController) Kind() Kind     { return KindActuated }
func (c *actuatedController) Adaptive() bool { return false }

func (c *actuatedController) OnInit(signals []string) error {
	log.Infof("actuated observer watching %d signals", len(signals))
	return nil
}

// Decide 记录相位切换
// 说明：首次观测的相位起始时间未知，不记录其持续时间
func (c *actuatedController) Decide(signalID string, sc *StepContext) (Decision, error) {
	r, ok := c.current[signalID]
	if !ok {
		c.current[signalID] = &greenRecord{phase: sc.Phase, green: sc.Green, start: -1}
		return Decision{}, nil
	}
	if r.phase == sc.Phase {
		return Decision{}, nil
	}
	if r.green && r.start >= 0 {
		dwell := sc.Now - r.start
		observedGreen.WithLabelValues(signalID).Observe(dwell)
		log.Debugf("[%s] green phase %d lasted %.1fs", signalID, r.phase, dwell)
	}
	*r = greenRecord{phase: sc.Phase, green: sc.Green, start: sc.Now}
	return Decision{}, nil
}

// Observed 最近一次观测到的相位与其开始时间（未知时为-1）
func (c *actuatedController) Observed(signalID string) (phase int32, start float64, ok bool) {
	r, ok := c.current[signalID]
	if !ok {
		return 0, 0, false
	}
	return r.phase, r.start, true
}
