package trafficlight

import (
	"fmt"

	"github.com/fuzzylts/fuzzylts-go/fuzzy"
	"github.com/fuzzylts/fuzzylts-go/utils/config"
)

// Deps 控制器构造依赖
type Deps struct {
	Engine *fuzzy.Engine // fuzzy与gap_fuzzy需要
	GapOut config.GapOut // gap_fuzzy需要
}

// Constructor 控制器构造函数
type Constructor func(Deps) (Controller, error)

// Registry 控制器族 -> 构造函数
type Registry map[Kind]Constructor

// DefaultRegistry 包含全部控制器族的注册表
func DefaultRegistry() Registry {
	return Registry{
		KindStatic:   newStatic,
		KindActuated: newActuated,
		KindFuzzy:    newFuzzy,
		KindGapFuzzy: newGapFuzzy,
	}
}

// New 构造指定族的控制器
func (r Registry) New(kind Kind, deps Deps) (Controller, error) {
	ctor, ok := r[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownController, kind)
	}
	return ctor(deps)
}

// NewByName 解析名称并构造控制器
func (r Registry) NewByName(name string, deps Deps) (Controller, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return r.New(kind, deps)
}
