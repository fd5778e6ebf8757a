package fuzzy

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration 知识库配置错误（启动时致命）
	ErrConfiguration = errors.New("fuzzy configuration error")
	// ErrInference 单次推理失败（由Infer内部恢复为输出下界）
	ErrInference = errors.New("fuzzy inference failure")

	ErrNoRuleFired  = fmt.Errorf("%w: no rule fired", ErrInference)
	ErrInvalidInput = fmt.Errorf("%w: invalid input", ErrInference)
)
