// 随机数引擎，包装了golang.org/x/exp/rand，提供本地仿真需求生成所用的随机数方法
package randengine

import (
	"flag"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于在不改配置的情况下重复实验
)

// Engine 随机数引擎
// 功能：以固定种子生成可复现的随机序列（非线程安全）
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 参数：seed-随机数种子（实际种子为seed加上-rand.seed_offset）
// 返回：随机数引擎指针
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// PTrue 以指定概率返回true
// 说明：p<=0时恒为false，p>=1时恒为true
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

