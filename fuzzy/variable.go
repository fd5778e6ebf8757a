package fuzzy

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// Trapezoid 梯形隶属函数，B==C时退化为三角形
type Trapezoid struct {
	A, B, C, D float64
}

// Degree 计算x的隶属度
// 说明：支撑集[A,D]之外为0；A==B或C==D的肩部在端点处取1
func (t Trapezoid) Degree(x float64) float64 {
	switch {
	case x < t.A || x > t.D:
		return 0
	case x >= t.B && x <= t.C:
		return 1
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.D - x) / (t.D - t.C)
	}
}

// Variable 语言变量
// 功能：存储论域、有序等级与每个等级的隶属函数，构建后不可变
type Variable struct {
	Name   string
	LMin   float64
	LMax   float64
	Levels []string

	mfs   []Trapezoid
	index map[string]int
}

// NewVariable 构建语言变量
// 功能：在论域上均匀布置隶属函数
// 参数：name-变量名，def-变量定义
// 返回：语言变量与错误
// 算法说明：
// 1. step=(lmax-lmin)/(n-1)
// 2. 首等级为左肩梯形(lmin,lmin,lmin+step,lmin+2step)
// 3. 末等级为右肩梯形(lmax-2step,lmax-step,lmax,lmax)
// 4. 中间等级i为三角形(lmin+(i-1)step,lmin+i*step,lmin+(i+1)step)
func NewVariable(name string, def FunctionDef) (*Variable, error) {
	n := len(def.Levels)
	if n < 2 {
		return nil, fmt.Errorf("%w: variable %s needs at least 2 levels, got %d", ErrConfiguration, name, n)
	}
	if math.IsNaN(def.LMin) || math.IsNaN(def.LMax) || def.LMax <= def.LMin {
		return nil, fmt.Errorf("%w: variable %s has invalid universe [%v, %v]", ErrConfiguration, name, def.LMin, def.LMax)
	}
	if dup := lo.FindDuplicates(def.Levels); len(dup) > 0 {
		return nil, fmt.Errorf("%w: variable %s has duplicated levels %v", ErrConfiguration, name, dup)
	}
	v := &Variable{
		Name:   name,
		LMin:   def.LMin,
		LMax:   def.LMax,
		Levels: append([]string(nil), def.Levels...),
		mfs:    make([]Trapezoid, n),
		index:  make(map[string]int, n),
	}
	step := (def.LMax - def.LMin) / float64(n-1)
	for i, label := range def.Levels {
		switch i {
		case 0:
			v.mfs[i] = Trapezoid{def.LMin, def.LMin, def.LMin + step, def.LMin + 2*step}
		case n - 1:
			v.mfs[i] = Trapezoid{def.LMax - 2*step, def.LMax - step, def.LMax, def.LMax}
		default:
			peak := def.LMin + float64(i)*step
			v.mfs[i] = Trapezoid{peak - step, peak, peak, peak + step}
		}
		v.index[label] = i
	}
	return v, nil
}

// Has 判断等级是否存在
func (v *Variable) Has(label string) bool {
	_, ok := v.index[label]
	return ok
}

// Membership 计算x对指定等级的隶属度
// 返回：隶属度，等级不存在时ok为false
func (v *Variable) Membership(label string, x float64) (float64, bool) {
	i, ok := v.index[label]
	if !ok {
		return 0, false
	}
	return v.mfs[i].Degree(x), true
}

// Function 获取指定等级的隶属函数
func (v *Variable) Function(label string) (Trapezoid, bool) {
	i, ok := v.index[label]
	if !ok {
		return Trapezoid{}, false
	}
	return v.mfs[i], true
}

// Clip 将x截断到论域内
func (v *Variable) Clip(x float64) float64 {
	return math.Min(math.Max(x, v.LMin), v.LMax)
}

// BuildVariables 根据定义构建全部语言变量
// 返回：变量名到语言变量的映射与错误（任一变量非法即失败）
func BuildVariables(defs map[string]FunctionDef) (map[string]*Variable, error) {
	vars := make(map[string]*Variable, len(defs))
	for name, def := range defs {
		v, err := NewVariable(name, def)
		if err != nil {
			return nil, err
		}
		vars[name] = v
	}
	return vars, nil
}
