package network

import (
	"sort"

	"github.com/fuzzylts/fuzzylts-go/utils/container"
	"github.com/samber/lo"
)

// PhaseLaneMap 信号灯ID -> 相位序号 -> 上游车道ID（去重且有序）
// 说明：初始化时构建，运行期间只读，可在多个协程间共享
type PhaseLaneMap map[string]map[int32][]string

// Lanes 获取相位的上游车道
// 返回：车道列表，相位不存在映射时ok为false
func (m PhaseLaneMap) Lanes(signalID string, phase int32) ([]string, bool) {
	phases, ok := m[signalID]
	if !ok {
		return nil, false
	}
	lanes, ok := phases[phase]
	return lanes, ok
}

// Signals 获取存在映射的信号灯ID（已排序）
func (m PhaseLaneMap) Signals() []string {
	ids := lo.Keys(m)
	sort.Strings(ids)
	return ids
}

// BuildPhaseLaneMap 计算每个(信号灯, 相位)的上游车道集合
// 功能：对每个处于绿灯的受控连接，从其驶入边开始反向搜索上游走廊
// 参数：n-路网，maxDepth-以街道变化次数计的最大深度，stopAtForeignSignal-是否在其他信号灯控制的连接处停止
// 返回：相位-车道映射
// 算法说明：
// 1. 只沿直行连接反向扩展
// 2. 前驱边与当前边基础街道相同不消耗深度，不同则深度+1，深度达到maxDepth后不再扩展
// 3. 按累计深度使用优先队列，每条边在最小深度处确定，maxDepth增大时结果只增不减
// 4. 内部边可被穿越，但其车道不计入结果
// 说明：
// 1. 没有受控连接的信号灯不出现在结果中
// 2. 没有任何车道的相位不出现在结果中
// 3. linkIndex越界的连接被跳过
func BuildPhaseLaneMap(n *Network, maxDepth int, stopAtForeignSignal bool) PhaseLaneMap {
	result := make(PhaseLaneMap)
	for _, tlID := range n.SignalIDs() {
		links := n.SignalLinks(tlID)
		if len(links) == 0 {
			log.Debugf("signal %s has no controlled connections, skipped", tlID)
			continue
		}
		program, _ := n.Program(tlID)
		corridors := make(map[string][]string)
		phases := make(map[int32][]string)
		for phaseIdx, phase := range program.Phases {
			lanes := make(map[string]struct{})
			for _, link := range links {
				if link.LinkIndex < 0 || link.LinkIndex >= len(phase.State) {
					log.Debugf("signal %s phase %d: link index %d out of range, skipped", tlID, phaseIdx, link.LinkIndex)
					continue
				}
				if !IsGreenAt(phase.State, link.LinkIndex) {
					continue
				}
				visited, ok := corridors[link.From]
				if !ok {
					visited = collectUpstream(n, link.From, maxDepth, stopAtForeignSignal, tlID)
					corridors[link.From] = visited
				}
				for _, edgeID := range visited {
					edge, ok := n.Edge(edgeID)
					if !ok || edge.Internal() {
						continue
					}
					for _, lane := range edge.Lanes {
						lanes[lane] = struct{}{}
					}
				}
			}
			if len(lanes) == 0 {
				log.Debugf("signal %s phase %d has no upstream lanes", tlID, phaseIdx)
				continue
			}
			sorted := lo.Keys(lanes)
			sort.Strings(sorted)
			phases[int32(phaseIdx)] = sorted
		}
		if len(phases) > 0 {
			result[tlID] = phases
		}
	}
	return result
}

// collectUpstream 以街道变化次数为深度的反向最小深度搜索
// 返回：访问到的边ID（含起点）
func collectUpstream(n *Network, start string, maxDepth int, stopAtForeignSignal bool, tlID string) []string {
	settled := make(map[string]struct{})
	visited := make([]string, 0)
	queue := container.NewPriorityQueue[string]()
	queue.HeapPush(start, 0)
	for queue.Len() > 0 {
		edgeID, priority := queue.HeapPop()
		if _, ok := settled[edgeID]; ok {
			continue
		}
		settled[edgeID] = struct{}{}
		visited = append(visited, edgeID)

		depth := int(priority)
		if depth >= maxDepth {
			continue
		}
		base := BaseStreet(edgeID)
		for _, c := range n.Upstream(edgeID) {
			if !c.Straight() {
				continue
			}
			if stopAtForeignSignal && c.TL != "" && c.TL != tlID {
				continue
			}
			if _, ok := settled[c.From]; ok {
				continue
			}
			next := depth
			if BaseStreet(c.From) != base {
				next++
			}
			queue.HeapPush(c.From, float64(next))
		}
	}
	return visited
}
