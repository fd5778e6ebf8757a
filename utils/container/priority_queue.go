package container

import "container/heap"

// entry 堆中的元素
type entry[T any] struct {
	value    T
	priority float64
	seq      uint64 // 入队序号，优先级相同时先入先出
}

type entryHeap[T any] []*entry[T]

func (h entryHeap[T]) Len() int { return len(h) }

func (h entryHeap[T]) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap[T]) Push(x any) { *h = append(*h, x.(*entry[T])) }

func (h *entryHeap[T]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// PriorityQueue 最小优先队列
// 功能：按优先级（越小越优先）弹出元素，优先级相同时保持入队顺序，使搜索结果可复现
type PriorityQueue[T any] struct {
	heap entryHeap[T]
	seq  uint64
}

// NewPriorityQueue 创建优先队列
func NewPriorityQueue[T any]() *PriorityQueue[T] {
	return &PriorityQueue[T]{heap: make(entryHeap[T], 0)}
}

// Len 获取当前队列长度
func (q *PriorityQueue[T]) Len() int {
	return len(q.heap)
}

// First 查看优先级最高的元素（不移除）
func (q *PriorityQueue[T]) First() (value T, priority float64) {
	e := q.heap[0]
	return e.value, e.priority
}

// HeapPush 加入元素
func (q *PriorityQueue[T]) HeapPush(value T, priority float64) {
	heap.Push(&q.heap, &entry[T]{value: value, priority: priority, seq: q.seq})
	q.seq++
}

// HeapPop 弹出优先级最高的元素
func (q *PriorityQueue[T]) HeapPop() (value T, priority float64) {
	e := heap.Pop(&q.heap).(*entry[T])
	return e.value, e.priority
}
