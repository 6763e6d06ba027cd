// Package optimizer 提供基于禁忌搜索与模拟退火的局部搜索
package optimizer

// TabuList 禁忌表
// 固定容量，FIFO 淘汰；键为分配快照的 uint64 哈希
type TabuList struct {
	items   map[uint64]struct{}
	order   []uint64
	maxSize int
}

// NewTabuList 创建禁忌表
func NewTabuList(size int) *TabuList {
	if size <= 0 {
		size = 64
	}
	return &TabuList{
		items:   make(map[uint64]struct{}, size),
		order:   make([]uint64, 0, size),
		maxSize: size,
	}
}

// Add 添加禁忌键，超出容量时淘汰最旧的
func (t *TabuList) Add(key uint64) {
	if _, exists := t.items[key]; exists {
		return
	}
	if len(t.order) >= t.maxSize {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.items, oldest)
	}
	t.items[key] = struct{}{}
	t.order = append(t.order, key)
}

// Contains 检查键是否在禁忌表中
func (t *TabuList) Contains(key uint64) bool {
	_, exists := t.items[key]
	return exists
}

// Len 返回当前禁忌键数量
func (t *TabuList) Len() int {
	return len(t.order)
}

// Clear 清空禁忌表
func (t *TabuList) Clear() {
	t.items = make(map[uint64]struct{}, t.maxSize)
	t.order = t.order[:0]
}
