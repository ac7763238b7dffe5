package model

// EditHistory 只追加的文本历史。每次成功生成前的文本入栈，当前文本随后被替换。
type EditHistory struct {
	entries []string
	current string
	result  string
}

func NewEditHistory(initial string) *EditHistory {
	return &EditHistory{current: initial}
}

func (h *EditHistory) Push(text string) {
	h.entries = append(h.entries, text)
}

func (h *EditHistory) Current() string {
	return h.current
}

// SetCurrent 替换编辑区内容，不写历史
func (h *EditHistory) SetCurrent(text string) {
	h.current = text
}

// Commit 记录 prev 并把 next 设为当前文本
func (h *EditHistory) Commit(prev, next string) {
	h.Push(prev)
	h.current = next
}

// Restart 记录 prev，清空当前文本，result 作为旁路值保留
func (h *EditHistory) Restart(prev, result string) {
	h.Push(prev)
	h.result = result
	h.current = ""
}

// Result 最近一次 Restart 保留下来的结果
func (h *EditHistory) Result() string {
	return h.result
}

func (h *EditHistory) Latest() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	return h.entries[len(h.entries)-1], true
}

func (h *EditHistory) Len() int {
	return len(h.entries)
}

// Entries 返回历史副本，按插入顺序
func (h *EditHistory) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}
