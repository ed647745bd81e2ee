package rectpack

import (
	"fmt"
	"slices"
)

// Packer 包含一次打包的输入与结果。
//
// 与直接调用 Pack 不同，Packer 不会改变插入的顺序：Rects 返回的结果
// 与 Insert 的顺序一一对应。Packer 不能被多个 goroutine 同时使用。
type Packer struct {
	// staged 包含所有已插入、等待打包的尺寸
	staged []Size

	// packed 按插入顺序保存打包结果
	packed []Rect

	// size 是包含所有矩形(及间距)的最小尺寸
	size Size

	// usedArea 是所有矩形(不含间距)的总面积
	usedArea int

	// sortFunc 决定高度相同的矩形之间的先后顺序
	//
	// 默认值：SortHeight
	sortFunc SortFunc

	// sortRev 表示是否启用反向排序
	//
	// 默认值：false
	sortRev bool

	// padding 定义矩形之间以及矩形与边缘之间的空隙。值为0
	// 表示矩形将被紧密排列
	//
	// 默认值：0
	padding int
}

// NewPacker 创建一个使用默认配置的打包器
func NewPacker() *Packer {
	return &Packer{sortFunc: SortHeight}
}

// SetPadding 设置矩形之间的间距，负数按 0 处理
func (p *Packer) SetPadding(padding int) {
	p.padding = max(padding, 0)
}

// Padding 返回当前的间距
func (p *Packer) Padding() int {
	return p.padding
}

// Sorter 设置打包前的预排序函数和排序顺序
//
// Pack 总是按高度降序放置矩形，预排序只决定高度相同的矩形谁先放置。
// compare 为 nil 时保持插入顺序。
func (p *Packer) Sorter(compare SortFunc, reverse bool) {
	p.sortFunc = compare
	p.sortRev = reverse
}

// Insert 暂存多个尺寸，返回当前所有暂存的尺寸
func (p *Packer) Insert(sizes ...Size) []Size {
	p.staged = append(p.staged, sizes...)
	return p.staged
}

// InsertSize 暂存一个指定ID和尺寸的矩形
func (p *Packer) InsertSize(id, width, height int) {
	p.Insert(NewSizeID(id, width, height))
}

// Sizes 返回所有暂存的尺寸(由内部管理，如需修改请复制)
func (p *Packer) Sizes() []Size {
	return p.staged
}

// Pack 从头打包所有暂存的尺寸。之前的结果会被丢弃。
//
// 任意尺寸宽或高不为正数时返回 ErrInvalidSize，之前的结果同样被清空。
func (p *Packer) Pack() error {
	p.packed = p.packed[:0]
	p.size = Size{}
	p.usedArea = 0
	if len(p.staged) == 0 {
		return nil
	}

	// work 中的 ID 是 staged 的下标，结果据此写回原始顺序
	work := make([]Rect, len(p.staged))
	for i, size := range p.staged {
		if !size.valid() {
			return fmt.Errorf("size %d (id %d) is %s: %w", i, size.ID, size.String(), ErrInvalidSize)
		}
		work[i].Size = size
		work[i].ID = i
		padSize(&work[i].Size, p.padding)
	}
	if p.sortFunc != nil {
		compare := p.sortFunc
		if p.sortRev {
			compare = func(a, b Size) int { return p.sortFunc(b, a) }
		}
		// 比较的是原始尺寸，而不是加了间距的尺寸
		slices.SortStableFunc(work, func(a, b Rect) int {
			return compare(p.staged[a.ID], p.staged[b.ID])
		})
	} else if p.sortRev {
		slices.Reverse(work)
	}

	size, err := Pack(work)
	if err != nil {
		return err
	}

	p.packed = slices.Grow(p.packed, len(work))[:len(work)]
	for _, rect := range work {
		index := rect.ID
		placed := Rect{Point: rect.Point, Size: p.staged[index]}
		unpadRect(&placed, p.padding)
		p.packed[index] = placed
		p.usedArea += placed.Area()
	}
	p.size = Size{Width: size.Width + p.padding, Height: size.Height + p.padding}
	return nil
}

// Rects 按插入顺序返回打包结果(由内部管理，如需修改请复制)
func (p *Packer) Rects() []Rect {
	return p.packed
}

// Size 返回包含所有已打包矩形所需的最小尺寸，包含间距
func (p *Packer) Size() Size {
	return p.size
}

// Used 计算空间利用率，即矩形总面积与打包尺寸面积之比
//
// 返回:
//
//	空间利用率(0.0-1.0)，尚未打包时为 0
func (p *Packer) Used() float64 {
	total := p.size.Area()
	if total == 0 {
		return 0
	}
	return float64(p.usedArea) / float64(total)
}

// Map 创建矩形ID到矩形对象的映射
func (p *Packer) Map() map[int]Rect {
	mapping := make(map[int]Rect, len(p.packed))
	for _, rect := range p.packed {
		mapping[rect.ID] = rect
	}
	return mapping
}

// Clear 清除所有暂存的尺寸和打包结果(保留配置)
func (p *Packer) Clear() {
	p.staged = p.staged[:0]
	p.packed = p.packed[:0]
	p.size = Size{}
	p.usedArea = 0
}
