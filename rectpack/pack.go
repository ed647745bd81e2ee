package rectpack

import (
	"fmt"
	"math"
	"slices"
)

// fillFactor 是估算初始宽度时假定的面积填充率。
// 略低于 1 使初始宽度比理论最小值稍大，贪心放置通常一次成功。
const fillFactor = 0.95

// unbounded 是初始空间的高度，表示下方没有边界
const unbounded = math.MaxInt

// space 是一块尚未被占用的矩形区域
type space struct {
	x, y          int
	width, height int
}

// fits 判断指定尺寸能否放入空间
func (s *space) fits(width, height int) bool {
	return width <= s.width && height <= s.height
}

// Pack 把矩形打包进一个接近正方形的区域，返回包含所有矩形的最小尺寸。
//
// 每个矩形的 X/Y 会被写入其左上角坐标。rects 会按高度降序原地重新排列
// (稳定排序，高度相同的矩形保持原来的相对顺序)，需要原始顺序的调用者
// 应事先保存，或者使用 Packer。
//
// 空切片返回零尺寸。任意矩形宽或高不为正数时返回 ErrInvalidSize，
// 此时 rects 不会被修改。
func Pack(rects []Rect) (Size, error) {
	size, _, err := pack(rects)
	return size, err
}

// pack 执行打包并额外返回剩余的空闲空间，便于测试检查
func pack(rects []Rect) (Size, []space, error) {
	if len(rects) == 0 {
		return Size{}, nil, nil
	}

	area, maxWidth := 0, 0
	for i := range rects {
		size := &rects[i].Size
		if !size.valid() {
			return Size{}, nil, fmt.Errorf("rect %d (id %d) has size %s: %w", i, size.ID, size.String(), ErrInvalidSize)
		}
		area += size.Area()
		maxWidth = max(maxWidth, size.Width)
	}

	slices.SortStableFunc(rects, func(a, b Rect) int {
		return SortHeight(a.Size, b.Size)
	})

	startWidth := max(int(math.Ceil(math.Sqrt(float64(area)/fillFactor))), maxWidth)

	// 最后加入的空间通常更小，所以从后往前查找
	spaces := make([]space, 1, len(rects)+1)
	spaces[0] = space{width: startWidth, height: unbounded}

	var packed Size
	for i := range rects {
		rect := &rects[i]
		j := len(spaces) - 1
		for ; j >= 0; j-- {
			if spaces[j].fits(rect.Width, rect.Height) {
				break
			}
		}
		if j < 0 {
			return Size{}, nil, fmt.Errorf("rect %d (id %d) with size %s in width %d: %w",
				i, rect.ID, rect.Size.String(), startWidth, ErrNoSpace)
		}

		free := spaces[j]
		rect.X, rect.Y = free.x, free.y
		packed.Width = max(packed.Width, rect.Right())
		packed.Height = max(packed.Height, rect.Bottom())

		switch {
		case rect.Width == free.width && rect.Height == free.height:
			// 完全占满：用最后一个空间填补这个位置
			last := len(spaces) - 1
			spaces[j] = spaces[last]
			spaces = spaces[:last]
		case rect.Height == free.height:
			// |-------|---------------|
			// | rect  |     space     |
			// |_______|_______________|
			spaces[j].x += rect.Width
			spaces[j].width -= rect.Width
		case rect.Width == free.width:
			// |---------------|
			// |     rect      |
			// |---------------|
			// |     space     |
			// |_______________|
			spaces[j].y += rect.Height
			spaces[j].height -= rect.Height
		default:
			// |-------|-----------|
			// | rect  | new space |
			// |-------|-----------|
			// |       space       |
			// |___________________|
			spaces = append(spaces, space{
				x:      free.x + rect.Width,
				y:      free.y,
				width:  free.width - rect.Width,
				height: rect.Height,
			})
			spaces[j].y += rect.Height
			spaces[j].height -= rect.Height
		}
	}
	return packed, spaces, nil
}
