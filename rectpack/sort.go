package rectpack

import (
	"cmp"
	"fmt"
)

// SortFunc 定义矩形尺寸比较函数的原型
// 返回值:
//
//	-1: a 排在 b 之前
//	 0: a 与 b 等价
//	 1: a 排在 b 之后
type SortFunc func(a, b Size) int

// SortHeight 按矩形高度降序排序(从高到矮)，这是 Pack 使用的顺序
func SortHeight(a, b Size) int {
	return cmp.Compare(b.Height, a.Height)
}

// SortArea 按矩形面积降序排序(从大到小)
func SortArea(a, b Size) int {
	return cmp.Compare(b.Area(), a.Area())
}

// SortPerimeter 按矩形周长降序排序(从大到小)
func SortPerimeter(a, b Size) int {
	return cmp.Compare(b.Perimeter(), a.Perimeter())
}

// SortMaxSide 按矩形最长边降序排序(从大到小)
func SortMaxSide(a, b Size) int {
	return cmp.Compare(b.MaxSide(), a.MaxSide())
}

// ResolveSort 根据名称返回对应的排序函数
func ResolveSort(name string) (SortFunc, error) {
	switch name {
	case "", "height":
		return SortHeight, nil
	case "area":
		return SortArea, nil
	case "perimeter":
		return SortPerimeter, nil
	case "max-side":
		return SortMaxSide, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownOrder)
}
