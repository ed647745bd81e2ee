package rectpack

import "errors"

var (
	// ErrInvalidSize 表示某个矩形的宽或高不是正数。
	ErrInvalidSize = errors.New("rectpack: width and height must be greater than 0")
	// ErrNoSpace 表示没有任何空闲空间能容纳某个矩形。
	// 对合法输入不会出现，出现即说明内部状态已被破坏。
	ErrNoSpace = errors.New("rectpack: no free space can hold the rectangle")
	// ErrUnknownOrder 表示排序方式的名称无法识别。
	ErrUnknownOrder = errors.New("rectpack: unknown sort order")
)
