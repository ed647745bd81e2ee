package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/bits"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/maruel/natural"
	"golang.org/x/sync/errgroup"

	"potpack2d/rectpack"
)

// imageExts 是会被打包的图片扩展名
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// sprite 保存一张已解码的输入图片
type sprite struct {
	path string
	name string
	img  image.Image
	// trim 是需要放入图集的区域，未开启裁切时等于图片边界
	trim image.Rectangle
}

// trimmed 判断精灵是否被裁掉了透明边缘
func (s *sprite) trimmed() bool {
	return s.trim != s.img.Bounds()
}

// opaqueBounds 检测图像的非透明区域，返回 alpha 大于阈值的像素的边界。
// 图像完全透明时返回整个图像边界。
func opaqueBounds(img image.Image, alphaThreshold uint8) image.Rectangle {
	bounds := img.Bounds()
	if bounds.Empty() {
		return image.Rectangle{}
	}

	var alphaAt func(x, y int) uint8
	switch src := img.(type) {
	case *image.NRGBA:
		alphaAt = func(x, y int) uint8 { return src.Pix[src.PixOffset(x, y)+3] }
	case *image.RGBA:
		alphaAt = func(x, y int) uint8 { return src.Pix[src.PixOffset(x, y)+3] }
	default:
		alphaAt = func(x, y int) uint8 {
			_, _, _, a := img.At(x, y).RGBA()
			return uint8(a >> 8) // RGBA()返回的是16bit
		}
	}

	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X-1, bounds.Min.Y-1
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if alphaAt(x, y) <= alphaThreshold {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}
	if maxX < minX {
		return bounds
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// findImages 返回目录中所有可打包的图片路径
func findImages(dir string, naturalSort bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir %s: %w", dir, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !imageExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoImages)
	}
	// os.ReadDir 已按字典序返回
	if naturalSort {
		sort.Sort(natural.StringSlice(paths))
	}
	return paths, nil
}

// loadSprites 并行解码图片并计算需要打包的区域
func loadSprites(ctx context.Context, paths []string, trim bool, alphaThreshold uint8, workers int) ([]sprite, error) {
	sprites := make([]sprite, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path // per-iteration copies (go.mod targets go1.21)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := imaging.Open(path)
			if err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
			s := sprite{
				path: path,
				name: filepath.Base(path),
				img:  img,
				trim: img.Bounds(),
			}
			if trim {
				s.trim = opaqueBounds(img, alphaThreshold)
			}
			sprites[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sprites, nil
}

// composeAtlas 创建图集图像，把每个精灵绘制到它的打包位置。
// rects[i].ID 是 sprites 的下标。
func composeAtlas(size rectpack.Size, rects []rectpack.Rect, sprites []sprite) *image.NRGBA {
	dst := imaging.New(size.Width, size.Height, color.NRGBA{0, 0, 0, 0})
	for _, r := range rects {
		s := &sprites[r.ID]
		dstRect := image.Rect(r.X, r.Y, r.Right(), r.Bottom())
		draw.Draw(dst, dstRect, s.img, s.trim.Min, draw.Src)
	}
	return dst
}

// nextPowerOfTwo 返回不小于 n 的最小的2的幂
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
