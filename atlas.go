package main

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"time"

	"potpack2d/rectpack"
)

const (
	atlasImageName = "atlas.png"
	atlasDataName  = "atlas.json"
)

// Region 是图集或原图中的一个矩形区域
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Rectangle 转换为 image.Rectangle
func (r Region) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Dimensions 是宽高
type Dimensions struct {
	W int `json:"w"`
	H int `json:"h"`
}

// SpriteInfo 存储精灵图的信息
type SpriteInfo struct {
	Filename string `json:"filename"`
	// Region 是精灵在图集中的位置
	Region Region `json:"region"`
	// SourceSize 是原图的尺寸
	SourceSize Dimensions `json:"sourceSize"`
	// SourceRect 是放入图集的部分在原图中的位置，未裁切时覆盖整张原图
	SourceRect Region `json:"sourceRect"`
	Trimmed    bool   `json:"trimmed"`
}

// AtlasMeta 描述图集本身
type AtlasMeta struct {
	Version   string     `json:"version"`
	Timestamp string     `json:"timestamp"`
	Image     string     `json:"image"`
	Size      Dimensions `json:"size"`
	// Fill 是精灵总面积占打包区域的比例
	Fill float64 `json:"fill"`
}

// AtlasData 是写入 atlas.json 的全部内容
type AtlasData struct {
	Meta    AtlasMeta             `json:"meta"`
	Sprites map[string]SpriteInfo `json:"sprites"`
}

// newAtlasData 根据打包结果生成图集元数据
func newAtlasData(imageName string, size rectpack.Size, fill float64, rects []rectpack.Rect, sprites []sprite) AtlasData {
	data := AtlasData{
		Meta: AtlasMeta{
			Version:   VERSION,
			Timestamp: time.Now().Format("2006-01-02 15:04:05"),
			Image:     imageName,
			Size:      Dimensions{W: size.Width, H: size.Height},
			Fill:      fill,
		},
		Sprites: make(map[string]SpriteInfo, len(rects)),
	}
	for _, r := range rects {
		s := &sprites[r.ID]
		bounds := s.img.Bounds()
		// 原图坐标统一相对于左上角
		source := s.trim.Sub(bounds.Min)
		data.Sprites[s.name] = SpriteInfo{
			Filename:   s.name,
			Region:     Region{X: r.X, Y: r.Y, W: r.Width, H: r.Height},
			SourceSize: Dimensions{W: bounds.Dx(), H: bounds.Dy()},
			SourceRect: Region{X: source.Min.X, Y: source.Min.Y, W: source.Dx(), H: source.Dy()},
			Trimmed:    s.trimmed(),
		}
	}
	return data
}

// writeAtlasJSON 将图集元数据写入文件
func writeAtlasJSON(path string, data AtlasData) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode atlas data: %w", err)
	}
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// readAtlasJSON 读取并校验图集元数据
func readAtlasJSON(path string) (AtlasData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return AtlasData{}, fmt.Errorf("read atlas data: %w", err)
	}
	var data AtlasData
	if err := json.Unmarshal(raw, &data); err != nil {
		return AtlasData{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if data.Meta.Image == "" {
		return AtlasData{}, fmt.Errorf("%s: missing meta.image: %w", path, ErrBadAtlas)
	}
	bounds := image.Rect(0, 0, data.Meta.Size.W, data.Meta.Size.H)
	for name, info := range data.Sprites {
		if info.Filename == "" {
			return AtlasData{}, fmt.Errorf("%s: sprite %s has no filename: %w", path, name, ErrBadAtlas)
		}
		region := info.Region.Rectangle()
		if region.Empty() || !region.In(bounds) {
			return AtlasData{}, fmt.Errorf("%s: sprite %s region %v outside %v: %w", path, name, region, bounds, ErrBadAtlas)
		}
		if info.Trimmed && !info.SourceRect.Rectangle().In(image.Rect(0, 0, info.SourceSize.W, info.SourceSize.H)) {
			return AtlasData{}, fmt.Errorf("%s: sprite %s source rect outside source size: %w", path, name, ErrBadAtlas)
		}
	}
	return data, nil
}
