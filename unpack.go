package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/disintegration/imaging"
	"github.com/maruel/natural"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// unpack 把图集拆分回单独的图片，裁切过的精灵会恢复为原图尺寸
func unpack(ctx context.Context, dataPath, outputDir string, workers int, logger *zap.Logger) error {
	start := time.Now()
	data, err := readAtlasJSON(dataPath)
	if err != nil {
		return err
	}

	atlasPath := filepath.Join(filepath.Dir(dataPath), filepath.Base(data.Meta.Image))
	atlas, err := imaging.Open(atlasPath)
	if err != nil {
		return fmt.Errorf("decode atlas %s: %w", atlasPath, err)
	}
	if !image.Rect(0, 0, data.Meta.Size.W, data.Meta.Size.H).In(atlas.Bounds().Sub(atlas.Bounds().Min)) {
		return fmt.Errorf("%s is smaller than %dx%d: %w", atlasPath, data.Meta.Size.W, data.Meta.Size.H, ErrBadAtlas)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	names := make([]string, 0, len(data.Sprites))
	for name := range data.Sprites {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))

	origin := atlas.Bounds().Min
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, name := range names {
		name := name // per-iteration copy (go.mod targets go1.21)
		info := data.Sprites[name]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var out image.Image = imaging.Crop(atlas, info.Region.Rectangle().Add(origin))
			if info.Trimmed {
				canvas := imaging.New(info.SourceSize.W, info.SourceSize.H, color.NRGBA{0, 0, 0, 0})
				out = imaging.Paste(canvas, out, image.Pt(info.SourceRect.X, info.SourceRect.Y))
			}
			// 只取文件名，防止元数据把文件写到输出目录之外
			outputPath := filepath.Join(outputDir, filepath.Base(info.Filename))
			if err := imaging.Save(out, outputPath); err != nil {
				return fmt.Errorf("save %s: %w", outputPath, err)
			}
			logger.Debug("sprite extracted", zap.String("sprite", name), zap.String("path", outputPath))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("atlas unpacked",
		zap.String("atlas", atlasPath),
		zap.Int("sprites", len(names)),
		zap.String("output", outputDir),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
