package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"potpack2d/internal/config"
	"potpack2d/internal/logging"
	"potpack2d/rectpack"
)

const (
	VERSION = "0.1.0"
)

var (
	// ErrNoImages 表示输入目录中没有可打包的图片
	ErrNoImages = errors.New("no images found")
	// ErrAtlasTooLarge 表示打包结果超过了允许的最大图集尺寸
	ErrAtlasTooLarge = errors.New("atlas exceeds maximum size")
	// ErrBadAtlas 表示图集元数据与图片不一致
	ErrBadAtlas = errors.New("invalid atlas data")
)

// packAtlas 读取输入目录中的图片，打包并写出 atlas.png 和 atlas.json
func packAtlas(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	start := time.Now()

	paths, err := findImages(cfg.InputDir, cfg.NaturalSort)
	if err != nil {
		return err
	}
	logger.Info("found images", zap.String("input", cfg.InputDir), zap.Int("count", len(paths)), zap.Bool("trim", cfg.Trim))

	stage := time.Now()
	sprites, err := loadSprites(ctx, paths, cfg.Trim, uint8(cfg.AlphaThreshold), cfg.Workers)
	if err != nil {
		return err
	}
	logger.Debug("images decoded", zap.Duration("elapsed", time.Since(stage)))

	stage = time.Now()
	order, err := rectpack.ResolveSort(cfg.Order)
	if err != nil {
		return err
	}
	packer := rectpack.NewPacker()
	packer.SetPadding(cfg.Padding)
	packer.Sorter(order, false)
	for i := range sprites {
		packer.InsertSize(i, sprites[i].trim.Dx(), sprites[i].trim.Dy())
	}
	if err := packer.Pack(); err != nil {
		return fmt.Errorf("pack %d images: %w", len(sprites), err)
	}
	size := packer.Size()
	logger.Debug("images packed",
		zap.Int("width", size.Width),
		zap.Int("height", size.Height),
		zap.Float64("fill", packer.Used()),
		zap.Duration("elapsed", time.Since(stage)),
	)

	if cfg.PowerOfTwo {
		size.Width = nextPowerOfTwo(size.Width)
		size.Height = nextPowerOfTwo(size.Height)
	}
	if size.Width > cfg.MaxWidth || size.Height > cfg.MaxHeight {
		return fmt.Errorf("%dx%d larger than %dx%d: %w", size.Width, size.Height, cfg.MaxWidth, cfg.MaxHeight, ErrAtlasTooLarge)
	}

	stage = time.Now()
	atlas := composeAtlas(size, packer.Rects(), sprites)
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	imagePath := filepath.Join(cfg.OutputDir, atlasImageName)
	if err := imaging.Save(atlas, imagePath); err != nil {
		return fmt.Errorf("save %s: %w", imagePath, err)
	}
	logger.Debug("atlas image written", zap.String("path", imagePath), zap.Duration("elapsed", time.Since(stage)))

	dataPath := filepath.Join(cfg.OutputDir, atlasDataName)
	data := newAtlasData(atlasImageName, size, packer.Used(), packer.Rects(), sprites)
	if err := writeAtlasJSON(dataPath, data); err != nil {
		return err
	}

	logger.Info("atlas written",
		zap.String("image", imagePath),
		zap.String("data", dataPath),
		zap.Int("width", size.Width),
		zap.Int("height", size.Height),
		zap.Int("sprites", len(sprites)),
		zap.Float64("fill", packer.Used()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func main() {
	app := kingpin.New("potpack2d", "Packs sprites into a near-square texture atlas")
	app.Version(VERSION)
	configFile := app.Flag("config", "Path to YAML configuration file").String()
	verbose := app.Flag("verbose", "Enable debug logging").Short('v').Bool()

	packCmd := app.Command("pack", "Pack a directory of images into atlas.png and atlas.json").Default()
	input := packCmd.Flag("input", "Input directory").String()
	output := packCmd.Flag("output", "Output directory").String()
	padding := packCmd.Flag("padding", "Pixels between sprites and around the atlas").Default("-1").Int()
	threshold := packCmd.Flag("threshold", "Alpha values at or below this are treated as transparent").Default("-1").Int()
	maxWidth := packCmd.Flag("max-width", "Maximum atlas width").Default("-1").Int()
	maxHeight := packCmd.Flag("max-height", "Maximum atlas height").Default("-1").Int()
	order := packCmd.Flag("order", "Tie-break order for equal heights (height, area, perimeter, max-side)").String()
	workers := packCmd.Flag("workers", "Number of images decoded in parallel").Default("-1").Int()
	var trimSet, naturalSet, powSet bool
	trim := packCmd.Flag("trim", "Trim transparent borders").IsSetByUser(&trimSet).Bool()
	naturalSort := packCmd.Flag("natural-sort", "Order input files by natural filename order").IsSetByUser(&naturalSet).Bool()
	powerOfTwo := packCmd.Flag("pow-of-two", "Round the atlas size up to powers of two").IsSetByUser(&powSet).Bool()

	unpackCmd := app.Command("unpack", "Split an atlas back into individual images")
	atlasData := unpackCmd.Flag("atlas", "Path to atlas.json").Required().String()
	unpackOutput := unpackCmd.Flag("output", "Output directory").String()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		InputDir:   input,
		OutputDir:  output,
		Order:      order,
	}
	if command == unpackCmd.FullCommand() {
		overrides.OutputDir = unpackOutput
	}
	// 整数参数默认为 -1，表示未设置
	if *padding >= 0 {
		overrides.Padding = padding
	}
	if *threshold >= 0 {
		overrides.AlphaThreshold = threshold
	}
	if *maxWidth >= 0 {
		overrides.MaxWidth = maxWidth
	}
	if *maxHeight >= 0 {
		overrides.MaxHeight = maxHeight
	}
	if *workers >= 0 {
		overrides.Workers = workers
	}
	if trimSet {
		overrides.Trim = trim
	}
	if naturalSet {
		overrides.NaturalSort = naturalSort
	}
	if powSet {
		overrides.PowerOfTwo = powerOfTwo
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		app.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(*verbose)
	if err != nil {
		app.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case packCmd.FullCommand():
		err = packAtlas(ctx, cfg, logger)
	case unpackCmd.FullCommand():
		err = unpack(ctx, *atlasData, cfg.OutputDir, cfg.Workers, logger)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}
