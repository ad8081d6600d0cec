// b2l exports a scene snapshot as a Lua table literal plus a binary blob.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/b2l/internal/config"
	"github.com/Faultbox/b2l/internal/export"
	"github.com/Faultbox/b2l/internal/logger"
	"github.com/Faultbox/b2l/internal/preview"
	"github.com/Faultbox/b2l/internal/scene"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	args := config.Args()
	if len(args) != 1 {
		printUsage()
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	err = run(cfg, args[0])
	if err != nil {
		logger.Error("export failed", zap.Error(err))
	}
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `b2l - scene exporter (Lua table + binary blob)

Usage:
  b2l [options] <scene.yaml>
  b2l -info <scene.yaml>

Writes <scene>.b2l and <scene>.b2l.bin unless -o is given.

Options:`)
	flag.PrintDefaults()
}

func run(cfg *config.Config, scenePath string) error {
	snap, err := scene.Load(scenePath)
	if err != nil {
		return err
	}

	if config.InfoOnly() {
		printInfo(scenePath, snap)
		return nil
	}

	packOpts, err := cfg.Export.PackOptions()
	if err != nil {
		return err
	}
	opts := export.DefaultOptions()
	opts.Pack = packOpts
	opts.Strict = cfg.Export.Strict
	if cfg.Export.Workers > 0 {
		opts.Workers = cfg.Export.Workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Export.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Export.Timeout)
		defer cancel()
	}

	luaPath := cfg.LuaPath(scenePath)
	logger.Info("exporting",
		zap.String("scene", scenePath),
		zap.String("lua", luaPath),
		zap.Stringer("weights", packOpts.Weights),
		zap.Stringer("uv_layout", packOpts.UVLayout),
		zap.Bool("tangents", packOpts.Tangents),
		zap.Int("workers", opts.Workers),
	)

	sum, err := export.New(opts, logger.Named("export")).ExportFiles(ctx, snap, luaPath)
	if err != nil {
		return err
	}

	if n := len(multierr.Errors(sum.Skipped)); n > 0 {
		logger.Sugar.Warnf("%d meshes skipped", n)
	}
	if sum.Warnings > 0 {
		logger.Sugar.Warnf("%d weights were clamped", sum.Warnings)
	}

	if cfg.Preview.Enabled {
		path := cfg.PreviewPath(luaPath)
		if err := preview.Write(path, sum.Packed, snap.Materials); err != nil {
			return err
		}
		logger.Info("wrote preview", zap.String("path", path))
	}
	return nil
}

func printInfo(path string, s *scene.Snapshot) {
	st := s.Stats()
	fmt.Printf("Scene: %s\n", path)
	fmt.Printf("Frames: %g to %g step %g\n", s.Scene.FrameStart, s.Scene.FrameEnd, s.Scene.FrameStep)
	fmt.Printf("Objects:   %d\n", st.Objects)
	fmt.Printf("Meshes:    %d (%d polygons, %d loops, %d vertices)\n", st.Meshes, st.Polygons, st.Loops, st.Vertices)
	fmt.Printf("Armatures: %d (%d bones)\n", st.Armatures, st.Bones)
	fmt.Printf("Materials: %d\n", st.Materials)

	if len(s.Meshes) > 0 {
		fmt.Println("\nMeshes:")
		for i := range s.Meshes {
			m := &s.Meshes[i]
			fmt.Printf("  %-24s %6d triangles  %d uv layers\n", m.Name, m.TriangleCount(), len(m.UVLayers))
		}
	}
}
