package main

import (
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gekko3d/oitview"
	"github.com/gekko3d/oitview/viewer/res"
	"github.com/gekko3d/oitview/viewer/rt/app"
	"github.com/gekko3d/oitview/viewer/rt/gpu"
	"github.com/gekko3d/oitview/viewer/rt/shaders"
)

func init() {
	// GLFW and the surface must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "TOML config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	mode := flag.String("mode", "", "Render mode: oit or opaque")
	assetsRoot := flag.String("assets", "", "On-disk resource root (img/ and shaders/)")
	watch := flag.Bool("watch-shaders", false, "Reload shaders when files under the resource root change")
	flag.Parse()

	logger := oitview.NewDefaultLogger("oitview", *debug)
	if err := run(logger, *configPath, *debug, *mode, *assetsRoot, *watch); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(logger oitview.Logger, configPath string, debug bool, mode, assetsRoot string, watch bool) error {
	cfg := oitview.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = oitview.LoadConfig(configPath); err != nil {
			return err
		}
	}
	if debug {
		cfg.Debug.Enabled = true
	}
	if mode != "" {
		cfg.Render.Mode = mode
	}
	if assetsRoot != "" {
		cfg.Assets.Root = assetsRoot
	}
	if watch {
		cfg.Debug.WatchShaders = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.SetDebug(cfg.Debug.Enabled)

	opts, err := app.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	presentMode, err := gpu.ParsePresentMode(cfg.Render.PresentMode)
	if err != nil {
		return err
	}

	bindings := oitview.DefaultKeyBindings()
	if err := bindings.Apply(cfg.Input.Bindings); err != nil {
		return err
	}

	window, err := oitview.NewWindow(cfg.Window, bindings, logger)
	if err != nil {
		return err
	}
	defer window.Destroy()

	width, height := window.FramebufferSize()
	ctxOpts := gpu.DefaultContextOptions()
	ctxOpts.PresentMode = presentMode
	ctx, err := gpu.NewContext(window.SurfaceDescriptor(), width, height, ctxOpts)
	if err != nil {
		return err
	}
	defer ctx.Release()

	var resFS, shaderFS fs.FS = res.FS, shaders.FS
	if cfg.Assets.Root != "" {
		resFS = os.DirFS(cfg.Assets.Root)
		shaderFS = os.DirFS(filepath.Join(cfg.Assets.Root, "shaders"))
	}
	assets := oitview.NewAssetServer(resFS, shaderFS)

	application, err := app.NewApp(ctx, assets, logger, opts)
	if err != nil {
		return err
	}
	defer application.Release()

	timer := oitview.NewTimer(cfg.Timer.UPS, cfg.Timer.MaxCatchUp)
	loop := app.NewLoop(window, application, timer, logger)
	loop.Profiler = application.Profiler()

	if cfg.Debug.WatchShaders {
		var dirs []string
		for _, dir := range shaders.Dirs() {
			dirs = append(dirs, filepath.Join(cfg.Assets.Root, "shaders", dir))
		}
		watcher, err := oitview.NewShaderWatcher(logger, dirs...)
		if err != nil {
			return err
		}
		defer watcher.Close()
		loop.Reload = watcher.Changed()
		logger.Infof("watching shaders under %s", cfg.Assets.Root)
	}

	loop.Run()
	return nil
}
