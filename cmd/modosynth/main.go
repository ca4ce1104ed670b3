package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modosynth/modosynth/internal/component"
	"github.com/modosynth/modosynth/internal/config"
	"github.com/modosynth/modosynth/internal/core/ecs"
	coresys "github.com/modosynth/modosynth/internal/core/system"
	"github.com/modosynth/modosynth/internal/data"
	"github.com/modosynth/modosynth/internal/scripting"
	"github.com/modosynth/modosynth/internal/system"
	"github.com/modosynth/modosynth/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/width"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              modosynth  v0.1.0            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

// displayWidth counts terminal columns; wide and fullwidth runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func printSection(title string) {
	lineLen := 46 - displayWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - displayWidth(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/modosynth.toml"
	if p := os.Getenv("MODOSYNTH_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	// 3. Block catalogue
	printSection("catalogue")
	catalogue, err := data.LoadCatalogue(cfg.Catalogue.Path)
	if err != nil {
		return fmt.Errorf("load catalogue: %w", err)
	}
	printStat("blocks", catalogue.Count())
	for _, tex := range catalogue.Textures() {
		printOK("texture " + tex)
	}
	fmt.Println()

	// 4. Editor and store
	alloc := ecs.NewAllocator()
	if cfg.Store.Seeded {
		alloc.Seed(ecs.EntityID(cfg.Store.Seed))
	}
	editor := world.NewEditor(catalogue, log,
		ecs.WithCapacity(cfg.Store.InitialCapacity),
		ecs.WithAllocator(alloc),
	)

	// 5. Lua hooks
	if cfg.Scripting.Enabled {
		printSection("scripting")
		engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		engine.Bind(editor)
		printOK("lua hooks bound")
		fmt.Println()
	}

	// 6. Systems
	input := system.NewInputSystem(editor, 256, 64, log)
	runner := coresys.NewRunner()
	runner.Register(input)
	runner.Register(system.NewEventDispatchSystem(editor.World().Events()))
	runner.Register(system.NewRopeSystem(editor))
	runner.Register(system.NewCleanupSystem(editor.World(), log))

	// Place one of each block in a row and patch the first output into the
	// second input, so a headless run exercises every system.
	printSection("patch")
	seedPatch(editor, input, log)
	printStat("systems", runner.Len())
	fmt.Println()

	// 7. Loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()

	printReady(fmt.Sprintf("loop started (tick: %s)", cfg.Loop.TickRate))
	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Loop.TickRate)
			if cfg.Loop.MaxTicks > 0 && runner.Ticks() >= cfg.Loop.MaxTicks {
				log.Info("tick limit reached",
					zap.Uint64("ticks", runner.Ticks()),
					zap.Int("entities", editor.World().Len()),
				)
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			return nil
		}
	}
}

func seedPatch(editor *world.Editor, input *system.InputSystem, log *zap.Logger) {
	names := editor.Catalogue().Names()
	x := 0.0
	for _, name := range names {
		input.Submit(system.Input{Kind: system.InputPlace, Block: name, Pos: component.Vec2{X: x}})
		x += 100
	}
	if len(names) < 2 {
		return
	}
	first, err := editor.Catalogue().Get(names[0])
	if err != nil || first.Outputs == 0 {
		return
	}
	second, err := editor.Catalogue().Get(names[1])
	if err != nil || second.Inputs == 0 {
		return
	}
	// Port centres follow the layout in world.Editor.spawnPorts.
	out := component.Vec2{X: first.Dim[0]/2 + 1.5, Y: -first.Dim[1]/2 + first.Dim[1]/float64(first.Outputs+1)}
	in := component.Vec2{X: 100 - second.Dim[0]/2 - 1.5, Y: -second.Dim[1]/2 + second.Dim[1]/float64(second.Inputs+1)}
	input.Submit(system.Input{Kind: system.InputPress, Pos: out})
	input.Submit(system.Input{Kind: system.InputDrag, Pos: in})
	input.Submit(system.Input{Kind: system.InputRelease, Pos: in})
	log.Debug("seed patch queued", zap.Strings("blocks", names))
	printOK(fmt.Sprintf("%d blocks queued", len(names)))
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
