// Package app wires the tuning file, log router, simulation engine, and
// observer endpoints into a running server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"deepwarren/server/internal/ai"
	"deepwarren/server/internal/dungeon"
	"deepwarren/server/internal/grid"
	servernet "deepwarren/server/internal/net"
	"deepwarren/server/internal/sim"
	"deepwarren/server/internal/tuning"
	"deepwarren/server/logging"
	loggingSinks "deepwarren/server/logging/sinks"
)

// defaultLayout is the built-in dungeon used when no map file is configured:
// two chambers joined by a corridor.
const defaultLayout = `
########################
#..........#...........#
#..........#...........#
#......................#
#..........#...........#
#..........#...........#
#..........#...........#
########################
`

type Config struct {
	TuningPath string
}

func Run(ctx context.Context, cfg Config) error {
	settings, err := tuning.Load(cfg.TuningPath)
	if err != nil {
		return fmt.Errorf("load tuning: %w", err)
	}

	router, err := buildRouter(settings)
	if err != nil {
		return fmt.Errorf("construct logging router: %w", err)
	}
	defer router.Close(context.Background())

	dungeonMap, err := loadMap(settings)
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}

	engine := sim.NewEngine(dungeonMap, settings.Seed, router)
	if err := populate(engine, dungeonMap, settings); err != nil {
		return fmt.Errorf("populate world: %w", err)
	}

	hub := servernet.NewHub(router)
	defer hub.Close()

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()
	interval := time.Duration(settings.TurnIntervalMs) * time.Millisecond
	go engine.Run(loopCtx, interval, hub.Broadcast)

	srv := &http.Server{Addr: settings.ListenAddr, Handler: servernet.NewMux(engine, hub)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func buildRouter(settings tuning.Tuning) (*logging.Router, error) {
	logConfig := logging.DefaultConfig()
	if len(settings.Logging.Sinks) > 0 {
		logConfig.EnabledSinks = settings.Logging.Sinks
	}
	if severity, ok := logging.ParseSeverity(settings.Logging.MinimumSeverity); ok {
		logConfig.MinimumSeverity = severity
	}
	logConfig.Console.Verbose = settings.Logging.Verbose

	var sinks []logging.NamedSink
	if logConfig.HasSink("console") {
		sinks = append(sinks, logging.NamedSink{
			Name: "console",
			Sink: loggingSinks.NewConsole(os.Stdout, logConfig.Console),
		})
	}
	if logConfig.HasSink("json") {
		path := logConfig.JSON.FilePath
		if path == "" {
			path = "events.ndjson"
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, logging.NamedSink{
			Name: "json",
			Sink: loggingSinks.NewJSON(file, logConfig.JSON.FlushInterval),
		})
	}

	return logging.NewRouter(logging.SystemClock{}, logConfig, sinks)
}

func loadMap(settings tuning.Tuning) (*dungeon.Map, error) {
	layout := defaultLayout
	if settings.MapFile != "" {
		raw, err := os.ReadFile(settings.MapFile)
		if err != nil {
			return nil, err
		}
		layout = string(raw)
	}
	return dungeon.Parse(layout)
}

// populate seeds the world from the tuning spawn list, or with the stock
// menagerie when the list is empty.
func populate(engine *sim.Engine, m *dungeon.Map, settings tuning.Tuning) error {
	if len(settings.Spawns) == 0 {
		return populateDefault(engine, m)
	}
	for _, spawn := range settings.Spawns {
		count := spawn.Count
		if count <= 0 {
			count = 1
		}
		at := grid.Point{X: spawn.X, Y: spawn.Y}
		if count > 1 {
			if _, err := engine.SpawnPack(spawn.Kind, count, at); err != nil {
				return err
			}
			continue
		}
		if _, err := engine.Spawn(spawn.Kind, at); err != nil {
			return err
		}
	}
	return nil
}

func populateDefault(engine *sim.Engine, m *dungeon.Map) error {
	left := grid.Point{X: 3, Y: 3}
	right := grid.Point{X: m.Width() - 4, Y: m.Height() - 3}

	goblins, err := engine.SpawnPack("goblin", 3, left)
	if err != nil {
		return err
	}
	if _, err := engine.SpawnPack("rat", 2, right); err != nil {
		return err
	}
	warden, err := engine.Spawn("warden", grid.Point{X: m.Width() / 2, Y: 2})
	if err != nil {
		return err
	}

	engine.AssignPatrol(goblins[0].ID, ai.Route{
		Waypoints: []grid.Point{left, {X: m.Width() / 2, Y: m.Height() / 2}},
		Cycle:     true,
	}, true)
	engine.AssignPatrol(warden.ID, ai.Route{
		Waypoints: []grid.Point{
			{X: 2, Y: 2},
			{X: m.Width() - 3, Y: 2},
			{X: m.Width() - 3, Y: m.Height() - 3},
			{X: 2, Y: m.Height() - 3},
		},
		Cycle: true,
	}, false)
	return nil
}
