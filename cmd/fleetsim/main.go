// Command fleetsim runs headless fleet simulations over a level
// document, streaming snapshots as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/level"
	"github.com/elektrokombinacija/fleetsim/internal/sim"
)

var (
	flagConfig    string
	flagVerbose   bool
	flagLevelFile string
	flagLevel     string
	flagTicks     int
	flagInterval  time.Duration
	flagSpawns    []string
	flagEachTick  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "fleetsim",
	Short:         "Autonomous robot fleet simulation engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation scenario on a level",
	RunE:  runScenario,
}

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List level names in a level document",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := level.ParseFile(flagLevelFile)
		if err != nil {
			return err
		}
		for _, name := range doc.Names() {
			lvl := doc.Levels[name]
			fmt.Printf("%s\t%d vertices\t%d lanes\n", name, len(lvl.Vertices), len(lvl.Lanes))
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML file with sim parameters")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&flagLevelFile, "file", "f", "levels.json", "level document path")

	runCmd.Flags().StringVarP(&flagLevel, "level", "l", "", "level name (default: first level)")
	runCmd.Flags().IntVarP(&flagTicks, "ticks", "t", 200, "number of ticks to simulate")
	runCmd.Flags().DurationVar(&flagInterval, "interval", 0, "wall-clock pacing per tick (0 = unpaced)")
	runCmd.Flags().StringArrayVar(&flagSpawns, "robot", nil,
		"robot spec vertex[:destination], repeatable (e.g. --robot 0:5 --robot 3)")
	runCmd.Flags().BoolVar(&flagEachTick, "snapshots", false, "print a snapshot every tick instead of only the last")

	rootCmd.AddCommand(runCmd, levelsCmd)
}

func newLogger() *slog.Logger {
	lvl := slog.LevelInfo
	if flagVerbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func loadConfig() (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if flagConfig == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(flagConfig)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// robotSpec is one --robot flag: a spawn vertex and an optional task
// destination.
type robotSpec struct {
	spawn core.VertexID
	dest  core.VertexID
	task  bool
}

func parseRobotSpec(s string) (robotSpec, error) {
	var spec robotSpec
	parts := strings.SplitN(s, ":", 2)
	v, err := strconv.Atoi(parts[0])
	if err != nil {
		return spec, fmt.Errorf("robot spec %q: bad spawn vertex: %w", s, err)
	}
	spec.spawn = core.VertexID(v)
	if len(parts) == 2 {
		d, err := strconv.Atoi(parts[1])
		if err != nil {
			return spec, fmt.Errorf("robot spec %q: bad destination: %w", s, err)
		}
		spec.dest = core.VertexID(d)
		spec.task = true
	}
	return spec, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	doc, err := level.ParseFile(flagLevelFile)
	if err != nil {
		return err
	}
	name := flagLevel
	if name == "" {
		name = doc.Names()[0]
	}
	graph, err := doc.Graph(name)
	if err != nil {
		return err
	}

	sched, err := sim.NewScheduler(cfg, logger)
	if err != nil {
		return err
	}
	sched.LoadLevel(graph)

	for _, raw := range flagSpawns {
		spec, err := parseRobotSpec(raw)
		if err != nil {
			return err
		}
		id, err := sched.SpawnRobot(spec.spawn)
		if err != nil {
			return fmt.Errorf("spawn at vertex %d: %w", spec.spawn, err)
		}
		if spec.task {
			if err := sched.AssignTask(id, spec.dest); err != nil {
				return fmt.Errorf("assign robot %d to vertex %d: %w", id, spec.dest, err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	var last core.FleetSnapshot
	err = sim.Run(ctx, sched, flagTicks, flagInterval, func(snap core.FleetSnapshot) error {
		last = snap
		if flagEachTick {
			return enc.Encode(snap)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !flagEachTick {
		if err := enc.Encode(last); err != nil {
			return err
		}
	}

	m := sched.Metrics()
	logger.Info("scenario finished",
		"level", name,
		"ticks", m.Ticks,
		"tasks_completed", m.TasksCompleted,
		"grants", m.Grants,
		"denials", m.Denials,
		"charger_reroutes", m.ChargerReroutes,
		"strandings", m.Strandings,
	)
	return nil
}
