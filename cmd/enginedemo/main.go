// Command enginedemo runs a small frame loop that exercises the memory
// manager, job systems, ECS world and resource pipeline together: it spawns
// entities with a couple of components, mutates them with ForEach2 every
// frame, and drains the render job system once per frame.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alfinacore/engine/ecs"
	"github.com/alfinacore/engine/engine"
)

type position struct{ X, Y float32 }
type velocity struct{ DX, DY float32 }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		frames    int
		entities  int
		profileOn string
		arenaMiB  int
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "enginedemo",
		Short: "Runs a short demo frame loop over the engine core",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch profileOn {
			case "off":
			case "cpu":
				p := profile.Start(profile.CPUProfile, profile.ProfilePath("."))
				defer p.Stop()
			case "mem":
				p := profile.Start(profile.MemProfile, profile.ProfilePath("."))
				defer p.Stop()
			default:
				return fmt.Errorf("unknown --profile mode %q", profileOn)
			}
			return run(frames, entities, arenaMiB, workers)
		},
	}

	cmd.Flags().IntVar(&frames, "frames", 120, "number of frames to simulate")
	cmd.Flags().IntVar(&entities, "entities", 10000, "number of entities to spawn")
	cmd.Flags().StringVar(&profileOn, "profile", "off", "profiling mode: cpu, mem, or off")
	cmd.Flags().IntVar(&arenaMiB, "arena-mib", 64, "memory arena size in MiB")
	cmd.Flags().IntVar(&workers, "workers", 0, "main job system worker count (0 = auto)")
	return cmd
}

func run(frames, entityCount, arenaMiB, workers int) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg := engine.DefaultConfig()
	cfg.ArenaSize = arenaMiB << 20
	cfg.MainWorkers = workers

	e := engine.Construct(cfg, log)
	defer e.Destruct()

	w := e.World()
	for i := 0; i < entityCount; i++ {
		ent := w.CreateEntity()
		ecs.AddComponent[position](w, ent)
		ecs.AddComponent[velocity](w, ent).DX = 1
	}

	start := time.Now()
	for frame := 0; frame < frames; frame++ {
		ecs.ForEach2(w, func(_ ecs.EntityHandle, p *position, v *velocity) {
			p.X += v.DX
			p.Y += v.DY
		})
		e.DispatchRenderFrame()
	}

	log.Infow("demo finished", "frames", frames, "entities", entityCount, "elapsed", time.Since(start))
	return nil
}
