package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/castle/app"
	"github.com/gekko3d/castle/core"
	"github.com/gekko3d/castle/frame"
	"github.com/gekko3d/castle/gpu"
	"github.com/gekko3d/castle/waves"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "Path to a YAML config overriding the defaults")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if err := run(*configPath, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "castle: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, debug bool) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log := core.NewDefaultLogger("castle", debug || cfg.Debug)

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()

	engine, err := gpu.NewEngine(window, log)
	if err != nil {
		return err
	}
	defer engine.Flush()

	pipelines, err := gpu.NewPipelines(engine)
	if err != nil {
		return err
	}

	registry := gpu.NewRegistry(engine)
	defer registry.Release()

	grassTex, err := registry.RegisterTexture(gpu.GrassTexture(256), pipelines)
	if err != nil {
		return err
	}
	waterTex, err := registry.RegisterTexture(gpu.WaterTexture(256), pipelines)
	if err != nil {
		return err
	}
	stoneTex, err := registry.RegisterTexture(gpu.StoneTexture(256), pipelines)
	if err != nil {
		return err
	}
	roofTex, err := registry.RegisterTexture(gpu.RoofTexture(256), pipelines)
	if err != nil {
		return err
	}

	field, err := waves.New(cfg.Waves.Rows, cfg.Waves.Cols,
		cfg.Waves.SpatialStep, cfg.Waves.TimeStep, cfg.Waves.Speed, cfg.Waves.Damping)
	if err != nil {
		return err
	}

	scene, water, err := app.BuildCastleScene(cfg, field, app.SceneAssets{
		Meshes:   registry,
		GrassTex: grassTex,
		WaterTex: waterTex,
		StoneTex: stoneTex,
		RoofTex:  roofTex,
	})
	if err != nil {
		return err
	}

	renderer := gpu.NewRenderer(engine, pipelines, registry, log)
	defer renderer.Release()

	ring, err := frame.NewRing(cfg.FramesInFlight, engine, renderer.Allocator(gpu.SlotShape{
		ObjectCount:     scene.ItemCount(),
		MaterialCount:   scene.MaterialCount(),
		WaveVertexCount: field.VertexCount(),
	}))
	if err != nil {
		return err
	}

	telemetry, err := app.NewTelemetryWriter(cfg.Telemetry.Dir)
	if err != nil {
		return err
	}
	defer telemetry.Close()

	camera := core.NewCamera()
	camera.Position = mgl32.Vec3{0, 18, -55}
	camera.SetLens(mgl32.DegToRad(45),
		float32(cfg.Window.Width)/float32(cfg.Window.Height), 1, 1000)

	orch, err := app.NewOrchestrator(cfg, log, scene, camera, field, water, ring, renderer, telemetry)
	if err != nil {
		return err
	}
	orch.Initialize()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		if err := engine.Resize(width, height); err != nil {
			log.Errorf("resize: %v", err)
			return
		}
		if height > 0 {
			camera.SetLens(mgl32.DegToRad(45), float32(width)/float32(height), 1, 1000)
		}
	})

	mouseCaptured := false
	var lastX, lastY float64
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if mouseCaptured {
			camera.Rotate(
				float32(xpos-lastX)*cfg.Camera.LookSpeed,
				-float32(ypos-lastY)*cfg.Camera.LookSpeed,
			)
		}
		lastX, lastY = xpos, ypos
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyTab && action == glfw.Press {
			mouseCaptured = !mouseCaptured
			if mouseCaptured {
				w.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
			} else {
				w.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
			}
		}
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
		if key == glfw.KeySpace && action == glfw.Press {
			// Drop a big splash mid-pond.
			orch.Disturb(field.RowCount()/2, field.ColumnCount()/2, 1.0)
		}
	})

	timer := app.NewGameTimer()
	for !window.ShouldClose() {
		glfw.PollEvents()

		timer.Tick()
		moveCamera(window, camera, cfg.Camera.MoveSpeed*timer.DeltaTime())

		if err := orch.Tick(timer.DeltaTime(), timer.TotalTime()); err != nil {
			return err
		}
	}
	return nil
}

func moveCamera(window *glfw.Window, camera *core.Camera, step float32) {
	if window.GetKey(glfw.KeyW) == glfw.Press {
		camera.Walk(step)
	}
	if window.GetKey(glfw.KeyS) == glfw.Press {
		camera.Walk(-step)
	}
	if window.GetKey(glfw.KeyD) == glfw.Press {
		camera.Strafe(step)
	}
	if window.GetKey(glfw.KeyA) == glfw.Press {
		camera.Strafe(-step)
	}
}
