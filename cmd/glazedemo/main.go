// Command glazedemo renders a synthetic UI frame headlessly and prints the
// per-frame pipeline statistics.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/glaze"
	"github.com/gogpu/glaze/gpu"
	"github.com/gogpu/glaze/render"
	"github.com/gogpu/glaze/scene"
	"github.com/gogpu/glaze/text"
)

func main() {
	var (
		width     = flag.Int("width", 800, "frame width")
		height    = flag.Int("height", 600, "frame height")
		frames    = flag.Int("frames", 3, "number of frames to render")
		grayscale = flag.Bool("grayscale", false, "append a grayscale post-process pass")
		verbose   = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	glaze.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	source, err := text.NewSource(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	layout := text.NewLayout(source, 0)

	var effects []render.PostEffect
	if *grayscale {
		effects = append(effects, render.GrayscaleEffect())
	}

	backend := gpu.NewNoopBackend()
	renderer, err := render.New(backend, render.Config{
		Width:       uint32(*width),
		Height:      uint32(*height),
		GlyphAtlas:  layout.Atlas(),
		PostEffects: effects,
	})
	if err != nil {
		log.Fatalf("create renderer: %v", err)
	}
	defer renderer.Destroy()

	sc := scene.New()
	var stats render.FrameStats
	for frame := 0; frame < *frames; frame++ {
		sc.Reset()
		buildFrame(sc, layout, float32(*width), float32(*height))

		if err := renderer.RenderFrame(sc, &stats); err != nil {
			log.Fatalf("frame %d: %v", frame, err)
		}
		glaze.Logger().Info("frame rendered",
			"frame", frame,
			"batches", stats.Batches,
			"draw_calls", stats.DrawCalls,
			"instances", stats.Instances,
			"bytes_uploaded", stats.BytesUploaded,
			"atlas_uploads", stats.AtlasUploads,
			"post_passes", stats.PostPasses,
		)
	}
}

// buildFrame assembles a card-like panel: drop shadow, background, header
// bar, a row of colored chips and two text lines.
func buildFrame(sc *scene.Scene, layout *text.Layout, width, height float32) {
	clip := scene.Rect{Width: width, Height: height}
	panel := scene.Rect{X: 80, Y: 60, Width: width - 160, Height: height - 120}

	sc.AddShadow(scene.Shadow{
		Order:      1,
		Bounds:     panel,
		Color:      scene.RGBA{A: 0.35},
		Radii:      scene.Corners{TopLeft: 12, TopRight: 12, BottomRight: 12, BottomLeft: 12},
		BlurRadius: 16,
		OffsetY:    6,
		Clip:       clip,
	})
	sc.AddQuad(scene.Quad{
		Order:  2,
		Bounds: panel,
		Color:  scene.RGBA{R: 0.97, G: 0.97, B: 0.98, A: 1},
		Radii:  scene.Corners{TopLeft: 12, TopRight: 12, BottomRight: 12, BottomLeft: 12},
		Clip:   clip,
	})
	sc.AddQuad(scene.Quad{
		Order:  3,
		Bounds: scene.Rect{X: panel.X, Y: panel.Y, Width: panel.Width, Height: 48},
		Color:  scene.RGBA{R: 0.18, G: 0.35, B: 0.85, A: 1},
		Radii:  scene.Corners{TopLeft: 12, TopRight: 12},
		Clip:   clip,
	})

	for i := 0; i < 4; i++ {
		x := panel.X + 24 + float32(i)*72
		sc.AddQuad(scene.Quad{
			Order:        4,
			Bounds:       scene.Rect{X: x, Y: panel.Y + 72, Width: 56, Height: 56},
			Color:        scene.RGBA{R: 0.2 * float32(i+1), G: 0.5, B: 0.9 - 0.2*float32(i), A: 1},
			Radii:        scene.Corners{TopLeft: 8, TopRight: 8, BottomRight: 8, BottomLeft: 8},
			BorderWidths: [4]float32{2, 2, 2, 2},
			BorderColor:  scene.RGBA{A: 0.5},
			Clip:         clip,
		})
	}

	layout.AppendLine(sc, "glaze demo", text.LineOptions{
		X: float64(panel.X) + 24, Y: float64(panel.Y) + 32,
		Size:  20,
		Color: scene.RGBA{R: 1, G: 1, B: 1, A: 1},
		Clip:  clip,
		Order: 5,
	})
	layout.AppendLine(sc, "Batched quads, shadows and glyphs in one pass.", text.LineOptions{
		X: float64(panel.X) + 24, Y: float64(panel.Y) + 160,
		Size:  14,
		Color: scene.RGBA{R: 0.15, G: 0.15, B: 0.2, A: 1},
		Clip:  clip,
		Order: 6,
	})
}
