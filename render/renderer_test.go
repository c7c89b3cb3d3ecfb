package render

import (
	"errors"
	"testing"

	"github.com/gogpu/glaze/gpu"
	"github.com/gogpu/glaze/scene"
)

func newTestRenderer(t *testing.T, be *fakeBackend, config Config) *Renderer {
	t.Helper()
	if config.Width == 0 {
		config.Width = 800
	}
	if config.Height == 0 {
		config.Height = 600
	}
	r, err := New(be, config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(r.Destroy)
	return r
}

// drawPipelines maps the draws of the first pass to pipeline labels.
func drawPipelines(be *fakeBackend) []string {
	var out []string
	for _, d := range be.passes[0].draws {
		out = append(out, be.pipelineNames[d.pipeline])
	}
	return out
}

func TestRenderFrameAlternatingBatches(t *testing.T) {
	// Quads at {1,3}, shadow at {2}, glyph at {4}: four batches, four draws,
	// quad and shadow sharing the unified pipeline.
	be := newFakeBackend()
	r := newTestRenderer(t, be, Config{
		GlyphAtlas: scene.NewBitmapAtlas(scene.BitmapAtlasConfig{Size: 256}),
	})

	sc := scene.New()
	sc.AddQuad(scene.Quad{Order: 1})
	sc.AddQuad(scene.Quad{Order: 3})
	sc.AddShadow(scene.Shadow{Order: 2})
	sc.AddGlyph(scene.GlyphInstance{Order: 4, UV: scene.Rect{Width: 8, Height: 8}})

	var stats FrameStats
	if err := r.RenderFrame(sc, &stats); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	want := []string{"glaze/unified", "glaze/unified", "glaze/unified", "glaze/Glyph"}
	got := drawPipelines(be)
	if len(got) != len(want) {
		t.Fatalf("draws = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("draw %d pipeline = %q, want %q", i, got[i], want[i])
		}
	}
	for i, d := range be.passes[0].draws {
		if d.instanceCount != 1 {
			t.Errorf("draw %d instances = %d, want 1", i, d.instanceCount)
		}
	}
	if stats.Batches != 4 || stats.DrawCalls != 4 || stats.Instances != 4 {
		t.Errorf("stats = %+v", stats)
	}
	if be.submits != 1 {
		t.Errorf("submits = %d, want 1", be.submits)
	}
}

func TestRenderFrameCoalescedQuads(t *testing.T) {
	be := newFakeBackend()
	r := newTestRenderer(t, be, Config{})

	sc := scene.New()
	sc.AddQuad(scene.Quad{Order: 5})
	sc.AddQuad(scene.Quad{Order: 6})

	var stats FrameStats
	if err := r.RenderFrame(sc, &stats); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if got := be.totalDraws(); got != 1 {
		t.Fatalf("draws = %d, want 1", got)
	}
	if n := be.passes[0].draws[0].instanceCount; n != 2 {
		t.Errorf("instanceCount = %d, want 2", n)
	}
}

func TestRenderFrameEmptyScene(t *testing.T) {
	// An empty scene still clears and submits, but binds and draws nothing.
	be := newFakeBackend()
	r := newTestRenderer(t, be, Config{})

	var stats FrameStats
	if err := r.RenderFrame(scene.New(), &stats); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if got := be.totalDraws(); got != 0 {
		t.Errorf("draws = %d, want 0", got)
	}
	if len(be.passes) != 1 || be.passes[0].target != gpu.InvalidID {
		t.Errorf("passes = %+v, want one surface pass", be.passes)
	}
	if stats.Batches != 0 || stats.DrawCalls != 0 {
		t.Errorf("stats = %+v, want zero", stats)
	}
	if be.submits != 1 {
		t.Errorf("submits = %d, want 1", be.submits)
	}
}

func TestRenderFrameGlyphsWithoutAtlas(t *testing.T) {
	// Glyph batches cannot draw without an atlas texture; they drop, the
	// frame continues.
	be := newFakeBackend()
	r := newTestRenderer(t, be, Config{})

	sc := scene.New()
	sc.AddQuad(scene.Quad{Order: 1})
	sc.AddGlyph(scene.GlyphInstance{Order: 2})

	var stats FrameStats
	if err := r.RenderFrame(sc, &stats); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if got := be.totalDraws(); got != 1 {
		t.Errorf("draws = %d, want 1 (quad only)", got)
	}
	if stats.SkippedBatches != 1 {
		t.Errorf("SkippedBatches = %d, want 1", stats.SkippedBatches)
	}
}

func TestRenderFrameUploadFailureDropsBatch(t *testing.T) {
	be := newFakeBackend()
	r := newTestRenderer(t, be, Config{})

	sc := scene.New()
	sc.AddQuad(scene.Quad{Order: 1})

	be.ephemeralErr = errors.New("boom")
	var stats FrameStats
	if err := r.RenderFrame(sc, &stats); err != nil {
		t.Fatalf("RenderFrame should absorb upload failure, got %v", err)
	}
	if got := be.totalDraws(); got != 0 {
		t.Errorf("draws = %d, want 0", got)
	}
	if stats.SkippedBatches != 1 {
		t.Errorf("SkippedBatches = %d, want 1", stats.SkippedBatches)
	}
	if be.submits != 1 {
		t.Errorf("submits = %d, want 1", be.submits)
	}
}

func TestRenderFrameUploadPathSelection(t *testing.T) {
	// One quad is 128 bytes: ephemeral. 32 quads are 4096 bytes: ring.
	be := newFakeBackend()
	r := newTestRenderer(t, be, Config{})

	sc := scene.New()
	sc.AddQuad(scene.Quad{Order: 1})
	var stats FrameStats
	if err := r.RenderFrame(sc, &stats); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if stats.EphemeralUploads != 1 || stats.RingUploads != 0 {
		t.Errorf("small frame: %d ephemeral / %d ring, want 1/0",
			stats.EphemeralUploads, stats.RingUploads)
	}
	if stats.BytesUploaded != scene.UnifiedSize {
		t.Errorf("BytesUploaded = %d, want %d", stats.BytesUploaded, scene.UnifiedSize)
	}

	sc.Reset()
	for i := 0; i < 32; i++ {
		sc.AddQuad(scene.Quad{Order: scene.DrawOrder(i)})
	}
	if err := r.RenderFrame(sc, &stats); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if stats.EphemeralUploads != 0 || stats.RingUploads != 1 {
		t.Errorf("large frame: %d ephemeral / %d ring, want 0/1",
			stats.EphemeralUploads, stats.RingUploads)
	}
}

func TestRenderFrameRingAdvancesAcrossFrames(t *testing.T) {
	be := newFakeBackend()
	r := newTestRenderer(t, be, Config{})

	sc := scene.New()
	for i := 0; i < 64; i++ {
		sc.AddQuad(scene.Quad{Order: scene.DrawOrder(i)})
	}

	buffers := make(map[gpu.BufferID]bool)
	for frame := 0; frame < ringDepth; frame++ {
		if err := r.RenderFrame(sc, nil); err != nil {
			t.Fatalf("frame %d: %v", frame, err)
		}
		pass := be.passes[len(be.passes)-1]
		if len(pass.draws) != 1 {
			t.Fatalf("frame %d: draws = %d, want 1", frame, len(pass.draws))
		}
		buffers[pass.draws[0].buffer] = true
	}
	if len(buffers) != ringDepth {
		t.Errorf("frames drew from %d distinct buffers, want %d", len(buffers), ringDepth)
	}
}

func TestRenderFrameAtlasSyncedOncePerGeneration(t *testing.T) {
	be := newFakeBackend()
	atlas := scene.NewBitmapAtlas(scene.BitmapAtlasConfig{Size: 256})
	r := newTestRenderer(t, be, Config{GlyphAtlas: atlas})

	sc := scene.New()
	sc.AddGlyph(scene.GlyphInstance{Order: 1, UV: scene.Rect{Width: 8, Height: 8}})

	for i := 0; i < 5; i++ {
		if err := r.RenderFrame(sc, nil); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if be.createTextureCalls != 1 || be.uploadTexCalls != 1 {
		t.Errorf("atlas syncs = %d creates / %d uploads over 5 frames, want 1/1",
			be.createTextureCalls, be.uploadTexCalls)
	}
}

func TestRenderFrameSubmitFailure(t *testing.T) {
	be := newFakeBackend()
	r := newTestRenderer(t, be, Config{})

	be.submitErr = errors.New("device lost")
	err := r.RenderFrame(scene.New(), nil)
	if !errors.Is(err, be.submitErr) {
		t.Errorf("err = %v, want wrapped submit error", err)
	}
}

func TestNewPipelineFailure(t *testing.T) {
	be := newFakeBackend()
	be.pipelineErr = errors.New("compile error")
	if _, err := New(be, Config{Width: 100, Height: 100}); !errors.Is(err, be.pipelineErr) {
		t.Errorf("New err = %v, want wrapped pipeline error", err)
	}
}

func TestNewInvalidSize(t *testing.T) {
	be := newFakeBackend()
	if _, err := New(be, Config{}); err == nil {
		t.Error("New with zero size should fail")
	}
}

func TestRendererWithNoopBackend(t *testing.T) {
	// The renderer runs headless against the no-op backend.
	be := gpu.NewNoopBackend()
	r, err := New(be, Config{Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Destroy()

	sc := scene.New()
	sc.AddShadow(scene.Shadow{Order: 1, BlurRadius: 4})
	sc.AddQuad(scene.Quad{Order: 2})

	var stats FrameStats
	if err := r.RenderFrame(sc, &stats); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if be.DrawCalls != 2 || be.Submits != 1 {
		t.Errorf("noop backend saw %d draws / %d submits, want 2/1", be.DrawCalls, be.Submits)
	}
}
