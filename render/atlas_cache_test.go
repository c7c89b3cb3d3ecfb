package render

import (
	"errors"
	"testing"

	"github.com/gogpu/glaze/gpu"
	"github.com/gogpu/glaze/scene"
)

// stubAtlas lets tests pin size and generation directly.
type stubAtlas struct {
	size uint32
	gen  uint32
	data []byte
}

func (a *stubAtlas) Size() uint32       { return a.size }
func (a *stubAtlas) Generation() uint32 { return a.gen }
func (a *stubAtlas) Data() []byte       { return a.data }

func TestAtlasCacheSyncOncePerGeneration(t *testing.T) {
	// Scenario: five syncs with an unchanged generation create and upload
	// exactly once.
	be := newFakeBackend()
	c := NewAtlasCache(be, gpu.TextureFormatR8Unorm, "test")
	atlas := &stubAtlas{size: 256, gen: 1, data: make([]byte, 256*256)}

	var stats FrameStats
	var tex gpu.TextureID
	for i := 0; i < 5; i++ {
		got, err := c.Sync(atlas, &stats)
		if err != nil {
			t.Fatalf("Sync %d: %v", i, err)
		}
		if i == 0 {
			tex = got
		} else if got != tex {
			t.Errorf("Sync %d returned %d, want stable texture %d", i, got, tex)
		}
	}

	if be.createTextureCalls != 1 {
		t.Errorf("texture creations = %d, want 1", be.createTextureCalls)
	}
	if be.uploadTexCalls != 1 {
		t.Errorf("texture uploads = %d, want 1", be.uploadTexCalls)
	}
	if stats.AtlasCreates != 1 || stats.AtlasUploads != 1 {
		t.Errorf("stats = %d creates / %d uploads, want 1/1", stats.AtlasCreates, stats.AtlasUploads)
	}
}

func TestAtlasCacheGenerationBumpReuploads(t *testing.T) {
	be := newFakeBackend()
	c := NewAtlasCache(be, gpu.TextureFormatR8Unorm, "test")
	atlas := &stubAtlas{size: 256, gen: 1, data: make([]byte, 256*256)}

	var stats FrameStats
	tex1, err := c.Sync(atlas, &stats)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	atlas.gen = 2
	tex2, err := c.Sync(atlas, &stats)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if tex1 != tex2 {
		t.Errorf("same-size resync recreated the texture: %d != %d", tex1, tex2)
	}
	if be.createTextureCalls != 1 {
		t.Errorf("texture creations = %d, want 1", be.createTextureCalls)
	}
	if be.uploadTexCalls != 2 {
		t.Errorf("texture uploads = %d, want 2", be.uploadTexCalls)
	}
}

func TestAtlasCacheSizeChangeRecreates(t *testing.T) {
	be := newFakeBackend()
	c := NewAtlasCache(be, gpu.TextureFormatR8Unorm, "test")
	atlas := &stubAtlas{size: 256, gen: 1, data: make([]byte, 256*256)}

	var stats FrameStats
	tex1, _ := c.Sync(atlas, &stats)

	atlas.size = 512
	atlas.gen = 2
	atlas.data = make([]byte, 512*512)
	tex2, err := c.Sync(atlas, &stats)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if tex1 == tex2 {
		t.Error("size change should allocate a new texture")
	}
	if len(be.destroyedTextures) != 1 || be.destroyedTextures[0] != tex1 {
		t.Errorf("old texture not destroyed: %v", be.destroyedTextures)
	}
}

func TestAtlasCacheUploadFailureKeepsStale(t *testing.T) {
	be := newFakeBackend()
	c := NewAtlasCache(be, gpu.TextureFormatR8Unorm, "test")
	atlas := &stubAtlas{size: 256, gen: 1, data: make([]byte, 256*256)}

	var stats FrameStats
	tex, err := c.Sync(atlas, &stats)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	// A failed re-upload keeps the stale texture bound and retries later.
	atlas.gen = 2
	wantErr := errors.New("boom")
	be.uploadTexErr = wantErr
	got, err := c.Sync(atlas, &stats)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped %v", err, wantErr)
	}
	if got != tex {
		t.Errorf("failed sync returned %d, want stale texture %d", got, tex)
	}

	be.uploadTexErr = nil
	if _, err := c.Sync(atlas, &stats); err != nil {
		t.Fatalf("retry Sync: %v", err)
	}
	if stats.AtlasUploads != 2 {
		t.Errorf("AtlasUploads = %d, want 2", stats.AtlasUploads)
	}
}

func TestAtlasCacheWithBitmapAtlas(t *testing.T) {
	// The shelf-packed bitmap atlas drives the cache end to end: a write
	// bumps the generation, so the next sync re-uploads.
	be := newFakeBackend()
	c := NewAtlasCache(be, gpu.TextureFormatR8Unorm, "test")
	atlas := scene.NewBitmapAtlas(scene.BitmapAtlasConfig{Size: 256})

	var stats FrameStats
	if _, err := c.Sync(atlas, &stats); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	r, err := atlas.Allocate(4, 4)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := atlas.Write(r, make([]byte, 16)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, err := c.Sync(atlas, &stats); err != nil {
		t.Fatalf("Sync after write: %v", err)
	}
	if be.uploadTexCalls != 2 {
		t.Errorf("texture uploads = %d, want 2", be.uploadTexCalls)
	}
}
