package scene

import (
	"bytes"
	"errors"
	"testing"
)

func TestBitmapAtlasDefaults(t *testing.T) {
	a := NewBitmapAtlas(BitmapAtlasConfig{})
	if a.Size() != DefaultAtlasSize {
		t.Errorf("Size() = %d, want %d", a.Size(), DefaultAtlasSize)
	}
	if a.BytesPerPixel() != 1 {
		t.Errorf("BytesPerPixel() = %d, want 1", a.BytesPerPixel())
	}
	if len(a.Data()) != DefaultAtlasSize*DefaultAtlasSize {
		t.Errorf("len(Data()) = %d", len(a.Data()))
	}
	if a.Generation() == 0 {
		t.Error("Generation() should start above zero")
	}
}

func TestBitmapAtlasMinSizeClamp(t *testing.T) {
	a := NewBitmapAtlas(BitmapAtlasConfig{Size: 10})
	if a.Size() != MinAtlasSize {
		t.Errorf("Size() = %d, want %d", a.Size(), MinAtlasSize)
	}
}

func TestBitmapAtlasAllocate(t *testing.T) {
	a := NewBitmapAtlas(BitmapAtlasConfig{Size: 256})

	r1, err := a.Allocate(64, 32)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if r1.X != 0 || r1.Y != 0 || r1.Width != 64 || r1.Height != 32 {
		t.Errorf("first region = %v", r1)
	}

	// Second allocation of the same height lands on the same shelf.
	r2, err := a.Allocate(64, 32)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if r2.Y != 0 || r2.X <= r1.X {
		t.Errorf("second region = %v, want same shelf right of %v", r2, r1)
	}

	// A taller allocation opens a new shelf below.
	r3, err := a.Allocate(64, 64)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if r3.Y <= r1.Y {
		t.Errorf("taller region %v should open a shelf below %v", r3, r1)
	}
}

func TestBitmapAtlasAllocateFull(t *testing.T) {
	a := NewBitmapAtlas(BitmapAtlasConfig{Size: 256})
	if _, err := a.Allocate(512, 16); !errors.Is(err, ErrAtlasFull) {
		t.Errorf("oversize Allocate err = %v, want ErrAtlasFull", err)
	}

	// Fill with full-width shelves until it runs out.
	var err error
	for i := 0; i < 100; i++ {
		if _, err = a.Allocate(256, 64); err != nil {
			break
		}
	}
	if !errors.Is(err, ErrAtlasFull) {
		t.Errorf("exhausted Allocate err = %v, want ErrAtlasFull", err)
	}
}

func TestBitmapAtlasWriteBumpsGeneration(t *testing.T) {
	a := NewBitmapAtlas(BitmapAtlasConfig{Size: 256})
	r, err := a.Allocate(2, 2)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	before := a.Generation()
	pixels := []byte{1, 2, 3, 4}
	if err := a.Write(r, pixels); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if a.Generation() <= before {
		t.Errorf("Generation() = %d, want > %d", a.Generation(), before)
	}

	// Verify row-major placement.
	stride := int(a.Size())
	got := []byte{
		a.Data()[r.Y*stride+r.X], a.Data()[r.Y*stride+r.X+1],
		a.Data()[(r.Y+1)*stride+r.X], a.Data()[(r.Y+1)*stride+r.X+1],
	}
	if !bytes.Equal(got, pixels) {
		t.Errorf("atlas content = %v, want %v", got, pixels)
	}
}

func TestBitmapAtlasWriteErrors(t *testing.T) {
	a := NewBitmapAtlas(BitmapAtlasConfig{Size: 256})

	err := a.Write(Region{X: 250, Y: 250, Width: 16, Height: 16}, make([]byte, 256))
	if !errors.Is(err, ErrRegionOutOfBounds) {
		t.Errorf("out-of-bounds Write err = %v, want ErrRegionOutOfBounds", err)
	}

	r, _ := a.Allocate(4, 4)
	err = a.Write(r, make([]byte, 3))
	if !errors.Is(err, ErrRegionSizeMismatch) {
		t.Errorf("short Write err = %v, want ErrRegionSizeMismatch", err)
	}
}

func TestBitmapAtlasReset(t *testing.T) {
	a := NewBitmapAtlas(BitmapAtlasConfig{Size: 256})
	r, _ := a.Allocate(4, 4)
	_ = a.Write(r, bytes.Repeat([]byte{0xFF}, 16))

	before := a.Generation()
	a.Reset()
	if a.Generation() <= before {
		t.Error("Reset should bump the generation")
	}
	if a.Data()[0] != 0 {
		t.Error("Reset should zero the bitmap")
	}

	// Packing restarts at the origin.
	r2, err := a.Allocate(4, 4)
	if err != nil {
		t.Fatalf("Allocate after Reset: %v", err)
	}
	if r2.X != 0 || r2.Y != 0 {
		t.Errorf("first region after Reset = %v, want origin", r2)
	}
}

func TestRegionString(t *testing.T) {
	r := Region{X: 1, Y: 2, Width: 3, Height: 4}
	if got := r.String(); got != "Region(1,2 3x4)" {
		t.Errorf("String() = %q", got)
	}
}
