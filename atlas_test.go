package scroll2d

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Test JSON fixtures ---

const singlePageJSON = `{
  "frames": {
    "hero.png": {
      "frame": {"x": 0, "y": 0, "w": 64, "h": 64},
      "rotated": false,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 64, "h": 64},
      "sourceSize": {"w": 64, "h": 64}
    },
    "enemy.png": {
      "frame": {"x": 64, "y": 0, "w": 32, "h": 48},
      "rotated": false,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 32, "h": 48},
      "sourceSize": {"w": 32, "h": 48}
    },
    "trimmed.png": {
      "frame": {"x": 100, "y": 50, "w": 60, "h": 58},
      "rotated": false,
      "trimmed": true,
      "spriteSourceSize": {"x": 2, "y": 3, "w": 60, "h": 58},
      "sourceSize": {"w": 64, "h": 64}
    },
    "rotated.png": {
      "frame": {"x": 200, "y": 0, "w": 48, "h": 32},
      "rotated": true,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 48, "h": 32},
      "sourceSize": {"w": 32, "h": 48}
    }
  },
  "meta": {
    "image": "atlas.png",
    "size": {"w": 1024, "h": 1024}
  }
}`

const multiPageJSON = `{
  "textures": [
    {
      "image": "atlas-0.png",
      "frames": {
        "page0_sprite.png": {
          "frame": {"x": 0, "y": 0, "w": 64, "h": 64},
          "rotated": false,
          "trimmed": false,
          "spriteSourceSize": {"x": 0, "y": 0, "w": 64, "h": 64},
          "sourceSize": {"w": 64, "h": 64}
        }
      }
    },
    {
      "image": "atlas-1.png",
      "frames": {
        "page1_sprite.png": {
          "frame": {"x": 10, "y": 20, "w": 50, "h": 50},
          "rotated": false,
          "trimmed": false,
          "spriteSourceSize": {"x": 0, "y": 0, "w": 50, "h": 50},
          "sourceSize": {"w": 50, "h": 50}
        }
      }
    }
  ]
}`

// --- LoadAtlas tests ---

func loadTestAtlas(t *testing.T) *Atlas {
	t.Helper()
	page := ebiten.NewImage(1024, 1024)
	atlas, err := LoadAtlas([]byte(singlePageJSON), []*ebiten.Image{page})
	if err != nil {
		t.Fatalf("LoadAtlas: %v", err)
	}
	return atlas
}

func TestLoadAtlas_SinglePage_RegionCount(t *testing.T) {
	atlas := loadTestAtlas(t)
	if got := atlas.Len(); got != 4 {
		t.Errorf("region count = %d, want 4", got)
	}
}

func TestLoadAtlas_RegionLookup_Exists(t *testing.T) {
	atlas := loadTestAtlas(t)

	r, ok := atlas.Region("hero.png")
	if !ok {
		t.Fatal("hero.png not found")
	}
	if r.X != 0 || r.Y != 0 || r.Width != 64 || r.Height != 64 {
		t.Errorf("hero.png region = {X:%d Y:%d W:%d H:%d}, want {0 0 64 64}", r.X, r.Y, r.Width, r.Height)
	}
	if r.Page != 0 {
		t.Errorf("hero.png Page = %d, want 0", r.Page)
	}

	r2, _ := atlas.Region("enemy.png")
	if r2.X != 64 || r2.Y != 0 || r2.Width != 32 || r2.Height != 48 {
		t.Errorf("enemy.png region = {X:%d Y:%d W:%d H:%d}, want {64 0 32 48}", r2.X, r2.Y, r2.Width, r2.Height)
	}
}

func TestLoadAtlas_RegionLookup_Missing(t *testing.T) {
	atlas := loadTestAtlas(t)
	if _, ok := atlas.Region("nonexistent.png"); ok {
		t.Error("Region reported a missing name as present")
	}
	if atlas.Has("nonexistent.png") {
		t.Error("Has(nonexistent.png) = true")
	}
	if !atlas.Has("enemy.png") {
		t.Error("Has(enemy.png) = false")
	}
}

func TestAtlas_Image_MissingReturnsMagenta(t *testing.T) {
	atlas := loadTestAtlas(t)
	img := atlas.Image("nonexistent.png")
	if img != magentaImage() {
		t.Error("missing name should return the shared placeholder")
	}
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 1 || h != 1 {
		t.Errorf("placeholder size = %dx%d, want 1x1", w, h)
	}
}

func TestAtlas_Image_MissingPage(t *testing.T) {
	atlas, err := LoadAtlas([]byte(multiPageJSON), []*ebiten.Image{ebiten.NewImage(512, 512)})
	if err != nil {
		t.Fatalf("LoadAtlas: %v", err)
	}
	if atlas.Image("page1_sprite.png") != magentaImage() {
		t.Error("region on a missing page should return the placeholder")
	}
}

func TestAtlas_Image_Cached(t *testing.T) {
	atlas := loadTestAtlas(t)
	a := atlas.Image("hero.png")
	b := atlas.Image("hero.png")
	if a != b {
		t.Error("Image should cache extracted tiles")
	}
	if w, h := a.Bounds().Dx(), a.Bounds().Dy(); w != 64 || h != 64 {
		t.Errorf("hero size = %dx%d, want 64x64", w, h)
	}
}

func TestAtlas_Image_Untrimmed(t *testing.T) {
	atlas := loadTestAtlas(t)
	img := atlas.Image("trimmed.png")
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 64 || h != 64 {
		t.Errorf("trimmed image size = %dx%d, want the source size 64x64", w, h)
	}
}

func TestAtlas_Image_Unrotated(t *testing.T) {
	atlas := loadTestAtlas(t)
	img := atlas.Image("rotated.png")
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 32 || h != 48 {
		t.Errorf("rotated image size = %dx%d, want 32x48", w, h)
	}
}

func TestLoadAtlas_TrimmedRegion(t *testing.T) {
	atlas := loadTestAtlas(t)

	r, _ := atlas.Region("trimmed.png")
	if r.OffsetX != 2 || r.OffsetY != 3 {
		t.Errorf("trimmed OffsetX/Y = %d/%d, want 2/3", r.OffsetX, r.OffsetY)
	}
	if r.OriginalW != 64 || r.OriginalH != 64 {
		t.Errorf("trimmed OriginalW/H = %d/%d, want 64/64", r.OriginalW, r.OriginalH)
	}
	if r.Width != 60 || r.Height != 58 {
		t.Errorf("trimmed Width/Height = %d/%d, want 60/58", r.Width, r.Height)
	}
}

func TestLoadAtlas_RotatedRegion(t *testing.T) {
	atlas := loadTestAtlas(t)

	r, _ := atlas.Region("rotated.png")
	if !r.Rotated {
		t.Error("rotated.png Rotated = false, want true")
	}
	// Regions store the unrotated size.
	if r.Width != 32 || r.Height != 48 {
		t.Errorf("rotated Width/Height = %d/%d, want 32/48", r.Width, r.Height)
	}
}

func TestLoadAtlas_MultiPage(t *testing.T) {
	page0 := ebiten.NewImage(512, 512)
	page1 := ebiten.NewImage(512, 512)
	atlas, err := LoadAtlas([]byte(multiPageJSON), []*ebiten.Image{page0, page1})
	if err != nil {
		t.Fatalf("LoadAtlas: %v", err)
	}

	if got := atlas.Len(); got != 2 {
		t.Errorf("region count = %d, want 2", got)
	}

	r0, _ := atlas.Region("page0_sprite.png")
	if r0.Page != 0 {
		t.Errorf("page0_sprite Page = %d, want 0", r0.Page)
	}

	r1, _ := atlas.Region("page1_sprite.png")
	if r1.Page != 1 {
		t.Errorf("page1_sprite Page = %d, want 1", r1.Page)
	}
	if r1.X != 10 || r1.Y != 20 {
		t.Errorf("page1_sprite X/Y = %d/%d, want 10/20", r1.X, r1.Y)
	}
}

func TestLoadAtlas_InvalidJSON(t *testing.T) {
	_, err := LoadAtlas([]byte(`{invalid`), nil)
	if err == nil {
		t.Error("expected error for invalid JSON, got nil")
	}
}

func TestLoadAtlas_NoFramesOrTextures(t *testing.T) {
	_, err := LoadAtlas([]byte(`{"meta":{}}`), nil)
	if err == nil {
		t.Fatal("expected error for JSON with no frames/textures, got nil")
	}
	if !strings.Contains(err.Error(), "neither") {
		t.Errorf("error message = %q, want mention of neither", err.Error())
	}
}

// --- NewGridAtlas tests ---

func TestNewGridAtlas_SlicesSheet(t *testing.T) {
	sheet := ebiten.NewImage(100, 40)
	atlas, err := NewGridAtlas(sheet, 32, 16, func(col, row int) string {
		return fmt.Sprintf("%d_%d", col, row)
	})
	if err != nil {
		t.Fatalf("NewGridAtlas: %v", err)
	}
	// 100/32 = 3 columns, 40/16 = 2 rows; partial cells are skipped.
	if atlas.Len() != 6 {
		t.Errorf("region count = %d, want 6", atlas.Len())
	}
	r, ok := atlas.Region("2_1")
	if !ok {
		t.Fatal("2_1 not found")
	}
	if r.X != 64 || r.Y != 16 || r.Width != 32 || r.Height != 16 {
		t.Errorf("2_1 region = {X:%d Y:%d W:%d H:%d}, want {64 16 32 16}", r.X, r.Y, r.Width, r.Height)
	}
	if atlas.Has("3_0") {
		t.Error("partial column should not produce a region")
	}
}

func TestNewGridAtlas_InvalidCell(t *testing.T) {
	if _, err := NewGridAtlas(ebiten.NewImage(8, 8), 0, 8, nil); err == nil {
		t.Error("expected error for zero cell width")
	}
}

// --- MagentaImage tests ---

func TestMagentaImage_Singleton(t *testing.T) {
	img1 := magentaImage()
	img2 := magentaImage()
	if img1 != img2 {
		t.Error("magentaImage returned different images")
	}
}

// --- Benchmarks ---

func BenchmarkLoadAtlas_SinglePage(b *testing.B) {
	data := []byte(singlePageJSON)
	page := ebiten.NewImage(1024, 1024)
	pages := []*ebiten.Image{page}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = LoadAtlas(data, pages)
	}
}

func BenchmarkAtlas_Region_Hit(b *testing.B) {
	page := ebiten.NewImage(1024, 1024)
	atlas, _ := LoadAtlas([]byte(singlePageJSON), []*ebiten.Image{page})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = atlas.Region("hero.png")
	}
}
