package scroll2d

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestLoadFont_InvalidData(t *testing.T) {
	if _, err := LoadFont([]byte("not a font")); err == nil {
		t.Error("expected error for invalid font data")
	}
}

func TestLoadFont_Regular(t *testing.T) {
	src, err := LoadFont(goregular.TTF)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	if src == nil {
		t.Fatal("LoadFont returned nil source")
	}
}

func TestDefaultFontSource_Singleton(t *testing.T) {
	a := defaultFontSource()
	b := defaultFontSource()
	if a == nil || a != b {
		t.Error("defaultFontSource should return one shared source")
	}
}

func TestMeasureText_GrowsWithSize(t *testing.T) {
	w1, h1 := MeasureText(nil, "Hello", 12)
	w2, h2 := MeasureText(nil, "Hello", 24)
	if w1 <= 0 || h1 <= 0 {
		t.Fatalf("MeasureText = %vx%v, want positive", w1, h1)
	}
	if w2 <= w1 || h2 <= h1 {
		t.Errorf("24px %vx%v should exceed 12px %vx%v", w2, h2, w1, h1)
	}
}

func TestMeasureText_Empty(t *testing.T) {
	w, _ := MeasureText(nil, "", 16)
	if w != 0 {
		t.Errorf("width of empty string = %v, want 0", w)
	}
}

func TestMeasureText_MultiLine(t *testing.T) {
	_, h1 := MeasureText(nil, "a", 16)
	_, h2 := MeasureText(nil, "a\nb", 16)
	if h2 <= h1 {
		t.Errorf("two lines height %v should exceed one line %v", h2, h1)
	}
}

func BenchmarkMeasureText(b *testing.B) {
	src := defaultFontSource()
	for b.Loop() {
		MeasureText(src, "The quick brown fox", 16)
	}
}
