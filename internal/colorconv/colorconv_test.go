package colorconv

import "testing"

func solidRGBA(w, h int, r, g, b byte) []byte {
	pix := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		pix[i*4] = r
		pix[i*4+1] = g
		pix[i*4+2] = b
		pix[i*4+3] = 255
	}
	return pix
}

func TestRGBToYUV420Dimensions(t *testing.T) {
	pix := solidRGBA(4, 4, 10, 20, 30)
	y, u, v, err := RGBToYUV420(pix, 4, 4, 32)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(y) != 16 {
		t.Fatalf("y plane len = %d, want 16", len(y))
	}
	if len(u) != 4 || len(v) != 4 {
		t.Fatalf("chroma plane len = %d/%d, want 4/4", len(u), len(v))
	}
}

func TestRGBToYUV420Black(t *testing.T) {
	pix := solidRGBA(2, 2, 0, 0, 0)
	y, u, v, err := RGBToYUV420(pix, 2, 2, 32)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	for i, sample := range y {
		if sample != 0 {
			t.Fatalf("y[%d] = %d, want 0", i, sample)
		}
	}
	if u[0] != 128 || v[0] != 128 {
		t.Fatalf("chroma for black pixel = (%d,%d), want (128,128)", u[0], v[0])
	}
}

func TestRGBToYUV420White(t *testing.T) {
	pix := solidRGBA(2, 2, 255, 255, 255)
	y, u, v, err := RGBToYUV420(pix, 2, 2, 32)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	for i, sample := range y {
		if sample != 255 {
			t.Fatalf("y[%d] = %d, want 255", i, sample)
		}
	}
	if u[0] != 128 || v[0] != 128 {
		t.Fatalf("chroma for white pixel = (%d,%d), want (128,128)", u[0], v[0])
	}
}

func TestRGBToYUV420RejectsOddDimensions(t *testing.T) {
	pix := solidRGBA(3, 2, 0, 0, 0)
	if _, _, _, err := RGBToYUV420(pix, 3, 2, 32); err == nil {
		t.Fatalf("expected error for odd width")
	}
}

func TestRGBToYUV420RejectsShortBuffer(t *testing.T) {
	pix := make([]byte, 4)
	if _, _, _, err := RGBToYUV420(pix, 4, 4, 32); err == nil {
		t.Fatalf("expected error for undersized buffer")
	}
}

func TestRGBToYUV420RejectsBadBpp(t *testing.T) {
	pix := solidRGBA(2, 2, 0, 0, 0)
	if _, _, _, err := RGBToYUV420(pix, 2, 2, 16); err == nil {
		t.Fatalf("expected error for unsupported bpp")
	}
}

func TestRoundDiv4HalfUp(t *testing.T) {
	cases := map[byte]int{0: 0, 1: 0, 2: 1, 3: 1, 4: 1, 255: 64}
	for x, want := range cases {
		if got := roundDiv4(x); got != want {
			t.Fatalf("roundDiv4(%d) = %d, want %d", x, got, want)
		}
	}
}
