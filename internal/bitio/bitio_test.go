package bitio

import (
	"math/rand"
	"testing"
)

func TestPackUnpack11RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		count := 1 + rng.Intn(64)
		src := make([]int16, count)
		for i := range src {
			src[i] = int16(rng.Intn(2048) - 1024)
		}
		dst := make([]byte, Pack11Len(count)+2) // +2 guard bytes for the 3-byte window
		Pack11(dst, src)
		got := Unpack11(dst, count)
		for i := range src {
			if got[i] != src[i] {
				t.Fatalf("trial %d: value %d: got %d want %d", trial, i, got[i], src[i])
			}
		}
	}
}

func TestPack11Boundaries(t *testing.T) {
	src := []int16{-1024, 1023, 0, -1, 1}
	dst := make([]byte, Pack11Len(len(src))+2)
	Pack11(dst, src)
	got := Unpack11(dst, len(src))
	for i := range src {
		if got[i] != src[i] {
			t.Fatalf("value %d: got %d want %d", i, got[i], src[i])
		}
	}
}

func TestBlockWriterReaderRoundTrip(t *testing.T) {
	var w BlockWriter
	codes := []struct {
		code uint16
		n    int
	}{
		{0b1, 1},
		{0b101, 3},
		{0b11111111, 8},
		{0b0, 2},
	}
	for _, c := range codes {
		w.WriteCode(c.code, c.n)
	}
	r := NewBlockReader(w.Bytes(), w.Bits())
	for _, c := range codes {
		var got uint16
		for i := 0; i < c.n; i++ {
			bit, ok := r.ReadBit()
			if !ok {
				t.Fatalf("unexpected end of stream")
			}
			got = (got << 1) | uint16(bit)
		}
		if got != c.code {
			t.Fatalf("got code %b want %b", got, c.code)
		}
	}
	if r.Remaining() {
		t.Fatalf("expected stream exhausted")
	}
}

func FuzzPackUnpack11(f *testing.F) {
	f.Add(int64(1), 17)
	f.Fuzz(func(t *testing.T, seed int64, n int) {
		if n <= 0 {
			n = 1
		}
		n = n%64 + 1
		rng := rand.New(rand.NewSource(seed))
		src := make([]int16, n)
		for i := range src {
			src[i] = int16(rng.Intn(2048) - 1024)
		}
		dst := make([]byte, Pack11Len(n)+2)
		Pack11(dst, src)
		got := Unpack11(dst, n)
		for i := range src {
			if got[i] != src[i] {
				t.Fatalf("mismatch at %d: got %d want %d", i, got[i], src[i])
			}
		}
	})
}
