// Package plane drives the DCT/Huffman pipeline across one image plane:
// tiling it into 8×8 blocks, encoding or decoding each block in
// parallel, and assembling or parsing the chunk-size-indexed wire
// format that carries one plane's compressed blocks.
package plane

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"sync"

	"github.com/pixelforge/yuvcodec/internal/dctcodec"
	"github.com/pixelforge/yuvcodec/internal/huffman"
	"github.com/pixelforge/yuvcodec/internal/pool"
)

// ErrHuffmanOverflow is returned when a coded block would exceed 255
// bytes, the limit imposed by the single-byte chunk-size index.
var ErrHuffmanOverflow = huffman.ErrOverflow

// ErrCorrupt is returned when a compressed plane's declared sizes are
// inconsistent with its payload.
var ErrCorrupt = huffman.ErrCorrupt

// Compress tiles an 8-bit plane of size width×height (both multiples of
// 8) into non-overlapping 8×8 blocks in row-major order, runs the
// forward DCT and Huffman codec on each, and returns the serialized
// chunks along with each chunk's byte size. planeIndex selects the
// quantization table (0 = luma, 1/2 = chroma) per §4.3.
func Compress(samples []byte, width, height, planeIndex, quality int) (chunkSizes []byte, content []byte, err error) {
	if width%8 != 0 || height%8 != 0 {
		return nil, nil, fmt.Errorf("plane: dimensions %dx%d not multiples of 8", width, height)
	}
	tilesX, tilesY := width/8, height/8
	n := tilesX * tilesY
	qtable := dctcodec.QuantTable(dctcodec.BaseTable(planeIndex), quality)

	chunks := make([][]byte, n)
	errs := make([]error, n)

	forEachTileRow(tilesX, tilesY, func(ty int) {
		for tx := 0; tx < tilesX; tx++ {
			k := ty*tilesX + tx
			var block [64]float64
			for r := 0; r < 8; r++ {
				rowOff := (ty*8+r)*width + tx*8
				for c := 0; c < 8; c++ {
					block[r*8+c] = float64(samples[rowOff+c]) - 128
				}
			}
			coeffs := dctcodec.Forward(block, qtable)
			cb, encErr := huffman.Encode(&coeffs)
			if encErr != nil {
				errs[k] = fmt.Errorf("plane: tile %d: %w", k, encErr)
				return
			}
			bytes := cb.Serialize()
			if len(bytes) > 255 {
				errs[k] = fmt.Errorf("plane: tile %d: %w", k, ErrHuffmanOverflow)
				return
			}
			chunks[k] = bytes
		}
	})

	for _, e := range errs {
		if e != nil {
			return nil, nil, e
		}
	}

	chunkSizes = make([]byte, n)
	var total int
	for k, b := range chunks {
		chunkSizes[k] = byte(len(b))
		total += len(b)
	}
	content = pool.Get(total)
	var offset int
	for _, b := range chunks {
		offset += copy(content[offset:], b)
	}
	return chunkSizes, content, nil
}

// ReleaseContent returns a content buffer obtained from Compress to the
// pool, once the caller has copied it into its final destination (the
// container's data blob). Safe to call with a buffer not obtained from
// Compress; it is then simply not pooled.
func ReleaseContent(content []byte) {
	pool.Put(content)
}

// Decompress reverses Compress: given the chunk-size index and the
// concatenated content, it reconstructs the width×height plane of
// samples.
func Decompress(chunkSizes, content []byte, width, height, planeIndex, quality int) ([]byte, error) {
	if width%8 != 0 || height%8 != 0 {
		return nil, fmt.Errorf("plane: dimensions %dx%d not multiples of 8", width, height)
	}
	tilesX, tilesY := width/8, height/8
	n := tilesX * tilesY
	if len(chunkSizes) != n {
		return nil, fmt.Errorf("%w: chunk_sizes has %d entries, want %d", ErrCorrupt, len(chunkSizes), n)
	}

	offsets := make([]int, n+1)
	for k, size := range chunkSizes {
		offsets[k+1] = offsets[k] + int(size)
	}
	if offsets[n] != len(content) {
		return nil, fmt.Errorf("%w: chunk sizes sum to %d, content is %d bytes", ErrCorrupt, offsets[n], len(content))
	}

	qtable := dctcodec.QuantTable(dctcodec.BaseTable(planeIndex), quality)
	out := make([]byte, width*height)
	errs := make([]error, n)

	forEachTileRow(tilesX, tilesY, func(ty int) {
		for tx := 0; tx < tilesX; tx++ {
			k := ty*tilesX + tx
			chunk := content[offsets[k]:offsets[k+1]]
			cb, parseErr := huffman.Parse(chunk)
			if parseErr != nil {
				errs[k] = fmt.Errorf("plane: tile %d: %w", k, parseErr)
				return
			}
			coeffs, decErr := huffman.Decode(cb)
			if decErr != nil {
				errs[k] = fmt.Errorf("plane: tile %d: %w", k, decErr)
				return
			}
			samples := dctcodec.Inverse(*coeffs, qtable)
			for r := 0; r < 8; r++ {
				rowOff := (ty*8+r)*width + tx*8
				for c := 0; c < 8; c++ {
					v := samples[r*8+c] + 128
					out[rowOff+c] = clampByte(v)
				}
			}
		}
	})

	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	return out, nil
}

// forEachTileRow partitions tileRows across runtime.GOMAXPROCS(0)
// goroutines, each taking a contiguous span of tile rows. Below 16 total tiles it runs inline, avoiding goroutine overhead for
// images too small to benefit.
func forEachTileRow(tilesX, tileRows int, fn func(ty int)) {
	if tilesX*tileRows < 16 {
		for ty := 0; ty < tileRows; ty++ {
			fn(ty)
		}
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > tileRows {
		workers = tileRows
	}
	rowsPerWorker := (tileRows + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := start + rowsPerWorker
		if end > tileRows {
			end = tileRows
		}
		go func(start, end int) {
			defer wg.Done()
			for ty := start; ty < end; ty++ {
				fn(ty)
			}
		}(start, end)
	}
	wg.Wait()
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}

// EncodePlaneSizesHeader writes the u32 chunks_sizes_size and
// content_size fields that precede a plane's chunks_sizes/content
// bytes, per §6.2.
func EncodePlaneSizesHeader(chunkSizesLen, contentLen int) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(chunkSizesLen))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(contentLen))
	return buf
}
