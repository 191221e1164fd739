// Package bmp is a thin BMP reader/writer: just enough of the format to
// produce or consume the canonical RGB(A) pixel buffer + width/height/bpp
// descriptor the codec's core operates on. It is a collaborator, not a
// general-purpose image library — no RLE compression, no indexed
// palettes, no color-mask variants beyond the standard BGR(A) layout.
package bmp

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	fileHeaderSize = 14
	infoHeaderSize = 40
)

// Decode reads a BMP file and returns its pixels reordered into
// canonical RGB(A) order, along with width, height, and bits per pixel
// (24 or 32). Only uncompressed, top-down-or-bottom-up BITMAPINFOHEADER
// files with 24 or 32 bit BGR(A) pixels are supported.
func Decode(r io.Reader) (pix []byte, width, height, bpp int, err error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("bmp: read: %w", err)
	}
	if len(raw) < fileHeaderSize+infoHeaderSize {
		return nil, 0, 0, 0, fmt.Errorf("bmp: file too short for header")
	}
	if raw[0] != 'B' || raw[1] != 'M' {
		return nil, 0, 0, 0, fmt.Errorf("bmp: bad magic")
	}
	dataPos := binary.LittleEndian.Uint32(raw[10:14])

	headerSize := binary.LittleEndian.Uint32(raw[14:18])
	if headerSize < infoHeaderSize {
		return nil, 0, 0, 0, fmt.Errorf("bmp: unsupported info header size %d", headerSize)
	}
	rawWidth := int32(binary.LittleEndian.Uint32(raw[18:22]))
	rawHeight := int32(binary.LittleEndian.Uint32(raw[22:26]))
	bitCount := binary.LittleEndian.Uint16(raw[28:30])
	compression := binary.LittleEndian.Uint32(raw[30:34])
	if compression != 0 {
		return nil, 0, 0, 0, fmt.Errorf("bmp: compressed BMPs are not supported")
	}
	if bitCount != 24 && bitCount != 32 {
		return nil, 0, 0, 0, fmt.Errorf("bmp: unsupported bit count %d", bitCount)
	}

	w := int(rawWidth)
	if w < 0 {
		w = -w
	}
	h := int(rawHeight)
	bottomUp := h >= 0
	if h < 0 {
		h = -h
	}
	bpp = int(bitCount)
	stride := w * (bpp / 8)
	rowStride := (stride + 3) &^ 3 // BMP rows are padded to a 4-byte boundary

	if int(dataPos)+rowStride*h > len(raw) {
		return nil, 0, 0, 0, fmt.Errorf("bmp: pixel data overruns file")
	}

	pix = make([]byte, w*h*(bpp/8))
	for y := 0; y < h; y++ {
		srcRow := y
		if bottomUp {
			srcRow = h - 1 - y
		}
		srcOff := int(dataPos) + srcRow*rowStride
		dstOff := y * stride
		bgra := raw[srcOff : srcOff+stride]
		for x := 0; x*(bpp/8) < stride; x++ {
			px := x * (bpp / 8)
			pix[dstOff+px] = bgra[px+2]   // R
			pix[dstOff+px+1] = bgra[px+1] // G
			pix[dstOff+px+2] = bgra[px]   // B
			if bpp == 32 {
				pix[dstOff+px+3] = bgra[px+3] // A
			}
		}
	}
	return pix, w, h, bpp, nil
}

// Encode writes pix (canonical RGB(A) order, bpp 24 or 32) as a
// top-down BITMAPINFOHEADER BMP.
func Encode(w io.Writer, pix []byte, width, height, bpp int) error {
	if bpp != 24 && bpp != 32 {
		return fmt.Errorf("bmp: unsupported bit count %d", bpp)
	}
	bytesPerPixel := bpp / 8
	stride := width * bytesPerPixel
	rowStride := (stride + 3) &^ 3
	imageSize := rowStride * height
	dataPos := uint32(fileHeaderSize + infoHeaderSize)
	fileSize := dataPos + uint32(imageSize)

	header := make([]byte, fileHeaderSize+infoHeaderSize)
	header[0], header[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(header[2:6], fileSize)
	binary.LittleEndian.PutUint32(header[10:14], dataPos)

	binary.LittleEndian.PutUint32(header[14:18], infoHeaderSize)
	binary.LittleEndian.PutUint32(header[18:22], uint32(width))
	binary.LittleEndian.PutUint32(header[22:26], uint32(-int32(height))) // negative: top-down
	binary.LittleEndian.PutUint16(header[26:28], 1)                     // planes
	binary.LittleEndian.PutUint16(header[28:30], uint16(bpp))
	binary.LittleEndian.PutUint32(header[34:38], uint32(imageSize))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("bmp: write header: %w", err)
	}

	row := make([]byte, rowStride)
	for y := 0; y < height; y++ {
		srcOff := y * stride
		for x := 0; x < width; x++ {
			px := x * bytesPerPixel
			r, g, b := pix[srcOff+px], pix[srcOff+px+1], pix[srcOff+px+2]
			row[px] = b
			row[px+1] = g
			row[px+2] = r
			if bpp == 32 {
				row[px+3] = pix[srcOff+px+3]
			}
		}
		for i := stride; i < rowStride; i++ {
			row[i] = 0
		}
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("bmp: write row %d: %w", y, err)
		}
	}
	return nil
}
