package yuvcodec

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/pixelforge/yuvcodec/internal/colorconv"
	"github.com/pixelforge/yuvcodec/internal/container"
	"github.com/pixelforge/yuvcodec/internal/plane"
)

// YUV is a planar 4:2:0 image, either raw (Compression == CompressionNone,
// Planes holding full-resolution Y and half-resolution U/V samples) or
// DCT-compressed (Planes holding the §6.2 per-plane chunk framing).
type YUV struct {
	Width       int
	Height      int
	Format      uint32
	Compression container.Compression
	Params      [3]byte // Qy, Qu, Qv; meaningful only when Compression == CompressionDCT
	Planes      [3][]byte
}

// Registered (format, compression) pairs for Compress/Decompress, per
// §4.7's static two-dimensional dispatch table. The set is closed: IYUV
// is the only format, DCT the only non-trivial compression method.
func dispatchSupported(format uint32, compression container.Compression) bool {
	return format == container.FourCCIYUV &&
		(compression == container.CompressionNone || compression == container.CompressionDCT)
}

// FromRGB builds a raw IYUV image from an interleaved RGB(A) pixel
// buffer (bpp 24 or 32). width and height must be even (chroma
// subsampling) and multiples of 16 (required downstream by the DCT
// plane codec if the image is later compressed).
func FromRGB(rgb []byte, width, height, bpp int) (*YUV, error) {
	if width <= 0 || height <= 0 || width%16 != 0 || height%16 != 0 {
		return nil, newErr(KindBadHeader, "yuvcodec: from_rgb", fmt.Errorf("width/height must be positive multiples of 16, got %dx%d", width, height))
	}
	y, u, v, err := colorconv.RGBToYUV420(rgb, width, height, bpp)
	if err != nil {
		return nil, newErr(KindBadHeader, "yuvcodec: from_rgb", err)
	}
	return &YUV{
		Width:       width,
		Height:      height,
		Format:      container.FourCCIYUV,
		Compression: container.CompressionNone,
		Planes:      [3][]byte{y, u, v},
	}, nil
}

// Compress runs the DCT/Huffman pipeline over each plane at the given
// per-plane quality (Qy, Qu, Qv), each in [1,100]. Fails with
// ErrAlreadyCompressed if y is already compressed.
func (y *YUV) Compress(quality [3]int) (*YUV, error) {
	const op = "yuvcodec: compress"
	if y.Compression != container.CompressionNone {
		return nil, newErr(KindAlreadyCompressed, op, nil)
	}
	if !dispatchSupported(y.Format, container.CompressionDCT) {
		return nil, newErr(KindUnsupportedFormat, op, fmt.Errorf("(%08x, DCT) not registered", y.Format))
	}
	for _, q := range quality {
		if q < 1 || q > 100 {
			return nil, newErr(KindBadParameters, op, fmt.Errorf("quality %d outside [1,100]", q))
		}
	}

	out := &YUV{
		Width:       y.Width,
		Height:      y.Height,
		Format:      y.Format,
		Compression: container.CompressionDCT,
		Params:      [3]byte{byte(quality[0]), byte(quality[1]), byte(quality[2])},
	}
	for i := 0; i < 3; i++ {
		pw, ph := planeDims(y.Width, y.Height, i)
		chunkSizes, content, err := plane.Compress(y.Planes[i], pw, ph, i, quality[i])
		if err != nil {
			return nil, newErr(KindHuffmanOverflow, op, err)
		}
		header := plane.EncodePlaneSizesHeader(len(chunkSizes), len(content))
		blob := make([]byte, len(header)+len(chunkSizes)+len(content))
		copy(blob, header)
		copy(blob[len(header):], chunkSizes)
		copy(blob[len(header)+len(chunkSizes):], content)
		plane.ReleaseContent(content)
		out.Planes[i] = blob
	}
	return out, nil
}

// Decompress reverses Compress. Calling it on an already-raw image is
// the identity (returns y unchanged).
func (y *YUV) Decompress() (*YUV, error) {
	const op = "yuvcodec: decompress"
	if y.Compression == container.CompressionNone {
		return y, nil
	}
	if !dispatchSupported(y.Format, y.Compression) {
		return nil, newErr(KindUnsupportedFormat, op, fmt.Errorf("(%08x, %d) not registered", y.Format, y.Compression))
	}

	out := &YUV{Width: y.Width, Height: y.Height, Format: y.Format, Compression: container.CompressionNone}
	for i := 0; i < 3; i++ {
		blob := y.Planes[i]
		if len(blob) < 8 {
			return nil, newErr(KindCorrupt, op, fmt.Errorf("plane %d blob shorter than its size header", i))
		}
		chunkSizesLen := binary.LittleEndian.Uint32(blob[0:4])
		contentLen := binary.LittleEndian.Uint32(blob[4:8])
		if uint64(8+chunkSizesLen+contentLen) > uint64(len(blob)) {
			return nil, newErr(KindCorrupt, op, fmt.Errorf("plane %d declared sizes overrun blob", i))
		}
		chunkSizes := blob[8 : 8+chunkSizesLen]
		content := blob[8+chunkSizesLen : 8+chunkSizesLen+contentLen]

		pw, ph := planeDims(y.Width, y.Height, i)
		samples, err := plane.Decompress(chunkSizes, content, pw, ph, i, int(y.Params[i]))
		if err != nil {
			return nil, newErr(KindCorrupt, op, err)
		}
		out.Planes[i] = samples
	}
	return out, nil
}

// planeDims returns plane i's dimensions: full resolution for luma (i==0),
// half width and height (4:2:0 subsampling) for chroma.
func planeDims(width, height, i int) (int, int) {
	if i == 0 {
		return width, height
	}
	return width / 2, height / 2
}

// Load reads a YUV container file from path.
func Load(path string) (*YUV, error) {
	const op = "yuvcodec: load"
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, newErr(KindIoError, op, err)
	}
	hdr, params, data, err := container.Parse(raw)
	if err != nil {
		return nil, newErr(KindBadHeader, op, err)
	}
	if hdr.Compression == container.CompressionDCT && len(params) != 3 {
		return nil, newErr(KindBadParameters, op, fmt.Errorf("DCT compression requires 3 parameter bytes, got %d", len(params)))
	}

	img := &YUV{
		Width:       int(hdr.Width),
		Height:      int(hdr.Height),
		Format:      hdr.FourCCFormat,
		Compression: hdr.Compression,
	}
	if hdr.Compression == container.CompressionDCT {
		copy(img.Params[:], params)
	}

	if err := splitPlanes(img, data); err != nil {
		return nil, newErr(KindCorrupt, op, err)
	}
	return img, nil
}

// Dump writes y's container file to path.
func (y *YUV) Dump(path string) error {
	const op = "yuvcodec: dump"
	var params []byte
	if y.Compression != container.CompressionNone {
		params = y.Params[:]
	}
	data := joinPlanes(y)

	hdr := container.Header{
		FourCCFormat: y.Format,
		Compression:  y.Compression,
		Width:        uint32(y.Width),
		Height:       uint32(y.Height),
	}
	buf := container.Encode(hdr, params, data)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return newErr(KindIoError, op, err)
	}
	return nil
}

// joinPlanes assembles the §6.2 data blob: three u32 plane_sizes
// followed by each present plane's bytes concatenated.
func joinPlanes(y *YUV) []byte {
	var sizes [3]uint32
	for i := 0; i < 3; i++ {
		sizes[i] = uint32(len(y.Planes[i]))
	}
	out := make([]byte, 12)
	for i, s := range sizes {
		binary.LittleEndian.PutUint32(out[i*4:i*4+4], s)
	}
	for i := 0; i < 3; i++ {
		out = append(out, y.Planes[i]...)
	}
	return out
}

// splitPlanes reverses joinPlanes, filling img.Planes from the §6.2
// data blob.
func splitPlanes(img *YUV, data []byte) error {
	if len(data) < 12 {
		return fmt.Errorf("data blob shorter than plane_sizes header")
	}
	var sizes [3]uint32
	for i := range sizes {
		sizes[i] = binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}
	off := 12
	for i := 0; i < 3; i++ {
		end := off + int(sizes[i])
		if end > len(data) {
			return fmt.Errorf("plane %d size %d overruns data blob", i, sizes[i])
		}
		img.Planes[i] = append([]byte(nil), data[off:end]...)
		off = end
	}
	return nil
}
