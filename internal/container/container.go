// Package container defines the on-disk YUV file format: a fixed
// packed header, compression parameters, and a data blob, with
// validation and offset canonicalization on load.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// FourCC creates a FourCC value from four bytes (little-endian).
func FourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

// FourCCIYUV is the only format registered today.
var FourCCIYUV = FourCC('I', 'Y', 'U', 'V')

// Compression identifies the compression method applied to a data blob.
type Compression uint16

const (
	CompressionNone Compression = 0
	CompressionDCT  Compression = 1
)

// Magic is the two-byte file type tag, ASCII "YU".
var Magic = [2]byte{'Y', 'U'}

// HeaderSize is the fixed, packed, no-padding header size in bytes.
const HeaderSize = 2 + 4 + 4 + 2 + 4 + 4 + 4 + 4 + 4 + 32

// Header is the fixed file header, §6.1. unused is zeroed on write and
// ignored (but validated to be present) on read.
type Header struct {
	FourCCFormat          uint32
	DataSize              uint32
	Compression           Compression
	CompressionParamsSize uint32
	CompressionParamsPos  uint32
	Width                 uint32
	Height                uint32
	DataPos               uint32
}

// Errors returned by Parse/Validate.
var (
	ErrBadHeader = errors.New("container: bad header")
)

// Encode writes header, params, and data in that order, canonicalizing
// CompressionParamsPos and DataPos to their canonical values per §4.6
// regardless of what the caller set.
func Encode(h Header, params, data []byte) []byte {
	h.CompressionParamsSize = uint32(len(params))
	h.CompressionParamsPos = HeaderSize
	h.DataPos = HeaderSize + uint32(len(params))
	h.DataSize = uint32(len(data))

	out := make([]byte, HeaderSize+len(params)+len(data))
	out[0], out[1] = Magic[0], Magic[1]
	binary.LittleEndian.PutUint32(out[2:6], h.FourCCFormat)
	binary.LittleEndian.PutUint32(out[6:10], h.DataSize)
	binary.LittleEndian.PutUint16(out[10:12], uint16(h.Compression))
	binary.LittleEndian.PutUint32(out[12:16], h.CompressionParamsSize)
	binary.LittleEndian.PutUint32(out[16:20], h.CompressionParamsPos)
	binary.LittleEndian.PutUint32(out[20:24], h.Width)
	binary.LittleEndian.PutUint32(out[24:28], h.Height)
	binary.LittleEndian.PutUint32(out[28:32], h.DataPos)
	// bytes [32:64) are the zeroed unused field.

	copy(out[HeaderSize:], params)
	copy(out[HeaderSize+len(params):], data)
	return out
}

// Parse reads and validates the header, then re-normalizes
// CompressionParamsPos/DataPos to canonical offsets, returning the
// header along with the params and data slices (views into buf).
func Parse(buf []byte) (h Header, params, data []byte, err error) {
	if len(buf) < HeaderSize {
		return Header{}, nil, nil, fmt.Errorf("%w: buffer shorter than fixed header", ErrBadHeader)
	}
	if buf[0] != Magic[0] || buf[1] != Magic[1] {
		return Header{}, nil, nil, fmt.Errorf("%w: magic mismatch", ErrBadHeader)
	}

	h = Header{
		FourCCFormat:          binary.LittleEndian.Uint32(buf[2:6]),
		DataSize:              binary.LittleEndian.Uint32(buf[6:10]),
		Compression:           Compression(binary.LittleEndian.Uint16(buf[10:12])),
		CompressionParamsSize: binary.LittleEndian.Uint32(buf[12:16]),
		CompressionParamsPos:  binary.LittleEndian.Uint32(buf[16:20]),
		Width:                 binary.LittleEndian.Uint32(buf[20:24]),
		Height:                binary.LittleEndian.Uint32(buf[24:28]),
		DataPos:               binary.LittleEndian.Uint32(buf[28:32]),
	}

	if err := Validate(h); err != nil {
		return Header{}, nil, nil, err
	}

	// Canonicalize: params immediately follow the header, data
	// immediately follows params, regardless of the stored offsets.
	paramsStart := HeaderSize
	paramsEnd := paramsStart + int(h.CompressionParamsSize)
	dataEnd := paramsEnd + int(h.DataSize)
	if dataEnd > len(buf) {
		return Header{}, nil, nil, fmt.Errorf("%w: declared data_size overruns buffer", ErrBadHeader)
	}
	h.CompressionParamsPos = uint32(paramsStart)
	h.DataPos = uint32(paramsEnd)

	return h, buf[paramsStart:paramsEnd], buf[paramsEnd:dataEnd], nil
}

// Validate checks the fields required by §4.6: format/compression are
// known, dimensions are positive multiples of 16, data_size is
// positive, and data_pos/compression_params fields are self-consistent.
func Validate(h Header) error {
	if h.FourCCFormat != FourCCIYUV {
		return fmt.Errorf("%w: unknown fourcc_format 0x%08x", ErrBadHeader, h.FourCCFormat)
	}
	if h.Width == 0 || h.Height == 0 {
		return fmt.Errorf("%w: width/height must be positive", ErrBadHeader)
	}
	if h.Width%16 != 0 || h.Height%16 != 0 {
		return fmt.Errorf("%w: width/height must be multiples of 16, got %dx%d", ErrBadHeader, h.Width, h.Height)
	}
	if h.DataSize == 0 {
		return fmt.Errorf("%w: data_size must be positive", ErrBadHeader)
	}
	if h.Compression != CompressionNone && h.Compression != CompressionDCT {
		return fmt.Errorf("%w: unknown compression tag %d", ErrBadHeader, h.Compression)
	}
	if h.Compression != CompressionNone && h.CompressionParamsSize == 0 {
		return fmt.Errorf("%w: compression %d requires non-empty parameters", ErrBadHeader, h.Compression)
	}
	if int64(h.DataPos) < int64(HeaderSize)+int64(h.CompressionParamsSize) {
		return fmt.Errorf("%w: data_pos precedes header+params", ErrBadHeader)
	}
	return nil
}
