// Package huffman implements the per-8×8-block canonical Huffman codec:
// building a canonical codebook from a block's 64 (zigzag-reordered)
// coefficients, encoding/decoding one block, and serializing the
// codebook in the packed 11-bit wire format.
//
// Tree construction uses an arena of nodes indexed by int, built with
// container/heap, and discarded once the code lengths are extracted —
// the tree itself is never serialized or retained.
package huffman

import (
	"container/heap"
	"errors"
	"fmt"
	"sort"

	"github.com/pixelforge/yuvcodec/internal/bitio"
)

// ZigZag maps sequence position to the flat 8×8 block index, the
// standard JPEG zigzag scan order.
var ZigZag = [64]int{
	0, 8, 1, 2, 9, 16, 24, 17, 10, 3, 4, 11, 18, 25, 32, 40,
	33, 26, 19, 12, 5, 6, 13, 20, 27, 34, 41, 48, 56, 49, 42, 35,
	28, 21, 14, 7, 15, 22, 29, 36, 43, 50, 57, 58, 51, 44, 37, 30,
	23, 31, 38, 45, 52, 59, 60, 53, 46, 39, 47, 54, 61, 62, 55, 63,
}

// MaxCodeLength is the maximum canonical Huffman code length this codec
// will produce; a tree that would need a longer code fails the block.
const MaxCodeLength = 8

// Errors returned by Encode/Decode, classified per the package's
// [ErrCorrupt]/[ErrOverflow] sentinels so callers can use errors.Is.
var (
	ErrOverflow = errors.New("huffman: code would exceed 8 bits or block would exceed 255 bytes")
	ErrCorrupt  = errors.New("huffman: corrupt coded block")
)

// CodedBlock is the serialized form of one 8×8 quantized block: a
// payload bit count, a codebook, and the packed payload bits. See
// (*CodedBlock).Serialize for the exact wire layout.
type CodedBlock struct {
	PayloadBits uint16
	Codebook    []byte
	Payload     []byte
}

// Serialize writes the coded block in the container's on-disk format:
// 16-bit LE payload bit count, 8-bit codebook byte count, codebook
// bytes, then ceil(PayloadBits/8) payload bytes.
func (c *CodedBlock) Serialize() []byte {
	out := make([]byte, 2+1+len(c.Codebook)+len(c.Payload))
	out[0] = byte(c.PayloadBits)
	out[1] = byte(c.PayloadBits >> 8)
	out[2] = byte(len(c.Codebook))
	copy(out[3:], c.Codebook)
	copy(out[3+len(c.Codebook):], c.Payload)
	return out
}

// Parse reads a serialized coded block back out of data.
func Parse(data []byte) (*CodedBlock, error) {
	if len(data) < 3 {
		return nil, fmt.Errorf("%w: block too short (%d bytes)", ErrCorrupt, len(data))
	}
	payloadBits := uint16(data[0]) | uint16(data[1])<<8
	if payloadBits > bitio.MaxBlockBits {
		return nil, fmt.Errorf("%w: payload_bits %d exceeds buffer", ErrCorrupt, payloadBits)
	}
	codebookLen := int(data[2])
	if len(data) < 3+codebookLen {
		return nil, fmt.Errorf("%w: declared codebook size %d exceeds block", ErrCorrupt, codebookLen)
	}
	payloadLen := (int(payloadBits) + 7) / 8
	if len(data) < 3+codebookLen+payloadLen {
		return nil, fmt.Errorf("%w: declared payload size %d exceeds block", ErrCorrupt, payloadLen)
	}
	cb := &CodedBlock{
		PayloadBits: payloadBits,
		Codebook:    append([]byte(nil), data[3:3+codebookLen]...),
		Payload:     append([]byte(nil), data[3+codebookLen:3+codebookLen+payloadLen]...),
	}
	return cb, nil
}

// code is the canonical codeword assigned to one symbol.
type code struct {
	length int
	bits   uint16
}

// treeNode is one entry in the construction arena: a leaf (symbol
// valid, left/right == -1) or an internal node merging two children.
type treeNode struct {
	freq   int
	symbol int16
	leaf   bool
	seq    int // creation order, used as the tie-break on equal frequency
	left   int
	right  int
}

// nodeHeap is a min-heap over arena indices, ordered by (freq, seq).
type nodeHeap struct {
	arena   []treeNode
	indices []int
}

func (h *nodeHeap) Len() int { return len(h.indices) }
func (h *nodeHeap) Less(i, j int) bool {
	a, b := h.arena[h.indices[i]], h.arena[h.indices[j]]
	if a.freq != b.freq {
		return a.freq < b.freq
	}
	return a.seq < b.seq
}
func (h *nodeHeap) Swap(i, j int) { h.indices[i], h.indices[j] = h.indices[j], h.indices[i] }
func (h *nodeHeap) Push(x any)    { h.indices = append(h.indices, x.(int)) }
func (h *nodeHeap) Pop() any {
	old := h.indices
	n := len(old)
	idx := old[n-1]
	h.indices = old[:n-1]
	return idx
}

// buildCodeLengths runs the Huffman merge over freqs (in first-occurrence
// order, which doubles as the tie-break order for equal frequencies) and
// returns each symbol's code length.
func buildCodeLengths(order []int16, freq map[int16]int) (map[int16]int, error) {
	if len(order) == 1 {
		return map[int16]int{order[0]: 1}, nil
	}

	h := &nodeHeap{arena: make([]treeNode, 0, 2*len(order))}
	for i, sym := range order {
		h.arena = append(h.arena, treeNode{freq: freq[sym], symbol: sym, leaf: true, seq: i, left: -1, right: -1})
		h.indices = append(h.indices, i)
	}
	heap.Init(h)

	seq := len(order)
	for h.Len() > 1 {
		li := heap.Pop(h).(int)
		ri := heap.Pop(h).(int)
		left, right := h.arena[li], h.arena[ri]
		h.arena = append(h.arena, treeNode{freq: left.freq + right.freq, seq: seq, left: li, right: ri})
		seq++
		heap.Push(h, len(h.arena)-1)
	}
	rootIdx := h.indices[0]

	lengths := make(map[int16]int, len(order))
	var walk func(idx, depth int)
	walk = func(idx, depth int) {
		n := h.arena[idx]
		if n.leaf {
			l := depth
			if l == 0 {
				l = 1
			}
			lengths[n.symbol] = l
			return
		}
		walk(n.left, depth+1)
		walk(n.right, depth+1)
	}
	walk(rootIdx, 0)

	for _, l := range lengths {
		if l > MaxCodeLength {
			return nil, ErrOverflow
		}
	}
	return lengths, nil
}

// canonicalCodes assigns canonical codewords: symbols grouped by length
// ascending, ascending symbol value within a length, codes incrementing
// within a length and left-shifted at each length boundary.
func canonicalCodes(lengths map[int16]int) (byLength map[int][]int16, codes map[int16]code) {
	byLength = make(map[int][]int16)
	for sym, l := range lengths {
		byLength[l] = append(byLength[l], sym)
	}
	for _, syms := range byLength {
		sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	}

	sortedLengths := make([]int, 0, len(byLength))
	for l := range byLength {
		sortedLengths = append(sortedLengths, l)
	}
	sort.Ints(sortedLengths)

	codes = make(map[int16]code, len(lengths))
	var c uint16
	prev := 0
	for _, l := range sortedLengths {
		c <<= uint(l - prev)
		for _, sym := range byLength[l] {
			codes[sym] = code{length: l, bits: c}
			c++
		}
		prev = l
	}
	return byLength, codes
}

// zigzagAndTrim reorders coeffs into zigzag scan order and returns the
// reordered sequence along with M, the number of leading symbols to
// encode (64 minus the trailing run of zeros, forced to at least 1).
func zigzagAndTrim(coeffs *[64]int16) (zz [64]int16, m int) {
	for i, idx := range ZigZag {
		zz[i] = coeffs[idx]
	}
	trailingZeros := 0
	for i := 63; i >= 0; i-- {
		if zz[i] != 0 {
			break
		}
		trailingZeros++
	}
	m = 64 - trailingZeros
	return zz, m
}

// histogram builds the symbol frequency table and first-occurrence order
// over the full 64-entry zigzag sequence, then removes the trailing-zero
// run from zero's frequency (and from the alphabet entirely if zero was
// only ever trailing fill).
func histogram(zz [64]int16, m int) (order []int16, freq map[int16]int) {
	freq = make(map[int16]int)
	seen := make(map[int16]bool)
	for i := 0; i < 64; i++ {
		d := zz[i]
		freq[d]++
		if !seen[d] {
			seen[d] = true
			order = append(order, d)
		}
	}
	trailingZeros := 64 - m
	if m == 0 {
		freq[0] = 1
		if !seen[0] {
			order = append(order, 0)
		}
		return order, freq
	}
	freq[0] -= trailingZeros
	if freq[0] == 0 {
		delete(freq, 0)
		for i, s := range order {
			if s == 0 {
				order = append(order[:i], order[i+1:]...)
				break
			}
		}
	}
	return order, freq
}

// Encode builds the canonical Huffman codebook for one 8×8 block of
// quantized DCT coefficients (in raster order) and encodes it.
func Encode(coeffs *[64]int16) (*CodedBlock, error) {
	zz, trimmed := zigzagAndTrim(coeffs)
	m := trimmed
	if m == 0 {
		m = 1
	}

	order, freq := histogram(zz, trimmed)
	lengths, err := buildCodeLengths(order, freq)
	if err != nil {
		return nil, err
	}
	byLength, codes := canonicalCodes(lengths)

	var w bitio.BlockWriter
	for i := 0; i < m; i++ {
		c := codes[zz[i]]
		w.WriteCode(c.bits, c.length)
	}

	codebook := serializeCodebook(byLength)
	cb := &CodedBlock{
		PayloadBits: uint16(w.Bits()),
		Codebook:    codebook,
		Payload:     w.Bytes(),
	}
	if 3+len(cb.Codebook)+len(cb.Payload) > 255 {
		return nil, ErrOverflow
	}
	return cb, nil
}

// serializeCodebook writes §6.3's codebook entries: one descriptor byte
// (length-1 in bits 7..5, count-1 in bits 4..0) followed by the packed
// 11-bit symbols, per length ascending, split into groups of ≤32 symbols.
func serializeCodebook(byLength map[int][]int16) []byte {
	lengths := make([]int, 0, len(byLength))
	for l := range byLength {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)

	var out []byte
	for _, l := range lengths {
		syms := byLength[l]
		for len(syms) > 0 {
			n := len(syms)
			if n > 32 {
				n = 32
			}
			group := syms[:n]
			syms = syms[n:]
			descriptor := byte((l-1)<<5) | byte(n-1)
			packed := make([]byte, bitio.Pack11Len(n))
			bitio.Pack11(packed, group)
			out = append(out, descriptor)
			out = append(out, packed...)
		}
	}
	return out
}

// parseCodebook is the inverse of serializeCodebook: it reconstructs the
// per-length sorted symbol groups from the packed codebook bytes.
func parseCodebook(data []byte) (map[int][]int16, error) {
	byLength := make(map[int][]int16)
	i := 0
	for i < len(data) {
		descriptor := data[i]
		i++
		length := int(descriptor>>5) + 1
		count := int(descriptor&0x1F) + 1
		need := bitio.Pack11Len(count)
		if i+need > len(data) {
			return nil, fmt.Errorf("%w: codebook entry overruns buffer", ErrCorrupt)
		}
		syms := bitio.Unpack11(data[i:i+need], count)
		byLength[length] = append(byLength[length], syms...)
		i += need
	}
	return byLength, nil
}

// Decode reverses Encode, reconstructing the 64 coefficients (in raster
// order) from a coded block.
func Decode(cb *CodedBlock) (*[64]int16, error) {
	if int(cb.PayloadBits) > len(cb.Payload)*8 {
		return nil, fmt.Errorf("%w: payload_bits exceeds payload buffer", ErrCorrupt)
	}
	byLength, err := parseCodebook(cb.Codebook)
	if err != nil {
		return nil, err
	}

	var out [64]int16
	r := bitio.NewBlockReader(cb.Payload, int(cb.PayloadBits))
	pos := 0
	for r.Remaining() {
		if pos >= 64 {
			return nil, fmt.Errorf("%w: decoded more than 64 symbols", ErrCorrupt)
		}
		sym, err := decodeSymbol(r, byLength)
		if err != nil {
			return nil, err
		}
		out[ZigZag[pos]] = sym
		pos++
	}
	return &out, nil
}

// decodeSymbol runs the canonical decoding algorithm: accumulate bits
// into code, and at each length with k symbols of that length, if
// code < first+k output the (code-first)-th symbol of that length;
// otherwise widen the search to the next length.
func decodeSymbol(r *bitio.BlockReader, byLength map[int][]int16) (int16, error) {
	code := 0
	first := 0
	for length := 1; length <= MaxCodeLength; length++ {
		bit, ok := r.ReadBit()
		if !ok {
			return 0, fmt.Errorf("%w: ran out of bits decoding a symbol", ErrCorrupt)
		}
		code |= bit
		count := len(byLength[length])
		if code < count+first {
			return byLength[length][code-first], nil
		}
		first = (first + count) << 1
		code <<= 1
	}
	return 0, fmt.Errorf("%w: symbol not found within %d bits", ErrCorrupt, MaxCodeLength)
}
