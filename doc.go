// Package yuvcodec implements a JPEG-style lossy codec for planar YUV
// 4:2:0 images: RGB(A)→YUV color conversion with chroma subsampling, an
// 8×8 blockwise DCT with quality-scaled quantization, and a per-block
// canonical Huffman entropy coder, all wrapped in a self-describing
// binary container format.
//
// A [YUV] image is built from an RGB(A) pixel buffer with [FromRGB], or
// loaded from disk with [Load]. [YUV.Compress] applies the DCT/Huffman
// pipeline; [YUV.Decompress] reverses it. [YUV.Dump] writes the
// container format described in the package's design notes.
package yuvcodec
