// Command yuvtool encodes a BMP image into a compressed .yuv container,
// decodes a .yuv container back to BMP, or serves a decoded preview over
// HTTP for quick inspection in a browser.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/pixelforge/yuvcodec"
	"github.com/pixelforge/yuvcodec/internal/bmp"
)

func main() {
	var in, out string
	var decode bool
	var quality int
	var hostPort string
	flag.StringVar(&in, "i", "", "Input file path (BMP for encode, .yuv for decode)")
	flag.StringVar(&out, "o", "", "Output file path (.yuv for encode, BMP for decode)")
	flag.BoolVar(&decode, "d", false, "Decode a .yuv container to BMP instead of encoding")
	flag.IntVar(&quality, "q", 85, "Quality 1-100, applied to all three planes")
	flag.StringVar(&hostPort, "http", "", "Host and port to serve the decoded BMP preview over HTTP")
	flag.Parse()

	if in == "" || (out == "" && hostPort == "") {
		fmt.Fprintln(os.Stderr, "input and output file paths must be specified")
		os.Exit(1)
	}

	if decode {
		runDecode(in, out, hostPort)
		return
	}
	runEncode(in, out, quality)
}

func runEncode(in, out string, quality int) {
	file, err := os.Open(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cant open input %s: %s\n", in, err)
		os.Exit(1)
	}
	defer file.Close()

	pix, width, height, bpp, err := bmp.Decode(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cant decode input %s: %s\n", in, err)
		os.Exit(1)
	}

	img, err := yuvcodec.FromRGB(pix, width, height, bpp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cant convert %s to YUV: %s\n", in, err)
		os.Exit(1)
	}
	compressed, err := img.Compress([3]int{quality, quality, quality})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cant compress %s: %s\n", in, err)
		os.Exit(1)
	}
	if err := compressed.Dump(out); err != nil {
		fmt.Fprintf(os.Stderr, "cant write output %s: %s\n", out, err)
		os.Exit(1)
	}
}

func runDecode(in, out, hostPort string) {
	img, err := yuvcodec.Load(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cant load %s: %s\n", in, err)
		os.Exit(1)
	}
	decoded, err := img.Decompress()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cant decompress %s: %s\n", in, err)
		os.Exit(1)
	}

	previewBMP, err := renderPreviewBMP(decoded)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cant render preview for %s: %s\n", in, err)
		os.Exit(1)
	}

	if out != "" {
		if err := os.WriteFile(out, previewBMP, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "cant write output %s: %s\n", out, err)
			os.Exit(1)
		}
	}

	if hostPort != "" {
		fmt.Printf("Serving %s on http://%s/\n", in, hostPort)
		http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/bmp")
			w.Write(previewBMP)
		})
		if err := http.ListenAndServe(hostPort, nil); err != nil {
			fmt.Fprintf(os.Stderr, "cant start http server on %s: %s\n", hostPort, err)
			os.Exit(1)
		}
	}
}

// renderPreviewBMP writes the full-resolution luma plane as a grayscale 24-bit BMP
// (a full RGB inverse color transform is out of scope, per spec).
func renderPreviewBMP(img *yuvcodec.YUV) ([]byte, error) {
	pix := make([]byte, img.Width*img.Height*3)
	for i, y := range img.Planes[0] {
		pix[i*3] = y
		pix[i*3+1] = y
		pix[i*3+2] = y
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, pix, img.Width, img.Height, 24); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
