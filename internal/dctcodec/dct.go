// Package dctcodec implements the 8×8 forward/inverse Discrete Cosine
// Transform and quality-scaled scalar quantization used by the plane
// codec. The DCT basis and base quantization tables are fixed constants
// taken from the reference implementation so that two conformant
// encoders agree on quantized coefficients up to the ±1-per-sample
// tolerance noted for non-bit-identical transform implementations.
package dctcodec

import "math"

// Basis is the 8×8 type-II DCT basis matrix, row-major.
var Basis = [64]float64{
	0.3535533845424652, 0.3535533845424652, 0.3535533845424652, 0.3535533845424652, 0.3535533845424652, 0.3535533845424652, 0.3535533845424652, 0.3535533845424652,
	0.4903925955295563, 0.4157347679138184, 0.277785062789917, 0.09754510968923569, -0.09754515439271927, -0.2777851521968842, -0.4157347977161407, -0.4903926253318787,
	0.4619397222995758, 0.1913416981697083, -0.1913417428731918, -0.4619397819042206, -0.4619397222995758, -0.1913415491580963, 0.1913417875766754, 0.4619397521018982,
	0.4157347679138184, -0.09754515439271927, -0.4903926253318787, -0.2777849733829498, 0.2777851819992065, 0.4903925955295563, 0.09754502773284912, -0.4157348573207855,
	0.3535533547401428, -0.3535533547401428, -0.353553295135498, 0.3535534739494324, 0.3535533547401428, -0.3535535931587219, -0.3535532355308533, 0.3535533845424652,
	0.277785062789917, -0.4903926253318787, 0.09754519909620285, 0.4157346487045288, -0.4157348573207855, -0.09754510223865509, 0.4903926253318787, -0.2777853906154633,
	0.1913416981697083, -0.4619397222995758, 0.4619397521018982, -0.1913419365882874, -0.1913414746522903, 0.4619396328926086, -0.4619398415088654, 0.1913419365882874,
	0.09754510968923569, -0.2777849733829498, 0.4157346487045288, -0.4903925657272339, 0.4903926849365234, -0.4157347679138184, 0.2777855396270752, -0.09754576534032822,
}

// LumaBase is the standard JPEG luma quantization table (quality 50).
var LumaBase = [64]float64{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

// ChromaBase is the standard JPEG chroma quantization table (quality 50).
var ChromaBase = [64]float64{
	17, 18, 24, 47, 99, 99, 99, 99,
	18, 21, 26, 66, 99, 99, 99, 99,
	24, 26, 56, 99, 99, 99, 99, 99,
	47, 66, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

// BaseTable selects the luma table for plane 0 and the chroma table for
// planes 1 and 2, per §4.3.
func BaseTable(plane int) [64]float64 {
	if plane == 0 {
		return LumaBase
	}
	return ChromaBase
}

// QuantTable scales base by quality (1..100) into an integer divisor
// table clamped to [1,255].
func QuantTable(base [64]float64, quality int) [64]int {
	q := float64(quality)
	var scale float64
	if q >= 50.5 {
		scale = (100 - q) / 50
	} else {
		scale = 50 / q
	}
	var out [64]int
	for i, b := range base {
		v := math.Round(b * scale)
		if v < 1 {
			v = 1
		} else if v > 255 {
			v = 255
		}
		out[i] = int(v)
	}
	return out
}

// mul computes the standard matrix product a*b for 8×8 row-major matrices.
func mul(a, b [64]float64) [64]float64 {
	var c [64]float64
	for i := 0; i < 8; i++ {
		for k := 0; k < 8; k++ {
			aik := a[i*8+k]
			for j := 0; j < 8; j++ {
				c[i*8+j] += aik * b[k*8+j]
			}
		}
	}
	return c
}

// mulTRight computes a*bᵀ.
func mulTRight(a, b [64]float64) [64]float64 {
	var c [64]float64
	for i := 0; i < 8; i++ {
		for k := 0; k < 8; k++ {
			aik := a[i*8+k]
			for j := 0; j < 8; j++ {
				c[i*8+j] += aik * b[j*8+k]
			}
		}
	}
	return c
}

// mulTLeft computes aᵀ*b.
func mulTLeft(a, b [64]float64) [64]float64 {
	var c [64]float64
	for i := 0; i < 8; i++ {
		for k := 0; k < 8; k++ {
			aki := a[k*8+i]
			for j := 0; j < 8; j++ {
				c[i*8+j] += aki * b[k*8+j]
			}
		}
	}
	return c
}

// Forward applies the 8×8 DCT to samples (already centered on zero, i.e.
// pixel-128) and quantizes with qtable, clamping each coefficient into
// the 11-bit signed range [-1024,1023] required by the block data model.
func Forward(samples [64]float64, qtable [64]int) [64]int16 {
	tmp := mul(Basis, samples)
	c := mulTRight(tmp, Basis)

	var out [64]int16
	for i, v := range c {
		q := int(math.Round(v / float64(qtable[i])))
		if q > 1023 {
			q = 1023
		} else if q < -1024 {
			q = -1024
		}
		out[i] = int16(q)
	}
	return out
}

// Inverse dequantizes coeffs with qtable and applies the inverse 8×8 DCT,
// returning samples still centered on zero (the caller adds 128 and
// clamps to a byte).
func Inverse(coeffs [64]int16, qtable [64]int) [64]float64 {
	var dq [64]float64
	for i, v := range coeffs {
		dq[i] = float64(v) * float64(qtable[i])
	}
	tmp := mulTLeft(Basis, dq)
	return mul(tmp, Basis)
}
