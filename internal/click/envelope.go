package click

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Long inputs are transformed in overlapping blocks so a multi-hour click
// channel never needs a single FFT the size of the file. Only the interior
// of each block is kept; the padding absorbs the wrap-around of the
// circular transform.
const (
	envelopeBlockLen = 1 << 18
	envelopePad      = 1 << 13
)

// Envelope returns the smoothed amplitude-activity curve of samples: the
// magnitude of the analytic signal, averaged over a centred running window
// of noveltyWindow seconds.
func Envelope(samples []float64, sampleRate int, noveltyWindow float64) []float64 {
	mag := analyticMagnitude(samples)
	return runningMean(mag, int(noveltyWindow*float64(sampleRate)))
}

func analyticMagnitude(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if n <= envelopeBlockLen {
		h := newHilbert(n)
		h.magnitude(x, out)
		return out
	}

	h := newHilbert(envelopeBlockLen)
	hop := envelopeBlockLen - 2*envelopePad
	block := make([]float64, envelopeBlockLen)
	mag := make([]float64, envelopeBlockLen)
	for start := 0; start < n; start += hop {
		for i := range block {
			j := start - envelopePad + i
			if j >= 0 && j < n {
				block[i] = x[j]
			} else {
				block[i] = 0
			}
		}
		h.magnitude(block, mag)
		end := min(start+hop, n)
		copy(out[start:end], mag[envelopePad:envelopePad+end-start])
	}
	return out
}

// hilbert holds a reusable FFT plan and scratch buffers for one block size.
type hilbert struct {
	fft    *fourier.CmplxFFT
	seq    []complex128
	coeff  []complex128
	weight []float64
}

func newHilbert(n int) *hilbert {
	return &hilbert{
		fft:    fourier.NewCmplxFFT(n),
		seq:    make([]complex128, n),
		coeff:  make([]complex128, n),
		weight: analyticWeights(n),
	}
}

// analyticWeights zeroes negative frequencies and doubles positive ones,
// leaving DC and (for even n) Nyquist untouched.
func analyticWeights(n int) []float64 {
	w := make([]float64, n)
	w[0] = 1
	if n%2 == 0 {
		w[n/2] = 1
		for i := 1; i < n/2; i++ {
			w[i] = 2
		}
	} else {
		for i := 1; i <= (n-1)/2; i++ {
			w[i] = 2
		}
	}
	return w
}

func (h *hilbert) magnitude(x, dst []float64) {
	for i, v := range x {
		h.seq[i] = complex(v, 0)
	}
	h.coeff = h.fft.Coefficients(h.coeff, h.seq)
	for i, w := range h.weight {
		h.coeff[i] *= complex(w, 0)
	}
	h.seq = h.fft.Sequence(h.seq, h.coeff)

	// gonum's inverse transform is unnormalised
	scale := 1 / float64(len(x))
	for i := range dst {
		dst[i] = cmplx.Abs(h.seq[i]) * scale
	}
}

// runningMean smooths x with a boxcar of width w, zero-padded at the edges
// and centred the same way as a "same"-mode convolution.
func runningMean(x []float64, w int) []float64 {
	out := make([]float64, len(x))
	if w <= 1 {
		copy(out, x)
		return out
	}
	n := len(x)
	prefix := make([]float64, n+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v
	}
	inv := 1 / float64(w)
	for i := range out {
		lo := max(i-w/2, 0)
		hi := min(i+(w-1)/2+1, n)
		s := (prefix[hi] - prefix[lo]) * inv
		if s < 0 {
			s = 0
		}
		out[i] = s
	}
	return out
}
