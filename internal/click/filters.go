package click

import "math"

// FilterID identifies a stage of the optional prefilter chain.
type FilterID string

const (
	FilterHighpass FilterID = "highpass"  // rumble and handling noise below the click
	FilterLowpass  FilterID = "lowpass"   // hiss above the click
	FilterHumNotch FilterID = "hum_notch" // mains fundamental and first two harmonics
)

// PrefilterOrder is the order the stages run in.
var PrefilterOrder = []FilterID{
	FilterHighpass,
	FilterLowpass,
	FilterHumNotch,
}

// defaultHumHz is used when the hum notch is enabled without a frequency.
const defaultHumHz = 50.0

const humNotchQ = 30.0

type filterBuilderFunc func(p PrefilterConfig, sampleRate int) []biquad

var filterBuilders = map[FilterID]filterBuilderFunc{
	FilterHighpass: buildHighpass,
	FilterLowpass:  buildLowpass,
	FilterHumNotch: buildHumNotch,
}

// Prefilter returns a filtered copy of samples. The input is untouched, and
// an empty chain returns a plain copy.
func Prefilter(samples []float64, sampleRate int, p PrefilterConfig) []float64 {
	out := make([]float64, len(samples))
	copy(out, samples)
	if !p.Enabled {
		return out
	}
	for _, id := range PrefilterOrder {
		for _, bq := range filterBuilders[id](p, sampleRate) {
			bq.process(out)
		}
	}
	return out
}

// ActiveFilters lists the stages that Prefilter would apply at sampleRate.
func ActiveFilters(p PrefilterConfig, sampleRate int) []FilterID {
	if !p.Enabled {
		return nil
	}
	var ids []FilterID
	for _, id := range PrefilterOrder {
		if len(filterBuilders[id](p, sampleRate)) > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func buildHighpass(p PrefilterConfig, sampleRate int) []biquad {
	if p.LowHz <= 0 || p.LowHz >= nyquist(sampleRate) {
		return nil
	}
	return butterworth(p.LowHz, sampleRate, p.Order, true)
}

func buildLowpass(p PrefilterConfig, sampleRate int) []biquad {
	if p.HighHz <= 0 || p.HighHz >= nyquist(sampleRate) {
		return nil
	}
	return butterworth(p.HighHz, sampleRate, p.Order, false)
}

func buildHumNotch(p PrefilterConfig, sampleRate int) []biquad {
	if !p.HumNotch {
		return nil
	}
	f := p.HumHz
	if f <= 0 {
		f = defaultHumHz
	}
	var stages []biquad
	for h := 1; h <= 3; h++ {
		if fh := f * float64(h); fh < nyquist(sampleRate) {
			stages = append(stages, notch(fh, humNotchQ, sampleRate))
		}
	}
	return stages
}

func nyquist(sampleRate int) float64 { return float64(sampleRate) / 2 }

// biquad is a direct form I second-order section with a0 normalised to 1.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

func (f biquad) process(x []float64) {
	var x1, x2, y1, y2 float64
	for i, v := range x {
		y := f.b0*v + f.b1*x1 + f.b2*x2 - f.a1*y1 - f.a2*y2
		x2, x1 = x1, v
		y2, y1 = y1, y
		x[i] = y
	}
}

// butterworth cascades second-order sections (and one first-order section
// for odd orders) into a Butterworth response of the given order.
func butterworth(fc float64, sampleRate, order int, highpass bool) []biquad {
	if order < 1 {
		order = 1
	}
	var stages []biquad
	if order%2 == 1 {
		stages = append(stages, firstOrder(fc, sampleRate, highpass))
	}
	for k := 0; k < order/2; k++ {
		theta := math.Pi * float64(2*k+1) / float64(2*order)
		if order%2 == 1 {
			theta = math.Pi * float64(k+1) / float64(order)
		}
		stages = append(stages, rbj(fc, 1/(2*math.Cos(theta)), sampleRate, highpass))
	}
	return stages
}

func rbj(fc, q float64, sampleRate int, highpass bool) biquad {
	w0 := 2 * math.Pi * fc / float64(sampleRate)
	cosw, sinw := math.Cos(w0), math.Sin(w0)
	alpha := sinw / (2 * q)
	a0 := 1 + alpha

	var b0, b1, b2 float64
	if highpass {
		b0, b1, b2 = (1+cosw)/2, -(1 + cosw), (1+cosw)/2
	} else {
		b0, b1, b2 = (1-cosw)/2, 1-cosw, (1-cosw)/2
	}
	return biquad{
		b0: b0 / a0, b1: b1 / a0, b2: b2 / a0,
		a1: -2 * cosw / a0, a2: (1 - alpha) / a0,
	}
}

func firstOrder(fc float64, sampleRate int, highpass bool) biquad {
	k := math.Tan(math.Pi * fc / float64(sampleRate))
	a1 := (k - 1) / (k + 1)
	if highpass {
		b0 := 1 / (1 + k)
		return biquad{b0: b0, b1: -b0, a1: a1}
	}
	b0 := k / (1 + k)
	return biquad{b0: b0, b1: b0, a1: a1}
}

func notch(fc, q float64, sampleRate int) biquad {
	w0 := 2 * math.Pi * fc / float64(sampleRate)
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha
	return biquad{
		b0: 1 / a0, b1: -2 * cosw / a0, b2: 1 / a0,
		a1: -2 * cosw / a0, a2: (1 - alpha) / a0,
	}
}
