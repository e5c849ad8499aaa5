package entity

import "math"

// And is the product of its arguments.
func And(xs ...float64) float64 {
	p := 1.0
	for _, x := range xs {
		p *= x
	}
	return p
}

// Or is the probabilistic sum of its arguments.
func Or(xs ...float64) float64 {
	p := 1.0
	for _, x := range xs {
		p *= 1 - x
	}
	return 1 - p
}

// AveAri is the arithmetic mean.
func AveAri(xs ...float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// AveGeo is the geometric mean.
func AveGeo(xs ...float64) float64 {
	return math.Pow(And(xs...), 1/float64(len(xs)))
}

// W2C converts evidence weight to confidence.
func W2C(w float64) float64 { return w / (w + Horizon) }

// C2W converts confidence to evidence weight.
func C2W(c float64) float64 { return Horizon * c / (1 - c) }

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
