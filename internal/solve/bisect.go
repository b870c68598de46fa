// Package solve inverts monotone scalar functions by bounded bisection.
package solve

import (
	"math"

	"github.com/signalsfoundry/linkbudget/rferr"
)

const (
	// MaxIterations caps every bisection run.
	MaxIterations = 200
	// Tolerance is the interval width at which the search stops.
	Tolerance = 1e-9
)

// Bisect finds x in [lo, hi] with f(x) == target for a function that is
// monotone on the interval, increasing or decreasing. It returns
// rferr.ErrNoConvergence when target is not bracketed by f(lo) and f(hi)
// and rferr.ErrDomain when the interval or a function value is invalid.
func Bisect(f func(float64) float64, target, lo, hi float64) (float64, error) {
	if math.IsNaN(lo) || math.IsNaN(hi) || !(lo < hi) {
		return 0, rferr.Domain("invalid search interval [%v, %v]", lo, hi)
	}
	flo, fhi := f(lo)-target, f(hi)-target
	if math.IsNaN(flo) || math.IsNaN(fhi) {
		return 0, rferr.Domain("function is undefined at the interval bounds")
	}
	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}
	if (flo > 0) == (fhi > 0) {
		return 0, rferr.NoConvergence("target %g not bracketed in [%v, %v]", target, lo, hi)
	}

	for i := 0; i < MaxIterations && hi-lo > Tolerance; i++ {
		mid := lo + (hi-lo)/2
		fmid := f(mid) - target
		if math.IsNaN(fmid) {
			return 0, rferr.Domain("function is undefined at %v", mid)
		}
		if fmid == 0 {
			return mid, nil
		}
		if (fmid > 0) == (flo > 0) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	return lo + (hi-lo)/2, nil
}
