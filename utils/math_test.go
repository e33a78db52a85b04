package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestMedian(t *testing.T) {
	test.That(t, Median(1, 1, 1, 1, 1, 10), test.ShouldEqual, float64(1))
	test.That(t, math.IsNaN(Median()), test.ShouldBeTrue)
}
