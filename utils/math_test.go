package utils

import (
	"testing"

	"go.viam.com/test"
)

func TestClampF64(t *testing.T) {
	test.That(t, ClampF64(-3, 0, 255), test.ShouldEqual, 0.)
	test.That(t, ClampF64(300, 0, 255), test.ShouldEqual, 255.)
	test.That(t, ClampF64(12.5, 0, 255), test.ShouldEqual, 12.5)
}

func TestIsOdd(t *testing.T) {
	test.That(t, IsOdd(3), test.ShouldBeTrue)
	test.That(t, IsOdd(-3), test.ShouldBeTrue)
	test.That(t, IsOdd(0), test.ShouldBeFalse)
	test.That(t, IsOdd(4), test.ShouldBeFalse)
	test.That(t, MaxInt(2, 5), test.ShouldEqual, 5)
	test.That(t, MinInt(2, 5), test.ShouldEqual, 2)
}
