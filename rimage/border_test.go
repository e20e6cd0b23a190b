package rimage

import (
	"encoding/json"
	"errors"
	"testing"

	"go.viam.com/test"
)

func TestReflect101(t *testing.T) {
	// "abcd" pads as "dcb|abcd|cba"
	expected := map[int]int{-3: 3, -2: 2, -1: 1, 0: 0, 1: 1, 2: 2, 3: 3, 4: 2, 5: 1, 6: 0, 7: 1}
	for i, want := range expected {
		test.That(t, reflect101(i, 4), test.ShouldEqual, want)
	}
	for _, i := range []int{-5, -1, 0, 1, 9} {
		test.That(t, reflect101(i, 1), test.ShouldEqual, 0)
	}
	for i := -20; i < 20; i++ {
		idx := reflect101(i, 3)
		test.That(t, idx, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, idx, test.ShouldBeLessThanOrEqualTo, 2)
	}
}

func TestSourceIndex(t *testing.T) {
	idx, ok := BorderZeroFill.sourceIndex(-1, 5)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, idx, test.ShouldEqual, 0)
	idx, ok = BorderZeroFill.sourceIndex(4, 5)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, idx, test.ShouldEqual, 4)
	idx, ok = BorderReflect101.sourceIndex(5, 5)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, idx, test.ShouldEqual, 3)
}

func TestPadZeroFill(t *testing.T) {
	img := makeImage([]int{2, 3, 2}, func(y, x, c int) uint8 { return uint8(1 + y*10 + x + c*100) })
	padded, err := Pad(img, 2, 1, BorderZeroFill)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, padded.Shape(), test.ShouldResemble, []int{6, 5, 2})
	for y := 0; y < 6; y++ {
		for x := 0; x < 5; x++ {
			for c := 0; c < 2; c++ {
				inside := y >= 2 && y < 4 && x >= 1 && x < 4
				if inside {
					test.That(t, padded.At(y, x, c), test.ShouldEqual, float64(img.At(y-2, x-1, c)))
				} else {
					test.That(t, padded.At(y, x, c), test.ShouldEqual, 0.)
				}
			}
		}
	}

	_, err = Pad(img, -1, 0, BorderZeroFill)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = Pad(img, 1, 1, BorderPolicy(-1))
	test.That(t, errors.Is(err, ErrUnknownBorderPolicy), test.ShouldBeTrue)
}

func TestParseBorderPolicy(t *testing.T) {
	for name, want := range map[string]BorderPolicy{
		"zero":        BorderZeroFill,
		"Constant":    BorderZeroFill,
		" zero-fill ": BorderZeroFill,
		"reflect101":  BorderReflect101,
		"REFLECT-101": BorderReflect101,
		"reflect":     BorderReflect101,
	} {
		got, err := ParseBorderPolicy(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, want)
	}
	_, err := ParseBorderPolicy("replicate")
	test.That(t, errors.Is(err, ErrUnknownBorderPolicy), test.ShouldBeTrue)

	test.That(t, BorderZeroFill.String(), test.ShouldEqual, "zero")
	test.That(t, BorderReflect101.String(), test.ShouldEqual, "reflect101")
	test.That(t, BorderPolicy(3).String(), test.ShouldEqual, "unknown")
}

func TestBorderPolicyJSON(t *testing.T) {
	type holder struct {
		Border BorderPolicy `json:"border"`
	}
	var h holder
	test.That(t, json.Unmarshal([]byte(`{"border":"reflect101"}`), &h), test.ShouldBeNil)
	test.That(t, h.Border, test.ShouldEqual, BorderReflect101)

	out, err := json.Marshal(holder{BorderZeroFill})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `{"border":"zero"}`)

	test.That(t, json.Unmarshal([]byte(`{"border":"wrap"}`), &h), test.ShouldNotBeNil)
	_, err = json.Marshal(holder{BorderPolicy(4)})
	test.That(t, err, test.ShouldNotBeNil)
}
