package rimage

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownBorderPolicy is returned for a BorderPolicy value or name that is not defined.
var ErrUnknownBorderPolicy = errors.New("unknown border policy")

// BorderPolicy decides what a kernel sees when it hangs over the edge of an image.
type BorderPolicy int

const (
	// BorderZeroFill treats every pixel outside the image as 0.
	BorderZeroFill BorderPolicy = iota
	// BorderReflect101 mirrors the image around its edge pixels without repeating them:
	// for a row "abcd" the padding reads "dcb|abcd|cba".
	BorderReflect101
)

func (b BorderPolicy) String() string {
	switch b {
	case BorderZeroFill:
		return "zero"
	case BorderReflect101:
		return "reflect101"
	default:
		return "unknown"
	}
}

// Validate returns ErrUnknownBorderPolicy for values other than the declared policies.
func (b BorderPolicy) Validate() error {
	if b != BorderZeroFill && b != BorderReflect101 {
		return errors.Wrapf(ErrUnknownBorderPolicy, "%d", int(b))
	}
	return nil
}

// ParseBorderPolicy maps a name such as "zero" or "reflect101" to a BorderPolicy.
func ParseBorderPolicy(name string) (BorderPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "zero", "zero-fill", "zerofill", "constant":
		return BorderZeroFill, nil
	case "reflect101", "reflect-101", "reflect_101", "reflect":
		return BorderReflect101, nil
	default:
		return BorderZeroFill, errors.Wrapf(ErrUnknownBorderPolicy, "%q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b BorderPolicy) MarshalText() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BorderPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseBorderPolicy(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// sourceIndex maps a coordinate on an axis of length n, possibly outside [0, n), to the source
// coordinate it reads from. ok is false when the sample is zero.
func (b BorderPolicy) sourceIndex(i, n int) (idx int, ok bool) {
	if i >= 0 && i < n {
		return i, true
	}
	if b == BorderZeroFill {
		return 0, false
	}
	return reflect101(i, n), true
}

// reflect101 folds i into [0, n). Pads wider than the image keep bouncing between the two edges.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

// Pad returns a float64 copy of img grown by hPad rows above and below and vPad columns left and
// right, filled according to border. The channel axis is never padded.
func Pad[T Sample](img *Image[T], hPad, vPad int, border BorderPolicy) (*Image[float64], error) {
	if err := border.Validate(); err != nil {
		return nil, err
	}
	if err := img.validate(); err != nil {
		return nil, err
	}
	if hPad < 0 || vPad < 0 {
		return nil, errors.Errorf("padding must not be negative, got %d, %d", hPad, vPad)
	}
	return pad(img, hPad, vPad, border), nil
}

func pad[T Sample](img *Image[T], hPad, vPad int, border BorderPolicy) *Image[float64] {
	padded := &Image[float64]{
		height:   img.height + 2*hPad,
		width:    img.width + 2*vPad,
		channels: img.channels,
		rank:     img.rank,
	}
	padded.data = make([]float64, padded.height*padded.width*padded.channels)

	// resolve the column mapping once; it is the same for every row
	srcCols := make([]int, padded.width)
	for x := range srcCols {
		col, ok := border.sourceIndex(x-vPad, img.width)
		if !ok {
			col = -1
		}
		srcCols[x] = col
	}

	ch := img.channels
	for y := 0; y < padded.height; y++ {
		row, ok := border.sourceIndex(y-hPad, img.height)
		if !ok {
			continue
		}
		for x, col := range srcCols {
			if col < 0 {
				continue
			}
			src := img.index(row, col, 0)
			dst := padded.index(y, x, 0)
			for c := 0; c < ch; c++ {
				padded.data[dst+c] = float64(img.data[src+c])
			}
		}
	}
	return padded
}
