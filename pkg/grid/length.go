package grid

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/proportion"
)

// Length is a CSS-style length: a percentage of the container extent plus a
// fixed pixel offset. Percent is in [0, 100] for well-formed cells; Px is
// usually a small multiple of the divider gap and may be negative.
type Length struct {
	Percent float64
	Px      float64
}

// Pct returns a pure percentage length.
func Pct(p float64) Length { return Length{Percent: p} }

// Px returns a pure pixel length.
func Px(px float64) Length { return Length{Px: px} }

// Add returns l + o.
func (l Length) Add(o Length) Length {
	return Length{Percent: l.Percent + o.Percent, Px: l.Px + o.Px}
}

// AddPx returns l shifted by px pixels.
func (l Length) AddPx(px float64) Length {
	return Length{Percent: l.Percent, Px: l.Px + px}
}

// Scale multiplies both parts by f. Used when a percentage is expressed
// relative to a span that is itself a percentage of the container.
func (l Length) Scale(f float64) Length {
	return Length{Percent: l.Percent * f, Px: l.Px * f}
}

// Resolve converts l to pixels for a container of the given extent.
func (l Length) Resolve(extent float64) float64 {
	return l.Percent/100*extent + l.Px
}

// IsZero reports whether both parts are zero.
func (l Length) IsZero() bool { return l.Percent == 0 && l.Px == 0 }

// String renders l as a CSS length: "40%", "4px" or "calc(40% + 4px)".
func (l Length) String() string {
	p, px := round4(l.Percent), round4(l.Px)
	switch {
	case px == 0:
		return fmtNum(p) + "%"
	case p == 0:
		return fmtNum(px) + "px"
	case px < 0:
		return fmt.Sprintf("calc(%s%% - %spx)", fmtNum(p), fmtNum(-px))
	default:
		return fmt.Sprintf("calc(%s%% + %spx)", fmtNum(p), fmtNum(px))
	}
}

// MarshalText encodes l as its CSS form.
func (l Length) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses the CSS form produced by [Length.String].
func (l *Length) UnmarshalText(b []byte) error {
	parsed, err := ParseLength(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

var (
	calcRe    = regexp.MustCompile(`^calc\(\s*(-?[0-9.]+)%\s*([+-])\s*([0-9.]+)px\s*\)$`)
	percentRe = regexp.MustCompile(`^(-?[0-9.]+)%$`)
	pixelRe   = regexp.MustCompile(`^(-?[0-9.]+)px$`)
)

// ParseLength parses "40%", "4px" or "calc(40% +/- 4px)".
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	if m := percentRe.FindStringSubmatch(s); m != nil {
		p, err := strconv.ParseFloat(m[1], 64)
		return Pct(p), err
	}
	if m := pixelRe.FindStringSubmatch(s); m != nil {
		px, err := strconv.ParseFloat(m[1], 64)
		return Px(px), err
	}
	if m := calcRe.FindStringSubmatch(s); m != nil {
		p, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Length{}, err
		}
		px, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return Length{}, err
		}
		if m[2] == "-" {
			px = -px
		}
		return Length{Percent: p, Px: px}, nil
	}
	return Length{}, errors.New(errors.ErrCodeInvalidInput, "invalid length %q", s)
}

func round4(x float64) float64 {
	r := math.Round(x*1e4) / 1e4
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

func fmtNum(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// Span is a one-dimensional band of the container: a leading edge and an extent.
type Span struct {
	Start Length
	Size  Length
}

// full is the whole container along one axis.
var full = Span{Start: Pct(0), Size: Pct(100)}

// End returns the trailing edge of s.
func (s Span) End() Length { return s.Start.Add(s.Size) }

// split divides s among the elements of v. Element shares are percentages of
// s's own extent, so both the percent and the pixel part of s.Size are scaled.
// Every child but the first gives up gap pixels at its leading edge, which is
// where the divider is drawn.
func split(s Span, v proportion.Vector, gap float64) []Span {
	out := make([]Span, len(v))
	var prefix float64
	for i, share := range v {
		child := Span{
			Start: s.Start.Add(s.Size.Scale(prefix / 100)),
			Size:  s.Size.Scale(share / 100),
		}
		if i > 0 {
			child.Start = child.Start.AddPx(gap)
			child.Size = child.Size.AddPx(-gap)
		}
		out[i] = child
		prefix += share
	}
	return out
}
