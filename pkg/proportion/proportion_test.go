package proportion

import (
	"math"
	"testing"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

func TestEqual(t *testing.T) {
	for n := 1; n <= 32; n++ {
		v := Equal(n)
		if len(v) != n {
			t.Fatalf("Equal(%d) len = %d", n, len(v))
		}
		if v.Sum() != 100 {
			t.Errorf("Equal(%d) sum = %v, want exactly 100", n, v.Sum())
		}
		if err := v.Validate(); err != nil {
			t.Errorf("Equal(%d) invalid: %v", n, err)
		}
	}
	if Equal(0) != nil {
		t.Error("Equal(0) should be nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		v       Vector
		wantErr bool
	}{
		{"two", Of(60, 40), false},
		{"rounded", Of(33.33, 33.33, 33.34), false},
		{"within tolerance", Of(50, 50.005), false},
		{"empty", Vector{}, true},
		{"short sum", Of(50, 40), true},
		{"negative", Of(110, -10), true},
		{"nan", Of(math.NaN(), 100), true},
		{"inf", Of(math.Inf(1), 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidProportions) {
				t.Errorf("Validate(%v) code = %v", tt.v, errors.GetCode(err))
			}
		})
	}
}

func TestValidateLen(t *testing.T) {
	if err := Of(50, 50).ValidateLen(3); err == nil {
		t.Error("ValidateLen should reject a length mismatch")
	}
	if err := Of(50, 50).ValidateLen(2); err != nil {
		t.Errorf("ValidateLen: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	got := Of(1, 1, 2).Normalize()
	want := Of(25, 25, 50)
	if !got.WithinTolerance(want, 1e-9) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
	if got.Sum() != 100 {
		t.Errorf("Normalize sum = %v", got.Sum())
	}

	zero := Of(0, 0).Normalize()
	if !zero.Equal(Equal(2)) {
		t.Errorf("Normalize of zero vector = %v, want equal split", zero)
	}
}

func TestKey(t *testing.T) {
	a := Of(23.33, 43.33, 33.34)
	b := Of(23.330000001, 43.33, 33.34)
	if a.Key() != b.Key() {
		t.Errorf("Key should ignore noise below 4 decimals: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() != "23.3300,43.3300,33.3400" {
		t.Errorf("Key = %q", a.Key())
	}
	if Of(60, 40).Key() == Of(40, 60).Key() {
		t.Error("Key must be order sensitive")
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		tol  float64
		want bool
	}{
		{"identical", Of(60, 40), Of(60, 40), 0.1, true},
		{"inside", Of(60, 40), Of(60.5, 39.5), 1, true},
		{"outside", Of(60, 40), Of(61.5, 38.5), 1, false},
		{"tight", Of(30, 30, 40), Of(30.2, 29.8, 40), 0.1, false},
		{"length mismatch", Of(50, 50), Of(30, 30, 40), 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.WithinTolerance(tt.b, tt.tol); got != tt.want {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.tol, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Vector
		wantErr bool
	}{
		{"60,40", Of(60, 40), false},
		{"33.33 33.33 33.34", Of(33.33, 33.33, 33.34), false},
		{"[25, 75]", Of(25, 75), false},
		{"", nil, true},
		{"60,abc", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		x, lo, hi, want float64
	}{
		{5, 10, 90, 10},
		{95, 10, 90, 90},
		{50, 10, 90, 50},
		{50, 60, 40, 50}, // empty interval: midpoint
	}
	for _, tt := range tests {
		if got := Clamp(tt.x, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.x, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestMinPercent(t *testing.T) {
	if got := MinPercent(100, 1000, 5); got != 10 {
		t.Errorf("MinPercent(100px of 1000px) = %v, want 10", got)
	}
	if got := MinPercent(10, 1000, 5); got != 5 {
		t.Errorf("MinPercent floor = %v, want 5", got)
	}
	if got := MinPercent(100, 0, 5); got != 5 {
		t.Errorf("MinPercent with zero extent = %v, want floor", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	v := Of(60, 40)
	c := v.Clone()
	c[0] = 10
	if v[0] != 60 {
		t.Error("Clone shares storage with the original")
	}
}
