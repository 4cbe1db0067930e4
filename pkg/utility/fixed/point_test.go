package fixed

import (
	"math"
	"testing"
)

func TestPoint_FromInt64(t *testing.T) {
	tests := []struct {
		name  string
		value int64
		scale int
		want  string
	}{
		{"zero", 0, 0, "0"},
		{"positive", 123, 0, "123"},
		{"negative", -456, 0, "-456"},
		{"with scale", 123, 2, "1.23"},
		{"negative with scale", -456, 3, "-0.456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromInt64(tt.value, tt.scale)
			if got.String() != tt.want {
				t.Errorf("FromInt64(%d, %d) = %s; want %s", tt.value, tt.scale, got.String(), tt.want)
			}
		})
	}
}

func TestPoint_FromFloat64(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"zero", 0.0, "0"},
		{"positive", 123.45, "123.45"},
		{"negative", -67.89, "-67.89"},
		{"small decimal", 0.0001, "0.0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromFloat64(tt.value)
			if got.String() != tt.want {
				t.Errorf("FromFloat64(%f) = %s; want %s", tt.value, got.String(), tt.want)
			}
		})
	}
}

func TestPoint_FromFloat64Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("FromFloat64(NaN) did not panic")
		}
	}()
	FromFloat64(math.NaN())
}

func TestPoint_Arithmetic(t *testing.T) {
	tests := []struct {
		name   string
		result Point
		want   string
	}{
		{"add", FromInt(2, 0).Add(FromFloat64(0.5)), "2.5"},
		{"sub", FromInt(2, 0).Sub(FromFloat64(0.5)), "1.5"},
		{"mul", FromFloat64(1.5).Mul(Two), "3.0"},
		{"div", FromInt(3, 0).Div(Two), "1.5"},
		{"mul int64", FromFloat64(2.5).MulInt64(4), "10.0"},
		{"div int64", FromInt(10, 0).DivInt64(4), "2.5"},
		{"neg", One.Neg(), "-1"},
		{"abs", NegOne.Abs(), "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.String() != tt.want {
				t.Errorf("got %s; want %s", tt.result.String(), tt.want)
			}
		})
	}
}

func TestPoint_Comparisons(t *testing.T) {
	a := FromFloat64(1.5)
	b := FromInt(2, 0)

	tests := []struct {
		name   string
		result bool
		want   bool
	}{
		{"lt", a.Lt(b), true},
		{"gt", b.Gt(a), true},
		{"gte equal", b.Gte(Two), true},
		{"lte equal", b.Lte(Two), true},
		{"eq across scales", FromInt64(150, 2).Eq(a), true},
		{"is zero", Zero.IsZero(), true},
		{"is neg", NegOne.IsNeg(), true},
		{"is pos", One.IsPos(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result != tt.want {
				t.Errorf("got %v; want %v", tt.result, tt.want)
			}
		})
	}
}

func TestPoint_Exp(t *testing.T) {
	got, ok := Zero.Exp().Float64()
	if !ok || got != 1.0 {
		t.Errorf("exp(0) = %v; want 1", got)
	}

	got, ok = One.Exp().Float64()
	if !ok || math.Abs(got-math.E) > 1e-9 {
		t.Errorf("exp(1) = %v; want e", got)
	}
}

func TestPoint_Rescale(t *testing.T) {
	got := FromFloat64(1.23456).Rescale(2)
	if got.String() != "1.23" {
		t.Errorf("got %s; want 1.23", got.String())
	}
}

func TestPoint_MinMax(t *testing.T) {
	if !One.Min(Two).Eq(One) {
		t.Error("min(1, 2) != 1")
	}
	if !One.Max(Two).Eq(Two) {
		t.Error("max(1, 2) != 2")
	}
}

func TestPoint_TextRoundTrip(t *testing.T) {
	original := FromFloat64(-1234.5678)

	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Point
	if err := got.UnmarshalText(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Eq(original) {
		t.Errorf("got %s; want %s", got.String(), original.String())
	}
}
