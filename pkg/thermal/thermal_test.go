package thermal

import "testing"

func TestKelvinDecode(t *testing.T) {
	k := Kelvin(373<<6 | 10)
	if k.Major != 373 {
		t.Errorf("Major = %d, want 373", k.Major)
	}
	if k.Minor != 10 {
		t.Errorf("Minor = %d, want 10", k.Minor)
	}
	if k.Neg {
		t.Error("Neg = true, want false")
	}
}

func TestCelsius_ColdSensorValue(t *testing.T) {
	// 0x1900 is 100 Kelvin exactly, far below zero Celsius.
	c := RawCelsius(0x1900)
	if c.Major != 173 {
		t.Errorf("Major = %d, want 173", c.Major)
	}
	if c.Minor != 10 {
		t.Errorf("Minor = %d, want 10", c.Minor)
	}
	if !c.Neg {
		t.Error("Neg = false, want true")
	}
}

func TestCelsius_BoilingPoint(t *testing.T) {
	// 373 degrees and 10/64ths Kelvin is exactly 100 Celsius in this
	// encoding.
	c := RawCelsius(373<<6 | 10)
	if c.Major != 100 || c.Minor != 0 || c.Neg {
		t.Errorf("got %d+%d/64 neg=%v, want 100+0/64 neg=false", c.Major, c.Minor, c.Neg)
	}
}

func TestCelsius_BorrowAboveZero(t *testing.T) {
	// 300 degrees 5/64ths Kelvin: the fraction is smaller than absolute
	// zero's, so the subtraction borrows from the whole degrees.
	c := RawCelsius(300<<6 | 5)
	if c.Major != 26 || c.Minor != 59 || c.Neg {
		t.Errorf("got %d+%d/64 neg=%v, want 26+59/64 neg=false", c.Major, c.Minor, c.Neg)
	}
}

func TestCelsius_BorrowBelowZero(t *testing.T) {
	// 272 degrees 20/64ths Kelvin is just under zero Celsius and the
	// fraction borrows in the other direction.
	c := RawCelsius(272<<6 | 20)
	if c.Major != 0 || c.Minor != 54 || !c.Neg {
		t.Errorf("got %d+%d/64 neg=%v, want 0+54/64 neg=true", c.Major, c.Minor, c.Neg)
	}
}

func TestCelsius_JustBelowZero(t *testing.T) {
	// Same whole degrees as absolute zero but a smaller fraction.
	c := RawCelsius(273<<6 | 5)
	if c.Major != 0 || c.Minor != 5 || !c.Neg {
		t.Errorf("got %d+%d/64 neg=%v, want 0+5/64 neg=true", c.Major, c.Minor, c.Neg)
	}
}

func TestFahrenheit(t *testing.T) {
	cases := []struct {
		name string
		in   Temp
		want Temp
	}{
		{"freezing", Temp{Major: 0}, Temp{Major: 32}},
		{"boiling", Temp{Major: 100}, Temp{Major: 212}},
		{"crossover", Temp{Major: 40, Neg: true}, Temp{Major: 40, Neg: true}},
		{"negative to positive", Temp{Major: 10, Neg: true}, Temp{Major: 14}},
		{"still negative", Temp{Major: 30, Neg: true}, Temp{Major: 22, Neg: true}},
	}
	for _, c := range cases {
		got := c.in.Fahrenheit()
		if got.Major != c.want.Major || got.Minor != c.want.Minor || got.Neg != c.want.Neg {
			t.Errorf("%s: got %d+%d/64 neg=%v, want %d+%d/64 neg=%v",
				c.name, got.Major, got.Minor, got.Neg,
				c.want.Major, c.want.Minor, c.want.Neg)
		}
	}
}

func TestString(t *testing.T) {
	got := Temp{Major: 173, Minor: 10, Neg: true}.String()
	if got != "-173.16" {
		t.Errorf("String() = %q, want %q", got, "-173.16")
	}
	got = Temp{Major: 36, Minor: 32}.String()
	if got != "36.50" {
		t.Errorf("String() = %q, want %q", got, "36.50")
	}
}

func TestRoundingTablesInverse(t *testing.T) {
	// Going 64ths -> hundredths -> 64ths must land back on the same
	// fraction, or temperature displays would drift between unit
	// toggles.
	for i := uint32(0); i < 64; i++ {
		if got := sixtyFourths[hundredths[i]]; got != i {
			t.Errorf("sixtyFourths[hundredths[%d]] = %d, want %d", i, got, i)
		}
	}
}
