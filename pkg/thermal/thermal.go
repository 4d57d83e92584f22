// Package thermal converts raw 16-bit sensor counts into fixed-point
// temperatures. The sensor encodes Kelvin directly in its counts:
// the top ten bits are whole degrees and the low six bits are 64ths.
// All arithmetic stays in integers so decoded values are bit-identical
// across builds and match stored recordings.
package thermal

import "fmt"

// A Temp is a sign-magnitude fixed-point temperature: Major whole
// degrees plus Minor 64ths of a degree. Minor is always in [0,63].
// Neg is meaningful only after conversion out of Kelvin, since raw
// counts can't be below absolute zero.
type Temp struct {
	Major uint32
	Minor uint32
	Neg   bool
}

// Absolute zero in the sensor's Celsius fixed-point encoding:
// 273 degrees and 10/64ths (~273.16).
var absZero = Temp{Major: 273, Minor: 10}

// Rounding tables between 64ths-of-a-degree and hundredths-of-a-degree.
//
//	python3 -c 'print([int(round(i / 64 * 100, 0)) for i in range(64)])'
//	python3 -c 'print([int(round(i / 100 * 64, 0)) for i in range(100)])'
var hundredths = [64]uint32{
	0, 2, 3, 5, 6, 8, 9, 11, 12, 14, 16, 17, 19, 20, 22, 23,
	25, 27, 28, 30, 31, 33, 34, 36, 38, 39, 41, 42, 44, 45, 47, 48,
	50, 52, 53, 55, 56, 58, 59, 61, 62, 64, 66, 67, 69, 70, 72, 73,
	75, 77, 78, 80, 81, 83, 84, 86, 88, 89, 91, 92, 94, 95, 97, 98,
}

var sixtyFourths = [100]uint32{
	0, 1, 1, 2, 3, 3, 4, 4, 5, 6, 6, 7, 8, 8, 9, 10, 10,
	11, 12, 12, 13, 13, 14, 15, 15, 16, 17, 17, 18, 19, 19, 20, 20, 21,
	22, 22, 23, 24, 24, 25, 26, 26, 27, 28, 28, 29, 29, 30, 31, 31, 32,
	33, 33, 34, 35, 35, 36, 36, 37, 38, 38, 39, 40, 40, 41, 42, 42, 43,
	44, 44, 45, 45, 46, 47, 47, 48, 49, 49, 50, 51, 51, 52, 52, 53, 54,
	54, 55, 56, 56, 57, 58, 58, 59, 60, 60, 61, 61, 62, 63, 63,
}

// Kelvin decodes a raw sensor count into fixed-point Kelvin.
func Kelvin(raw uint16) Temp {
	return Temp{
		Major: uint32(raw) >> 6,
		Minor: uint32(raw) & 0x3F,
	}
}

// Celsius subtracts absolute zero from a Kelvin value, propagating the
// borrow across the fractional boundary and setting the sign for
// readings below zero.
func (t Temp) Celsius() Temp {
	if t.Major < absZero.Major ||
		(t.Major == absZero.Major && t.Minor < absZero.Minor) {
		ret := Temp{
			Major: absZero.Major - t.Major,
			Minor: absZero.Minor - t.Minor,
			Neg:   true,
		}
		if t.Minor > absZero.Minor {
			ret.Minor += 64
			ret.Major--
		}
		return ret
	}

	ret := Temp{
		Major: t.Major - absZero.Major,
		Minor: t.Minor - absZero.Minor,
	}
	if t.Minor < absZero.Minor {
		ret.Minor += 64
		ret.Major--
	}
	return ret
}

// RawCelsius is Kelvin followed by Celsius.
func RawCelsius(raw uint16) Temp {
	return Kelvin(raw).Celsius()
}

// Fahrenheit converts a Celsius value using hundredths-of-a-degree
// integer arithmetic. The fraction crosses through the rounding tables
// in both directions, so results are exact to table granularity.
func (t Temp) Fahrenheit() Temp {
	tmp := (t.Major*100 + hundredths[t.Minor]) * 9 / 5
	neg := t.Neg

	if neg {
		if tmp <= 3200 {
			tmp = 3200 - tmp
			neg = false
		} else {
			tmp -= 3200
		}
	} else {
		tmp += 3200
	}

	return Temp{
		Major: tmp / 100,
		Minor: sixtyFourths[tmp%100],
		Neg:   neg,
	}
}

// Hundredths returns the fractional part as hundredths of a degree,
// for display.
func (t Temp) Hundredths() uint32 {
	return hundredths[t.Minor&0x3F]
}

func (t Temp) String() string {
	sign := ""
	if t.Neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%02d", sign, t.Major, t.Hundredths())
}
