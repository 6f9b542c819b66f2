package calenv

import (
	"fmt"
	"strconv"
)

// Placeholder is rendered wherever a value could not be obtained.
const Placeholder = "--"

type Temperature float64

type Humidity int

type CO2 int

// Measure is a value reported by a sensor that may be missing. The
// zero Measure is missing.
type Measure[T Temperature | Humidity | CO2] struct {
	value   T
	present bool
}

func Present[T Temperature | Humidity | CO2](v T) Measure[T] {
	return Measure[T]{value: v, present: true}
}

func Missing[T Temperature | Humidity | CO2]() Measure[T] {
	return Measure[T]{}
}

func (m Measure[T]) Get() (T, bool) {
	return m.value, m.present
}

func (m Measure[T]) IsMissing() bool {
	return m.present == false
}

// Format renders the measure for the display: temperatures with one
// decimal on a four character field, integers as is. A missing measure
// renders as Placeholder, verbatim.
func (m Measure[T]) Format() string {
	if m.present == false {
		return Placeholder
	}
	switch v := any(m.value).(type) {
	case Temperature:
		return fmt.Sprintf("%4.1f", float64(v))
	case Humidity:
		return strconv.Itoa(int(v))
	case CO2:
		return strconv.Itoa(int(v))
	default:
		panic(fmt.Sprintf("unsupported type %T", m.value))
	}
}

func (m Measure[T]) String() string {
	return m.Format()
}
