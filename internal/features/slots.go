package features

import (
	"fmt"

	"github.com/lox/raincheck/internal/models"
)

// Slot indexes a Vector.
type Slot int

// Direct slots, in training column order.
const (
	MinTemp Slot = iota
	MaxTemp
	Rainfall
	WindGustSpeed
	WindSpeed9am
	WindSpeed3pm
	Humidity9am
	Humidity3pm
	Pressure9am
	Pressure3pm
	Temp9am
	Temp3pm
	RainToday
	Year
	Month
	Day
	Weekday

	NumDirect int = iota
)

const (
	numLocations  = 49
	numDirections = 16

	// NumSlots is the length of every Vector.
	NumSlots = NumDirect + numLocations + 3*numDirections
)

// Vector is the classifier input. Index it with Slot.
type Vector [NumSlots]float64

// Slice returns the vector as a slice, the form classifiers take.
func (v *Vector) Slice() []float64 { return v[:] }

var directNames = [NumDirect]string{
	"MinTemp", "MaxTemp", "Rainfall", "WindGustSpeed", "WindSpeed9am", "WindSpeed3pm",
	"Humidity9am", "Humidity3pm", "Pressure9am", "Pressure3pm", "Temp9am", "Temp3pm",
	"RainToday", "Year", "Month", "Day", "Weekday",
}

// Category is one one-hot block.
type Category struct {
	Name   string
	Prefix string
	Offset Slot
	Labels []string

	index map[string]int
	label func(models.Observation) string
}

// Slot returns the slot for label, or false when label is outside the vocabulary.
func (c *Category) Slot(label string) (Slot, bool) {
	i, ok := c.index[label]
	if !ok {
		return 0, false
	}
	return c.Offset + Slot(i), true
}

// Categories are the four one-hot blocks in vector order.
var Categories = []*Category{
	newCategory("Location", "Location_", Slot(NumDirect), models.Locations, func(o models.Observation) string { return o.Location }),
	newCategory("WindGustDir", "WindGustDir_", Slot(NumDirect+numLocations), models.WindDirections, func(o models.Observation) string { return o.WindGustDir }),
	newCategory("WindDir9am", "WindDir9am_", Slot(NumDirect+numLocations+numDirections), models.WindDirections, func(o models.Observation) string { return o.WindDir9am }),
	newCategory("WindDir3pm", "WindDir3pm_", Slot(NumDirect+numLocations+2*numDirections), models.WindDirections, func(o models.Observation) string { return o.WindDir3pm }),
}

func newCategory(name, prefix string, offset Slot, labels []string, label func(models.Observation) string) *Category {
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	return &Category{Name: name, Prefix: prefix, Offset: offset, Labels: labels, index: index, label: label}
}

var slotNames = buildSlotNames()

func buildSlotNames() [NumSlots]string {
	var names [NumSlots]string
	copy(names[:], directNames[:])
	for _, c := range Categories {
		for i, l := range c.Labels {
			names[int(c.Offset)+i] = c.Prefix + l
		}
	}
	for i, n := range names {
		if n == "" {
			panic(fmt.Sprintf("features: slot %d has no name", i))
		}
	}
	return names
}

// Name returns the training column name of s, e.g. "Location_Sydney".
func (s Slot) Name() string {
	if s < 0 || int(s) >= NumSlots {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotNames[s]
}

func (s Slot) String() string { return s.Name() }

// SlotNames returns all slot names in vector order.
func SlotNames() []string {
	out := make([]string, NumSlots)
	copy(out, slotNames[:])
	return out
}

// DirectNames returns the names of the scaled slots in order.
func DirectNames() []string {
	out := make([]string, NumDirect)
	copy(out, directNames[:])
	return out
}
