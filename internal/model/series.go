package model

import (
	"time"

	"github.com/guregu/null/v5"
)

// Point is one value of a derived series. Absent values marshal to null.
type Point struct {
	Date  time.Time  `json:"date"`
	Value null.Float `json:"value"`
}

// DerivedSeries is a named sequence computed over a date axis.
type DerivedSeries struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// NewSeries zips dates and values. Both slices must have the same length.
func NewSeries(name string, dates []time.Time, values []null.Float) DerivedSeries {
	n := min(len(dates), len(values))
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		points[i] = Point{Date: dates[i], Value: values[i]}
	}
	return DerivedSeries{Name: name, Points: points}
}

// Values returns the raw values in order.
func (s DerivedSeries) Values() []null.Float {
	out := make([]null.Float, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Defined counts present values.
func (s DerivedSeries) Defined() int {
	n := 0
	for _, p := range s.Points {
		if p.Value.Valid {
			n++
		}
	}
	return n
}

// Last returns the most recent present value.
func (s DerivedSeries) Last() null.Float {
	for i := len(s.Points) - 1; i >= 0; i-- {
		if s.Points[i].Value.Valid {
			return s.Points[i].Value
		}
	}
	return null.Float{}
}
