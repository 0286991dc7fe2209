package ml

import (
	"slices"
	"testing"
)

func TestShapeStrides(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  []int
	}{
		{"c 2x3", NewShape(2, 3), []int{3, 1}},
		{"c 2x3x4", NewShape(2, 3, 4), []int{12, 4, 1}},
		{"f 2x3", Shape{Dims: []int{2, 3}, Order: OrderF}, []int{1, 2}},
		{"f 2x3x4", Shape{Dims: []int{2, 3, 4}, Order: OrderF}, []int{1, 2, 6}},
		{"zero order", Shape{Dims: []int{4, 5}}, []int{5, 1}},
		{"scalar", NewShape(), []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.Strides(); !slices.Equal(got, tt.want) {
				t.Errorf("Strides() = %v, erwartet %v", got, tt.want)
			}
		})
	}
}

func TestShapeLen(t *testing.T) {
	if n := NewShape().Len(); n != 1 {
		t.Errorf("Skalar hat %d Elemente, erwartet 1", n)
	}
	if n := NewShape(2, 0, 3).Len(); n != 0 {
		t.Errorf("leere Achse ergibt %d Elemente, erwartet 0", n)
	}
	if n := NewShape(2, 3, 4).Len(); n != 24 {
		t.Errorf("Len() = %d, erwartet 24", n)
	}
}

func TestShapeValidate(t *testing.T) {
	if err := NewShape(2, -1).Validate(); err == nil {
		t.Error("negative Dimension sollte abgelehnt werden")
	}
	if err := (Shape{Dims: []int{2}, Order: 'x'}).Validate(); err == nil {
		t.Error("unbekannte Order sollte abgelehnt werden")
	}
	if err := (Shape{Dims: []int{2}}).Validate(); err != nil {
		t.Errorf("Order 0 ist gueltig: %v", err)
	}
}

func TestShapeEqualAndClone(t *testing.T) {
	a := NewShape(2, 3)
	b := a.Clone()
	b.Dims[0] = 5

	if a.Dims[0] != 2 {
		t.Error("Clone teilt den Dims-Slice")
	}
	if a.Equal(b) {
		t.Error("verschiedene Shapes sind gleich")
	}
	if !a.Equal(Shape{Dims: []int{2, 3}}) {
		t.Error("Order 0 und OrderC sollten gleich sein")
	}
	if a.Equal(Shape{Dims: []int{2, 3}, Order: OrderF}) {
		t.Error("C und F sollten verschieden sein")
	}
	if s := a.String(); s != "[2, 3]c" {
		t.Errorf("String() = %q", s)
	}
}

func TestNormalizeAxes(t *testing.T) {
	got, err := NormalizeAxes([]int{-1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{2, 0}) {
		t.Errorf("NormalizeAxes = %v, erwartet [2 0]", got)
	}

	for _, axes := range [][]int{nil, {3}, {-4}, {1, 1}, {0, -3}} {
		if _, err := NormalizeAxes(axes, 3); err == nil {
			t.Errorf("NormalizeAxes(%v, 3) sollte fehlschlagen", axes)
		}
	}
}
