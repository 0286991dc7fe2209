package kernels

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ollama/opexec/ml"
)

func TestSortTAD(t *testing.T) {
	tests := []struct {
		name  string
		data  []int32
		shape ml.Shape
		axes  []int
		desc  bool
		want  []int32
	}{
		{
			name:  "rows",
			data:  []int32{3, 1, 2, 6, 4, 5},
			shape: ml.NewShape(2, 3),
			axes:  []int{1},
			want:  []int32{1, 2, 3, 4, 5, 6},
		},
		{
			name:  "rows negative axis",
			data:  []int32{3, 1, 2, 6, 4, 5},
			shape: ml.NewShape(2, 3),
			axes:  []int{-1},
			desc:  true,
			want:  []int32{3, 2, 1, 6, 5, 4},
		},
		{
			name:  "columns",
			data:  []int32{6, 1, 5, 3, 4, 2},
			shape: ml.NewShape(2, 3),
			axes:  []int{0},
			want:  []int32{3, 1, 2, 6, 4, 5},
		},
		{
			name:  "fortran rows",
			data:  []int32{3, 6, 1, 4, 2, 5},
			shape: ml.Shape{Dims: []int{2, 3}, Order: ml.OrderF},
			axes:  []int{1},
			want:  []int32{1, 4, 2, 5, 3, 6},
		},
		{
			name:  "all axes",
			data:  []int32{4, 3, 2, 1},
			shape: ml.NewShape(2, 2),
			axes:  []int{0, 1},
			want:  []int32{1, 2, 3, 4},
		},
		{
			name:  "empty",
			data:  []int32{},
			shape: ml.NewShape(0, 3),
			axes:  []int{1},
			want:  []int32{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := slices.Clone(tt.data)
			if err := SortTAD(data, tt.shape, tt.axes, CompareOrdered[int32], tt.desc, 2); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, data); diff != "" {
				t.Errorf("SortTAD (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortTADThreads(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	shape := ml.NewShape(37, 11, 5)
	data := make([]float32, shape.Len())
	for i := range data {
		data[i] = r.Float32()
	}

	want := slices.Clone(data)
	if err := SortTAD(want, shape, []int{1}, CompareOrdered[float32], false, 1); err != nil {
		t.Fatal(err)
	}

	for _, threads := range []int{0, 3, 8, 100} {
		got := slices.Clone(data)
		if err := SortTAD(got, shape, []int{1}, CompareOrdered[float32], false, threads); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("threads=%d weicht ab (-want +got):\n%s", threads, diff)
		}
	}

	// jede Spalte (Achse 1) muss sortiert sein
	for i := range 37 {
		for k := range 5 {
			col := make([]float32, 11)
			for j := range 11 {
				col[j] = want[i*55+j*5+k]
			}
			if !slices.IsSorted(col) {
				t.Fatalf("TAD (%d, :, %d) nicht sortiert: %v", i, k, col)
			}
		}
	}
}

func TestSortTADErrors(t *testing.T) {
	data := []int32{1, 2, 3}
	if err := SortTAD(data, ml.NewShape(2, 2), []int{0}, CompareOrdered[int32], false, 1); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("erwartet ErrLengthMismatch, bekommen %v", err)
	}
	if err := SortTAD(data, ml.NewShape(3), []int{1}, CompareOrdered[int32], false, 1); err == nil {
		t.Error("ungueltige Achse sollte fehlschlagen")
	}
	if err := SortTAD(data, ml.NewShape(3), nil, CompareOrdered[int32], false, 1); err == nil {
		t.Error("leere Achsenliste sollte fehlschlagen")
	}
}

func TestTADOffsets(t *testing.T) {
	bases, offsets, err := TADOffsets(ml.NewShape(2, 3, 4), []int{2, 0})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 4, 8}, bases); diff != "" {
		t.Errorf("bases (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3, 12, 13, 14, 15}, offsets); diff != "" {
		t.Errorf("offsets (-want +got):\n%s", diff)
	}
}
