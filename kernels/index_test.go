package kernels

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ollama/opexec/ml"
)

func TestRavel(t *testing.T) {
	c := ml.NewShape(2, 3)
	f := ml.Shape{Dims: []int{2, 3}, Order: ml.OrderF}

	tests := []struct {
		name    string
		coords  []int64
		shape   ml.Shape
		mode    ClipMode
		want    []int64
		wantErr error
	}{
		{"c", []int64{0, 0, 1, 1, 1, 2}, c, ClipModeThrow, []int64{0, 4, 5}, nil},
		{"fortran", []int64{0, 0, 1, 1, 1, 2}, f, ClipModeThrow, []int64{0, 3, 5}, nil},
		{"wrap", []int64{2, -1}, c, ClipModeWrap, []int64{2}, nil},
		{"clip", []int64{5, -3}, c, ClipModeClip, []int64{3}, nil},
		{"throw", []int64{2, 0}, c, ClipModeThrow, nil, ErrIndexOutOfBounds},
		{"empty axis", []int64{0, 0}, ml.NewShape(0, 3), ClipModeClip, nil, ErrIndexOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flat := make([]int64, len(tt.coords)/tt.shape.Rank())
			err := Ravel(tt.coords, flat, tt.shape, tt.mode)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("erwartet %v, bekommen %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, flat); diff != "" {
				t.Errorf("Ravel (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRavelOffsetOverflow(t *testing.T) {
	shape := ml.NewShape(70000, 70000)

	flat32 := make([]int32, 1)
	err := Ravel([]int32{69999, 69999}, flat32, shape, ClipModeThrow)
	if !errors.Is(err, ErrIndexOutOfBounds) {
		t.Fatalf("int32-Offset ueber MaxInt32 muss scheitern, bekommen %v (flat=%d)", err, flat32[0])
	}

	flat64 := make([]int64, 1)
	if err := Ravel([]int64{69999, 69999}, flat64, shape, ClipModeThrow); err != nil {
		t.Fatal(err)
	}
	if flat64[0] != 4899999999 {
		t.Errorf("erwartet 4899999999, bekommen %d", flat64[0])
	}
}

func TestRavelUnravelRoundTrip(t *testing.T) {
	for _, shape := range []ml.Shape{
		ml.NewShape(4, 3, 2),
		{Dims: []int{4, 3, 2}, Order: ml.OrderF},
		ml.NewShape(7),
	} {
		n := shape.Len()
		flat := make([]int32, n)
		for i := range flat {
			flat[i] = int32(i)
		}

		coords := make([]int32, n*shape.Rank())
		if err := Unravel(flat, coords, shape); err != nil {
			t.Fatal(err)
		}

		back := make([]int32, n)
		if err := Ravel(coords, back, shape, ClipModeThrow); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(flat, back); diff != "" {
			t.Errorf("%v: Round-Trip (-want +got):\n%s", shape, diff)
		}
	}
}

func TestUnravel(t *testing.T) {
	coords := make([]int64, 4)
	if err := Unravel([]int64{5, 3}, coords, ml.NewShape(2, 3)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int64{1, 2, 1, 0}, coords); diff != "" {
		t.Errorf("Unravel (-want +got):\n%s", diff)
	}

	if err := Unravel([]int64{6}, make([]int64, 2), ml.NewShape(2, 3)); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("erwartet ErrIndexOutOfBounds, bekommen %v", err)
	}
	if err := Unravel([]int64{1}, make([]int64, 3), ml.NewShape(2, 3)); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("erwartet ErrLengthMismatch, bekommen %v", err)
	}
}

func TestParseClipMode(t *testing.T) {
	for in, want := range map[string]ClipMode{"": ClipModeThrow, "raise": ClipModeThrow, "WRAP": ClipModeWrap, "clamp": ClipModeClip} {
		got, err := ParseClipMode(in)
		if err != nil || got != want {
			t.Errorf("ParseClipMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseClipMode("bounce"); err == nil {
		t.Error("unbekannter Modus sollte fehlschlagen")
	}
}
