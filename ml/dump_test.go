package ml

import "testing"

func TestDump(t *testing.T) {
	tests := []struct {
		name   string
		tensor func() *Tensor
		opts   []DumpOptions
		want   string
	}{
		{
			name:   "int 1d",
			tensor: func() *Tensor { return FromSlice([]int32{1, 2, 3}) },
			want:   "[ 1,  2,  3]",
		},
		{
			name:   "int 2d",
			tensor: func() *Tensor { return FromSlice([]int64{1, 2, 3, 4, 5, 6}, 2, 3) },
			want:   "[[ 1,  2,  3],\n [ 4,  5,  6]]",
		},
		{
			name:   "float precision",
			tensor: func() *Tensor { return FromSlice([]float32{1.5, -2}) },
			opts:   []DumpOptions{DumpWithPrecision(2)},
			want:   "[ 1.50, -2.00]",
		},
		{
			name:   "truncated",
			tensor: func() *Tensor { return FromSlice([]int32{1, 2, 3, 4, 5}) },
			opts:   []DumpOptions{DumpWithThreshold(2), DumpWithEdgeItems(1)},
			want:   "[ 1, ...,  5]",
		},
		{
			name:   "scalar bool",
			tensor: func() *Tensor { return Scalar(true) },
			want:   "true",
		},
		{
			name: "fortran order",
			tensor: func() *Tensor {
				x, err := FromFloat64s(DTypeInt32, []float64{1, 4, 2, 5, 3, 6}, Shape{Dims: []int{2, 3}, Order: OrderF})
				if err != nil {
					t.Fatal(err)
				}
				return x
			},
			want: "[[ 1,  2,  3],\n [ 4,  5,  6]]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dump(tt.tensor(), tt.opts...); got != tt.want {
				t.Errorf("Dump() =\n%s\nerwartet\n%s", got, tt.want)
			}
		})
	}
}
