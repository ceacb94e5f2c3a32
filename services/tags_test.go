package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTagIDs(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want []int64
	}{
		{"nil", nil, []int64{}},
		{"comma string", "3, 1,3 ,x,-2,0", []int64{3, 1}},
		{"space string", "4 5  6", []int64{4, 5, 6}},
		{"string slice", []string{"7", "7", "8,9", ""}, []int64{7, 8, 9}},
		{"int slice", []int{2, 0, -1, 2}, []int64{2}},
		{"int64 slice", []int64{10, 11}, []int64{10, 11}},
		{"uint slice", []uint{1, 1}, []int64{1}},
		{"mixed", []any{"1", 2, 2.0, 3.5, "abc", []string{"4"}}, []int64{1, 2, 4}},
		{"empty string", "", []int64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeTagIDs(tc.in))
		})
	}
}
