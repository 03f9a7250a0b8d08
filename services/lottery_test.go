package services

import (
	"math/rand/v2"
	"reflect"
	"testing"
)

func TestWeightedDrawZeroWeightsNeverWin(t *testing.T) {
	prizes := []string{"a", "b", "c"}
	weights := []int{0, 0, 100}
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		if got := WeightedDraw(prizes, weights, r.IntN); got != "c" {
			t.Fatalf("draw %d: got %q, want c", i, got)
		}
	}
}

func TestWeightedDraw(t *testing.T) {
	fixed := func(v int) func(int) int {
		return func(int) int { return v }
	}
	tests := []struct {
		name    string
		prizes  []string
		weights []int
		roll    int
		want    string
	}{
		{"first bucket", []string{"a", "b"}, []int{40, 60}, 0, "a"},
		{"bucket edge", []string{"a", "b"}, []int{40, 60}, 40, "b"},
		{"missing weights default to 10", []string{"a", "b", "c"}, []int{5}, 14, "b"},
		{"negative weight counts as zero", []string{"a", "b"}, []int{-5, 10}, 0, "b"},
		{"all zero falls back to last", []string{"a", "b"}, []int{0, 0}, 0, "b"},
		{"empty prize list", nil, nil, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeightedDraw(tt.prizes, tt.weights, fixed(tt.roll)); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePrizeTable(t *testing.T) {
	table := ParsePrizeTable("10 points| 20 points ||Thanks", "40|x|20|7")
	wantPrizes := []string{"10 points", "20 points", "Thanks"}
	if !reflect.DeepEqual(table.Prizes, wantPrizes) {
		t.Fatalf("prizes = %v, want %v", table.Prizes, wantPrizes)
	}
	if len(table.Weights) != 3 || table.Weights[0] != 40 || table.Weights[1] != 0 || table.Weights[2] != 7 {
		t.Fatalf("weights = %v", table.Weights)
	}
}
