package services

import "testing"

func TestComputeStreak(t *testing.T) {
	tests := []struct {
		name string
		days []string
		want int
	}{
		{"no history", nil, 0},
		{"single day", []string{"2024-03-10"}, 1},
		{"three in a row", []string{"2024-03-10", "2024-03-11", "2024-03-12"}, 3},
		{"gap resets", []string{"2024-03-10", "2024-03-11", "2024-03-12", "2024-03-14"}, 1},
		{"unordered with duplicates", []string{"2024-03-12", "2024-03-10", "2024-03-12", "2024-03-11"}, 3},
		{"across month end", []string{"2024-02-28", "2024-02-29", "2024-03-01"}, 3},
		{"garbage skipped", []string{"not-a-day", "2024-03-10", "2024-03-09"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeStreak(tt.days); got != tt.want {
				t.Fatalf("ComputeStreak(%v) = %d, want %d", tt.days, got, tt.want)
			}
		})
	}
}
