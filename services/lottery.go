package services

import (
	"strconv"
	"strings"
)

// defaultPrizeWeight applies to prizes without a configured weight.
const defaultPrizeWeight = 10

// PrizeTable is the parsed lottery configuration.
type PrizeTable struct {
	Prizes  []string
	Weights []int
}

// ParsePrizeTable splits the pipe-delimited prize and weight settings.
// Blank prize labels are dropped along with their weight; unparsable weights count as 0.
func ParsePrizeTable(prizes, weights string) PrizeTable {
	labels := strings.Split(prizes, "|")
	raw := strings.Split(weights, "|")
	if strings.TrimSpace(weights) == "" {
		raw = nil
	}

	table := PrizeTable{}
	for i, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		table.Prizes = append(table.Prizes, label)
		if i < len(raw) {
			w, err := strconv.Atoi(strings.TrimSpace(raw[i]))
			if err != nil {
				w = 0
			}
			table.Weights = append(table.Weights, w)
		}
	}
	return table
}

// WeightedDraw picks a prize with probability proportional to its weight.
// intn must return a uniform integer in [0, n). Missing weights default to 10 and
// negative weights count as 0. When every weight is 0 the last prize is returned.
// An empty prize list yields "".
func WeightedDraw(prizes []string, weights []int, intn func(n int) int) string {
	if len(prizes) == 0 {
		return ""
	}

	effective := make([]int, len(prizes))
	total := 0
	for i := range prizes {
		w := defaultPrizeWeight
		if i < len(weights) {
			w = weights[i]
		}
		if w < 0 {
			w = 0
		}
		effective[i] = w
		total += w
	}
	if total <= 0 {
		return prizes[len(prizes)-1]
	}

	point := intn(total)
	cumulative := 0
	for i, prize := range prizes {
		cumulative += effective[i]
		if point < cumulative {
			return prize
		}
	}
	return prizes[len(prizes)-1]
}
