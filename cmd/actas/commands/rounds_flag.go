package commands

import (
	"fmt"
	"strconv"
	"strings"
)

// parseRounds reads a round selection such as "3,5-7". Order and duplicates are left to
// the pipeline.
func parseRounds(s string) ([]int, error) {
	var rounds []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid round %q", part)
		}
		to := from
		if isRange {
			if to, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("invalid round range %q", part)
			}
		}
		if to < from {
			return nil, fmt.Errorf("invalid round range %q", part)
		}
		for r := from; r <= to; r++ {
			rounds = append(rounds, r)
		}
	}
	return rounds, nil
}
