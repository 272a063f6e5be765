package scraper

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseYears accepts a single year ("2015") or an inclusive range ("2000-2021").
func ParseYears(value string) ([]int, error) {
	value = strings.TrimSpace(value)

	if start, end, ok := strings.Cut(value, "-"); ok {
		from, err := parseYear(start)
		if err != nil {
			return nil, err
		}
		to, err := parseYear(end)
		if err != nil {
			return nil, err
		}
		if from > to {
			return nil, fmt.Errorf("invalid year range %q: start is after end", value)
		}

		years := make([]int, 0, to-from+1)
		for y := from; y <= to; y++ {
			years = append(years, y)
		}
		return years, nil
	}

	year, err := parseYear(value)
	if err != nil {
		return nil, err
	}
	return []int{year}, nil
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("invalid year %q: provide a single year or a range like 2000-2021", s)
	}
	return year, nil
}
