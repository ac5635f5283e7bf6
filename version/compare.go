package version

import (
	"fmt"
	"strconv"
	"strings"
)

// parse reads "v1.2.3", "1.2" or "1" into its numeric parts. Missing parts are zero.
func parse(s string) ([3]int, error) {
	var parts [3]int

	fields := strings.Split(strings.TrimPrefix(strings.TrimSpace(s), "v"), ".")
	if len(fields) > len(parts) {
		return parts, fmt.Errorf("version %q: too many parts", s)
	}

	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return parts, fmt.Errorf("version %q: invalid part %q", s, f)
		}
		parts[i] = n
	}

	return parts, nil
}

// Compare returns 1 if a is newer than b, -1 if older and 0 if equal.
func Compare(a, b string) (int, error) {
	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for i := range av {
		switch {
		case av[i] > bv[i]:
			return 1, nil
		case av[i] < bv[i]:
			return -1, nil
		}
	}

	return 0, nil
}
