package config

import (
	"errors"
	"strings"
)

var errEmptyListValue = errors.New("value cannot be empty")

// listFlag is a flag.Value collecting every occurrence of a repeatable flag.
// Each occurrence may itself hold several items joined by sep, so
//
//	-upstream users=http://users:8080 -upstream bookings=http://bookings:8080
//
// and
//
//	-upstream users=http://users:8080,bookings=http://bookings:8080
//
// produce the same list. The environment and config file can only carry the
// second form.
type listFlag struct {
	occurrences []string
	sep         string
}

func newListFlag(sep string) *listFlag {
	return &listFlag{sep: sep}
}

func (f *listFlag) String() string {
	return strings.Join(f.occurrences, f.sep)
}

func (f *listFlag) Set(value string) error {
	if value == "" {
		return errEmptyListValue
	}

	f.occurrences = append(f.occurrences, value)
	return nil
}

// Values returns the items of every occurrence in order. Blank items are
// dropped and surrounding spaces trimmed.
func (f *listFlag) Values() []string {
	var values []string

	for _, occurrence := range f.occurrences {
		for _, item := range strings.Split(occurrence, f.sep) {
			if item = strings.TrimSpace(item); item != "" {
				values = append(values, item)
			}
		}
	}

	return values
}
