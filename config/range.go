package config

import (
	"fmt"
	"slices"

	"github.com/playspan/playspan/key"
	"github.com/playspan/playspan/reltime"
	"github.com/spf13/viper"
)

// rangeKeys lists the keys holding relative time specifications.
var rangeKeys = []string{key.PlaybackStart, key.PlaybackEnd, key.PlaybackLength}

// IsRangeKey reports whether k holds a relative time specification.
func IsRangeKey(k string) bool {
	return slices.Contains(rangeKeys, k)
}

// PlayRange parses the configured play range.
func PlayRange() (reltime.Range, error) {
	var (
		r   reltime.Range
		err error
	)

	targets := map[string]*reltime.Time{
		key.PlaybackStart:  &r.Start,
		key.PlaybackEnd:    &r.End,
		key.PlaybackLength: &r.Length,
	}

	for _, k := range rangeKeys {
		if *targets[k], err = reltime.Parse(viper.GetString(k)); err != nil {
			return reltime.Range{}, fmt.Errorf("%s: %w", k, err)
		}
	}

	return r, nil
}

// ValidateValue checks a candidate value for a key before it is persisted.
func ValidateValue(k string, value any) error {
	for _, rk := range rangeKeys {
		if rk != k {
			continue
		}

		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: expected a string, got %T", k, value)
		}
		if _, err := reltime.Parse(s); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}

	return nil
}

// Validate checks every loaded value that has a structured syntax.
func Validate() error {
	_, err := PlayRange()
	return err
}
