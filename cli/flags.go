// ABOUTME: Flag helpers shared by the update commands
// ABOUTME: Turns flags the user actually passed into patch pointers
package cli

import (
	"time"

	"github.com/spf13/pflag"
)

const dateLayout = "2006-01-02"

// changedString returns &v only when the flag was given, so an explicit
// empty value still clears the field.
func changedString(flags *pflag.FlagSet, name, v string) *string {
	if !flags.Changed(name) {
		return nil
	}
	return &v
}

func changedInt(flags *pflag.FlagSet, name string, v int) *int {
	if !flags.Changed(name) {
		return nil
	}
	return &v
}

func changedFloat(flags *pflag.FlagSet, name string, v float64) *float64 {
	if !flags.Changed(name) {
		return nil
	}
	return &v
}

func parseDate(s string) (*time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
