package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/codr1/quadras/internal/booking"
)

// int64List collects a repeatable numeric flag.
type int64List []int64

func (l *int64List) String() string {
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

func (l *int64List) Set(value string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("%q is not a valid id", value)
	}
	*l = append(*l, id)
	return nil
}

// stringList collects a repeatable text flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func newFlagSet(a *app, name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.Usage = func() {
		fmt.Fprintf(a.out, "Usage: quadras %s %s\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags treats -h as a successful no-op and any other parse problem as
// a usage error already reported by the flag set.
func parseFlags(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, errUsage
	}
	return true, nil
}

// normalizeDate accepts YYYY-MM-DD, DD/MM/YYYY or "today" and returns the
// ISO form. An empty value stays empty.
func normalizeDate(value string, now time.Time) (string, error) {
	value = strings.TrimSpace(value)
	switch value {
	case "":
		return "", nil
	case "today", "hoje":
		return now.Format(time.DateOnly), nil
	}
	if date, err := booking.ParseDate(value); err == nil {
		return date.String(), nil
	}
	date, err := booking.ParseDisplayDate(value)
	if err != nil {
		return "", fmt.Errorf("date %q must be YYYY-MM-DD or DD/MM/YYYY", value)
	}
	return date.String(), nil
}
