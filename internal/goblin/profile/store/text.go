// Package store persists a profile.Profile outside the running process: a
// simple textual dump and a queryable SQLite-backed store.
package store

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/EvanBalster/perf-goblin/internal/goblin/burdenstat"
	"github.com/EvanBalster/perf-goblin/internal/goblin/profile"
)

// ValidateID reports an error if id contains a double quote or a control
// character, either of which would corrupt the textual form.
func ValidateID(id string) error {
	for _, r := range id {
		if r == '"' || r < 0x20 || r == 0x7f {
			return fmt.Errorf("goblin: store: invalid task id %q: contains a control character or quote", id)
		}
	}
	return nil
}

// EncodeText renders only the Full accumulator of every task, as an id
// followed by one "count,mean,stddev" triple per option, one task per line.
// Recent stats are intentionally not persisted: a freshly loaded profile
// rebuilds Recent from scratch.
func EncodeText(p *profile.Profile) (string, error) {
	ids := p.Ids()
	sort.Strings(ids)
	var b strings.Builder
	for _, id := range ids {
		if err := ValidateID(id); err != nil {
			return "", err
		}
		t := p.Find(id)
		b.WriteByte('"')
		b.WriteString(id)
		b.WriteByte('"')
		for _, opt := range t.Options {
			stddev := math.Sqrt(opt.Full.Variance())
			fmt.Fprintf(&b, " %s,%s,%s",
				strconv.FormatFloat(opt.Full.Count(), 'g', -1, 64),
				strconv.FormatFloat(opt.Full.Mean, 'g', -1, 64),
				strconv.FormatFloat(stddev, 'g', -1, 64))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// DecodeText parses the form EncodeText produces into a fresh profile. The
// profile's Recent accumulators start empty and rebuild from live traffic.
func DecodeText(text string) (*profile.Profile, error) {
	p := profile.New()
	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, rest, err := splitQuotedID(line)
		if err != nil {
			return nil, fmt.Errorf("goblin: store: line %d: %w", lineNo+1, err)
		}
		fields := strings.Fields(rest)
		options := make([]profile.OptionStat, len(fields))
		for i, f := range fields {
			parts := strings.Split(f, ",")
			if len(parts) != 3 {
				return nil, fmt.Errorf("goblin: store: line %d: option %d: expected count,mean,stddev", lineNo+1, i)
			}
			count, err1 := strconv.ParseFloat(parts[0], 64)
			mean, err2 := strconv.ParseFloat(parts[1], 64)
			stddev, err3 := strconv.ParseFloat(parts[2], 64)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, fmt.Errorf("goblin: store: line %d: option %d: malformed triple %q", lineNo+1, i, f)
			}
			denom := count - 1
			if denom < 1 {
				denom = 1
			}
			options[i] = profile.OptionStat{Full: burdenstat.Stat{
				K:     count,
				Mean:  mean,
				SumSq: stddev * stddev * denom,
			}}
		}
		if len(options) > 0 {
			p.Assimilate(id, &profile.Task{Options: options}, 1)
		}
	}
	return p, nil
}

// splitQuotedID splits a line into its leading double-quoted id and the
// remaining whitespace-separated option triples.
func splitQuotedID(line string) (id, rest string, err error) {
	if len(line) == 0 || line[0] != '"' {
		return "", "", fmt.Errorf("expected id starting with a double quote")
	}
	end := strings.IndexByte(line[1:], '"')
	if end < 0 {
		return "", "", fmt.Errorf("unterminated quoted id")
	}
	end++ // index was relative to line[1:]
	return line[1:end], strings.TrimSpace(line[end+1:]), nil
}
