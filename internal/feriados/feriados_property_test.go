package feriados

import (
	"sort"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var yearStart = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func entriesFor(days []int) []any {
	sorted := append([]int(nil), days...)
	sort.Ints(sorted)
	entries := make([]any, 0, len(sorted))
	for _, d := range sorted {
		entries = append(entries, map[string]any{
			"date": yearStart.AddDate(0, 0, d).Format(isoDate),
			"name": "feriado",
			"type": "national",
		})
	}
	return entries
}

// TestSummarize_PropertyBased checks the selection rule on random calendars:
// every valid entry is counted, and the next holiday is the earliest entry
// dated on or after today, or the sentinel when none is.
func TestSummarize_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("total equals number of valid entries", prop.ForAll(
		func(days []int, todayOffset int) bool {
			today := yearStart.AddDate(0, 0, todayOffset)
			return Summarize(entriesFor(days), today).Total == len(days)
		},
		gen.SliceOf(gen.IntRange(0, 364)),
		gen.IntRange(0, 364),
	))

	properties.Property("next holiday is the first date on or after today", prop.ForAll(
		func(days []int, todayOffset int) bool {
			today := yearStart.AddDate(0, 0, todayOffset)
			s := Summarize(entriesFor(days), today)

			sorted := append([]int(nil), days...)
			sort.Ints(sorted)
			for _, d := range sorted {
				if d >= todayOffset {
					return s.HasNext && s.Next.Date == yearStart.AddDate(0, 0, d).Format(isoDate)
				}
			}
			return !s.HasNext && s.Next == NoneRemaining(2025)
		},
		gen.SliceOf(gen.IntRange(0, 364)),
		gen.IntRange(0, 364),
	))

	properties.Property("sentinel never carries a real date", prop.ForAll(
		func(days []int) bool {
			s := Summarize(entriesFor(days), yearStart.AddDate(0, 0, 364))
			if s.HasNext {
				return s.Next.Date == "2025-12-31"
			}
			return s.Next.Date == NotAvailable && s.Next.Type == NotAvailable
		},
		gen.SliceOf(gen.IntRange(0, 364)),
	))

	properties.TestingRun(t)
}
