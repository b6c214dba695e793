package bookings

import (
	"fmt"
	"sort"
)

type OutcomeKind int

const (
	DeleteOnly OutcomeKind = iota + 1
	ReplaceWithOne
	ReplaceWithTwo
)

func (k OutcomeKind) String() string {
	switch k {
	case DeleteOnly:
		return "DELETE_ONLY"
	case ReplaceWithOne:
		return "REPLACE_WITH_ONE"
	case ReplaceWithTwo:
		return "REPLACE_WITH_TWO"
	}
	return "UNKNOWN"
}

// SplitCase records which rule produced an Outcome.
type SplitCase string

const (
	CaseFull     SplitCase = "FULL"
	CasePrefix   SplitCase = "PREFIX"
	CaseSuffix   SplitCase = "SUFFIX"
	CaseInterior SplitCase = "INTERIOR"
)

// Outcome is the result of a split before it is applied to storage.
type Outcome struct {
	Case       SplitCase
	Remainders []Range
}

func (o Outcome) Kind() OutcomeKind {
	switch len(o.Remainders) {
	case 0:
		return DeleteOnly
	case 1:
		return ReplaceWithOne
	default:
		return ReplaceWithTwo
	}
}

func (o Outcome) Message() string {
	switch o.Case {
	case CaseFull:
		return "booking deleted entirely"
	case CasePrefix:
		return "booking updated (start removed)"
	case CaseSuffix:
		return "booking updated (end removed)"
	default:
		return "booking split"
	}
}

// Drafts builds the replacement bookings, keeping room and name of the original.
func (o Outcome) Drafts(orig Booking) []Draft {
	out := make([]Draft, 0, len(o.Remainders))
	for _, r := range o.Remainders {
		out = append(out, Draft{RoomID: orig.RoomID, Name: orig.Name, StartDate: r.Start, EndDate: r.End})
	}
	return out
}

// Split computes what remains of b after removing deleteDates.
//
// Rules are tried in order: the whole range, a leading run, a trailing run,
// then a single run strictly inside the range which leaves two remainders.
// Duplicate dates are ignored; dates outside the booking are rejected.
// Work is proportional to len(deleteDates), not to the length of the booking.
func Split(b Booking, deleteDates []Date) (Outcome, error) {
	if len(deleteDates) == 0 {
		return Outcome{}, fmt.Errorf("%w: deleteDates must contain at least one date", ErrValidation)
	}
	total := b.Range().Days()
	if b.StartDate.IsZero() || b.EndDate.IsZero() || total <= 0 {
		return Outcome{}, fmt.Errorf("%w: booking %s has an empty range", ErrValidation, b.ID)
	}

	dates := sortedUnique(deleteDates)
	for _, d := range dates {
		if d.Before(b.StartDate) || d.After(b.EndDate) {
			return Outcome{}, fmt.Errorf("%w: %s not in %s", ErrDateOutOfRange, d, b.Range())
		}
	}

	// Every date is in range and unique, so equal counts means equal sets.
	if len(dates) == total {
		return Outcome{Case: CaseFull}, nil
	}

	first, last := dates[0], dates[len(dates)-1]
	firstIndex := b.StartDate.DaysUntil(first)
	lastIndex := b.StartDate.DaysUntil(last)
	// sorted and unique: one unbroken run exactly when the span equals the count
	contiguous := lastIndex-firstIndex+1 == len(dates)

	if firstIndex == 0 && contiguous {
		return Outcome{
			Case:       CasePrefix,
			Remainders: []Range{{Start: last.AddDays(1), End: b.EndDate}},
		}, nil
	}
	if lastIndex == total-1 && contiguous {
		return Outcome{
			Case:       CaseSuffix,
			Remainders: []Range{{Start: b.StartDate, End: first.AddDays(-1)}},
		}, nil
	}
	if !contiguous {
		return Outcome{}, ErrNonContiguous
	}

	var remainders []Range
	if firstIndex > 0 {
		remainders = append(remainders, Range{Start: b.StartDate, End: first.AddDays(-1)})
	}
	if lastIndex < total-1 {
		remainders = append(remainders, Range{Start: last.AddDays(1), End: b.EndDate})
	}
	if len(remainders) == 0 {
		return Outcome{}, ErrEmptyResult
	}
	return Outcome{Case: CaseInterior, Remainders: remainders}, nil
}

func sortedUnique(in []Date) []Date {
	out := make([]Date, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	n := 0
	for i, d := range out {
		if i > 0 && d.Equal(out[n-1]) {
			continue
		}
		out[n] = d
		n++
	}
	return out[:n]
}
