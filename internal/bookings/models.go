package bookings

import "fmt"

// Booking reserves a room for Name over the inclusive range StartDate..EndDate.
type Booking struct {
	ID        string `json:"id"`
	RoomID    string `json:"roomId"`
	Name      string `json:"name"`
	StartDate Date   `json:"startDate"`
	EndDate   Date   `json:"endDate"`
}

func (b Booking) Range() Range { return Range{Start: b.StartDate, End: b.EndDate} }

// Draft is a booking that has not been stored yet.
type Draft struct {
	RoomID    string
	Name      string
	StartDate Date
	EndDate   Date
}

func (d Draft) Validate() error {
	if d.RoomID == "" {
		return fmt.Errorf("%w: roomId is required", ErrValidation)
	}
	if d.StartDate.IsZero() || d.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrValidation)
	}
	if d.EndDate.Before(d.StartDate) {
		return fmt.Errorf("%w: startDate %s is after endDate %s", ErrValidation, d.StartDate, d.EndDate)
	}
	return nil
}

// Booking turns the draft into a stored booking with the given id.
func (d Draft) Booking(id string) Booking {
	return Booking{ID: id, RoomID: d.RoomID, Name: d.Name, StartDate: d.StartDate, EndDate: d.EndDate}
}

// Range is an inclusive span of calendar days.
type Range struct {
	Start Date `json:"startDate"`
	End   Date `json:"endDate"`
}

func (r Range) String() string { return r.Start.String() + ".." + r.End.String() }

// Days counts the days in the range.
func (r Range) Days() int { return r.Start.DaysUntil(r.End) + 1 }
