package services

import "time"

// NextRepositionDate rolls a delivered order forward by the client's
// periodicity. The anchor is the order's previous scheduled date, not the
// wall-clock date of confirmation, so a late confirmation does not drift the
// cycle.
func NextRepositionDate(previous time.Time, periodicityDays int) time.Time {
	return previous.AddDate(0, 0, periodicityDays)
}

// NextBusinessDay returns the first weekday strictly after the given date.
// Used for returns: the reposition is retried on the next working day.
func NextBusinessDay(previous time.Time) time.Time {
	next := previous.AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
