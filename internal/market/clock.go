package market

import (
	"fmt"
	"time"
)

// Clock answers the single question both training schedulers gate on:
// is the exchange closed for trading right now. It is pure; callers
// pass the instant so ticks and tests share one code path.
type Clock struct {
	loc       *time.Location
	closeHour int
}

// NewClock builds a Clock for the exchange's IANA zone and daily close hour.
func NewClock(timezone string, closeHour int) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load market timezone: %w", err)
	}

	return &Clock{loc: loc, closeHour: closeHour}, nil
}

// IsClosed reports whether the market is closed at the given instant.
// Weekends are always closed; on trading weekdays the session is
// closed at and after the local close hour.
func (c *Clock) IsClosed(now time.Time) bool {
	local := now.In(c.loc)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}

	return local.Hour() >= c.closeHour
}

// IsOpen is the complement of IsClosed.
func (c *Clock) IsOpen(now time.Time) bool {
	return !c.IsClosed(now)
}
