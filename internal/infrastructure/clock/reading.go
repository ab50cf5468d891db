package clock

import "time"

// Reading is the taskbar clock's display value
type Reading struct {
	Time string `json:"time"`
	Date string `json:"date"`
	Unix int64  `json:"unix"`
}

// Read formats the clock's current time for display in loc
func Read(c Clock, loc *time.Location) Reading {
	now := c.Now()
	if loc != nil {
		now = now.In(loc)
	}
	return Reading{
		Time: now.Format("15:04:05"),
		Date: now.Format("1/2/2006"),
		Unix: now.Unix(),
	}
}
