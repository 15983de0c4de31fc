// Package duration renders a future expiry as a human-readable remaining span.
package duration

import (
	"fmt"
	"strings"
	"time"
)

// NoActiveSubscription is returned for any timestamp not in the future.
const NoActiveSubscription = "No active subscription"

// Until formats the span between now and t as "Expires in …".
//
// Whole calendar years are counted first, then whole calendar months, then
// remaining days — rollover uses the actual calendar, never a 30/365-day
// approximation. When the whole span is under one full day the output falls
// back to hours, minutes and seconds. Only units with a positive count
// appear, coarsest tier first.
func Until(now, t time.Time) string {
	if !t.After(now) {
		return NoActiveSubscription
	}

	cursor := now
	years := 0
	for {
		next := cursor.AddDate(1, 0, 0)
		if next.After(t) {
			break
		}
		cursor = next
		years++
	}

	months := 0
	for {
		next := cursor.AddDate(0, 1, 0)
		if next.After(t) {
			break
		}
		cursor = next
		months++
	}

	days := 0
	for {
		next := cursor.AddDate(0, 0, 1)
		if next.After(t) {
			break
		}
		cursor = next
		days++
	}

	var parts []string
	if years > 0 {
		parts = append(parts, plural(years, "year"))
	}
	if months > 0 {
		parts = append(parts, plural(months, "month"))
	}
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}

	if len(parts) == 0 {
		rem := t.Sub(now)
		hours := int(rem / time.Hour)
		minutes := int(rem/time.Minute) % 60
		seconds := int(rem/time.Second) % 60
		if hours > 0 {
			parts = append(parts, plural(hours, "hour"))
		}
		if minutes > 0 {
			parts = append(parts, plural(minutes, "minute"))
		}
		if seconds > 0 {
			parts = append(parts, plural(seconds, "second"))
		}
		if len(parts) == 0 {
			// Sub-second remainder still counts as in the future.
			parts = append(parts, "1 second")
		}
	}

	return "Expires in " + strings.Join(parts, ", ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
