package usage

import "time"

const (
	// DefaultPlanName labels the free tier.
	DefaultPlanName = "Starter"

	// DefaultLimit is the number of enhancements per window on the free tier.
	DefaultLimit = 10

	// DefaultWindow is the rolling quota window.
	DefaultWindow = 7 * 24 * time.Hour
)

func defaultUsage(limit int, window time.Duration) Usage {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return Usage{
		Plan:     DefaultPlanName,
		Limit:    limit,
		Used:     0,
		ResetsAt: time.Now().UTC().Add(window),
	}
}
