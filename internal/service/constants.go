package service

const (
	// Time windows
	ChartDays       = 90
	ChartWeeks      = 12
	DefaultLookback = 90

	// Pagination limits
	RecentActivitiesLimit = 10
	RecentRecordsLimit    = 15

	// Forecast defaults
	DecayPreviewDays = 28

	// Unit conversions
	MetersPerKilometer = 1000.0
	SecondsPerMinute   = 60
)
