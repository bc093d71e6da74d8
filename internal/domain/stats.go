package domain

// Stats is the collection-level summary shown on the stats page.
type Stats struct {
	Notes         int
	Cards         int
	ReverseCards  int
	NewCards      int
	DueCards      int
	TotalReviews  int
	AvgDifficulty float64
	AvgStability  float64
}

// DueBucket is one day of the upcoming review forecast.
type DueBucket struct {
	Date  string // YYYY-MM-DD
	Count int
}
