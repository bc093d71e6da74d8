package domain

// Setting keys as stored in the settings table. The scheduler re-reads
// them on every review, so edits take effect immediately.
const (
	SettingRequestRetention    = "request_retention"
	SettingMaximumInterval     = "maximum_interval"
	SettingBurySiblingCards    = "bury_sibling_cards"
	SettingReviewNewCardsFirst = "review_new_cards_first"
)

// ReviewSettings are the user-tunable knobs the review flow consumes.
type ReviewSettings struct {
	RequestRetention    float64
	MaximumInterval     int
	BurySiblingCards    bool
	ReviewNewCardsFirst bool
}

// DefaultReviewSettings mirror the original application's behavior for
// unset keys: 90% retention, 100-year cap, both toggles off.
func DefaultReviewSettings() ReviewSettings {
	return ReviewSettings{
		RequestRetention:    0.9,
		MaximumInterval:     36500,
		BurySiblingCards:    false,
		ReviewNewCardsFirst: false,
	}
}
