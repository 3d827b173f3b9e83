package scoring

// Outcome is the coarse result category of a match, independent of the exact
// score.
type Outcome string

const (
	OutcomeHomeWin Outcome = "home_win"
	OutcomeAwayWin Outcome = "away_win"
	OutcomeDraw    Outcome = "draw"
)

const (
	PointsExactScore     = 5
	PointsCorrectOutcome = 2
	PointsIncorrect      = 0

	ReasonExactScore     = "exact_score"
	ReasonCorrectOutcome = "correct_outcome"
	ReasonIncorrect      = "incorrect"
)

// Award is the result of scoring one prediction against a final score.
type Award struct {
	Points int
	Reason string
}

// MatchOutcome classifies a score pair. Total for all integers: home > away
// is a home win, away > home an away win, anything else a draw.
func MatchOutcome(home, away int) Outcome {
	switch {
	case home > away:
		return OutcomeHomeWin
	case away > home:
		return OutcomeAwayWin
	default:
		return OutcomeDraw
	}
}

// CalculatePoints scores a predicted score line against the final one.
// Exact score is checked before outcome so the reason label stays precise:
// an exact match always implies a matching outcome. The function is pure and
// defined for any integer inputs, including out-of-range ones; range checks
// belong to ValidatePredictionScores on the submission path.
func CalculatePoints(predictedHome, predictedAway, finalHome, finalAway int) Award {
	if predictedHome == finalHome && predictedAway == finalAway {
		return Award{Points: PointsExactScore, Reason: ReasonExactScore}
	}
	if MatchOutcome(predictedHome, predictedAway) == MatchOutcome(finalHome, finalAway) {
		return Award{Points: PointsCorrectOutcome, Reason: ReasonCorrectOutcome}
	}
	return Award{Points: PointsIncorrect, Reason: ReasonIncorrect}
}

// ValidatePredictionScores reports whether both scores are inside the
// accepted submission range.
func ValidatePredictionScores(home, away int) bool {
	return home >= minPredictionScore && home <= maxPredictionScore &&
		away >= minPredictionScore && away <= maxPredictionScore
}

const (
	minPredictionScore = 0
	maxPredictionScore = 20
)
