package scoring

import "testing"

func TestMatchOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		home int
		away int
		want Outcome
	}{
		{name: "home win", home: 2, away: 0, want: OutcomeHomeWin},
		{name: "away win", home: 1, away: 3, want: OutcomeAwayWin},
		{name: "draw", home: 1, away: 1, want: OutcomeDraw},
		{name: "goalless draw", home: 0, away: 0, want: OutcomeDraw},
		{name: "negative inputs still total", home: -1, away: -2, want: OutcomeHomeWin},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MatchOutcome(tc.home, tc.away); got != tc.want {
				t.Fatalf("MatchOutcome(%d,%d)=%s want=%s", tc.home, tc.away, got, tc.want)
			}
		})
	}
}

func TestCalculatePoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		predHome   int
		predAway   int
		finalHome  int
		finalAway  int
		wantPoints int
		wantReason string
	}{
		{name: "exact score", predHome: 2, predAway: 1, finalHome: 2, finalAway: 1, wantPoints: 5, wantReason: ReasonExactScore},
		{name: "correct outcome home win", predHome: 3, predAway: 1, finalHome: 2, finalAway: 0, wantPoints: 2, wantReason: ReasonCorrectOutcome},
		{name: "correct outcome draw", predHome: 2, predAway: 2, finalHome: 0, finalAway: 0, wantPoints: 2, wantReason: ReasonCorrectOutcome},
		{name: "incorrect draw vs home win", predHome: 1, predAway: 1, finalHome: 2, finalAway: 0, wantPoints: 0, wantReason: ReasonIncorrect},
		{name: "incorrect wrong winner", predHome: 0, predAway: 2, finalHome: 3, finalAway: 1, wantPoints: 0, wantReason: ReasonIncorrect},
		{name: "exact zero draw", predHome: 0, predAway: 0, finalHome: 0, finalAway: 0, wantPoints: 5, wantReason: ReasonExactScore},
		{name: "out of range inputs stay defined", predHome: 25, predAway: 25, finalHome: 1, finalAway: 1, wantPoints: 2, wantReason: ReasonCorrectOutcome},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculatePoints(tc.predHome, tc.predAway, tc.finalHome, tc.finalAway)
			if got.Points != tc.wantPoints || got.Reason != tc.wantReason {
				t.Fatalf("CalculatePoints(%d,%d vs %d,%d)=%+v want points=%d reason=%s",
					tc.predHome, tc.predAway, tc.finalHome, tc.finalAway, got, tc.wantPoints, tc.wantReason)
			}
		})
	}
}

func TestCalculatePoints_ExhaustiveRange(t *testing.T) {
	t.Parallel()

	// Every award over the full submission range must be one of {0, 2, 5}
	// and 5 exactly when the score lines match.
	for ph := 0; ph <= 20; ph++ {
		for pa := 0; pa <= 20; pa++ {
			for _, final := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {2, 2}, {4, 1}} {
				got := CalculatePoints(ph, pa, final[0], final[1])
				switch got.Points {
				case PointsExactScore:
					if ph != final[0] || pa != final[1] {
						t.Fatalf("exact award for non-exact line (%d,%d) vs (%d,%d)", ph, pa, final[0], final[1])
					}
				case PointsCorrectOutcome:
					if MatchOutcome(ph, pa) != MatchOutcome(final[0], final[1]) {
						t.Fatalf("outcome award with mismatched outcome (%d,%d) vs (%d,%d)", ph, pa, final[0], final[1])
					}
				case PointsIncorrect:
					if MatchOutcome(ph, pa) == MatchOutcome(final[0], final[1]) {
						t.Fatalf("zero award with matching outcome (%d,%d) vs (%d,%d)", ph, pa, final[0], final[1])
					}
				default:
					t.Fatalf("award outside {0,2,5}: %+v", got)
				}
			}
		}
	}
}

func TestValidatePredictionScores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		home int
		away int
		want bool
	}{
		{name: "both in range", home: 0, away: 20, want: true},
		{name: "typical score", home: 2, away: 1, want: true},
		{name: "home negative", home: -1, away: 0, want: false},
		{name: "away above cap", home: 3, away: 21, want: false},
		{name: "both out of range", home: -5, away: 99, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidatePredictionScores(tc.home, tc.away); got != tc.want {
				t.Fatalf("ValidatePredictionScores(%d,%d)=%t want=%t", tc.home, tc.away, got, tc.want)
			}
		})
	}
}
