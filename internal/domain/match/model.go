package match

import (
	"strings"
	"time"
)

const (
	StatusTimed    = "TIMED"
	StatusInPlay   = "IN_PLAY"
	StatusPaused   = "PAUSED"
	StatusFinished = "FINISHED"
)

// Match is one Premier League fixture tracked by the prediction game.
// ExternalID is the feed-assigned identity; ID is storage-assigned.
type Match struct {
	ID         int64
	ExternalID int64
	HomeTeam   string
	AwayTeam   string
	HomeScore  *int
	AwayScore  *int
	Status     string
	KickoffAt  time.Time
	Gameweek   int
	Season     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusTimed
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusInPlay, StatusPaused:
		return true
	default:
		return false
	}
}

func IsFinishedStatus(status string) bool {
	return NormalizeStatus(status) == StatusFinished
}

// HasFinalScore reports whether both full-time scores are present.
func (m Match) HasFinalScore() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// DiffersFrom reports whether any feed-tracked field changed relative to other.
// Storage-assigned fields (ID, timestamps) are ignored.
func (m Match) DiffersFrom(other Match) bool {
	if m.Status != other.Status ||
		m.HomeTeam != other.HomeTeam ||
		m.AwayTeam != other.AwayTeam ||
		m.Gameweek != other.Gameweek ||
		m.Season != other.Season {
		return true
	}
	if !m.KickoffAt.Equal(other.KickoffAt) {
		return true
	}
	return !intPtrEqual(m.HomeScore, other.HomeScore) || !intPtrEqual(m.AwayScore, other.AwayScore)
}

func intPtrEqual(left, right *int) bool {
	if left == nil || right == nil {
		return left == right
	}
	return *left == *right
}
