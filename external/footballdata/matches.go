package footballdata

import (
	"fmt"
	"strings"
	"time"

	"github.com/loolazoola/epl-sub001/internal/usecase"
)

type matchesEnvelope struct {
	Matches []feedMatch `json:"matches"`
}

type feedMatch struct {
	ID       int64      `json:"id"`
	UTCDate  string     `json:"utcDate"`
	Status   string     `json:"status"`
	Matchday int        `json:"matchday"`
	Season   feedSeason `json:"season"`
	HomeTeam feedTeam   `json:"homeTeam"`
	AwayTeam feedTeam   `json:"awayTeam"`
	Score    feedScore  `json:"score"`
}

type feedSeason struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type feedTeam struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type feedScore struct {
	Winner   string        `json:"winner"`
	FullTime feedScorePair `json:"fullTime"`
}

type feedScorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

func mapFeedMatch(item feedMatch) usecase.ExternalMatch {
	return usecase.ExternalMatch{
		ExternalID: item.ID,
		HomeTeam:   teamName(item.HomeTeam),
		AwayTeam:   teamName(item.AwayTeam),
		HomeScore:  item.Score.FullTime.Home,
		AwayScore:  item.Score.FullTime.Away,
		Status:     mapFeedStatus(item.Status),
		KickoffAt:  parseFeedTime(item.UTCDate),
		Gameweek:   item.Matchday,
		Season:     seasonLabel(item.Season),
	}
}

func teamName(team feedTeam) string {
	if name := strings.TrimSpace(team.ShortName); name != "" {
		return name
	}
	return strings.TrimSpace(team.Name)
}

// mapFeedStatus collapses feed scheduling states into the local set.
// SCHEDULED and TIMED both mean not yet kicked off.
func mapFeedStatus(status string) string {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "SCHEDULED", "TIMED", "":
		return "TIMED"
	case "IN_PLAY", "LIVE":
		return "IN_PLAY"
	case "PAUSED":
		return "PAUSED"
	case "FINISHED":
		return "FINISHED"
	default:
		return strings.ToUpper(strings.TrimSpace(status))
	}
}

func parseFeedTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}

// seasonLabel renders "2026/27" from the feed season date range.
func seasonLabel(season feedSeason) string {
	start, err := time.Parse(feedDateLayout, strings.TrimSpace(season.StartDate))
	if err != nil {
		return ""
	}
	end, endErr := time.Parse(feedDateLayout, strings.TrimSpace(season.EndDate))
	if endErr != nil || end.Year() == start.Year() {
		return fmt.Sprintf("%d", start.Year())
	}
	return fmt.Sprintf("%d/%02d", start.Year(), end.Year()%100)
}
