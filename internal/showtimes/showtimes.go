// Package showtimes arranges session listings for the movie and cinema pages.
package showtimes

import (
	"time"

	"kinobilet/internal/models"
)

// DayKeyLayout renders the day a session starts on, e.g. 14.03.
const DayKeyLayout = "02.01"

// DayGroup holds the sessions of one calendar day.
type DayGroup struct {
	Date     string                  `json:"date"`
	Sessions []models.SessionSummary `json:"sessions"`
}

// MovieGroup holds the sessions of one movie within a day.
type MovieGroup struct {
	MovieID  int64                   `json:"movieId"`
	Sessions []models.SessionSummary `json:"sessions"`
}

// CinemaGroup holds the sessions of one cinema within a day.
type CinemaGroup struct {
	CinemaID int64                   `json:"cinemaId"`
	Sessions []models.SessionSummary `json:"sessions"`
}

// Upcoming keeps the sessions starting strictly after now.
func Upcoming(sessions []models.SessionSummary, now time.Time) []models.SessionSummary {
	out := make([]models.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		if s.StartTime.After(now) {
			out = append(out, s)
		}
	}
	return out
}

// GroupByDate groups sessions by start day in loc. Days and sessions keep first-appearance order.
func GroupByDate(sessions []models.SessionSummary, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}

	var groups []DayGroup
	index := make(map[string]int)

	for _, s := range sessions {
		key := s.StartTime.In(loc).Format(DayKeyLayout)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Date: key})
		}
		groups[i].Sessions = append(groups[i].Sessions, s)
	}

	return groups
}

// GroupByMovie splits sessions per movie, first appearance first.
func GroupByMovie(sessions []models.SessionSummary) []MovieGroup {
	var groups []MovieGroup
	index := make(map[int64]int)

	for _, s := range sessions {
		i, ok := index[s.MovieID]
		if !ok {
			i = len(groups)
			index[s.MovieID] = i
			groups = append(groups, MovieGroup{MovieID: s.MovieID})
		}
		groups[i].Sessions = append(groups[i].Sessions, s)
	}

	return groups
}

// GroupByCinema splits sessions per cinema, first appearance first.
func GroupByCinema(sessions []models.SessionSummary) []CinemaGroup {
	var groups []CinemaGroup
	index := make(map[int64]int)

	for _, s := range sessions {
		i, ok := index[s.CinemaID]
		if !ok {
			i = len(groups)
			index[s.CinemaID] = i
			groups = append(groups, CinemaGroup{CinemaID: s.CinemaID})
		}
		groups[i].Sessions = append(groups[i].Sessions, s)
	}

	return groups
}
