package sportmonks

import (
	"strings"

	"github.com/riskibarqy/fixture-feed/internal/domain/source"
)

type fixturesEnvelope struct {
	Data       []map[string]any `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

type Pagination struct {
	Count       int     `json:"count"`
	PerPage     int     `json:"per_page"`
	CurrentPage int     `json:"current_page"`
	NextPage    *string `json:"next_page"`
	HasMore     bool    `json:"has_more"`
}

type participant struct {
	ID       int64
	Name     string
	Location string
}

func parseParticipants(fields map[string]any) []participant {
	items := source.GetSlice(fields, "participants")
	out := make([]participant, 0, len(items))
	for _, item := range items {
		out = append(out, participant{
			ID:       source.GetInt64(item, "id"),
			Name:     source.GetString(item, "name"),
			Location: strings.ToLower(source.GetString(source.GetMap(item, "meta"), "location")),
		})
	}
	return out
}

type scoreItem struct {
	ParticipantID int64
	Side          string
	Description   string
	Goals         any
}

func parseScores(fields map[string]any) []scoreItem {
	items := source.GetSlice(fields, "scores")
	out := make([]scoreItem, 0, len(items))
	for _, item := range items {
		score := source.GetMap(item, "score")
		participantID := source.GetInt64(item, "participant_id")
		if participantID == 0 {
			participantID = source.GetInt64(score, "participant_id")
		}
		out = append(out, scoreItem{
			ParticipantID: participantID,
			Side:          strings.ToLower(source.GetString(score, "participant")),
			Description:   source.GetString(item, "description"),
			Goals:         firstPresent(lookupMapValue(score, "goals"), item["goals"]),
		})
	}
	return out
}

func lookupMapValue(src map[string]any, key string) any {
	if src == nil {
		return nil
	}
	return src[key]
}

func firstPresent(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
