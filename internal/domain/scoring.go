package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ScoringRound struct {
	ID        uint      `json:"id"`
	EventID   uint      `json:"event_id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type Score struct {
	TeamID         uint            `json:"team_id"`
	ScoringRoundID uint            `json:"scoring_round_id"`
	Value          decimal.Decimal `json:"value"`
	UpdatedBy      uint            `json:"updated_by"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type RoundScore struct {
	RoundID   uint            `json:"round_id"`
	RoundName string          `json:"round_name"`
	Value     decimal.Decimal `json:"value"`
}

type LeaderboardEntry struct {
	Rank           int             `json:"rank"`
	Team           Team            `json:"team"`
	TotalScore     decimal.Decimal `json:"total_score"`
	PerRoundScores []RoundScore    `json:"per_round_scores"`
}
