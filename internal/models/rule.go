package models

import (
	"time"

	"github.com/lib/pq"
)

// RuleKind enumerates the translation rule matchers.
type RuleKind string

const (
	RuleKindExact    RuleKind = "EXACT"
	RuleKindDuration RuleKind = "DURATION"
	RuleKindCount    RuleKind = "COUNT"
)

// TranslationRule is one persisted, operator-authored translation rule.
// Rules are applied in ascending priority order during the translation
// pre-pass.
type TranslationRule struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Kind            RuleKind       `db:"kind" json:"kind"`
	MatchText       string         `db:"match_text" json:"match_text"`
	Keywords        pq.StringArray `db:"keywords" json:"keywords"`
	DurationMinutes int            `db:"duration_minutes" json:"duration_minutes"`
	TokenCount      int            `db:"token_count" json:"token_count"`
	NoWeekday       bool           `db:"no_weekday" json:"no_weekday"`
	Output          string         `db:"output" json:"output"`
	Priority        int            `db:"priority" json:"priority"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}
