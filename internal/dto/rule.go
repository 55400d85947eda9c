package dto

import "github.com/adm-pessoal/escalas-api/internal/models"

// CreateRuleRequest captures POST /rules payload.
type CreateRuleRequest struct {
	Name            string          `json:"name" validate:"required,min=3,max=120"`
	Kind            models.RuleKind `json:"kind" validate:"required,oneof=EXACT DURATION COUNT"`
	MatchText       string          `json:"matchText"`
	Keywords        []string        `json:"keywords"`
	DurationMinutes int             `json:"durationMinutes" validate:"gte=0"`
	TokenCount      int             `json:"tokenCount" validate:"gte=0"`
	NoWeekday       bool            `json:"noWeekday"`
	Output          string          `json:"output" validate:"required"`
	Priority        int             `json:"priority"`
}

// UpdateRuleRequest captures PUT /rules/:id payload.
type UpdateRuleRequest struct {
	Name            *string          `json:"name,omitempty" validate:"omitempty,min=3,max=120"`
	Kind            *models.RuleKind `json:"kind,omitempty" validate:"omitempty,oneof=EXACT DURATION COUNT"`
	MatchText       *string          `json:"matchText,omitempty"`
	Keywords        []string         `json:"keywords,omitempty"`
	DurationMinutes *int             `json:"durationMinutes,omitempty" validate:"omitempty,gte=0"`
	TokenCount      *int             `json:"tokenCount,omitempty" validate:"omitempty,gte=0"`
	NoWeekday       *bool            `json:"noWeekday,omitempty"`
	Output          *string          `json:"output,omitempty"`
	Priority        *int             `json:"priority,omitempty"`
}
