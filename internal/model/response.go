package model

import "time"

type OutcomeStatus string

const (
	StatusApplied OutcomeStatus = "applied"
	StatusNoOp    OutcomeStatus = "noop"
)

// Outcome 一次任务执行的结果
type Outcome struct {
	Status     OutcomeStatus `json:"status"`
	Task       TaskKind      `json:"task"`
	Text       string        `json:"text"`
	Result     string        `json:"result,omitempty"`
	HTML       string        `json:"html,omitempty"`
	Hypothesis string        `json:"-"`
	HistoryLen int           `json:"history_len"`
	CharCount  int           `json:"char_count"`
	CharLimit  int           `json:"char_limit"`
}

type SessionResponse struct {
	SessionID string      `json:"session_id"`
	Title     string      `json:"title"`
	Text      string      `json:"text"`
	Result    string      `json:"result,omitempty"`
	History   []string    `json:"history"`
	Image     *ImageAsset `json:"image,omitempty"`
	CharCount int         `json:"char_count"`
	CharLimit int         `json:"char_limit"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type SessionSummary struct {
	SessionID  string    `json:"session_id"`
	Title      string    `json:"title"`
	HistoryLen int       `json:"history_len"`
	HasImage   bool      `json:"has_image"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type TaskCatalog struct {
	Tasks     []TaskKind `json:"tasks"`
	Styles    []string   `json:"styles"`
	Tones     []string   `json:"tones"`
	Audiences []string   `json:"audiences"`
	Lengths   []string   `json:"lengths"`
}
