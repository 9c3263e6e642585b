package models

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/medigenie/internal/common"
)

type Status string

const (
	StatusImproving Status = "Improving"
	StatusStable    Status = "Stable"
	StatusWorsening Status = "Worsening"
)

func (s Status) Valid() bool {
	switch s {
	case StatusImproving, StatusStable, StatusWorsening:
		return true
	}
	return false
}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusImproving, StatusStable, StatusWorsening} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", common.Invalid("status", "must be Improving, Stable or Worsening")
}

// FollowUpLog is one committed observation. Entries are never edited.
type FollowUpLog struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Condition string    `json:"condition"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes"`
}

// FollowUpDraft is a log entry before it is committed.
type FollowUpDraft struct {
	Condition string `json:"condition"`
	Status    Status `json:"status"`
	Notes     string `json:"notes"`
}

func (d FollowUpDraft) Validate() error {
	if strings.TrimSpace(d.Condition) == "" {
		return common.Invalid("condition", "is required")
	}
	if !d.Status.Valid() {
		return common.Invalid("status", "must be Improving, Stable or Worsening")
	}
	if strings.TrimSpace(d.Notes) == "" {
		return common.Invalid("notes", "is required")
	}
	return nil
}

// Summary is the short one-line form used in prompts and listings.
func (d FollowUpDraft) Summary() string {
	return strings.TrimSpace(d.Condition) + " (" + string(d.Status) + "): " + strings.TrimSpace(d.Notes)
}

// NewLogID derives an id from now in unix milliseconds. If that id is taken,
// it is bumped until it is free, so ids stay unique and sortable.
func NewLogID(now time.Time, existing []FollowUpLog) string {
	taken := make(map[string]struct{}, len(existing))
	for _, l := range existing {
		taken[l.ID] = struct{}{}
	}

	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if _, ok := taken[id]; !ok {
			return id
		}
		ms++
	}
}

// Commit turns a validated draft into a log entry and prepends it to logs.
// The input slice is not modified.
func Commit(d FollowUpDraft, now time.Time, logs []FollowUpLog) (FollowUpLog, []FollowUpLog) {
	entry := FollowUpLog{
		ID:        NewLogID(now, logs),
		Date:      now.UTC().Truncate(time.Millisecond),
		Condition: strings.TrimSpace(d.Condition),
		Status:    d.Status,
		Notes:     strings.TrimSpace(d.Notes),
	}

	out := make([]FollowUpLog, 0, len(logs)+1)
	out = append(out, entry)
	out = append(out, logs...)
	return entry, out
}

// Chronological returns logs oldest first. Ties on date are broken by id.
// The result is never nil.
func Chronological(logs []FollowUpLog) []FollowUpLog {
	out := append(make([]FollowUpLog, 0, len(logs)), logs...)
	slices.SortStableFunc(out, compareLogs)
	return out
}

// Recent returns up to n most recent logs, newest first.
func Recent(logs []FollowUpLog, n int) []FollowUpLog {
	out := append(make([]FollowUpLog, 0, len(logs)), logs...)
	slices.SortStableFunc(out, func(a, b FollowUpLog) int { return compareLogs(b, a) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func compareLogs(a, b FollowUpLog) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if len(a.ID) != len(b.ID) {
		return len(a.ID) - len(b.ID)
	}
	return strings.Compare(a.ID, b.ID)
}
