package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/medigenie/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" worsening")
	require.NoError(t, err)
	assert.Equal(t, StatusWorsening, s)

	_, err = ParseStatus("better")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestFollowUpDraft_Validate(t *testing.T) {
	ok := FollowUpDraft{Condition: "Migraine", Status: StatusStable, Notes: "mild"}
	require.NoError(t, ok.Validate())

	for name, d := range map[string]FollowUpDraft{
		"no condition": {Status: StatusStable, Notes: "x"},
		"blank notes":  {Condition: "c", Status: StatusStable, Notes: "  "},
		"bad status":   {Condition: "c", Status: "Fine", Notes: "x"},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, d.Validate(), common.ErrValidation)
		})
	}
}

func TestNewLogID_BumpsOnCollision(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	assert.Equal(t, "1700000000000", NewLogID(now, nil))

	existing := []FollowUpLog{{ID: "1700000000000"}, {ID: "1700000000001"}}
	assert.Equal(t, "1700000000002", NewLogID(now, existing))
}

func TestCommit_PrependsWithoutTouchingPriorEntries(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	prior := []FollowUpLog{
		{ID: "1", Date: t0, Condition: "Cold", Status: StatusStable, Notes: "runny nose"},
	}
	snapshot := append([]FollowUpLog(nil), prior...)

	entry, logs := Commit(FollowUpDraft{Condition: " Cold ", Status: StatusImproving, Notes: "better "}, t0.Add(time.Hour), prior)

	require.Len(t, logs, 2)
	assert.Equal(t, entry, logs[0])
	assert.Equal(t, "Cold", entry.Condition)
	assert.Equal(t, "better", entry.Notes)
	assert.Equal(t, snapshot[0], logs[1])
	assert.Equal(t, snapshot, prior, "input slice must not change")
}

func TestCommit_AppendOnlyOverManyCommits(t *testing.T) {
	var logs []FollowUpLog
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	statuses := []Status{StatusStable, StatusWorsening, StatusImproving, StatusStable}

	var before []FollowUpLog
	for i, st := range statuses {
		before = append([]FollowUpLog(nil), logs...)
		_, logs = Commit(FollowUpDraft{Condition: "Back pain", Status: st, Notes: "note"}, now, logs)

		require.Len(t, logs, i+1)
		require.Len(t, logs[1:], len(before))
		for j := range before {
			assert.Equal(t, before[j], logs[j+1])
		}
	}

	seen := map[string]bool{}
	for _, l := range logs {
		assert.False(t, seen[l.ID], "duplicate id %s", l.ID)
		seen[l.ID] = true
	}
}

func TestChronologicalAndRecent(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l1 := FollowUpLog{ID: "1", Date: base, Status: StatusStable}
	l2 := FollowUpLog{ID: "2", Date: base.Add(time.Hour), Status: StatusWorsening}
	l3 := FollowUpLog{ID: "3", Date: base.Add(2 * time.Hour), Status: StatusImproving}
	newestFirst := []FollowUpLog{l3, l2, l1}

	assert.Equal(t, []FollowUpLog{l1, l2, l3}, Chronological(newestFirst))
	assert.Equal(t, []FollowUpLog{l3, l2}, Recent(newestFirst, 2))
	assert.Equal(t, []FollowUpLog{l3, l2, l1}, Recent([]FollowUpLog{l1, l3, l2}, 5))
	assert.Equal(t, []FollowUpLog{l3, l2, l1}, newestFirst, "inputs are not reordered")
}

func TestChronologicalAndRecent_EmptyEncodesAsArray(t *testing.T) {
	for name, got := range map[string][]FollowUpLog{
		"chronological": Chronological(nil),
		"recent":        Recent(nil, 5),
	} {
		t.Run(name, func(t *testing.T) {
			require.NotNil(t, got)
			raw, err := json.Marshal(got)
			require.NoError(t, err)
			assert.Equal(t, "[]", string(raw))
		})
	}
}

func TestChronological_SameDateUsesID(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := FollowUpLog{ID: "999", Date: at}
	b := FollowUpLog{ID: "1000", Date: at}
	assert.Equal(t, []FollowUpLog{a, b}, Chronological([]FollowUpLog{b, a}))
}

func TestFollowUpLogs_RoundTripKeepsSecondPrecision(t *testing.T) {
	logs := []FollowUpLog{
		{ID: "1735722000123", Date: time.Date(2025, 1, 1, 9, 0, 0, 123e6, time.UTC), Condition: "Flu", Status: StatusWorsening, Notes: "fever"},
		{ID: "1735635600000", Date: time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC), Condition: "Flu", Status: StatusStable, Notes: "tired"},
	}

	b, err := json.Marshal(logs)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"date":"2025-01-01T09:00:00.123Z"`)

	var got []FollowUpLog
	require.NoError(t, json.Unmarshal(b, &got))
	require.Len(t, got, len(logs))
	for i := range logs {
		assert.True(t, logs[i].Date.Equal(got[i].Date))
		got[i].Date = logs[i].Date
	}
	assert.Equal(t, logs, got)
}
