package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditHistoryCommit(t *testing.T) {
	h := NewEditHistory("T0")

	h.Commit("T0", "R1")
	h.Commit("R1", "R2")

	assert.Equal(t, "R2", h.Current())
	assert.Equal(t, []string{"T0", "R1"}, h.Entries())
	latest, ok := h.Latest()
	assert.True(t, ok)
	assert.Equal(t, "R1", latest)
}

func TestEditHistoryRestartKeepsResult(t *testing.T) {
	h := NewEditHistory("draft")

	h.Restart("draft", "brand new")

	assert.Equal(t, "", h.Current())
	assert.Equal(t, "brand new", h.Result())
	assert.Equal(t, 1, h.Len())
}

func TestEditHistoryEntriesIsCopy(t *testing.T) {
	h := NewEditHistory("")
	h.Push("a")

	entries := h.Entries()
	entries[0] = "mutated"

	assert.Equal(t, []string{"a"}, h.Entries())
}

func TestEditHistoryLatestEmpty(t *testing.T) {
	_, ok := NewEditHistory("").Latest()
	assert.False(t, ok)
}

func TestParseTaskKind(t *testing.T) {
	for _, task := range AllTasks() {
		got, err := ParseTaskKind(string(task))
		assert.NoError(t, err)
		assert.Equal(t, task, got)
	}

	_, err := ParseTaskKind("poetry")
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestSessionTryAcquire(t *testing.T) {
	s := NewSession("id", "title")

	assert.True(t, s.TryAcquire())
	assert.False(t, s.TryAcquire())
	s.Release()
	assert.True(t, s.TryAcquire())
	s.Release()
}

func TestSessionSnapshot(t *testing.T) {
	s := NewSession("id", "title")
	s.Lock()
	s.History.SetCurrent("안녕하세요")
	s.History.Commit("안녕하세요", "반갑습니다")
	s.Unlock()

	snap := s.Snapshot()
	assert.Equal(t, "반갑습니다", snap.Text)
	assert.Equal(t, []string{"안녕하세요"}, snap.History)
	assert.Equal(t, 5, snap.CharCount)
	assert.Equal(t, CharLimit, snap.CharLimit)

	summary := s.Summary()
	assert.Equal(t, 1, summary.HistoryLen)
	assert.False(t, summary.HasImage)
}
