package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmCancelRoundTrip(t *testing.T) {
	sid := "0f8fad5b-d9cb-469f-a165-70867728950e"

	cb := parseCallback(confirmCallback(sid))
	assert.Equal(t, actionConfirm, cb.Action)
	require.Len(t, cb.Args, 1)
	assert.Equal(t, sid, cb.Args[0])

	cb = parseCallback(cancelCallback(sid))
	assert.Equal(t, actionCancel, cb.Action)
	assert.Equal(t, []string{sid}, cb.Args)
}

func TestUndoCallbackRoundTrip(t *testing.T) {
	data, ok := undoCallback([]int64{1, 42, 1007})
	require.True(t, ok)
	assert.Equal(t, "undo:1,42,1007", data)

	cb := parseCallback(data)
	require.Len(t, cb.Args, 1)
	ids, err := parseUndoIDs(cb.Args[0])
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 42, 1007}, ids)
}

func TestUndoCallbackTooLong(t *testing.T) {
	// много длинных id не влезают в 64 байта — кнопки не будет
	ids := make([]int64, 10)
	for i := range ids {
		ids[i] = 9_000_000_000_000 + int64(i)
	}
	data, ok := undoCallback(ids)
	assert.False(t, ok)
	assert.Empty(t, data)
}

func TestParseUndoIDsRejectsGarbage(t *testing.T) {
	_, err := parseUndoIDs("1,два,3")
	assert.Error(t, err)
}

func TestPastMonthRoundTrip(t *testing.T) {
	data := pastMonthCallback(2025, time.March)
	assert.True(t, strings.HasPrefix(data, actionPastMonth+":"))

	cb := parseCallback(data)
	year, month, err := parsePastMonth(cb.Args)
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.March, month)
}

func TestParsePastMonthRejectsBadPayload(t *testing.T) {
	for _, args := range [][]string{
		{"2025"},
		{"год", "3"},
		{"2025", "13"},
		{"2025", "0"},
	} {
		_, _, err := parsePastMonth(args)
		assert.Error(t, err, "args %v", args)
	}
}
