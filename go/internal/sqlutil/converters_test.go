package sqlutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/sqlc-dev/pqtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqlTime(t *testing.T) {
	assert.False(t, ToSqlTime(time.Time{}).Valid)
	assert.True(t, FromSqlTime(sql.NullTime{}).IsZero())

	local := time.Date(2026, 2, 3, 21, 0, 0, 0, time.FixedZone("CET", 3600))
	got := FromSqlTime(ToSqlTime(local))
	assert.True(t, got.Equal(local))
	assert.Equal(t, time.UTC, got.Location())
}

func TestNullRawMessage(t *testing.T) {
	var nilSlice []int
	msg, err := ToNullRawMessage(nilSlice)
	require.NoError(t, err)
	assert.False(t, msg.Valid)

	msg, err = ToNullRawMessage([]int{1, 2})
	require.NoError(t, err)
	assert.True(t, msg.Valid)
	assert.JSONEq(t, `[1,2]`, string(msg.RawMessage))

	dst := []int{9}
	require.NoError(t, FromNullRawMessage(msg, &dst))
	assert.Equal(t, []int{1, 2}, dst)

	keep := []int{7}
	require.NoError(t, FromNullRawMessage(pqtype.NullRawMessage{}, &keep))
	assert.Equal(t, []int{7}, keep)
}
