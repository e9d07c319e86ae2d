package sqlutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sqlc-dev/pqtype"
)

// Helper functions for converting between Go types and nullable column types

// ToSqlTime maps the zero time to NULL
func ToSqlTime(val time.Time) sql.NullTime {
	if val.IsZero() {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: val, Valid: true}
}

// FromSqlTime maps NULL to the zero time. Valid times come back in UTC.
func FromSqlTime(val sql.NullTime) time.Time {
	if !val.Valid {
		return time.Time{}
	}
	return val.Time.UTC()
}

// ToNullRawMessage encodes val as JSON, storing NULL when it encodes to null
func ToNullRawMessage(val any) (pqtype.NullRawMessage, error) {
	data, err := json.Marshal(val)
	if err != nil {
		return pqtype.NullRawMessage{}, err
	}
	if bytes.Equal(data, []byte("null")) {
		return pqtype.NullRawMessage{Valid: false}, nil
	}
	return pqtype.NullRawMessage{RawMessage: data, Valid: true}, nil
}

// FromNullRawMessage decodes a nullable JSON column into dst, leaving dst
// untouched when the column is NULL
func FromNullRawMessage(val pqtype.NullRawMessage, dst any) error {
	if !val.Valid {
		return nil
	}
	return json.Unmarshal(val.RawMessage, dst)
}
