package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when an identifier cannot be parsed.
var ErrInvalidID = NewAppError(KindInvalidArgument, "INVALID_ID", "invalid identifier", nil)

// ParseID converts an external identifier into its internal numeric form.
func ParseID(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID.WithDetails(map[string]string{"value": trimmed})
	}
	return id, nil
}

// FormatID renders an internal identifier for API responses.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ID is a request-body identifier accepting JSON numbers and numeric strings.
type ID int64

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid identifier %q", raw)
	}
	*id = ID(parsed)
	return nil
}

// MarshalJSON renders the identifier as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatID(int64(id)))
}

// Int64 returns the internal numeric value.
func (id ID) Int64() int64 { return int64(id) }
