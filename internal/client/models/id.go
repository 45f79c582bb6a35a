package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// EntryID identifies a diary entry on the client. It is a tagged union of the
// two identifier spaces an entry moves through: a locally generated temporary
// numeric id (before the server has acknowledged the create) and the opaque
// string id the server assigns. Exactly one side is set at any time; the
// temp→server transition happens in place during queue flush reconciliation.
type EntryID struct {
	temp   int64
	server string
}

var ErrInvalidEntryID = errors.New("invalid entry id")

// TempID wraps a locally generated numeric identifier.
func TempID(n int64) EntryID { return EntryID{temp: n} }

// ServerID wraps a server-assigned identifier.
func ServerID(s string) EntryID { return EntryID{server: s} }

var lastTempID atomic.Int64

// NewTempID returns a fresh clock-based temporary id. Ids are strictly
// monotonic within a process even when the wall clock does not advance
// between calls.
func NewTempID() EntryID {
	for {
		now := time.Now().UnixMilli()
		prev := lastTempID.Load()
		if now <= prev {
			now = prev + 1
		}
		if lastTempID.CompareAndSwap(prev, now) {
			return TempID(now)
		}
	}
}

func (id EntryID) IsTemp() bool { return id.server == "" && id.temp != 0 }
func (id EntryID) IsZero() bool { return id.server == "" && id.temp == 0 }

// Temp returns the numeric identifier; valid only when IsTemp.
func (id EntryID) Temp() int64 { return id.temp }

// Server returns the server-assigned identifier; valid only when !IsTemp.
func (id EntryID) Server() string { return id.server }

// Key returns the prefixed form used as the durable store's key column.
// The prefix keeps the numeric and string id spaces collision-free.
func (id EntryID) Key() string {
	if id.IsTemp() {
		return "t:" + strconv.FormatInt(id.temp, 10)
	}
	return "s:" + id.server
}

// ParseKey inverts Key.
func ParseKey(key string) (EntryID, error) {
	switch {
	case strings.HasPrefix(key, "t:"):
		n, err := strconv.ParseInt(key[2:], 10, 64)
		if err != nil {
			return EntryID{}, fmt.Errorf("%w: %q", ErrInvalidEntryID, key)
		}
		return TempID(n), nil
	case strings.HasPrefix(key, "s:") && len(key) > 2:
		return ServerID(key[2:]), nil
	default:
		return EntryID{}, fmt.Errorf("%w: %q", ErrInvalidEntryID, key)
	}
}

// String renders the raw identifier as it appears in URLs and JSON.
func (id EntryID) String() string {
	if id.IsTemp() {
		return strconv.FormatInt(id.temp, 10)
	}
	return id.server
}

// MarshalJSON writes a JSON number for temp ids and a JSON string for server
// ids, matching the wire shape the API and local mirror use.
func (id EntryID) MarshalJSON() ([]byte, error) {
	if id.IsTemp() {
		return json.Marshal(id.temp)
	}
	return json.Marshal(id.server)
}

func (id *EntryID) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*id = TempID(int64(value))
		return nil
	case string:
		if value == "" {
			return ErrInvalidEntryID
		}
		*id = ServerID(value)
		return nil
	default:
		return ErrInvalidEntryID
	}
}
