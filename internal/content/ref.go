package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DraftIDPrefix marks client-side identifiers of rows that were never saved.
const DraftIDPrefix = "temp_"

// Ref identifies a desired row as either an existing record or a new draft.
type Ref struct {
	id uint64 // zero means draft
}

// Draft returns a reference to a row that has not been persisted.
func Draft() Ref { return Ref{} }

// Persisted returns a reference to the stored record with the given id.
func Persisted(id uint64) Ref { return Ref{id: id} }

// ID returns the record id and whether the reference is persisted.
func (r Ref) ID() (uint64, bool) { return r.id, r.id != 0 }

// IsDraft reports whether the reference points at an unsaved row.
func (r Ref) IsDraft() bool { return r.id == 0 }

func (r Ref) String() string {
	if r.IsDraft() {
		return "draft"
	}
	return strconv.FormatUint(r.id, 10)
}

// MarshalJSON encodes persisted refs as numbers and drafts as null.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.IsDraft() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatUint(r.id, 10)), nil
}

// UnmarshalJSON accepts a number, a numeric string, null, "" or a
// DraftIDPrefix-prefixed placeholder.
func (r *Ref) UnmarshalJSON(data []byte) error {
	ref, err := ParseRef(data)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

// ParseRef decodes a JSON-encoded row identifier.
func ParseRef(data []byte) (Ref, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Draft(), nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Ref{}, fmt.Errorf("invalid id: %w", err)
		}
		return parseRefString(s)
	}
	return parseRefString(string(trimmed))
}

func parseRefString(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, DraftIDPrefix) {
		return Draft(), nil
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return Ref{}, fmt.Errorf("invalid id %q", s)
	}
	return Persisted(id), nil
}
