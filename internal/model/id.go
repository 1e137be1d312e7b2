// Package model defines the core domain models used throughout the ledger.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID identifies any ledger entity. Values are normalized on ingestion by ParseID,
// so two IDs can be compared with == regardless of whether the remote sent them
// as numbers or strings.
type ID string

// RemovedWalletID is the wallet reference carried by transactions whose wallet was deleted.
const RemovedWalletID ID = "removed"

// String returns the ID as a plain string.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the ID is empty.
func (id ID) IsZero() bool {
	return id == ""
}

// ParseID normalizes a raw identifier coming from any boundary (remote payloads,
// command line arguments, database rows). Decimal integers are canonicalized so
// that "007", 7 and 7.0 all become "7".
func ParseID(raw any) (ID, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case ID:
		return normalizeIDString(string(v)), nil
	case string:
		return normalizeIDString(v), nil
	case int:
		return ID(strconv.Itoa(v)), nil
	case int32:
		return ID(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return ID(strconv.FormatInt(v, 10)), nil
	case uint:
		return ID(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return ID(strconv.FormatUint(v, 10)), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return "", fmt.Errorf("invalid id %v: not an integer", v)
		}
		return ID(strconv.FormatInt(int64(v), 10)), nil
	case json.Number:
		return normalizeIDString(v.String()), nil
	default:
		return "", fmt.Errorf("invalid id type %T", raw)
	}
}

// MustParseID is ParseID for values known to be valid, such as literals in tests.
func MustParseID(raw any) ID {
	id, err := ParseID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func normalizeIDString(s string) ID {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ID(strconv.FormatInt(n, 10))
	}
	return ID(s)
}

// Int64 returns the numeric form of the ID for backends keyed by integers.
func (id ID) Int64() (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id %q is not numeric: %w", id, err)
	}
	return n, nil
}

// UnmarshalJSON accepts both JSON numbers and JSON strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}

	parsed, err := ParseID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
