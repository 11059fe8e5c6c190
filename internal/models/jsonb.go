package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringSet is a jsonb-backed set of normalized (uppercase) string tags,
// used for equipment requirement matching.
type StringSet []string

// Value implements driver.Valuer for jsonb columns.
func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal([]string(s))
}

// Scan implements sql.Scanner for jsonb columns.
func (s *StringSet) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models: cannot scan %T into StringSet", src)
	}
	if len(raw) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(s))
}

// Has reports whether tag is present, case-insensitively (tags are expected
// to already be normalized uppercase).
func (s StringSet) Has(tag string) bool {
	for _, t := range s {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Subset reports whether every element of s is present in other.
func (s StringSet) Subset(other StringSet) bool {
	for _, t := range s {
		if !other.Has(t) {
			return false
		}
	}
	return true
}

// AvailabilityList is a jsonb-backed list of availability windows.
type AvailabilityList []AvailabilityWindow

func (a AvailabilityList) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal([]AvailabilityWindow(a))
}

func (a *AvailabilityList) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models: cannot scan %T into AvailabilityList", src)
	}
	if len(raw) == 0 {
		*a = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]AvailabilityWindow)(a))
}
