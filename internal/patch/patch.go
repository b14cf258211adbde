// Package patch implements allowlist-based partial updates.
//
// Every mutable entity declares a Schema: the set of fields a PATCH request
// may touch, how each is compared, and which are unique across their
// collection. One Diff routine then serves every resource kind, instead of
// each controller re-listing its allowed fields and hand-rolling its own
// "did anything change" loop.
//
// Diff works on the JSON shapes both sides naturally have: the persisted
// entity is snapshotted to a map (see the Fields methods in internal/model)
// and the proposal is the decoded request body. Fields outside the schema
// are silently ignored and can never be written.
package patch

import (
	"fmt"
	"time"

	"github.com/garasiku/servicebook/internal/apperror"
)

// FieldSpec describes one patchable field.
type FieldSpec struct {
	Name     string
	Temporal bool // compare by parsed instant, not raw representation
	Unique   bool // value must be unique across the collection
}

// Schema is the ordered set of fields a partial update may modify.
type Schema []FieldSpec

// dateLayouts are the accepted temporal representations, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Diff compares a proposed partial update against the persisted state and
// returns the set of fields that actually change.
//
// A field is changed only if it appears in proposed AND its value is not
// semantically equal to the existing one. Temporal fields are parsed on both
// sides and compared by instant, so two representations of the same moment
// are not a change. An unparseable temporal proposal is a validation error.
// JSON null values are treated as absent.
//
// An empty result means the update is a no-op; callers reject it with
// apperror.NoChange rather than committing a spurious write.
func (s Schema) Diff(existing, proposed map[string]any) (map[string]any, error) {
	changes := make(map[string]any)

	for _, f := range s.Fields() {
		value, ok := proposed[f.Name]
		if !ok || value == nil {
			continue
		}

		if f.Temporal {
			proposedAt, err := toInstant(value)
			if err != nil {
				return nil, apperror.ValidationFailed(f.Name,
					fmt.Sprintf("%s must be a valid date", f.Name))
			}
			existingAt, err := toInstant(existing[f.Name])
			if err != nil || !proposedAt.Equal(existingAt) {
				changes[f.Name] = value
			}
			continue
		}

		if !equalValue(existing[f.Name], value) {
			changes[f.Name] = value
		}
	}

	return changes, nil
}

// Fields returns the schema's field specs. Trivial today; it exists so both
// Diff and the uniqueness guard consume the schema the same way.
func (s Schema) Fields() []FieldSpec {
	return s
}

// UniqueFields filters the change set down to the fields that carry a
// collection-wide uniqueness constraint. This is the input to the
// uniqueness guard: only values that are actually changing need a probe.
func (s Schema) UniqueFields(changes map[string]any) []FieldSpec {
	var unique []FieldSpec
	for _, f := range s {
		if !f.Unique {
			continue
		}
		if _, ok := changes[f.Name]; ok {
			unique = append(unique, f)
		}
	}
	return unique
}

// toInstant resolves a temporal value to a time.Time. The persisted side is
// already a time.Time; the proposed side is usually a string off the wire.
func toInstant(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("patch: unparseable date %q", t)
	default:
		return time.Time{}, fmt.Errorf("patch: %T is not a temporal value", v)
	}
}

// equalValue compares two non-temporal values. JSON decoding yields float64
// for every number, while snapshots carry int64 or float64, so numbers are
// normalized before comparison. Everything else compares by interface
// equality.
func equalValue(existing, proposed any) bool {
	if ef, ok := toFloat(existing); ok {
		if pf, ok := toFloat(proposed); ok {
			return ef == pf
		}
		return false
	}
	return existing == proposed
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// The helpers below pull typed values out of a change set when applying it
// to an entity. They validate the wire type so a string proposed for a
// numeric column is a field-level validation error, not a scan failure.

// String returns the change for name as a string.
func String(changes map[string]any, name string) (string, error) {
	s, ok := changes[name].(string)
	if !ok {
		return "", apperror.ValidationFailed(name, fmt.Sprintf("%s must be a string", name))
	}
	return s, nil
}

// Int64 returns the change for name as an int64. JSON numbers arrive as
// float64; a fractional value is rejected rather than truncated.
func Int64(changes map[string]any, name string) (int64, error) {
	f, ok := toFloat(changes[name])
	if !ok || f != float64(int64(f)) {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("%s must be an integer", name))
	}
	return int64(f), nil
}

// Time returns the change for name as a resolved instant.
func Time(changes map[string]any, name string) (time.Time, error) {
	t, err := toInstant(changes[name])
	if err != nil {
		return time.Time{}, apperror.ValidationFailed(name, fmt.Sprintf("%s must be a valid date", name))
	}
	return t, nil
}
