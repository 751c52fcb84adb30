package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SeatSet is a duplicate-free set of seat numbers. It is persisted and sent
// over the wire as a JSON list of strings ordered by seat number.
type SeatSet struct {
	m map[string]struct{}
}

// NewSeatSet builds a set from seat strings; blanks are skipped and duplicates collapse.
func NewSeatSet(seats ...string) SeatSet {
	s := SeatSet{m: make(map[string]struct{}, len(seats))}
	for _, seat := range seats {
		s.Add(seat)
	}
	return s
}

func (s *SeatSet) Add(seat string) {
	seat = strings.TrimSpace(seat)
	if seat == "" {
		return
	}
	if s.m == nil {
		s.m = map[string]struct{}{}
	}
	s.m[seat] = struct{}{}
}

func (s SeatSet) Has(seat string) bool {
	_, ok := s.m[strings.TrimSpace(seat)]
	return ok
}

func (s SeatSet) Len() int { return len(s.m) }

// Intersect returns the members of s that are also listed in seats, in list order.
func (s SeatSet) Intersect(seats []string) []string {
	out := []string{}
	for _, seat := range seats {
		if s.Has(seat) {
			out = append(out, strings.TrimSpace(seat))
		}
	}
	return out
}

// Union returns a new set holding every seat of s and seats.
func (s SeatSet) Union(seats []string) SeatSet {
	out := NewSeatSet(s.List()...)
	for _, seat := range seats {
		out.Add(seat)
	}
	return out
}

// List returns the seats sorted numerically; non-numeric seats sort last, lexically.
func (s SeatSet) List() []string {
	out := make([]string, 0, len(s.m))
	for seat := range s.m {
		out = append(out, seat)
	}
	sort.Slice(out, func(i, j int) bool {
		a, errA := strconv.Atoi(out[i])
		b, errB := strconv.Atoi(out[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return out[i] < out[j]
		}
	})
	return out
}

func (s SeatSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *SeatSet) UnmarshalJSON(data []byte) error {
	var seats []string
	if err := json.Unmarshal(data, &seats); err != nil {
		return err
	}
	*s = NewSeatSet(seats...)
	return nil
}

// Value stores the set as a JSON list string.
func (s SeatSet) Value() (driver.Value, error) {
	b, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan accepts the JSON list column; NULL and empty strings yield an empty set.
func (s *SeatSet) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = NewSeatSet()
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("seat set: unsupported column type %T", src)
	}
	if strings.TrimSpace(string(raw)) == "" {
		*s = NewSeatSet()
		return nil
	}
	return s.UnmarshalJSON(raw)
}

// SeatList is the ordered, caller-facing form of a seat selection (booking rows keep order).
type SeatList []string

func (l SeatList) Value() (driver.Value, error) {
	if l == nil {
		l = SeatList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *SeatList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = SeatList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("seat list: unsupported column type %T", src)
	}
	if strings.TrimSpace(string(raw)) == "" {
		*l = SeatList{}
		return nil
	}
	var seats []string
	if err := json.Unmarshal(raw, &seats); err != nil {
		return err
	}
	*l = seats
	return nil
}
