package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultCapacity is used when the first joiner does not ask for a valid capacity.
	DefaultCapacity = 2
	// MaxCapacity bounds requested capacities; larger values are clamped to it.
	MaxCapacity = math.MaxInt32
)

type RoomCode string

// Room is a read-only view of a registered room.
type Room struct {
	Code        RoomCode `json:"roomCode"`
	Capacity    int      `json:"maxMembers"`
	MemberCount int      `json:"memberCount"`
}

// NormalizeRoomCode trims and uppercases a raw code.
func NormalizeRoomCode(raw string) (RoomCode, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return "", ErrInvalidRoomCode
	}
	return RoomCode(code), nil
}

// ParseCapacity accepts a JSON number or a numeric string and returns it when
// it is a positive integer, clamped to MaxCapacity. Anything else yields 0,
// meaning "not requested".
func ParseCapacity(raw []byte) int {
	s := strings.TrimSpace(string(raw))
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" || s == "null" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !(errors.Is(err, strconv.ErrRange) && f > 0) {
		return 0
	}
	if f < 1 || f != math.Trunc(f) {
		return 0
	}
	if f > MaxCapacity {
		return MaxCapacity
	}
	return int(f)
}

// CapacityOr returns requested when positive, otherwise fallback.
func CapacityOr(requested, fallback int) int {
	if requested > 0 {
		return requested
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultCapacity
}
