package models

import (
	"fmt"
	"strconv"
)

// VoteValue is one card of the planning poker deck.
type VoteValue string

const (
	VoteZero      VoteValue = "0"
	VoteOne       VoteValue = "1"
	VoteTwo       VoteValue = "2"
	VoteThree     VoteValue = "3"
	VoteFive      VoteValue = "5"
	VoteEight     VoteValue = "8"
	VoteThirteen  VoteValue = "13"
	VoteTwentyOne VoteValue = "21"
	VoteUnsure    VoteValue = "?"
	VoteCoffee    VoteValue = "coffee"
)

var voteValues = []VoteValue{
	VoteZero, VoteOne, VoteTwo, VoteThree, VoteFive,
	VoteEight, VoteThirteen, VoteTwentyOne, VoteUnsure, VoteCoffee,
}

// VoteValues returns the deck in display order
func VoteValues() []VoteValue {
	out := make([]VoteValue, len(voteValues))
	copy(out, voteValues)
	return out
}

// Valid reports whether v is part of the deck
func (v VoteValue) Valid() bool {
	for _, candidate := range voteValues {
		if v == candidate {
			return true
		}
	}
	return false
}

// Numeric returns the integer value of a numeric card.
// "?" and "coffee" report false.
func (v VoteValue) Numeric() (int, bool) {
	if !v.Valid() || v == VoteUnsure || v == VoteCoffee {
		return 0, false
	}
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseVoteValue validates a raw card value
func ParseVoteValue(raw string) (VoteValue, error) {
	v := VoteValue(raw)
	if !v.Valid() {
		return "", fmt.Errorf("invalid vote value %q", raw)
	}
	return v, nil
}
