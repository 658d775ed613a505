package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RewardClaim is one entry of a submission's claimed-rewards payload. The
// payload arrives as loosely typed JSON, so an entry is either a well-formed
// reward ID or a malformed fragment kept verbatim for logging.
type RewardClaim struct {
	ID  int64
	Raw json.RawMessage // non-nil when the entry was not an integer ID
}

// Malformed reports whether the claim could not be read as a reward ID.
func (c RewardClaim) Malformed() bool {
	return c.Raw != nil
}

// ParseRewardClaims splits a claimed-rewards JSON payload into individual
// claims. A null or empty payload yields no claims. A payload that is not a
// JSON array is rejected as a whole; the reward grant step re-validates each
// ID server-side, so malformed entries inside a valid array are preserved
// rather than dropped.
func ParseRewardClaims(raw json.RawMessage) ([]RewardClaim, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("claimed rewards is not a JSON array: %w", err)
	}

	claims := make([]RewardClaim, 0, len(entries))
	for _, entry := range entries {
		var id int64
		if err := json.Unmarshal(entry, &id); err != nil {
			claims = append(claims, RewardClaim{Raw: entry})
			continue
		}
		claims = append(claims, RewardClaim{ID: id})
	}
	return claims, nil
}
