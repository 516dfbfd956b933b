// Package persistence stores game snapshots as a JSON payload wrapped with an
// MD5 checksum. A checksum mismatch is logged and the save still loads.
package persistence

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/napolitain/idlekeep/internal/game"
)

// ErrEmptyPayload is returned when a blob has no snapshot in it
var ErrEmptyPayload = errors.New("save has no payload")

// Envelope is the on-disk form of a save
type Envelope struct {
	Payload  json.RawMessage `json:"payload"`
	Checksum string          `json:"checksum"`
}

// Checksum returns the hex MD5 of a serialized payload
func Checksum(payload []byte) string {
	sum := md5.Sum(payload)
	return hex.EncodeToString(sum[:])
}

// Encode serializes a snapshot and wraps it with its checksum
func Encode(snap game.Snapshot) ([]byte, error) {
	data, _, err := encode(snap)
	return data, err
}

func encode(snap game.Snapshot) (data []byte, checksum string, err error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	checksum = Checksum(payload)
	data, err = json.Marshal(Envelope{Payload: payload, Checksum: checksum})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode envelope: %w", err)
	}
	return data, checksum, nil
}

// Decode unwraps a save blob. verified is false when the stored checksum
// does not match the payload; the snapshot is returned anyway.
func Decode(data []byte) (snap game.Snapshot, verified bool, err error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return snap, false, fmt.Errorf("failed to parse save: %w", err)
	}
	payload := bytes.TrimSpace(env.Payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return snap, false, ErrEmptyPayload
	}

	verified = Verify(env)
	if !verified {
		slog.Warn("save checksum mismatch, loading anyway",
			"stored", env.Checksum, "computed", Checksum(env.Payload))
	}

	if err := json.Unmarshal(payload, &snap); err != nil {
		return snap, verified, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return snap, verified, nil
}

// Verify reports whether the envelope checksum matches its payload
func Verify(env Envelope) bool {
	return env.Checksum == Checksum(env.Payload)
}
