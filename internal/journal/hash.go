package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/roach88/inboxsim/internal/event"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainEvent = "inboxsim/event/v1"
	DomainRun   = "inboxsim/run/v1"
)

// hashWithDomain computes SHA-256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventHash computes the content hash of one journal row.
// payload must already be canonical.
func EventHash(runID string, seq, tick uint64, simNowMs int64, kind event.Kind, payload []byte) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"run_id":     runID,
		"seq":        seq,
		"tick":       tick,
		"sim_now_ms": simNowMs,
		"kind":       kind,
		"payload":    json.RawMessage(payload),
	})
	if err != nil {
		return "", fmt.Errorf("event hash: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// ConfigHash computes the content hash of a run's canonical config.
func ConfigHash(config []byte) string {
	return hashWithDomain(DomainRun, config)
}
