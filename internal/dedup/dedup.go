package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

const (
	// rejectWindow is how long after a recorded submission an identical one
	// is turned away.
	rejectWindow = 3 * time.Second
	// pruneAfter is how long fingerprints are kept before opportunistic
	// cleanup removes them.
	pruneAfter = 10 * time.Second
)

// Deduplicator suppresses rapid duplicate form submissions. A fingerprint is
// recorded only once the submission has actually succeeded, so a user who
// corrects an invalid form and resubmits is never blocked; only double-fired
// successful submissions of the same identity are.
type Deduplicator struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func New() *Deduplicator {
	return &Deduplicator{
		seen: map[string]time.Time{},
		now:  time.Now,
	}
}

// ShouldReject reports whether an identical (action, identity) submission was
// recorded within the reject window. Stale fingerprints are pruned on every
// call.
func (d *Deduplicator) ShouldReject(action string, identity string) bool {
	fp := fingerprint(action, identity)
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.pruneLocked(now)

	recorded, exists := d.seen[fp]
	return exists && now.Sub(recorded) < rejectWindow
}

// Record remembers a completed submission so immediate duplicates of it can
// be turned away.
func (d *Deduplicator) Record(action string, identity string) {
	fp := fingerprint(action, identity)

	d.mu.Lock()
	d.seen[fp] = d.now()
	d.mu.Unlock()
}

func (d *Deduplicator) pruneLocked(now time.Time) {
	for fp, recorded := range d.seen {
		if now.Sub(recorded) > pruneAfter {
			delete(d.seen, fp)
		}
	}
}

func fingerprint(action string, identity string) string {
	sum := sha256.Sum256([]byte(action + "\x00" + strings.ToLower(strings.TrimSpace(identity))))
	return hex.EncodeToString(sum[:])
}
