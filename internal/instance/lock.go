// pattern: Imperative Shell
package instance

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/zeebo/blake3"
)

const (
	lockSuffix  = ".lock"
	ownerSuffix = ".owner"
)

// lockName derives a stable file name for a target ID. IDs may contain
// path separators and arbitrary length paths, so they are hashed.
func lockName(targetID string) string {
	sum := blake3.Sum256([]byte(targetID))
	return "rttdash-" + hex.EncodeToString(sum[:8])
}

// LockPath returns the lock file used for targetID.
func LockPath(dataDir, targetID string) string {
	return filepath.Join(dataDir, lockName(targetID)+lockSuffix)
}

func ownerPath(dataDir, targetID string) string {
	return filepath.Join(dataDir, lockName(targetID)+ownerSuffix)
}

// Lock acquires an exclusive file lock so only one dashboard attaches to a
// target. Returns the flock handle (caller must defer Cleanup) or an error
// naming the owning process if another dashboard already holds the lock.
func Lock(dataDir, targetID string) (*flock.Flock, error) {
	fl := flock.New(LockPath(dataDir, targetID))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		if pid, ok := Owner(dataDir, targetID); ok {
			return nil, fmt.Errorf("target %s is already attached by rttdash (pid %d)", targetID, pid)
		}
		return nil, fmt.Errorf("target %s is already attached by another rttdash", targetID)
	}

	owner := fmt.Sprintf("%d\n%s\n", os.Getpid(), targetID)
	if err := os.WriteFile(ownerPath(dataDir, targetID), []byte(owner), 0600); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("failed to write owner file: %w", err)
	}
	return fl, nil
}

// Owner returns the pid recorded by the dashboard attached to targetID.
func Owner(dataDir, targetID string) (int, bool) {
	data, err := os.ReadFile(ownerPath(dataDir, targetID))
	if err != nil {
		return 0, false
	}
	first, _, _ := strings.Cut(string(data), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, false
	}
	return pid, true
}

// Cleanup removes the owner file and releases the file lock.
func Cleanup(dataDir, targetID string, fl *flock.Flock) {
	_ = os.Remove(ownerPath(dataDir, targetID))
	if fl != nil {
		_ = fl.Unlock()
	}
}
