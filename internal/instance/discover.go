// pattern: Imperative Shell
package instance

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// RemoveStale deletes lock and owner files left behind by dashboards that
// exited without cleaning up. Locks still held by a live process are kept.
// Returns the number of locks removed.
func RemoveStale(dataDir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dataDir, "rttdash-*"+lockSuffix))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, lockPath := range matches {
		fl := flock.New(lockPath)
		locked, err := fl.TryLock()
		if err != nil {
			return removed, fmt.Errorf("failed to check lock %s: %w", lockPath, err)
		}
		if !locked {
			continue
		}
		_ = os.Remove(strings.TrimSuffix(lockPath, lockSuffix) + ownerSuffix)
		_ = os.Remove(lockPath)
		_ = fl.Unlock()
		removed++
	}
	return removed, nil
}
