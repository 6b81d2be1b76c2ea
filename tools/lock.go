package tools

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

var (
	lockTimeout   = 5 * time.Second // Max time to wait for lock
	lockRetryWait = 200 * time.Millisecond
)

var (
	lockMu   sync.Mutex
	heldLock *flock.Flock
)

// acquireLock takes the inter-process lock guarding the data directory.
// Two servers sharing a data dir must not write snapshots concurrently.
func acquireLock() error {
	lockMu.Lock()
	defer lockMu.Unlock()

	if heldLock != nil {
		log.Printf("Lock already held by this process (PID %d)", os.Getpid())
		return nil
	}

	lockPath := filepath.Join(dataDir(), lockFile)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	l := flock.New(lockPath)
	startTime := time.Now()
	for {
		locked, err := l.TryLock()
		if err != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", lockPath, err)
		}
		if locked {
			heldLock = l
			log.Printf("✓ Index lock acquired (PID %d)", os.Getpid())
			return nil
		}

		elapsed := time.Since(startTime)
		if elapsed >= lockTimeout {
			return fmt.Errorf("timeout waiting for index lock after %v (lock: %s)", elapsed.Round(100*time.Millisecond), lockPath)
		}
		log.Printf("Index locked by another process, waiting... (%v elapsed)", elapsed.Round(100*time.Millisecond))
		time.Sleep(lockRetryWait)
	}
}

// releaseLock releases the index lock if this process holds it
func releaseLock() error {
	lockMu.Lock()
	defer lockMu.Unlock()

	if heldLock == nil {
		return nil
	}
	if err := heldLock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	heldLock = nil

	log.Printf("✓ Index lock released")
	return nil
}
