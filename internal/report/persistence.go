package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

//go:generate mockgen -destination=mocks/mock_persistence.go -package=mocks -source=persistence.go Persistence

const (
	// FileName is the name of the per-catalog report file
	FileName = "report.json"

	// lockFileName guards FileName against concurrent writers
	lockFileName = ".report.lock"

	lockRetryDelay = 50 * time.Millisecond
)

// Persistence stores the last report of each catalog
type Persistence interface {
	// Save stores the report under its catalog name, replacing the previous one
	Save(ctx context.Context, r *Report) error

	// Load returns the last report for a catalog; it returns nil and no error if none exists
	Load(ctx context.Context, catalogName string) (*Report, error)
}

// filePersistence implements Persistence on the local filesystem
type filePersistence struct {
	basePath string
}

// NewFilePersistence creates a file-based report store rooted at basePath
func NewFilePersistence(basePath string) Persistence {
	return &filePersistence{basePath: basePath}
}

// Save writes the report to <basePath>/<catalog>/report.json atomically
func (f *filePersistence) Save(ctx context.Context, r *Report) (err error) {
	if r == nil || r.Catalog == "" {
		return fmt.Errorf("report must name a catalog")
	}

	dir := filepath.Join(f.basePath, r.Catalog)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create report directory for catalog '%s': %w", r.Catalog, err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock report directory for catalog '%s': %w", r.Catalog, err)
	}
	if !locked {
		return fmt.Errorf("report directory for catalog '%s' is locked by another run", r.Catalog)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("failed to unlock report directory for catalog '%s': %w", r.Catalog, unlockErr)
		}
	}()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report for catalog '%s': %w", r.Catalog, err)
	}

	filePath := filepath.Join(dir, FileName)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary report file for catalog '%s': %w", r.Catalog, err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename report file for catalog '%s': %w", r.Catalog, err)
	}

	return nil
}

// Load reads the last report of a catalog
func (f *filePersistence) Load(_ context.Context, catalogName string) (*Report, error) {
	if !filepath.IsLocal(catalogName) {
		return nil, fmt.Errorf("invalid catalog name '%s'", catalogName)
	}
	filePath := filepath.Join(f.basePath, catalogName, FileName)

	// #nosec G304 -- filePath is basePath joined with a local catalog name
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read report file for catalog '%s': %w", catalogName, err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report for catalog '%s': %w", catalogName, err)
	}
	return &r, nil
}
