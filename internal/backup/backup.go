// Package backup snapshots a component tree before mutation and restores it on demand.
package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TimestampLayout is the suffix format of backup directory names.
const TimestampLayout = "20060102_150405"

const backupInfix = "_backup_"

// maxSameSecond bounds how many snapshots can share one timestamp.
const maxSameSecond = 100

// Snapshot describes one existing backup directory.
type Snapshot struct {
	Path      string    `json:"path" yaml:"path"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	// Sequence is the numeric suffix of snapshots taken within the same second.
	Sequence int `json:"sequence,omitempty" yaml:"sequence,omitempty"`
}

// Manager creates, lists and restores sibling snapshots of a directory.
type Manager struct {
	logger     *zap.Logger
	now        func() time.Time
	beforeFile fileHook
}

// NewManager creates a Manager. A nil now uses time.Now.
func NewManager(logger *zap.Logger, now func() time.Time) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Manager{logger: logger, now: now}
}

// BackupPath returns the sibling path a snapshot of src taken at t is written to:
// <dir>/<name>_backup_<YYYYMMDD_HHMMSS>.
func BackupPath(src string, t time.Time) string {
	clean := filepath.Clean(src)
	return filepath.Join(filepath.Dir(clean), filepath.Base(clean)+backupInfix+t.Format(TimestampLayout))
}

// Snapshot copies src in full to a timestamped sibling directory and returns its path.
// A second snapshot within the same second gets a _1, _2, ... suffix.
// The copy is staged under a hidden name and only renamed into place once complete,
// so a failed snapshot never leaves a directory that looks like a finished backup.
func (m *Manager) Snapshot(src string) (string, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return "", &BackupError{Path: src, Message: "failed to resolve source path", Cause: err}
	}
	info, err := os.Stat(absSrc)
	if err != nil {
		return "", &BackupError{Path: absSrc, Message: "source directory not accessible", Cause: err}
	}
	if !info.IsDir() {
		return "", &BackupError{Path: absSrc, Message: "source is not a directory"}
	}

	dest, err := freeBackupPath(absSrc, m.now())
	if err != nil {
		return "", err
	}

	staging, err := m.stage(absSrc, filepath.Dir(absSrc), "."+filepath.Base(absSrc)+backupInfix+"*.partial")
	if err != nil {
		return "", err
	}

	if err := os.Rename(staging, dest); err != nil {
		_ = os.RemoveAll(staging)
		return "", &BackupError{Path: dest, Message: "failed to finalize backup", Cause: err}
	}
	if err := os.Chmod(dest, info.Mode().Perm()); err != nil {
		m.logger.Warn("could not copy source directory mode to backup", zap.String("backup", dest), zap.Error(err))
	}

	m.logger.Info("backup created", zap.String("source", absSrc), zap.String("backup", dest))
	return dest, nil
}

// freeBackupPath returns the first unused snapshot path for src at t.
func freeBackupPath(src string, t time.Time) (string, error) {
	base := BackupPath(src, t)
	for seq := 0; seq < maxSameSecond; seq++ {
		candidate := base
		if seq > 0 {
			candidate = fmt.Sprintf("%s_%d", base, seq)
		}
		_, err := os.Lstat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", &BackupError{Path: candidate, Message: "backup path not accessible", Cause: err}
		}
	}
	return "", &BackupError{Path: base, Message: "backup already exists"}
}

// stage copies src into a new hidden directory under dir and returns its path.
// The staging directory is removed on failure.
func (m *Manager) stage(src, dir, pattern string) (string, error) {
	staging, err := os.MkdirTemp(dir, pattern)
	if err != nil {
		return "", &BackupError{Path: dir, Message: "failed to create staging directory", Cause: err}
	}
	if err := copyTree(src, staging, m.beforeFile); err != nil {
		_ = os.RemoveAll(staging)
		return "", &BackupError{Path: src, Message: "failed to copy tree", Cause: err}
	}
	return staging, nil
}

// Restore replaces dst with the contents of a snapshot. The current tree is
// moved aside first and put back if the swap fails.
func (m *Manager) Restore(backupPath, dst string) error {
	absBackup, err := filepath.Abs(backupPath)
	if err != nil {
		return &BackupError{Path: backupPath, Message: "failed to resolve backup path", Cause: err}
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return &BackupError{Path: dst, Message: "failed to resolve destination path", Cause: err}
	}

	info, err := os.Stat(absBackup)
	if err != nil {
		return &BackupError{Path: absBackup, Message: "backup not accessible", Cause: err}
	}
	if !info.IsDir() {
		return &BackupError{Path: absBackup, Message: "backup is not a directory"}
	}

	staging, err := m.stage(absBackup, filepath.Dir(absDst), "."+filepath.Base(absDst)+"_restore_*.partial")
	if err != nil {
		return err
	}

	aside := ""
	if _, err := os.Lstat(absDst); err == nil {
		aside = absDst + ".rollback-" + m.now().Format(TimestampLayout)
		if err := os.Rename(absDst, aside); err != nil {
			_ = os.RemoveAll(staging)
			return &BackupError{Path: absDst, Message: "failed to move current tree aside", Cause: err}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		_ = os.RemoveAll(staging)
		return &BackupError{Path: absDst, Message: "destination not accessible", Cause: err}
	}

	if err := os.Rename(staging, absDst); err != nil {
		_ = os.RemoveAll(staging)
		if aside != "" {
			if rerr := os.Rename(aside, absDst); rerr != nil {
				m.logger.Error("failed to put original tree back", zap.String("aside", aside), zap.Error(rerr))
			}
		}
		return &BackupError{Path: absDst, Message: "failed to swap restored tree into place", Cause: err}
	}
	if err := os.Chmod(absDst, info.Mode().Perm()); err != nil {
		m.logger.Warn("could not copy backup directory mode", zap.String("path", absDst), zap.Error(err))
	}

	if aside != "" {
		if err := os.RemoveAll(aside); err != nil {
			m.logger.Warn("could not remove previous tree", zap.String("path", aside), zap.Error(err))
		}
	}

	m.logger.Info("backup restored", zap.String("backup", absBackup), zap.String("destination", absDst))
	return nil
}

// List returns the snapshots of src, newest first. Staging directories and
// names with an unparseable timestamp are ignored.
func (m *Manager) List(src string) ([]Snapshot, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return nil, &BackupError{Path: src, Message: "failed to resolve source path", Cause: err}
	}
	parent := filepath.Dir(absSrc)
	prefix := filepath.Base(absSrc) + backupInfix

	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil, &BackupError{Path: parent, Message: "failed to read parent directory", Cause: err}
	}

	var snapshots []Snapshot
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		created, seq, ok := parseSuffix(strings.TrimPrefix(name, prefix))
		if !ok {
			continue
		}
		snapshots = append(snapshots, Snapshot{Path: filepath.Join(parent, name), CreatedAt: created, Sequence: seq})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if !snapshots[i].CreatedAt.Equal(snapshots[j].CreatedAt) {
			return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
		}
		return snapshots[i].Sequence > snapshots[j].Sequence
	})
	return snapshots, nil
}

// parseSuffix splits "<YYYYMMDD_HHMMSS>[_<n>]" into its time and sequence.
func parseSuffix(s string) (time.Time, int, bool) {
	if len(s) < len(TimestampLayout) {
		return time.Time{}, 0, false
	}
	created, err := time.ParseInLocation(TimestampLayout, s[:len(TimestampLayout)], time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	rest := s[len(TimestampLayout):]
	if rest == "" {
		return created, 0, true
	}
	if !strings.HasPrefix(rest, "_") {
		return time.Time{}, 0, false
	}
	seq, err := strconv.Atoi(rest[1:])
	if err != nil || seq < 1 {
		return time.Time{}, 0, false
	}
	return created, seq, true
}

// String implements fmt.Stringer for CLI listings.
func (s Snapshot) String() string {
	return fmt.Sprintf("%s  %s", s.CreatedAt.Format(time.RFC3339), s.Path)
}
