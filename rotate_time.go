package convlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// RotateWhen selects the interval of a time-rotating file handler.
// Boundaries are aligned to the UTC calendar, consistent with record
// timestamps.
type RotateWhen string

const (
	RotateHourly RotateWhen = "hourly"
	RotateDaily  RotateWhen = "daily"
	// RotateMidnight is an alias for RotateDaily; both roll at the UTC
	// day boundary.
	RotateMidnight RotateWhen = "midnight"
)

// timeRotatingSink rolls its file when a write lands in a later interval
// than the one the file was opened in. Rolled files carry the start of
// the interval they cover as a suffix; retention keeps the newest
// backupCount of them.
type timeRotatingSink struct {
	fileSink
	interval    time.Duration
	suffix      string
	backupCount int
	periodStart time.Time

	// now is replaced in tests to step across interval boundaries.
	now func() time.Time
}

func newTimeRotatingSink(path string, min Severity, when RotateWhen, backupCount int) (*timeRotatingSink, error) {
	interval, suffix, err := when.period()
	if err != nil {
		return nil, &SinkInitError{Path: path, Err: err}
	}
	s := &timeRotatingSink{
		interval:    interval,
		suffix:      suffix,
		backupCount: backupCount,
		now:         time.Now,
	}
	s.path = path
	s.min = min
	if err := s.open(); err != nil {
		return nil, &SinkInitError{Path: path, Err: err}
	}

	// A file left over from an earlier run belongs to the interval of its
	// last write, so the first write past that boundary rotates it out.
	anchor := s.now()
	if info, statErr := s.file.Stat(); statErr == nil && s.size > 0 {
		anchor = info.ModTime()
	}
	s.periodStart = anchor.UTC().Truncate(interval)
	return s, nil
}

func (s *timeRotatingSink) Write(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	if s.size > 0 && !now.Before(s.periodStart.Add(s.interval)) {
		if err := s.rotate(now); err != nil {
			return err
		}
	}
	if s.size == 0 {
		s.periodStart = now.Truncate(s.interval)
	}
	return s.write(line)
}

// rotate runs under mu. The closed file takes the name of the interval
// it covers, e.g. app.log.2026-08-21 for a daily handler.
func (s *timeRotatingSink) rotate(now time.Time) error {
	if s.file != nil {
		if err := s.file.Close(); err != nil {
			s.file = nil
			return err
		}
		s.file = nil
	}
	s.size = 0

	backup := s.path + "." + s.periodStart.Format(s.suffix)
	if _, err := os.Stat(backup); err == nil {
		if err := os.Remove(backup); err != nil {
			return err
		}
	}
	if err := os.Rename(s.path, backup); err != nil {
		return err
	}
	s.periodStart = now.Truncate(s.interval)
	if err := s.open(); err != nil {
		return err
	}
	s.pruneBackups()
	return nil
}

// pruneBackups removes the oldest timestamp-suffixed backups beyond the
// retention count. Pruning is best effort; a leftover backup never
// blocks a write.
func (s *timeRotatingSink) pruneBackups() {
	matches, err := filepath.Glob(s.path + ".*")
	if err != nil {
		return
	}
	var backups []string
	for _, m := range matches {
		stamp := strings.TrimPrefix(m, s.path+".")
		if _, perr := time.Parse(s.suffix, stamp); perr == nil {
			backups = append(backups, m)
		}
	}
	if len(backups) <= s.backupCount {
		return
	}
	// The suffix layouts are fixed width, so lexical order is
	// chronological order.
	sort.Strings(backups)
	for _, old := range backups[:len(backups)-s.backupCount] {
		_ = os.Remove(old)
	}
}

// period returns the interval length and the backup suffix layout.
func (w RotateWhen) period() (time.Duration, string, error) {
	switch w {
	case RotateHourly:
		return time.Hour, "2006-01-02_15", nil
	case RotateDaily, RotateMidnight:
		return 24 * time.Hour, "2006-01-02", nil
	}
	return 0, emptyString, fmt.Errorf("unknown rotation interval %q", string(w))
}
