package convlog

import (
	"os"
	"strconv"
)

// sizeRotatingSink rolls its file through numbered backups before a
// write would push it past maxBytes. The active file keeps the bare
// path; backups are path.1 (newest) through path.N (oldest).
type sizeRotatingSink struct {
	fileSink
	maxBytes    int64
	backupCount int
}

func newSizeRotatingSink(path string, min Severity, maxBytes int64, backupCount int) (*sizeRotatingSink, error) {
	s := &sizeRotatingSink{maxBytes: maxBytes, backupCount: backupCount}
	s.path = path
	s.min = min
	if err := s.open(); err != nil {
		return nil, &SinkInitError{Path: path, Err: err}
	}
	return s, nil
}

func (s *sizeRotatingSink) Write(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.size > 0 && s.size+int64(len(line)) > s.maxBytes {
		if err := s.rotate(); err != nil {
			return err
		}
	}
	return s.write(line)
}

// rotate runs under mu. It shifts path.N-1 up to path.N, drops the
// backup past the retention count, renames the active file to path.1,
// and reopens a fresh file. With no backups configured the active file
// is truncated in place instead. Rotating an empty file is pointless, so
// Write never asks for it.
func (s *sizeRotatingSink) rotate() error {
	if s.file != nil {
		if err := s.file.Close(); err != nil {
			s.file = nil
			return err
		}
		s.file = nil
	}
	s.size = 0

	if s.backupCount <= 0 {
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		s.file = f
		return nil
	}

	oldest := numberedBackup(s.path, s.backupCount)
	if _, err := os.Stat(oldest); err == nil {
		if err := os.Remove(oldest); err != nil {
			return err
		}
	}
	for i := s.backupCount - 1; i >= 1; i-- {
		src := numberedBackup(s.path, i)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.Rename(src, numberedBackup(s.path, i+1)); err != nil {
			return err
		}
	}
	if err := os.Rename(s.path, numberedBackup(s.path, 1)); err != nil {
		return err
	}
	return s.open()
}

func numberedBackup(path string, n int) string {
	return path + "." + strconv.Itoa(n)
}
