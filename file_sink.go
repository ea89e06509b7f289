package convlog

import (
	"os"
	"path/filepath"
	"sync"
)

// fileSink appends records to a single file. The rotating variants embed
// it and rotate under the same lock, so no record is ever split across
// files.
type fileSink struct {
	mu   sync.Mutex
	path string
	min  Severity
	file *os.File
	size int64
}

// newFileSink opens path for appending, creating missing parent
// directories. Registration-time failures surface as SinkInitError.
func newFileSink(path string, min Severity) (*fileSink, error) {
	s := &fileSink{path: path, min: min}
	if err := s.open(); err != nil {
		return nil, &SinkInitError{Path: path, Err: err}
	}
	return s, nil
}

// open runs under mu (or before the sink is shared).
func (s *fileSink) open() error {
	if err := os.MkdirAll(filepath.Dir(s.path), os.ModePerm); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	s.file = f
	s.size = info.Size()
	return nil
}

func (s *fileSink) Name() string { return s.path }

// Accepts applies the minimum level; the zero value accepts every
// severity.
func (s *fileSink) Accepts(level Severity) bool { return level >= s.min }

func (s *fileSink) Write(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(line)
}

// write runs under mu. A sink left without a handle by an earlier
// failure tries to reopen before giving up on the record.
func (s *fileSink) write(line []byte) error {
	if s.file == nil {
		if err := s.open(); err != nil {
			return err
		}
	}
	n, err := s.file.Write(line)
	s.size += int64(n)
	return err
}

func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
