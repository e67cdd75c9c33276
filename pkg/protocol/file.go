package protocol

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// FileBlockSize is the chunk size used when a File body is pulled with Read.
const FileBlockSize = 64 * 1024

// File is a body backed by a file on disk. Transports that can copy straight
// from a file descriptor should use WriteTo instead of Read.
type File struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	length int64
	read   int64
}

// OpenFile opens path as a body. The error wraps os.ErrNotExist when the file
// is missing.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file body %q: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat file body %q: %w", path, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("file body %q is a directory", path)
	}
	return &File{file: f, path: path, length: info.Size()}, nil
}

// Path returns the path the body was opened from.
func (f *File) Path() string { return f.path }

// Read returns the next block of the file.
func (f *File) Read() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil, ErrBodyClosed
	}
	buf := make([]byte, FileBlockSize)
	n, err := f.file.Read(buf)
	f.read += int64(n)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

// WriteTo copies the rest of the file into w, letting the runtime use
// sendfile where the destination supports it.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return 0, ErrBodyClosed
	}
	n, err := io.Copy(w, f.file)
	f.read += n
	return n, err
}

// Close closes the file once.
func (f *File) Close(error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
	}
}

// Empty reports whether the whole file has been consumed.
func (f *File) Empty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file == nil || f.read >= f.length
}

// Ready reports false; reads hit the disk.
func (f *File) Ready() bool { return false }

// Length returns the file size.
func (f *File) Length() int64 { return f.length }

// IsNotExist reports whether err came from opening a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
