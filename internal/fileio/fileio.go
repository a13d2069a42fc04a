package fileio

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

var ErrTooLarge = errors.New("fileio: file too large to map")

// File is the read-only contents of a file, memory-mapped when possible.
type File struct {
	Data    []byte
	mmapped bool
}

// Open maps path read-only. If mmap is unavailable (pipes, special files,
// empty files) it falls back to reading the file into memory.
// The returned file must be closed to release any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !stat.Mode().IsRegular() {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		return &File{Data: data}, nil
	}

	size64 := stat.Size()
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, ErrTooLarge
	}
	size := int(size64)
	if size == 0 {
		return &File{Data: []byte{}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return &File{Data: data, mmapped: true}, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return &File{Data: data}, nil
}

// ReadFile returns a private copy of the contents of path, or of stdin when
// path is "-" or empty.
func ReadFile(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(f.Data))
	copy(out, f.Data)
	if err := f.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// Mapped reports whether Data is backed by a memory mapping.
func (f *File) Mapped() bool { return f != nil && f.mmapped }

// Close releases the mapping. Data must not be used afterwards.
func (f *File) Close() error {
	if f == nil {
		return nil
	}
	data := f.Data
	f.Data = nil
	if !f.mmapped {
		return nil
	}
	f.mmapped = false
	return unix.Munmap(data)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}
