//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

func osMapShared(f *os.File, size int) ([]byte, func([]byte) error, error) {
	prot := unix.PROT_READ | unix.PROT_WRITE
	flags := unix.MAP_SHARED

	data, err := unix.Mmap(int(f.Fd()), 0, size, prot, flags)
	if err != nil {
		return nil, nil, err
	}

	return data, unix.Munmap, nil
}

func osMapAnon(size int) ([]byte, func([]byte) error, error) {
	prot := unix.PROT_READ | unix.PROT_WRITE
	flags := unix.MAP_ANON | unix.MAP_PRIVATE

	data, err := unix.Mmap(-1, 0, size, prot, flags)
	if err != nil {
		return nil, nil, err
	}

	return data, unix.Munmap, nil
}

// SharedDir returns the directory for shared mappings: /dev/shm when it is
// available, the temporary directory otherwise.
func SharedDir() string {
	if fi, err := os.Stat("/dev/shm"); err == nil && fi.IsDir() {
		if unix.Access("/dev/shm", unix.W_OK) == nil {
			return "/dev/shm"
		}
	}
	return os.TempDir()
}
