package io

import (
	"io/fs"

	"github.com/ezrec/i8080/cpu"
)

// LoadFS loads the image named name from fsys into mem. The file size
// reported by Stat must match the bytes read, so a file that shrinks
// while loading is reported as truncated.
func LoadFS(mem *cpu.Memory, fsys fs.FS, name string) (length int, err error) {
	file, err := fsys.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return
	}

	if info.Size() > ROM_LIMIT {
		err = &ErrLoad{Size: int(info.Size()), Err: ErrTooLarge}
		return
	}

	return LoadSized(mem, file, int(info.Size()))
}
