// Copyright 2017 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package osutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	DefaultDirPerm  = 0755
	DefaultFilePerm = 0644
)

func MkdirAll(dir string) error {
	return os.MkdirAll(dir, DefaultDirPerm)
}

// WriteFile writes data to a temp file next to filename and renames it into place,
// so readers never observe a partially written file.
func WriteFile(filename string, data []byte) error {
	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, DefaultFilePerm); err != nil {
		return err
	}
	if err := os.Rename(tmp, filename); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// ListDir returns sorted names of regular files in dir.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		if ent.Type().IsRegular() {
			files = append(files, ent.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// ReadDirFiles reads all regular files in dir, the result is keyed by file name.
func ReadDirFiles(dir string) (map[string][]byte, error) {
	files, err := ListDir(dir)
	if err != nil {
		return nil, err
	}
	res := make(map[string][]byte, len(files))
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %v: %w", name, err)
		}
		res[name] = data
	}
	return res, nil
}
