package database

import (
	"errors"
	"io/fs"
	"os"
	"time"
)

// FileInfo describes the single-file store on disk.
type FileInfo struct {
	Path     string     `json:"path"`
	Exists   bool       `json:"exists"`
	Size     int64      `json:"size"`
	Modified *time.Time `json:"modified,omitempty"`
}

// Stat reports the store file at path. A missing file is not an error.
func Stat(path string) (FileInfo, error) {
	info := FileInfo{Path: path}
	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return info, err
	}
	mod := st.ModTime().UTC()
	info.Exists = true
	info.Size = st.Size()
	info.Modified = &mod
	return info, nil
}
