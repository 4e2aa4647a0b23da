package domain

import (
	"path/filepath"
	"strings"
)

// Upload is a file received for processing.
type Upload struct {
	Name string
	Data []byte
}

// Ext returns the lowercased extension of the file name, including the dot.
func (u Upload) Ext() string {
	return strings.ToLower(filepath.Ext(u.Name))
}
