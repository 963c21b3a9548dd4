// Package storage abstracts the external object store holding listing
// images. The API deals only in public URLs; deletion is best effort.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore stores uploaded listing images and returns public URLs.
type ImageStore interface {
	Save(originalName string, r io.Reader) (string, error)
	Delete(url string) error
}

// urlPrefix is the path under which stored images are served.
const urlPrefix = "/uploads/"

// DiskStore is an ImageStore backed by a local directory served as
// static files.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore creates a DiskStore rooted at the given directory.
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("could not create upload directory: %w", err)
	}
	return &DiskStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Root returns the directory images are written to, for static serving.
func (s *DiskStore) Root() string { return s.root }

// Save writes the image under a fresh random name, keeping the original
// extension, and returns its public URL.
func (s *DiskStore) Save(originalName string, r io.Reader) (string, error) {
	name := uuid.New().String() + strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.root, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("could not write image file: %w", err)
	}
	return s.baseURL + urlPrefix + name, nil
}

// Delete removes a previously stored image by its public URL. URLs that
// do not point into the store are rejected.
func (s *DiskStore) Delete(url string) error {
	idx := strings.LastIndex(url, urlPrefix)
	if idx < 0 {
		return fmt.Errorf("not a stored image url: %s", url)
	}
	name := url[idx+len(urlPrefix):]
	// Reject anything that could escape the upload directory.
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("not a stored image url: %s", url)
	}
	return os.Remove(filepath.Join(s.root, name))
}
