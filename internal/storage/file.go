package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// File stores key/value pairs in a small YAML document, the terminal
// equivalent of the browser's local storage.
type File struct {
	mu   sync.Mutex
	path string
	key  string
}

// NewFile creates a file-backed store. The file is created on first Set.
func NewFile(path, key string) *File {
	return &File{path: path, key: key}
}

// Get returns the stored id.
func (f *File) Get(_ context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	id, ok := values[f.key]
	return id, ok, nil
}

// Set stores id.
func (f *File) Set(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[f.key] = id
	return f.save(values)
}

// Remove deletes the key and its handoff flag. Removing a missing key is not an error.
func (f *File) Remove(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	_, hasID := values[f.key]
	_, hasHandoff := values[handoffKey(f.key)]
	if !hasID && !hasHandoff {
		return nil
	}
	delete(values, f.key)
	delete(values, handoffKey(f.key))
	return f.save(values)
}

// HandoffActive reports the stored handoff flag.
func (f *File) HandoffActive(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return false, err
	}
	return values[handoffKey(f.key)] == handoffValue, nil
}

// SetHandoffActive stores the handoff flag; false deletes it.
func (f *File) SetHandoffActive(_ context.Context, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	hk := handoffKey(f.key)
	if _, ok := values[hk]; ok == active {
		return nil
	}
	if active {
		values[hk] = handoffValue
	} else {
		delete(values, hk)
	}
	return f.save(values)
}

// Close is a no-op; the file is rewritten on every change.
func (f *File) Close() error { return nil }

func (f *File) load() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file %s: %w", f.path, err)
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse storage file %s: %w", f.path, err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

func (f *File) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode storage file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}
