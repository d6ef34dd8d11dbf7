package storage

import (
	"context"
	"net/url"
	"sync"
)

type object struct {
	contentType string
	data        []byte
}

// Memory keeps objects in process. Dev mode serves them back under BasePath.
type Memory struct {
	BasePath string

	mu      sync.RWMutex
	objects map[string]object
}

// NewMemory returns an empty store whose URLs start with basePath.
func NewMemory(basePath string) *Memory {
	return &Memory{BasePath: basePath, objects: make(map[string]object)}
}

func (m *Memory) Put(_ context.Context, key, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.objects[key] = object{contentType: contentType, data: cp}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *Memory) URL(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[key]; !ok {
		return "", ErrNotFound
	}
	return m.BasePath + "/" + (&url.URL{Path: key}).EscapedPath(), nil
}

// Get returns a stored object.
func (m *Memory) Get(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o.data, o.contentType, ok
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
