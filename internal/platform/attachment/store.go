package attachment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotFound is returned by Delete for an unknown key.
var ErrNotFound = errors.New("attachment not found")

// LocalStore writes files below Root and reports locations under
// URLPrefix, which the server maps to Root as a static directory.
type LocalStore struct {
	Root      string
	URLPrefix string
}

func NewLocalStore(root, urlPrefix string) *LocalStore {
	return &LocalStore{Root: root, URLPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *LocalStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	full, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return s.URLPrefix + "/" + key, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *LocalStore) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid attachment key %q", key)
	}
	return filepath.Join(s.Root, filepath.FromSlash(clean)), nil
}

// HTTPStore PUTs objects to an S3-compatible or plain HTTP object store.
type HTTPStore struct {
	client  *resty.Client
	baseURL string
}

func NewHTTPStore(baseURL string, timeout time.Duration) *HTTPStore {
	baseURL = strings.TrimRight(baseURL, "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	return &HTTPStore{client: client, baseURL: baseURL}
}

func (s *HTTPStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Put("/" + key)
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("put %s: object store returned %s", key, resp.Status())
	}
	return s.baseURL + "/" + key, nil
}

func (s *HTTPStore) Delete(ctx context.Context, key string) error {
	resp, err := s.client.R().SetContext(ctx).Delete("/" + key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if resp.StatusCode() == 404 {
		return ErrNotFound
	}
	if resp.IsError() {
		return fmt.Errorf("delete %s: object store returned %s", key, resp.Status())
	}
	return nil
}

// MemoryStore keeps objects in memory, for tests and STORE=memory runs.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return "mem://" + key, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return ErrNotFound
	}
	delete(s.objects, key)
	return nil
}

// Len reports how many objects are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Keys returns the stored keys.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}
