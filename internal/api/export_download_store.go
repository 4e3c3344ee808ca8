package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// exportTTL bounds how long a streamed export waits for its download.
const exportTTL = 10 * time.Minute

type exportDownload struct {
	filePath  string
	year      int
	week      int
	expiresAt time.Time
}

// exportDownloadStore hands out one-shot download tokens for exports
// written to disk.
type exportDownloadStore struct {
	mu    sync.Mutex
	items map[string]exportDownload
	now   func() time.Time
}

func newExportDownloadStore() *exportDownloadStore {
	return &exportDownloadStore{
		items: make(map[string]exportDownload),
		now:   time.Now,
	}
}

func (s *exportDownloadStore) put(filePath string, year, week int, ttl time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	token := uuid.NewString()
	s.items[token] = exportDownload{
		filePath:  filePath,
		year:      year,
		week:      week,
		expiresAt: now.Add(ttl),
	}
	return token
}

func (s *exportDownloadStore) get(token string) (exportDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(s.now())

	v, ok := s.items[token]
	return v, ok
}

func (s *exportDownloadStore) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
}

// purgeExpiredLocked forgets expired tokens. Their files are left to the
// caller; streamed exports live in the export directory.
func (s *exportDownloadStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}
