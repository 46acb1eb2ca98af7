package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Токены хранятся сутки с момента сохранения, как cookie-хранилище
// браузерного клиента.
const storeTTL = 24 * time.Hour

// Tokens содержит токены текущей сессии провайдера идентификации.
type Tokens struct {
	IDToken      string    `json:"id_token"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	SavedAt      time.Time `json:"saved_at"`
}

// TokenStore описывает долговременное хранилище токенов сессии.
// Отсутствие сохранённой сессии — это (nil, nil), а не ошибка.
type TokenStore interface {
	Load() (*Tokens, error)
	Save(*Tokens) error
	Clear() error
}

// FileStore хранит токены в JSON-файле с правами 0600.
type FileStore struct {
	path string
}

// NewFileStore создаёт файловое хранилище токенов по указанному пути.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load читает сохранённые токены. Просроченная запись удаляется.
func (s *FileStore) Load() (*Tokens, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var tokens Tokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}

	if time.Since(tokens.SavedAt) > storeTTL {
		_ = s.Clear()
		return nil, nil
	}

	return &tokens, nil
}

// Save записывает токены, отмечая момент сохранения.
func (s *FileStore) Save(tokens *Tokens) error {
	tokens.SavedAt = time.Now()

	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Clear удаляет сохранённые токены.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// MemoryStore хранит токены в памяти процесса.
type MemoryStore struct {
	mu     sync.Mutex
	tokens *Tokens
}

// NewMemoryStore создаёт хранилище токенов в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load возвращает сохранённые токены либо (nil, nil).
func (s *MemoryStore) Load() (*Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		return nil, nil
	}
	copied := *s.tokens
	return &copied, nil
}

// Save запоминает токены.
func (s *MemoryStore) Save(tokens *Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens.SavedAt = time.Now()
	copied := *tokens
	s.tokens = &copied
	return nil
}

// Clear забывает токены.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = nil
	return nil
}
