package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errors for config management
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrDuplicateKey      = errors.New("key already exists")
	ErrInvalidEmail      = errors.New("invalid email format")
)

// ConfigManager provides CRUD operations for config entries
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Recipient represents a recipient entry
type Recipient struct {
	Key     string
	Name    string
	Address string
}

// --- Room allowlist ---

// AddRoom adds a room to the allowlist
func (m *ConfigManager) AddRoom(room string) error {
	room = strings.TrimSpace(room)
	if room == "" {
		return fmt.Errorf("room name is required")
	}

	if _, found := m.roomIndex(room); found {
		return fmt.Errorf("%w: room %q", ErrDuplicateKey, room)
	}

	m.config.Rooms = append(m.config.Rooms, room)
	return Save(m.config, m.configPath)
}

// ListRooms returns the allowlist; empty means every room is processed
func (m *ConfigManager) ListRooms() []string {
	return append([]string(nil), m.config.Rooms...)
}

// RemoveRoom removes a room from the allowlist (case-insensitive)
func (m *ConfigManager) RemoveRoom(room string) error {
	idx, found := m.roomIndex(room)
	if !found {
		return fmt.Errorf("%w: %q", ErrRoomNotFound, room)
	}

	m.config.Rooms = append(m.config.Rooms[:idx], m.config.Rooms[idx+1:]...)
	return Save(m.config, m.configPath)
}

func (m *ConfigManager) roomIndex(room string) (int, bool) {
	room = strings.TrimSpace(room)
	for i, r := range m.config.Rooms {
		if strings.EqualFold(r, room) {
			return i, true
		}
	}
	return -1, false
}

// --- Recipient CRUD ---

// AddRecipient adds a new summary email recipient
func (m *ConfigManager) AddRecipient(key, name, email string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if key == "" {
		return fmt.Errorf("recipient key is required")
	}
	if name == "" {
		return fmt.Errorf("recipient name is required")
	}
	if !isValidEmail(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	if m.config.Notification.Recipients == nil {
		m.config.Notification.Recipients = make(map[string]RecipientConfig)
	}

	if _, exists := m.config.Notification.Recipients[key]; exists {
		return fmt.Errorf("%w: recipient %q", ErrDuplicateKey, key)
	}

	m.config.Notification.Recipients[key] = RecipientConfig{Name: name, Address: email}
	return Save(m.config, m.configPath)
}

// ListRecipients returns all recipients sorted by key
func (m *ConfigManager) ListRecipients() []Recipient {
	result := make([]Recipient, 0, len(m.config.Notification.Recipients))
	for key, rc := range m.config.Notification.Recipients {
		result = append(result, Recipient{
			Key:     key,
			Name:    rc.Name,
			Address: rc.Address,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// GetRecipient gets a recipient by key (case-insensitive)
func (m *ConfigManager) GetRecipient(key string) (Recipient, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if rc, exists := m.config.Notification.Recipients[key]; exists {
		return Recipient{Key: key, Name: rc.Name, Address: rc.Address}, nil
	}
	return Recipient{}, fmt.Errorf("%w: %q", ErrRecipientNotFound, key)
}

// RemoveRecipient removes a recipient by key
func (m *ConfigManager) RemoveRecipient(key string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, exists := m.config.Notification.Recipients[key]; !exists {
		return fmt.Errorf("%w: %q", ErrRecipientNotFound, key)
	}

	delete(m.config.Notification.Recipients, key)
	return Save(m.config, m.configPath)
}

// isValidEmail performs basic email validation
func isValidEmail(email string) bool {
	if email == "" {
		return false
	}
	atIdx := strings.Index(email, "@")
	if atIdx < 1 {
		return false
	}
	domain := email[atIdx+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	return true
}
