// Package passwords hashes account passwords with bcrypt.
package passwords

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

type Manager struct {
	Cost int
}

func NewManager() *Manager {
	return &Manager{Cost: bcrypt.DefaultCost}
}

func (m *Manager) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	cost := m.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (m *Manager) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
