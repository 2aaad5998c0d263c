package runs

import "github.com/mmrzaf/forumsetup/internal/domain"

// Repository keeps the history of installer passes next to the install state.
type Repository interface {
	Init() error
	Create(run *domain.InstallRun) error
	Update(run *domain.InstallRun) error
	Get(id string) (*domain.InstallRun, error)
	List(limit int, status string) ([]*domain.InstallRun, error)
}
