package history

import (
	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

// Nop discards records; used when history.enabled is false.
type Nop struct{}

func (Nop) Save(domain.RunRecord) error {
	return nil
}

func (Nop) Records(int) ([]domain.RunRecord, error) {
	return nil, nil
}

func (Nop) Clear() error {
	return nil
}

func (Nop) Path() string {
	return ""
}

var _ ports.HistoryRepository = Nop{}
