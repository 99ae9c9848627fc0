package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrAuthenticationRequired = errors.New("authentication required")
)

// ValidationError - ошибки полей формы, ничего не сохранено
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Outcome - результат мутации, которая завершилась без ошибки
type Outcome int

const (
	// OutcomeApplied - изменение записано
	OutcomeApplied Outcome = iota
	// OutcomeUnchanged - повторная подписка/лайк, подписка на себя, удаление отсутствующей связи
	OutcomeUnchanged
	// OutcomeForbidden - вызывающий не владелец, ничего не изменено
	OutcomeForbidden
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeForbidden:
		return "forbidden"
	}
	return "unknown"
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
