package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xavierca1/leadhub/internal/entity"
)

// ErrStoreUnavailable marca falhas de transporte do lead store (rede, 5xx).
var ErrStoreUnavailable = entity.ErrStoreUnavailable

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error { return e.Err }

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// ParseError: planilha ilegível, sem aba ou sem linhas.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingColumnsError: alguma coluna obrigatória não foi encontrada no cabeçalho.
type MissingColumnsError struct {
	MissingColumns []string
	Warnings       []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.MissingColumns, ", ")
}

const (
	ErrorTypeRequiredFields   = "required_fields"
	ErrorTypeValidation       = "validation"
	ErrorTypeProcessing       = "processing_error"
	ErrorTypeDuplicate        = "duplicate"
	ErrorTypeStageTransition  = "invalid_stage_transition"
	ErrorTypePersistence      = "persistence"
	ErrorTypeBatchPersistence = "batch_persistence"
)

// RowError é qualquer erro itemizado por linha no resultado do import.
type RowError interface {
	error
	RowNumber() int
}

type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
}

func (e ValidationError) RowNumber() int { return e.Row }

// PersistenceError descreve uma falha de create/update. Rows só é preenchido
// quando um lote inteiro falhou.
type PersistenceError struct {
	Row     int    `json:"row,omitempty"`
	Rows    []int  `json:"rows,omitempty"`
	Email   string `json:"email,omitempty"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e PersistenceError) Error() string {
	if len(e.Rows) > 0 {
		return fmt.Sprintf("rows %v: %s", e.Rows, e.Message)
	}
	return fmt.Sprintf("row %d (%s): %s", e.Row, e.Email, e.Message)
}

func (e PersistenceError) RowNumber() int {
	if e.Row == 0 && len(e.Rows) > 0 {
		return e.Rows[0]
	}
	return e.Row
}
