package handlers

import (
	"encoding/json"
	"net/http"
)

// Códigos de erro devolvidos no envelope.
const (
	CodeInvalidFile    = "INVALID_FILE"
	CodeFileTooLarge   = "FILE_TOO_LARGE"
	CodeParseError     = "PARSE_ERROR"
	CodeMissingColumns = "MISSING_COLUMNS"
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidStage   = "INVALID_STAGE"
	CodeInvalidMove    = "INVALID_STAGE_TRANSITION"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL_ERROR"
)

type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code           string      `json:"code"`
	Details        interface{} `json:"details,omitempty"`
	MissingColumns []string    `json:"missingColumns,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, SuccessResponse{Success: true, Message: message, Data: data})
}

func writeErrorResponse(w http.ResponseWriter, status int, message, code string, details interface{}) {
	writeJSON(w, status, ErrorResponse{
		Success: false,
		Message: message,
		Error:   ErrorDetail{Code: code, Details: details},
	})
}
