package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/infra/excel"
	"github.com/xavierca1/leadhub/internal/usecase"
)

const (
	DefaultMaxUploadBytes = 10 << 20 // 10 MB
	uploadField           = "excelFile"
	multipartOverhead     = 1 << 20
)

var (
	allowedExtensions = map[string]bool{".xlsx": true, ".xls": true}
	allowedMIMETypes  = map[string]bool{
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
		"application/vnd.ms-excel": true,
		"application/octet-stream": true,
	}
)

type leadImporter interface {
	Execute(ctx context.Context, input usecase.ImportInput) (*usecase.ImportResult, error)
}

type UploadHandler struct {
	importer leadImporter
	history  usecase.HistoryStore
	maxBytes int64
	logger   *zap.Logger

	// template gera o xlsx de exemplo; trocado nos testes.
	template func() ([]byte, error)
}

func NewUploadHandler(importer leadImporter, history usecase.HistoryStore, maxBytes int64, logger *zap.Logger) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandler{
		importer: importer,
		history:  history,
		maxBytes: maxBytes,
		logger:   logger,
		template: excel.TemplateBytes,
	}
}

// Upload trata POST /api/leads/upload.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorResponse(w, http.StatusBadRequest, h.tooLargeMessage(), CodeFileTooLarge, nil)
			return
		}
		writeErrorResponse(w, http.StatusBadRequest, "Invalid multipart form", CodeInvalidFile, err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("No file uploaded. Send the spreadsheet in the %q field", uploadField), CodeInvalidFile, nil)
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		writeErrorResponse(w, http.StatusBadRequest, h.tooLargeMessage(), CodeFileTooLarge, nil)
		return
	}
	if msg := validateUpload(header); msg != "" {
		writeErrorResponse(w, http.StatusBadRequest, msg, CodeInvalidFile, nil)
		return
	}

	result, err := h.importer.Execute(r.Context(), usecase.ImportInput{
		FileName: header.Filename,
		FileSize: header.Size,
		Content:  file,
		Options:  parseImportOptions(r),
	})
	if err != nil {
		h.writeImportError(w, err)
		return
	}

	message := fmt.Sprintf("Processed %d rows: %d inserted, %d updated, %d skipped, %d errors",
		result.TotalRows, result.InsertedRows, result.UpdatedRows, result.SkippedRows, result.ErrorRows)
	writeSuccess(w, http.StatusOK, message, result)
}

// Template trata GET /api/leads/upload/template.
func (h *UploadHandler) Template(w http.ResponseWriter, r *http.Request) {
	body, err := h.template()
	if err != nil {
		h.logger.Error("❌ falha ao gerar template", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to generate template", CodeInternal, nil)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", excel.TemplateFileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("⚠️ cliente abortou download do template", zap.Error(err))
	}
}

// History trata GET /api/leads/upload/history?limit=N.
func (h *UploadHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.history.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("❌ falha ao ler histórico", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to load upload history", CodeInternal, nil)
		return
	}
	writeSuccess(w, http.StatusOK, "", entries)
}

// Stats trata GET /api/leads/upload/stats.
func (h *UploadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.history.Stats(r.Context())
	if err != nil {
		h.logger.Error("❌ falha ao calcular estatísticas", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to load upload stats", CodeInternal, nil)
		return
	}
	writeSuccess(w, http.StatusOK, "", stats)
}

func (h *UploadHandler) writeImportError(w http.ResponseWriter, err error) {
	var (
		parseErr   *usecase.ParseError
		missingErr *usecase.MissingColumnsError
	)

	switch {
	case errors.As(err, &parseErr):
		writeErrorResponse(w, http.StatusBadRequest, "Failed to parse Excel file", CodeParseError, parseErr.Error())
	case errors.As(err, &missingErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Success: false,
			Message: "Missing required columns: " + strings.Join(missingErr.MissingColumns, ", "),
			Error: ErrorDetail{
				Code:           CodeMissingColumns,
				Details:        missingErr.Warnings,
				MissingColumns: missingErr.MissingColumns,
			},
		})
	default:
		h.logger.Error("❌ erro inesperado no upload", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to process upload", CodeInternal, nil)
	}
}

func (h *UploadHandler) tooLargeMessage() string {
	return fmt.Sprintf("File exceeds the maximum size of %d MB", h.maxBytes>>20)
}

func validateUpload(header *multipart.FileHeader) string {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "Invalid file type. Only .xlsx and .xls files are allowed"
	}

	mime := header.Header.Get("Content-Type")
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(strings.ToLower(mime))
	if mime != "" && !allowedMIMETypes[mime] {
		return "Invalid file type. Only .xlsx and .xls files are allowed"
	}
	return ""
}

// parseImportOptions lê as opções do form e, na falta, da query string.
func parseImportOptions(r *http.Request) usecase.ImportOptions {
	opts := usecase.DefaultImportOptions()
	opts.SkipDuplicates = boolParam(r, "skipDuplicates", opts.SkipDuplicates)
	opts.UpdateExisting = boolParam(r, "updateExisting", opts.UpdateExisting)
	opts.ValidateEmails = boolParam(r, "validateEmails", opts.ValidateEmails)
	opts.ValidatePhones = boolParam(r, "validatePhones", opts.ValidatePhones)
	opts.MaxRows = intParam(r, "maxRows", opts.MaxRows)
	opts.BatchSize = intParam(r, "batchSize", opts.BatchSize)
	return opts.Normalize()
}

func boolParam(r *http.Request, key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(r.FormValue(key)))
	if err != nil {
		return fallback
	}
	return v
}

func intParam(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	if err != nil {
		return fallback
	}
	return v
}
