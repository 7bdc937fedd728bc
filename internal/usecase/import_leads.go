package usecase

import (
	"context"
	"io"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/entity"
	"github.com/xavierca1/leadhub/internal/infra/excel"
)

const (
	OriginExcelImport = "EXCEL_IMPORT"

	prefetchChunkSize = 500
)

type ImportLeadsUseCase struct {
	Store       LeadStore
	History     HistoryStore
	Events      EventPublisher
	Recorder    ImportRecorder
	Transformer *RowTransformer
	Upserter    *BatchUpserter
	Logger      *zap.Logger

	parse func(io.Reader) (*excel.Sheet, error)
}

func NewImportLeadsUseCase(
	store LeadStore,
	history HistoryStore,
	events EventPublisher,
	recorder ImportRecorder,
	batchDelay time.Duration,
	logger *zap.Logger,
) *ImportLeadsUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &ImportLeadsUseCase{
		Store:       store,
		History:     history,
		Events:      events,
		Recorder:    recorder,
		Transformer: NewRowTransformer(),
		Upserter:    NewBatchUpserter(store, batchDelay, logger),
		Logger:      logger,
		parse:       excel.Parse,
	}
}

func (uc *ImportLeadsUseCase) Execute(ctx context.Context, input ImportInput) (*ImportResult, error) {
	start := time.Now()
	opts := input.Options.Normalize()
	log := uc.Logger.With(zap.String("file", input.FileName), zap.Int64("size", input.FileSize))

	sheet, err := uc.parse(input.Content)
	if err != nil {
		log.Warn("❌ planilha inválida", zap.Error(err))
		uc.recordFailure(ctx, input, start)
		return nil, &ParseError{Message: "failed to parse excel file", Err: err}
	}

	mapping := MapColumns(sheet.Headers)
	if len(mapping.MissingColumns) > 0 {
		log.Warn("❌ colunas obrigatórias ausentes", zap.Strings("missing", mapping.MissingColumns))
		uc.recordFailure(ctx, input, start)
		return nil, &MissingColumnsError{MissingColumns: mapping.MissingColumns, Warnings: mapping.Warnings}
	}

	transformed := uc.Transformer.Transform(sheet.Rows, mapping, opts)

	result := &ImportResult{
		TotalRows:  transformed.TotalRows,
		ValidRows:  len(transformed.Leads),
		Errors:     append([]RowError{}, transformed.Errors...),
		Duplicates: []DuplicateRecord{},
		Warnings:   append(append([]string{}, mapping.Warnings...), transformed.Warnings...),
	}
	result.ErrorRows = result.TotalRows - result.ValidRows

	existing, err := uc.prefetchExisting(ctx, transformed.Leads)
	if err != nil {
		log.Error("❌ falha ao consultar leads existentes", zap.Error(err))
		uc.recordFailure(ctx, input, start)
		return nil, &TechnicalError{Code: "LEAD_STORE_ERROR", Message: "failed to load existing leads", Err: err}
	}

	dups := DetectDuplicates(transformed.Leads, existing)
	result.Duplicates = append(result.Duplicates, dups.Duplicates...)

	toWrite := dups.UniqueLeads
	if opts.UpdateExisting {
		toWrite = append(append([]TransformedLead{}, dups.UniqueLeads...), dups.ExistingMatches...)
		sort.SliceStable(toWrite, func(i, j int) bool { return toWrite[i].RowIndex < toWrite[j].RowIndex })
	}

	written := make(map[int]bool, len(toWrite))
	for _, l := range toWrite {
		written[l.RowIndex] = true
	}
	for _, d := range dups.Duplicates {
		if written[d.Row] {
			continue
		}
		if opts.SkipDuplicates {
			result.SkippedRows++
			continue
		}
		result.ErrorRows++
		result.Errors = append(result.Errors, ValidationError{
			Row:     d.Row,
			Field:   "email",
			Value:   d.Email,
			Type:    ErrorTypeDuplicate,
			Message: d.Reason,
		})
	}

	stats := uc.Upserter.Run(ctx, toWrite, opts)
	result.InsertedRows = stats.Inserted
	result.UpdatedRows = stats.Updated
	result.SkippedRows += stats.Skipped
	result.ErrorRows += stats.Failed
	result.Errors = append(result.Errors, stats.Errors...)
	result.ProcessedRows = stats.Inserted + stats.Updated
	result.SuccessRate = SuccessRate(result.ProcessedRows, result.TotalRows)
	result.ProcessingTime = time.Since(start).Milliseconds()

	uc.publishCreated(ctx, stats.Created)

	status := uploadStatus(result)
	uc.appendHistory(ctx, input, result, status)
	uc.Recorder.RecordUpload(status, result)

	log.Info("✅ upload processado",
		zap.String("status", status),
		zap.Int("total", result.TotalRows),
		zap.Int("inserted", result.InsertedRows),
		zap.Int("updated", result.UpdatedRows),
		zap.Int("skipped", result.SkippedRows),
		zap.Int("errors", result.ErrorRows),
		zap.Int64("ms", result.ProcessingTime),
	)

	return result, nil
}

// SuccessRate = (inserted+updated)/total*100 com duas casas; zero sem linhas.
func SuccessRate(processed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(processed)/float64(total)*100*100) / 100
}

func (uc *ImportLeadsUseCase) prefetchExisting(ctx context.Context, leads []TransformedLead) ([]entity.Lead, error) {
	emails := make([]string, 0, len(leads))
	for _, l := range leads {
		emails = append(emails, l.Email)
	}

	var existing []entity.Lead
	for start := 0; start < len(emails); start += prefetchChunkSize {
		end := start + prefetchChunkSize
		if end > len(emails) {
			end = len(emails)
		}
		found, err := uc.Store.FindByEmails(ctx, emails[start:end])
		if err != nil {
			return nil, err
		}
		existing = append(existing, found...)
	}
	return existing, nil
}

func (uc *ImportLeadsUseCase) publishCreated(ctx context.Context, created []*entity.Lead) {
	if uc.Events == nil {
		return
	}
	for _, lead := range created {
		event := entity.NewLeadEvent(entity.EventLeadCreated, OriginExcelImport, lead)
		if err := uc.Events.PublishLeadEvent(ctx, event); err != nil {
			uc.Logger.Warn("⚠️ lead gravado, mas evento não publicado",
				zap.String("lead_id", lead.ID), zap.Error(err))
		}
	}
}

func (uc *ImportLeadsUseCase) appendHistory(ctx context.Context, input ImportInput, result *ImportResult, status string) {
	if uc.History == nil {
		return
	}
	entry := entity.NewUploadHistoryEntry(input.FileName, input.FileSize)
	entry.TotalRows = result.TotalRows
	entry.ValidRows = result.ValidRows
	entry.InsertedRows = result.InsertedRows
	entry.UpdatedRows = result.UpdatedRows
	entry.SkippedRows = result.SkippedRows
	entry.ErrorRows = result.ErrorRows
	entry.SuccessRate = result.SuccessRate
	entry.ProcessingTime = result.ProcessingTime
	entry.Status = status

	if err := uc.History.Append(ctx, *entry); err != nil {
		uc.Logger.Warn("⚠️ falha ao gravar histórico de upload", zap.Error(err))
	}
}

func (uc *ImportLeadsUseCase) recordFailure(ctx context.Context, input ImportInput, start time.Time) {
	result := &ImportResult{ProcessingTime: time.Since(start).Milliseconds()}
	uc.appendHistory(ctx, input, result, entity.UploadStatusFailed)
	uc.Recorder.RecordUpload(entity.UploadStatusFailed, nil)
}

func uploadStatus(r *ImportResult) string {
	switch {
	case r.ErrorRows == 0:
		return entity.UploadStatusCompleted
	case r.ProcessedRows > 0:
		return entity.UploadStatusPartial
	default:
		return entity.UploadStatusFailed
	}
}
