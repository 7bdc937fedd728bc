package usecase

const (
	DefaultMaxRows   = 1000
	MaxAllowedRows   = 10000
	DefaultBatchSize = 100
	MaxBatchSize     = 1000
)

type ImportOptions struct {
	SkipDuplicates bool `json:"skipDuplicates"`
	UpdateExisting bool `json:"updateExisting"`
	ValidateEmails bool `json:"validateEmails"`
	ValidatePhones bool `json:"validatePhones"`
	MaxRows        int  `json:"maxRows"`
	BatchSize      int  `json:"batchSize"`
}

func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		SkipDuplicates: true,
		UpdateExisting: false,
		ValidateEmails: true,
		ValidatePhones: true,
		MaxRows:        DefaultMaxRows,
		BatchSize:      DefaultBatchSize,
	}
}

// Normalize aplica defaults e limites em MaxRows/BatchSize.
func (o ImportOptions) Normalize() ImportOptions {
	if o.MaxRows <= 0 {
		o.MaxRows = DefaultMaxRows
	}
	if o.MaxRows > MaxAllowedRows {
		o.MaxRows = MaxAllowedRows
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.BatchSize > MaxBatchSize {
		o.BatchSize = MaxBatchSize
	}
	return o
}
