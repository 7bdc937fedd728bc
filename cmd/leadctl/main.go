package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/bootstrap"
	"github.com/xavierca1/leadhub/internal/config"
	"github.com/xavierca1/leadhub/internal/infra/excel"
	"github.com/xavierca1/leadhub/internal/infra/logging"
	"github.com/xavierca1/leadhub/internal/infra/queue"
	"github.com/xavierca1/leadhub/internal/usecase"
)

var (
	verbose bool
	logger  *zap.Logger

	updateExisting   bool
	skipDuplicates   bool
	noValidateEmails bool
	noValidatePhones bool
	batchSize        int
	maxRows          int
)

var rootCmd = &cobra.Command{
	Use:           "leadctl",
	Short:         "LeadHub command line tools",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New("production", verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// importCmd roda o mesmo pipeline do upload HTTP contra o lead store configurado.
var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import leads from an Excel workbook",
	Long: `Reads the first worksheet of the workbook, maps and validates the columns,
detects duplicates and writes the leads in batches to the configured lead store
(LEAD_STORE=postgres|api). The result is printed as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var templateCmd = &cobra.Command{
	Use:   "template <out.xlsx>",
	Short: "Write the lead upload template workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeTemplateFile(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	defaults := usecase.DefaultImportOptions()
	importCmd.Flags().BoolVar(&updateExisting, "update-existing", defaults.UpdateExisting, "Update leads whose email already exists")
	importCmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", defaults.SkipDuplicates, "Skip duplicate rows instead of reporting them as errors")
	importCmd.Flags().BoolVar(&noValidateEmails, "no-validate-emails", false, "Disable email format validation")
	importCmd.Flags().BoolVar(&noValidatePhones, "no-validate-phones", false, "Disable phone format validation")
	importCmd.Flags().IntVar(&batchSize, "batch-size", defaults.BatchSize, "Leads written per batch (1-1000)")
	importCmd.Flags().IntVar(&maxRows, "max-rows", defaults.MaxRows, "Maximum data rows processed (1-10000)")

	rootCmd.AddCommand(importCmd, templateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func importOptions() usecase.ImportOptions {
	return usecase.ImportOptions{
		SkipDuplicates: skipDuplicates,
		UpdateExisting: updateExisting,
		ValidateEmails: !noValidateEmails,
		ValidatePhones: !noValidatePhones,
		MaxRows:        maxRows,
		BatchSize:      batchSize,
	}.Normalize()
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	stores, err := bootstrap.OpenLeadStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	historyStore, closeHistory, err := bootstrap.OpenHistory(cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	var events usecase.EventPublisher
	if cfg.EventsEnabled() {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		events = queue.NewProducer(rabbitMQ.Ch, nil)
	}

	uc := usecase.NewImportLeadsUseCase(stores.Import, historyStore, events, nil, cfg.ImportBatchDelay, logger)
	result, err := uc.Execute(ctx, usecase.ImportInput{
		FileName: filepath.Base(args[0]),
		FileSize: info.Size(),
		Content:  f,
		Options:  importOptions(),
	})
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), result)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTemplateFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := excel.WriteTemplate(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info("📄 template gerado", zap.String("path", path))
	return nil
}
