package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seremi5/expense-management/internal/export"
	repo "github.com/seremi5/expense-management/internal/repository"
)

var exportFlags struct {
	dbPath string
	out    string
	limit  int
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export local extraction history as an XLSX review report",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.dbPath, "db", ".docextract.db", "Local history database path")
	f.StringVarP(&exportFlags.out, "output", "o", "extractions.xlsx", "Output workbook path")
	f.IntVar(&exportFlags.limit, "limit", 500, "Maximum number of records to export")
}

func runExport(cmd *cobra.Command, _ []string) error {
	logger := newLogger(false)
	ctx := cmd.Context()

	db, err := repo.OpenLocal(exportFlags.dbPath, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	records := repo.NewLocalRecordRepository(db, logger)
	if err := records.Init(ctx); err != nil {
		return err
	}

	svc := export.NewService(records, logger)
	data, err := svc.ExportRecordsXLSX(ctx, exportFlags.limit)
	if err != nil {
		return err
	}
	if err := os.WriteFile(exportFlags.out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", exportFlags.out, len(data))
	return nil
}
