package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/noah-isme/absensi-karyawan/internal/repository"
	"github.com/noah-isme/absensi-karyawan/pkg/config"
	"github.com/noah-isme/absensi-karyawan/pkg/database"
	"github.com/noah-isme/absensi-karyawan/pkg/logger"
	"github.com/noah-isme/absensi-karyawan/pkg/sheets"
)

// backend_compare summarizes one month from the spreadsheet and from the
// postgres row store and reports every employee whose totals differ. Used
// while moving a workbook into postgres.
func main() {
	var (
		year    int
		month   int
		timeout time.Duration
	)
	now := time.Now()
	flag.IntVar(&year, "year", now.Year(), "Year to compare")
	flag.IntVar(&month, "month", int(now.Month()), "Month to compare (1-12)")
	flag.DurationVar(&timeout, "timeout", time.Minute, "Overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		loc = time.FixedZone("UTC+7", 7*60*60)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer db.Close()

	spreadsheet := sheets.NewClient(sheets.Config{
		BaseURL:   cfg.Sheets.URL,
		Timeout:   cfg.Sheets.Timeout,
		RateLimit: cfg.Sheets.RateLimit,
		RateBurst: cfg.Sheets.RateBurst,
	}, nil, nil, logr)
	postgres := repository.NewPostgresRowStore(db, cfg.Backend.EmployeeSheet)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sheetSide, err := summarize(ctx, spreadsheet, cfg.Backend, loc, year, time.Month(month))
	if err != nil {
		log.Fatalf("sheets backend: %v", err)
	}
	pgSide, err := summarize(ctx, postgres, cfg.Backend, loc, year, time.Month(month))
	if err != nil {
		log.Fatalf("postgres backend: %v", err)
	}

	diffs := compareSummaries(sheetSide, pgSide)
	printReport(os.Stdout, year, month, len(sheetSide), len(pgSide), diffs)
	if len(diffs) > 0 {
		os.Exit(1)
	}
}
