// Command vocab-import loads HSK vocabulary from a CSV or Excel file into
// the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/example/hskvocab/internal/config"
	"github.com/example/hskvocab/internal/database"
	"github.com/example/hskvocab/internal/excel"
)

func main() {
	sheet := flag.String("sheet", "", "sheet to import from an .xlsx file (first sheet when empty)")
	level := flag.Int("level", 0, "HSK level for rows without one (0 skips them)")
	verbose := flag.Bool("v", false, "print every skipped row")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <file.csv|file.xlsx>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), flag.Arg(0), *sheet, *level, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path, sheet string, level int, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBType, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := excel.ImportVocabulary(ctx, database.NewVocabularyRepository(db), excel.ImportConfig{
		FilePath:     path,
		SheetName:    sheet,
		DefaultLevel: level,
	})
	if res != nil {
		fmt.Printf("Processed %d rows: %d inserted, %d skipped\n", res.TotalProcessed, res.Created, res.Skipped)
		if verbose {
			for _, e := range res.Errors {
				fmt.Println("  " + e)
			}
		}
	}
	return err
}
