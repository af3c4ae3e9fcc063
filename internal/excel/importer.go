package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/hskvocab/pkg/models"
	"github.com/xuri/excelize/v2"
)

// VocabularyWriter stores imported words. CreateAll stores all of them or
// none.
type VocabularyWriter interface {
	CreateAll(ctx context.Context, words []*models.Vocabulary) error
}

// VocabularyCounter reports how many words are stored
type VocabularyCounter interface {
	Count(ctx context.Context) (int, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath  string // Path to the Excel or CSV file
	SheetName string // Sheet to import, the first sheet when empty
	// Level used for rows without one. 0 skips such rows.
	DefaultLevel int
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// Header names accepted for every field, in order of preference
var (
	hanziHeaders   = []string{"hanzi", "word", "character"}
	pinyinHeaders  = []string{"pinyin"}
	meaningHeaders = []string{"meaning"}
	levelHeaders   = []string{"hsk_level", "level"}
)

// ImportVocabulary imports words from an Excel or CSV file. The first row
// is a header naming the columns. Valid rows are written in one batch, so a
// failed write leaves the store unchanged.
func ImportVocabulary(ctx context.Context, repo VocabularyWriter, config ImportConfig) (*ImportResult, error) {
	rows, err := readRows(config)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &ImportResult{}, nil
	}

	cols := newColumns(rows[0])
	if cols.hanzi < 0 {
		return nil, errors.New("missing hanzi column (expected one of hanzi, word, character)")
	}

	result := &ImportResult{Errors: make([]string, 0)}
	var words []*models.Vocabulary
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		result.TotalProcessed++
		rowNum := i + 2

		word, err := cols.parse(row, config.DefaultLevel)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		words = append(words, word)
	}

	if len(words) > 0 {
		if err := repo.CreateAll(ctx, words); err != nil {
			return result, fmt.Errorf("failed to store %d words: %w", len(words), err)
		}
	}
	result.Created = len(words)
	return result, nil
}

// SeedIfEmpty imports path when the vocabulary is empty and the file
// exists. It returns a nil result when nothing was done.
func SeedIfEmpty(ctx context.Context, repo interface {
	VocabularyWriter
	VocabularyCounter
}, path string) (*ImportResult, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat seed file: %w", err)
	}
	return ImportVocabulary(ctx, repo, ImportConfig{FilePath: path})
}

func readRows(config ImportConfig) ([][]string, error) {
	// Check the file extension
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		return readCSV(config.FilePath)
	}
	return readExcel(config)
}

// readExcel reads all rows of a sheet from an Excel file
func readExcel(config ImportConfig) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readCSV reads all records from a CSV file
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type columns struct {
	hanzi, pinyin, meaning, level int
}

func newColumns(header []string) columns {
	return columns{
		hanzi:   findColumn(header, hanziHeaders),
		pinyin:  findColumn(header, pinyinHeaders),
		meaning: findColumn(header, meaningHeaders),
		level:   findColumn(header, levelHeaders),
	}
}

func findColumn(header []string, names []string) int {
	for _, name := range names {
		for i, h := range header {
			// strip a UTF-8 BOM left by spreadsheet exports
			h = strings.TrimPrefix(h, "\ufeff")
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
	}
	return -1
}

func (c columns) parse(row []string, defaultLevel int) (*models.Vocabulary, error) {
	word := &models.Vocabulary{
		Hanzi:   cell(row, c.hanzi),
		Pinyin:  cell(row, c.pinyin),
		Meaning: cell(row, c.meaning),
	}
	if word.Hanzi == "" {
		return nil, errors.New("row without hanzi")
	}

	raw := cell(row, c.level)
	if raw == "" {
		if defaultLevel == 0 {
			return nil, errors.New("missing hsk_level")
		}
		word.Tier = defaultLevel
		return word, nil
	}

	level, err := ParseLevel(raw)
	if err != nil {
		return nil, err
	}
	word.Tier = level
	return word, nil
}

// ParseLevel accepts "3", "HSK3" or "HSK 3"
func ParseLevel(s string) (int, error) {
	v := strings.TrimSpace(strings.ToLower(s))
	v = strings.TrimSpace(strings.TrimPrefix(v, "hsk"))
	level, err := strconv.Atoi(v)
	if err != nil || !models.ValidTier(level) {
		return 0, fmt.Errorf("invalid hsk_level %q", s)
	}
	return level, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
