package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/estudos/internal/database"
	"github.com/example/estudos/pkg/models"
)

// ErrFormatoInvalido is returned for files that are neither xlsx nor csv
var ErrFormatoInvalido = errors.New("unsupported import format: use .xlsx or .csv")

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath         string // Path to the Excel or CSV file
	EditalNome       string // Edital default the rows are imported into
	DisciplinaColumn string
	TopicoColumn     string
	FrenteColumn     string // Optional flashcard front
	VersoColumn      string // Optional flashcard back
	SheetName        string // Empty means the first sheet
	StartRow         int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		DisciplinaColumn: "A",
		TopicoColumn:     "B",
		FrenteColumn:     "C",
		VersoColumn:      "D",
		StartRow:         2,
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	EditalID           string
	EditalCreated      bool
	TotalProcessed     int
	DisciplinasCreated int
	TopicosCreated     int
	FlashcardsCreated  int
	Skipped            int
	Errors             []string
}

// Importer loads edital templates into the catalogue
type Importer struct {
	editais *database.EditalRepository
}

// NewImporter creates an importer writing through repo
func NewImporter(repo *database.EditalRepository) *Importer {
	return &Importer{editais: repo}
}

// Import reads config.FilePath into the edital default named
// config.EditalNome, creating the edital when it doesn't exist yet.
// Rows that fail are reported in ImportResult.Errors.
func (i *Importer) Import(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	if strings.TrimSpace(config.EditalNome) == "" {
		return nil, fmt.Errorf("edital name is required")
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(config.FilePath)) {
	case ".xlsx":
		rows, err = readExcel(config)
	case ".csv":
		rows, err = readCSV(config.FilePath)
	default:
		return nil, ErrFormatoInvalido
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}

	edital, err := i.editais.GetDefaultByNome(ctx, config.EditalNome)
	if errors.Is(err, database.ErrNotFound) {
		edital = &models.EditalDefault{Nome: strings.TrimSpace(config.EditalNome)}
		if err := i.editais.CreateDefault(ctx, edital); err != nil {
			return nil, err
		}
		result.EditalCreated = true
	} else if err != nil {
		return nil, err
	}
	result.EditalID = edital.ID

	start := config.StartRow
	if start < 1 {
		start = 1
	}
	for idx, row := range rows {
		rowNum := idx + 1
		if rowNum < start {
			continue
		}
		if isBlank(row) {
			result.Skipped++
			continue
		}

		result.TotalProcessed++
		if err := i.processRow(ctx, edital.ID, row, config, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	return result, nil
}

func (i *Importer) processRow(ctx context.Context, editalID string, row []string, config ImportConfig, result *ImportResult) error {
	disciplina := cell(row, config.DisciplinaColumn)
	topico := cell(row, config.TopicoColumn)
	frente := cell(row, config.FrenteColumn)
	verso := cell(row, config.VersoColumn)

	if disciplina == "" {
		return fmt.Errorf("disciplina cannot be empty")
	}
	if topico == "" {
		return fmt.Errorf("topico cannot be empty")
	}
	if (frente == "") != (verso == "") {
		return fmt.Errorf("flashcard needs both front and back")
	}

	d, created, err := i.editais.GetOrCreateDisciplinaDefault(ctx, editalID, disciplina)
	if err != nil {
		return err
	}
	if created {
		result.DisciplinasCreated++
	}

	t, created, err := i.editais.GetOrCreateTopicoDefault(ctx, d.ID, topico)
	if err != nil {
		return err
	}
	if created {
		result.TopicosCreated++
	}

	if frente == "" {
		return nil
	}
	if err := i.editais.AddFlashcardDefault(ctx, &models.FlashcardDefault{
		TopicoDefaultID: t.ID,
		Frente:          frente,
		Verso:           verso,
	}); err != nil {
		return err
	}
	result.FlashcardsCreated++
	return nil
}

func readExcel(config ImportConfig) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
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

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(strings.TrimPrefix(row[idx], "\ufeff"))
	}
	return ""
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
