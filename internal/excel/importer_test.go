package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/estudos/internal/database"
)

func newImporter(t *testing.T) (*Importer, *database.EditalRepository) {
	t.Helper()
	db, err := database.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := database.NewEditalRepository(db)
	return NewImporter(repo), repo
}

func writeXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}

	path := filepath.Join(t.TempDir(), "edital.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportXLSX(t *testing.T) {
	imp, repo := newImporter(t)
	path := writeXLSX(t, [][]interface{}{
		{"Disciplina", "Tópico", "Frente", "Verso"},
		{"Português", "Crase", "Crase antes de masculino?", "Não, salvo exceções"},
		{"Português", "Concordância", "", ""},
		{"Direito Constitucional", "Direitos fundamentais", "", ""},
		{"", "Sem disciplina", "", ""},
		{"Português", "crase", "Crase com 'a qual'?", "Depende do verbo"},
	})

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.EditalNome = "TRF 1"

	result, err := imp.Import(context.Background(), cfg)
	require.NoError(t, err)

	assert.True(t, result.EditalCreated)
	assert.Equal(t, 5, result.TotalProcessed)
	assert.Equal(t, 2, result.DisciplinasCreated)
	assert.Equal(t, 3, result.TopicosCreated)
	assert.Equal(t, 2, result.FlashcardsCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 5")

	disciplinas, err := repo.ListDisciplinasDefault(context.Background(), result.EditalID)
	require.NoError(t, err)
	require.Len(t, disciplinas, 2)
	assert.Equal(t, "Português", disciplinas[0].Nome)
	assert.Equal(t, 0, disciplinas[0].Ordem)
	assert.Equal(t, 1, disciplinas[1].Ordem)
}

func TestImportCSVIntoExistingEdital(t *testing.T) {
	imp, _ := newImporter(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "edital.csv")
	require.NoError(t, os.WriteFile(path, []byte("disciplina,topico\nInformática,Redes\nInformática,Segurança\n"), 0644))

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.EditalNome = "INSS"

	first, err := imp.Import(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, first.EditalCreated)
	assert.Equal(t, 2, first.TopicosCreated)

	second, err := imp.Import(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, second.EditalCreated)
	assert.Equal(t, first.EditalID, second.EditalID)
	assert.Zero(t, second.TopicosCreated)
	assert.Empty(t, second.Errors)
}

func TestImportRejectsUnknownFormat(t *testing.T) {
	imp, repo := newImporter(t)

	cfg := DefaultImportConfig()
	cfg.FilePath = filepath.Join(t.TempDir(), "edital.pdf")
	cfg.EditalNome = "Receita"

	_, err := imp.Import(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrFormatoInvalido)

	editais, err := repo.ListDefaults(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, editais)
}

func TestImportRejectsHalfFlashcard(t *testing.T) {
	imp, _ := newImporter(t)
	path := writeXLSX(t, [][]interface{}{
		{"Disciplina", "Tópico", "Frente", "Verso"},
		{"Português", "Crase", "Só a frente", ""},
	})

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.EditalNome = "TRT"

	result, err := imp.Import(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Zero(t, result.FlashcardsCreated)
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 3, columnToIndex("d"))
	assert.Equal(t, 26, columnToIndex("AA"))
}

func TestCellStripsByteOrderMark(t *testing.T) {
	row := []string{"\ufeffDireito Penal ", "Crimes"}

	assert.Equal(t, "Direito Penal", cell(row, "A"))
	assert.Equal(t, "Crimes", cell(row, "B"))
	assert.Empty(t, cell(row, "C"))
	assert.Empty(t, cell(row, ""))
}
