package importer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dgamaster/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestService(t *testing.T, base string) (*Service, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := config.Default(base, filepath.Join(base, "out.xlsx"))
	service, err := NewService(cfg, zap.New(core))
	require.NoError(t, err)
	return service, logs
}

func TestServiceRun_EndToEndTwoPlants(t *testing.T) {
	base := t.TempDir()

	plantFolder(t, base, "Monterrey",
		indexSheet("Índice", [2]string{"TR-01", "Molino"}),
		transformerSheet("TR-01", "TR-01", "Molino",
			labRow("Lab Norte", "15/01/2023", "20/01/2023", "10"),
			labRow("Lab Norte", "01/06/2023", "05/06/2023", "11"),
			labRow("Lab Norte", "01/12/2022", "03/12/2022", "12"),
			referenceRow,
			zeroRow,
			labRow("Lab Norte", "01/01/2030", "", "99"),
		),
	)
	plantFolder(t, base, "Tepeaca",
		indexSheet("INDICE", [2]string{"Trafo Principal", "Subestación"}),
		transformerSheet("Principal", "Trafo Principal", "Subestación",
			labRow("Lab Sur", "", "15/03/2024", "20"),
			labRow("Lab Sur", "10/01/2024", "12/01/2024", "21"),
			labRow("Lab Sur", "pendiente", "", "22"),
			referenceRow,
			zeroRow,
		),
	)

	service, _ := newTestService(t, base)
	result, err := service.Run()
	require.NoError(t, err)

	assert.Equal(t, 2, result.PlantsProcessed)
	assert.Equal(t, 0, result.PlantsSkipped)
	assert.Equal(t, 2, result.SheetsAccepted)
	assert.Equal(t, 2, result.SheetsSkipped, "index sheets are noise")
	assert.Equal(t, 2, result.ReferenceRowsSkipped)
	require.Equal(t, 6, result.Datos.Len())

	assert.Equal(t, []string{"H2", "CH4", "C2H6", "C2H4", "C2H2", "CO", "CO2", "O2", "N2", "ppm"}, result.Datos.Schema)

	first := result.Datos.Records[0]
	assert.Equal(t, "Monterrey", first.Plant)
	assert.Equal(t, "TR-01", first.Transformer)
	assert.Equal(t, "Molino", first.Location)
	assert.Equal(t, "Lab Norte", first.Company)
	assert.Equal(t, "15-Jan-23", first.SampleDate.Display())
	assert.Equal(t, "20-Jan-23", first.ReportDate.Display())

	tepeaca := result.Datos.Records[3]
	assert.Equal(t, "Subestación", tepeaca.Location, "display form keeps accents")
	assert.Equal(t, "15-Mar-24", tepeaca.SampleDate.Display(), "sample date backfilled from report date")
	assert.Equal(t, "NA", result.Datos.Records[5].SampleDate.Display())
	assert.Equal(t, 1, result.Dates.SampleBackfilled)
	assert.Equal(t, 1, result.Dates.BothMissing)

	require.Equal(t, 2, result.Latest.Len())
	latestMonterrey := result.Latest.Records[0]
	assert.Equal(t, "Monterrey", latestMonterrey.Plant)
	assert.Equal(t, "01-Jun-23", latestMonterrey.SampleDate.Display())
	assert.Equal(t, "11", result.Latest.Gas(latestMonterrey, "H2"))

	latestTepeaca := result.Latest.Records[1]
	assert.Equal(t, "Tepeaca", latestTepeaca.Plant)
	assert.Equal(t, "15-Mar-24", latestTepeaca.SampleDate.Display())
	assert.Equal(t, "20", result.Latest.Gas(latestTepeaca, "H2"))
}

func TestServiceRun_IndexGateRejectsUnlistedSheet(t *testing.T) {
	base := t.TempDir()
	plantFolder(t, base, "Monterrey",
		indexSheet("Índice", [2]string{"TR-01", "Molino"}),
		transformerSheet("TR-01", "TR-01", "Molino", labRow("Lab", "15/01/2023", "", "10")),
		transformerSheet("TR-02", "TR-02", "Molino", labRow("Lab", "15/01/2023", "", "10")),
		transformerSheet("TR-01 viejo", "TR-01", "Horno", labRow("Lab", "15/01/2023", "", "10")),
	)

	service, _ := newTestService(t, base)
	result, err := service.Run()
	require.NoError(t, err)

	require.Equal(t, 1, result.Datos.Len())
	assert.Equal(t, "TR-01", result.Datos.Records[0].Transformer)

	reasons := map[string]SkipReason{}
	for _, outcome := range result.Plants[0].Sheets {
		reasons[outcome.Sheet] = outcome.Reason
	}
	assert.Equal(t, ReasonNoise, reasons["Índice"])
	assert.Equal(t, ReasonNone, reasons["TR-01"])
	assert.Equal(t, ReasonNotInIndex, reasons["TR-02"])
	assert.Equal(t, ReasonNotInIndex, reasons["TR-01 viejo"])
}

func TestServiceRun_NoIndexSheetYieldsNoRows(t *testing.T) {
	base := t.TempDir()
	plantFolder(t, base, "Monterrey",
		transformerSheet("TR-01", "TR-01", "Molino", labRow("Lab", "15/01/2023", "", "10")),
	)

	service, logs := newTestService(t, base)
	result, err := service.Run()
	require.NoError(t, err)

	assert.Equal(t, 0, result.Datos.Len())
	assert.Equal(t, 0, result.Latest.Len())
	assert.Equal(t, 1, result.PlantsProcessed)
	assert.Equal(t, 1, logs.FilterMessage("workbook has no index sheet; no sheet can pass the index gate").Len())
}

func TestServiceRun_SkipsSheetsWithoutIdentityOrRows(t *testing.T) {
	base := t.TempDir()
	plantFolder(t, base, "Monterrey",
		indexSheet("Índice", [2]string{"TR-01", "Molino"}, [2]string{"TR-02", "Horno"}),
		transformerSheet("Plantilla TR", "TR-01", "Molino", labRow("Lab", "15/01/2023", "", "10")),
		transformerSheet("Sin ubicacion", "TR-01", "", labRow("Lab", "15/01/2023", "", "10")),
		transformerSheet("TR-02", "TR-02", "Horno", zeroRow),
	)

	service, _ := newTestService(t, base)
	result, err := service.Run()
	require.NoError(t, err)

	assert.Equal(t, 0, result.Datos.Len())
	assert.Nil(t, result.Datos.Schema)

	reasons := map[string]SkipReason{}
	for _, outcome := range result.Plants[0].Sheets {
		reasons[outcome.Sheet] = outcome.Reason
	}
	assert.Equal(t, ReasonNoise, reasons["Plantilla TR"])
	assert.Equal(t, ReasonMissingIdentity, reasons["Sin ubicacion"])
	assert.Equal(t, ReasonEmptyBlock, reasons["TR-02"])
}

func TestServiceRun_PlantWithoutWorkbookIsSkippedWithWarning(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "Vacia - Captura de datos"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "Vacia - Captura de datos", "notas.xlsx"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "Ignorada"), 0o755))
	plantFolder(t, base, "Monterrey",
		indexSheet("Índice", [2]string{"TR-01", "Molino"}),
		transformerSheet("TR-01", "TR-01", "Molino", labRow("Lab", "15/01/2023", "", "10")),
	)

	service, logs := newTestService(t, base)
	result, err := service.Run()
	require.NoError(t, err)

	require.Len(t, result.Plants, 2)
	assert.Equal(t, "Monterrey", result.Plants[0].Plant)
	assert.Equal(t, "Vacia", result.Plants[1].Plant)
	assert.True(t, result.Plants[1].Skipped)
	assert.Equal(t, 1, result.PlantsSkipped)
	assert.Equal(t, 1, result.Datos.Len())
	assert.Equal(t, 1, logs.FilterMessage("plant skipped: no transformer workbook").Len())
}

func TestServiceRun_UnreadablePlantFolderIsSkippedWithWarning(t *testing.T) {
	base := t.TempDir()
	plantFolder(t, base, "Monterrey",
		indexSheet("Índice", [2]string{"TR-01", "Molino"}),
		transformerSheet("TR-01", "TR-01", "Molino", labRow("Lab", "15/01/2023", "", "10")),
	)
	locked := plantFolder(t, base, "Tepeaca",
		indexSheet("Índice", [2]string{"TR-09", "Horno"}),
		transformerSheet("TR-09", "TR-09", "Horno", labRow("Lab", "15/03/2024", "", "20")),
	)

	original := readDir
	t.Cleanup(func() { readDir = original })
	readDir = func(name string) ([]os.DirEntry, error) {
		if name == locked {
			return nil, os.ErrPermission
		}
		return original(name)
	}

	service, logs := newTestService(t, base)
	result, err := service.Run()
	require.NoError(t, err)

	require.Len(t, result.Plants, 2)
	assert.Equal(t, "Tepeaca", result.Plants[1].Plant)
	assert.True(t, result.Plants[1].Skipped)
	assert.Contains(t, result.Plants[1].Warning, "read plant folder")
	assert.Equal(t, 1, result.PlantsSkipped)
	assert.Equal(t, 1, result.Datos.Len())
	assert.Equal(t, 1, logs.FilterMessage("plant skipped: folder unreadable").Len())
}

func TestServiceRun_ReportsHeaderMismatch(t *testing.T) {
	base := t.TempDir()
	other := transformerSheet("TR-02", "TR-02", "Horno", labRow("Lab", "15/01/2023", "", "10"))
	header := append([]string(nil), gasHeader...)
	header[4] = "Metano"
	other.rows[15] = stringsToAny(header)

	plantFolder(t, base, "Monterrey",
		indexSheet("Índice", [2]string{"TR-01", "Molino"}, [2]string{"TR-02", "Horno"}),
		transformerSheet("TR-01", "TR-01", "Molino", labRow("Lab", "15/01/2023", "", "10")),
		other,
	)

	service, logs := newTestService(t, base)
	result, err := service.Run()
	require.NoError(t, err)

	require.Len(t, result.SchemaMismatches, 1)
	assert.Equal(t, SchemaMismatch{Plant: "Monterrey", Sheet: "TR-02", Position: 5, Expected: "CH4", Got: "Metano"}, result.SchemaMismatches[0])
	assert.Equal(t, 2, result.Datos.Len(), "rows stay aligned to the canonical header")
	assert.Equal(t, 1, logs.FilterMessage("sheet header differs from canonical header").Len())
}

func TestServiceRun_ExcelSerialDates(t *testing.T) {
	base := t.TempDir()
	plantFolder(t, base, "Monterrey",
		indexSheet("Índice", [2]string{"TR-01", "Molino"}),
		transformerSheet("TR-01", "TR-01", "Molino",
			[]any{"Lab", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC), "10"},
		),
	)

	service, _ := newTestService(t, base)
	result, err := service.Run()
	require.NoError(t, err)

	require.Equal(t, 1, result.Datos.Len())
	assert.Equal(t, "15-Mar-24", result.Datos.Records[0].SampleDate.Display())
	assert.Equal(t, "20-Mar-24", result.Datos.Records[0].ReportDate.Display())
}

type failingOpener struct{}

func (failingOpener) open(string) (Workbook, error) {
	return nil, errors.New("locked by another process")
}

func TestServiceRunSources_UnreadableWorkbookIsSkipped(t *testing.T) {
	service, logs := newTestService(t, t.TempDir())
	service.WithOpener(failingOpener{}.open)

	result, err := service.RunSources([]PlantSource{{Plant: "Monterrey", Folder: "/x", Path: "/x/Transformadores.xlsm"}})
	require.NoError(t, err)

	assert.Equal(t, 1, result.PlantsSkipped)
	assert.Contains(t, result.Plants[0].Warning, "locked")
	assert.Equal(t, 1, logs.FilterMessage("plant skipped: workbook unreadable").Len())
}

func TestNewServiceRejectsNarrowBlock(t *testing.T) {
	cfg := config.Default("/base", "/out.xlsx")
	cfg.Layout.StartCol = "A"
	cfg.Layout.EndCol = "B"

	_, err := NewService(cfg, nil)
	require.Error(t, err)
}

func TestNewSchemaDropsPercentAndDedupesNames(t *testing.T) {
	s := newSchema([]string{"Col1", "Col2", "Col3", "H2", "%H2", "ppm", "ppm", "H2 %"})
	assert.Equal(t, []string{"H2", "ppm", "ppm (2)"}, s.names)
	assert.Equal(t, []int{3, 5, 6}, s.positions)
}
