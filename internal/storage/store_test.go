package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/sim"
)

func testResult(t *testing.T) *sim.Result {
	t.Helper()
	s := sim.New(cardio.New(cardio.DefaultParams()), nil)
	result, err := s.Run(context.Background(), sim.Config{
		Dt:          cardio.DefaultStepSize,
		Duration:    0.01,
		Compression: 1,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	result.Metrics["mean_arterial_pressure"] = 93.5
	return result
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	result := testResult(t)
	runID, err := st.Save(RunMetadata{Name: "supine", Dt: 0.001, Duration: 0.01, Baroreflex: true}, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "supine" || !meta.Baroreflex {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Samples != 10 {
		t.Errorf("expected 10 samples, got %d", meta.Samples)
	}
	if meta.Metrics["mean_arterial_pressure"] != 93.5 {
		t.Errorf("expected MAP 93.5, got %f", meta.Metrics["mean_arterial_pressure"])
	}

	table, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if table.Len() != 10 {
		t.Errorf("expected 10 rows, got %d", table.Len())
	}
	if len(table.Names) != len(result.Series.Names()) {
		t.Errorf("expected %d series, got %d", len(result.Series.Names()), len(table.Names))
	}
	lv, err := table.Column("pressure.left_ventricle")
	if err != nil {
		t.Fatalf("column: %v", err)
	}
	if diff := lv[9] - result.Series.Pressure[cardio.LeftVentricle][9]; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("LV pressure not preserved, off by %g", diff)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	result := testResult(t)
	for _, name := range []string{"first", "second"} {
		if _, err := st.Save(RunMetadata{Name: name}, result); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Name != "first" || runs[1].Name != "second" {
		t.Errorf("expected runs in save order, got %s %s", runs[0].Name, runs[1].Name)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected no runs, got %v %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Name: "test"}, testResult(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(filepath.Join(runDir, "series.csv")); os.IsNotExist(err) {
		t.Error("series.csv not created")
	}
}

func TestTableSelect(t *testing.T) {
	table := &Table{
		Names:   []string{"time", "heart_rate"},
		Columns: [][]float64{{0, 1}, {70, 71}},
	}
	sel, err := table.Select("heart_rate")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(sel.Names) != 1 || sel.Columns[0][1] != 71 {
		t.Errorf("unexpected selection %+v", sel)
	}
	if _, err := table.Select("volume.nowhere"); err == nil {
		t.Error("expected error for unknown series")
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	table := &Table{
		Names:   []string{"time", "heart_rate"},
		Columns: [][]float64{{0, 1}, {70, 71}},
	}
	meta := &RunMetadata{ID: "run_1", Name: "run"}

	jsonPath := filepath.Join(dir, "run.json")
	if err := ExportJSON(jsonPath, meta, table); err != nil {
		t.Fatalf("export json: %v", err)
	}
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Run.ID != "run_1" || len(data.Series["heart_rate"]) != 2 {
		t.Errorf("unexpected export %+v", data)
	}

	csvPath := filepath.Join(dir, "run.csv")
	if err := ExportCSV(csvPath, table); err != nil {
		t.Fatalf("export csv: %v", err)
	}
	raw, err = os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := "time,heart_rate\n0.000000,70.000000\n1.000000,71.000000\n"; string(raw) != want {
		t.Errorf("expected %q, got %q", want, raw)
	}

	ragged := &Table{Names: []string{"a", "b"}, Columns: [][]float64{{1, 2}, {1}}}
	if err := ExportCSV(filepath.Join(dir, "bad.csv"), ragged); err == nil {
		t.Error("expected error for ragged table")
	}
}
