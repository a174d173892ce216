package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirStore_ListCompanies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "GOOG.json", `{"periods":[]}`)
	writeFile(t, dir, "PYPL.csv", "date\n")
	writeFile(t, dir, "AAPL.html", "<table></table>")
	writeFile(t, dir, "GOOG_forecast.json", "{}")
	writeFile(t, dir, "notes.txt", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "MSFT.json"), 0755); err != nil {
		t.Fatal(err)
	}

	s := NewDirStore(dir, "")
	got, err := s.ListCompanies(context.Background())
	if err != nil {
		t.Fatalf("ListCompanies: %v", err)
	}
	want := []string{"AAPL", "GOOG", "PYPL"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListCompanies = %v, want %v", got, want)
	}
}

func TestDirStore_ListCompaniesMissingDir(t *testing.T) {
	s := &DirStore{inputDir: filepath.Join(t.TempDir(), "missing")}
	if _, err := s.ListCompanies(context.Background()); err == nil {
		t.Error("expected an error for a missing input directory")
	}
}

func TestDirStore_LoadHistory(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	if err := EncodeTableCSV(&buf, sampleHistory("GOOG")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "GOOG.csv", buf.String())
	writeFile(t, dir, "PYPL.hjson", `{periods: [{date: "2023-12-31", items: {Cash: 3}}]}`)

	s := NewDirStore(dir, "")
	ctx := context.Background()

	goog, err := s.LoadHistory(ctx, "GOOG")
	if err != nil {
		t.Fatalf("LoadHistory(GOOG): %v", err)
	}
	if goog.Ticker != "GOOG" || goog.Len() != 3 {
		t.Errorf("GOOG: ticker %q, %d periods", goog.Ticker, goog.Len())
	}

	pypl, err := s.LoadHistory(ctx, "PYPL")
	if err != nil {
		t.Fatalf("LoadHistory(PYPL): %v", err)
	}
	if pypl.Ticker != "PYPL" || pypl.Len() != 1 {
		t.Errorf("PYPL: ticker %q, %d periods", pypl.Ticker, pypl.Len())
	}

	if _, err := s.LoadHistory(ctx, "NONE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadHistory(NONE) error = %v, want ErrNotFound", err)
	}
}

func TestDirStore_TickerCase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "goog.json", `{"periods":[{"date":"2023-12-31","items":{"Total Revenue":1}}]}`)
	writeFile(t, dir, "Pypl.CSV", "date,Total Revenue\n2023-12-31,2\n")
	writeFile(t, dir, "goog_forecast.json", "{}")
	s := NewDirStore(dir, "")
	ctx := context.Background()

	listed, err := s.ListCompanies(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"GOOG", "PYPL"}; !reflect.DeepEqual(listed, want) {
		t.Errorf("ListCompanies = %v, want %v", listed, want)
	}
	for _, ticker := range append(listed, "goog", "pypl") {
		tbl, err := s.LoadHistory(ctx, ticker)
		if err != nil {
			t.Errorf("LoadHistory(%s): %v", ticker, err)
			continue
		}
		if tbl.Len() != 1 {
			t.Errorf("LoadHistory(%s) has %d periods", ticker, tbl.Len())
		}
	}

	rec := sampleRecord(t, "GOOG")
	if err := s.SaveForecast(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadForecast(ctx, "goog"); err != nil {
		t.Errorf("LoadForecast(goog): %v", err)
	}
}

func TestDirStore_SaveAndLoadForecast(t *testing.T) {
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "out")
	s := NewDirStore(in, out)
	ctx := context.Background()
	rec := sampleRecord(t, "GOOG")

	if err := s.SaveForecast(ctx, rec); err != nil {
		t.Fatalf("SaveForecast: %v", err)
	}
	for _, name := range []string{"GOOG_forecast.json", "GOOG_forecast.csv"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	got, err := s.LoadForecast(ctx, "GOOG")
	if err != nil {
		t.Fatalf("LoadForecast: %v", err)
	}
	if got.RunID != rec.RunID || len(got.Table.Rows) != len(rec.Table.Rows) {
		t.Errorf("loaded run %s with %d rows", got.RunID, len(got.Table.Rows))
	}

	if _, err := s.LoadForecast(ctx, "PYPL"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadForecast(PYPL) error = %v, want ErrNotFound", err)
	}

	// Forecast outputs in the input directory are not companies.
	if err := NewDirStore(in, in).SaveForecast(ctx, rec); err != nil {
		t.Fatal(err)
	}
	listed, err := NewDirStore(in, "").ListCompanies(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 0 {
		t.Errorf("ListCompanies = %v, want none", listed)
	}
}
