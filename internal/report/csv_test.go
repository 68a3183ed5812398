package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/fleetver/fleetver/internal/model"
)

// TestCSVWriter covers the file layout: header, field order, quoting.
func TestCSVWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and rows in fixed order", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.csv")
		rows := []model.ReportRow{
			{
				OrgDomain: "acme.com", OrgID: "o1", UserID: "u1", UserName: "Ann",
				UserEmail: "a@acme.com", DeviceID: "d1", DeviceIP: "1.2.3.4", AppVersion: "5.5.09.04",
			},
			{
				OrgDomain: "N/A", OrgID: "o2", UserID: "u2", UserName: "N/A",
				UserEmail: "N/A", DeviceID: "N/A", DeviceIP: "N/A", AppVersion: "5.5.09.04",
			},
		}

		n, err := NewCSVWriter(path).Write(rows)
		if err != nil {
			t.Fatalf("Write() error: %v", err)
		}
		if n <= 0 {
			t.Errorf("Write() reported %d bytes", n)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close() //nolint:errcheck // test cleanup

		records, err := csv.NewReader(f).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}

		if len(records) != 3 {
			t.Fatalf("got %d lines, want header + 2 rows", len(records))
		}
		if !reflect.DeepEqual(records[0], model.RowHeader()) {
			t.Errorf("header = %v, want %v", records[0], model.RowHeader())
		}
		if !reflect.DeepEqual(records[1], rows[0].Values()) {
			t.Errorf("row 1 = %v, want %v", records[1], rows[0].Values())
		}
	})

	t.Run("quotes embedded commas and newlines", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.csv")
		rows := []model.ReportRow{{
			OrgDomain: "acme.com", OrgID: "o1", UserID: "u1",
			UserName:  "Ann, the \"First\"\nof her name",
			UserEmail: "a@acme.com", DeviceID: "d1", DeviceIP: "1.2.3.4", AppVersion: "5.5",
		}}

		if _, err := NewCSVWriter(path).Write(rows); err != nil {
			t.Fatalf("Write() error: %v", err)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close() //nolint:errcheck // test cleanup

		records, err := csv.NewReader(f).ReadAll()
		if err != nil {
			t.Fatalf("output with embedded delimiters is not valid CSV: %v", err)
		}
		if got := records[1][3]; got != rows[0].UserName {
			t.Errorf("user_name did not survive round trip: %q", got)
		}
	})

	t.Run("overwrites an existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.csv")
		if err := os.WriteFile(path, []byte("stale content\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		rows := []model.ReportRow{{OrgID: "o1", AppVersion: "1.0"}}
		if _, err := NewCSVWriter(path).Write(rows); err != nil {
			t.Fatalf("Write() error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data[:10]) == "stale cont" {
			t.Error("existing file was not overwritten")
		}
	})

	t.Run("unwritable path returns an error", func(t *testing.T) {
		t.Parallel()

		w := NewCSVWriter(filepath.Join(t.TempDir(), "no", "such", "dir", "out.csv"))
		if _, err := w.Write([]model.ReportRow{{OrgID: "o1"}}); err == nil {
			t.Error("expected error for unwritable path")
		}
	})
}
