package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/enso-app/enso/internal/models"
)

type fakeSource struct {
	records []models.RawRecord
}

func (f *fakeSource) GetItems() ([]models.RawRecord, error) {
	return f.records, nil
}

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPrefersStore(t *testing.T) {
	sample := writeSample(t, `[{"id":"sample-1","title":"Sample"}]`)
	source := &fakeSource{records: []models.RawRecord{{ID: "store-1", Title: "Stored"}}}

	p := NewProvider(source, sample)
	if err := p.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	records := p.Records()
	if len(records) != 1 || records[0].ID != "store-1" {
		t.Errorf("Records() = %+v, expected the stored dataset", records)
	}
}

func TestLoadFallsBackToSample(t *testing.T) {
	sample := writeSample(t, `[{"id":"sample-1","title":"Sample"},{"id":"sample-2","title":"Other"}]`)

	p := NewProvider(&fakeSource{}, sample)
	if err := p.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	records := p.Records()
	if len(records) != 2 || records[0].ID != "sample-1" {
		t.Errorf("Records() = %+v, expected the sample dataset", records)
	}
}

func TestLoadMissingSampleYieldsEmpty(t *testing.T) {
	p := NewProvider(&fakeSource{}, filepath.Join(t.TempDir(), "missing.json"))
	if err := p.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(p.Records()) != 0 {
		t.Errorf("Records() = %+v, expected empty", p.Records())
	}
	if p.Identity() != "empty:0" {
		t.Errorf("Identity() = %q, expected empty:0", p.Identity())
	}
}

func TestIdentityChangesWithDataset(t *testing.T) {
	sample := writeSample(t, `[]`)
	source := &fakeSource{records: []models.RawRecord{{ID: "a"}, {ID: "b"}}}

	p := NewProvider(source, sample)
	if err := p.Load(); err != nil {
		t.Fatal(err)
	}
	before := p.Identity()

	source.records = []models.RawRecord{{ID: "c"}, {ID: "d"}}
	if err := p.Load(); err != nil {
		t.Fatal(err)
	}
	after := p.Identity()

	if before == after {
		t.Errorf("identity unchanged across a replaced dataset: %q", before)
	}
}

func TestIdentityStableForSameDataset(t *testing.T) {
	source := &fakeSource{records: []models.RawRecord{{ID: "a"}, {ID: "b"}}}
	p := NewProvider(source, "")

	if err := p.Load(); err != nil {
		t.Fatal(err)
	}
	before := p.Identity()
	if err := p.Load(); err != nil {
		t.Fatal(err)
	}
	if before != p.Identity() {
		t.Errorf("identity flapped for an unchanged dataset: %q vs %q", before, p.Identity())
	}
}
