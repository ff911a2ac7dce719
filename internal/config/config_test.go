package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeTemp(t, "refsweep.yaml", `
corpus:
  dir: /data/corpus
  pattern: "pdf_*.txt"
fetch:
  timeout: 10s
  attempts: 3
thresholds:
  minWebChars: 250
verbose: true
`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Corpus.Dir != "/data/corpus" || f.Corpus.Pattern != "pdf_*.txt" {
		t.Errorf("corpus = %+v", f.Corpus)
	}
	if f.Fetch.Timeout.Std() != 10*time.Second || f.Fetch.Attempts != 3 {
		t.Errorf("fetch = %+v", f.Fetch)
	}
	if f.Thresholds.MinWebChars != 250 {
		t.Errorf("minWebChars = %d", f.Thresholds.MinWebChars)
	}
	if !f.Verbose {
		t.Error("verbose not set")
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeTemp(t, "refsweep.json",
		`{"corpus": {"dir": "/tmp/c"}, "dataset": {"csv": "ratios.csv"}}`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Corpus.Dir != "/tmp/c" || f.Dataset.CSV != "ratios.csv" {
		t.Errorf("got %+v", f)
	}
}

func TestLoadUnknownExtensionTriesBoth(t *testing.T) {
	path := writeTemp(t, "refsweep.conf", `{"verbose": true}`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !f.Verbose {
		t.Error("verbose not parsed from json-in-.conf")
	}
}

func TestOverlayKeepsExplicitValues(t *testing.T) {
	var f File
	f.Corpus.Dir = "/explicit"
	f.Fetch.Attempts = 9

	Overlay(&f, Defaults())
	if f.Corpus.Dir != "/explicit" {
		t.Errorf("dir overwritten: %q", f.Corpus.Dir)
	}
	if f.Fetch.Attempts != 9 {
		t.Errorf("attempts overwritten: %d", f.Fetch.Attempts)
	}
	if f.Corpus.Pattern != "web_*.txt" {
		t.Errorf("pattern default missing: %q", f.Corpus.Pattern)
	}
	if f.Fetch.Timeout.Std() != 30*time.Second {
		t.Errorf("timeout default missing: %v", f.Fetch.Timeout)
	}
}
