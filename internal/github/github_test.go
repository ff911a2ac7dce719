package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/refsweep/refsweep/internal/fetch"
	"github.com/refsweep/refsweep/internal/record"
)

func TestRawURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{
			in:   "https://github.com/user/repo/blob/main/pkg/file.go",
			want: "https://raw.githubusercontent.com/user/repo/main/pkg/file.go",
			ok:   true,
		},
		{
			in:   "https://github.com/user/repo/tree/master/docs",
			want: "https://raw.githubusercontent.com/user/repo/master/docs/README.md",
			ok:   true,
		},
		{
			in:   "https://github.com/user/repo",
			want: "https://raw.githubusercontent.com/user/repo/master/README.md",
			ok:   true,
		},
		{
			in:   "https://raw.githubusercontent.com/user/repo/main/x.txt",
			want: "https://raw.githubusercontent.com/user/repo/main/x.txt",
			ok:   true,
		},
		{in: "https://example.com/user/repo", ok: false},
	}
	for _, tc := range cases {
		got, ok := RawURL(tc.in)
		if ok != tc.ok {
			t.Fatalf("%s: expected ok=%v", tc.in, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestStripUI(t *testing.T) {
	body := "# Search code, repositories, users, issues, pull requests\n" +
		"junk junk\nCancel Create saved search\n" +
		"You signed in with another tab or window. Reload to refresh your session.\n" +
		"The actual issue discussion text.\n" +
		"[]()\n" +
		"(C) 2026 GitHub, Inc. Footer navigation Terms Privacy\n"
	got := StripUI(body)
	if strings.Contains(got, "Search code") || strings.Contains(got, "signed in") {
		t.Fatalf("chrome left behind: %q", got)
	}
	if strings.Contains(got, "GitHub, Inc") {
		t.Fatalf("footer left behind: %q", got)
	}
	if !strings.Contains(got, "The actual issue discussion text.") {
		t.Fatalf("content lost: %q", got)
	}
}

func TestLooksLikeUI(t *testing.T) {
	if !LooksLikeUI("some short body") {
		t.Fatalf("short body should look like UI")
	}
	if !LooksLikeUI("Search code, repositories " + strings.Repeat("x", 2000)) {
		t.Fatalf("search banner should look like UI")
	}
	if LooksLikeUI(strings.Repeat("real content line.\n", 100)) {
		t.Fatalf("long content should not look like UI")
	}
}

func TestFixRecord_ReplacesBodyFromRaw(t *testing.T) {
	raw := strings.Repeat("package main // real file contents\n", 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(raw))
	}))
	defer srv.Close()

	r := &Refetcher{Client: &fetch.Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second}}
	rec := record.Record{
		SourceURL: "https://github.com/user/repo/blob/main/main.go",
		FinalURL:  "https://github.com/user/repo/blob/main/main.go",
		Body:      "Search code, repositories",
	}

	// Point the raw fetch at the test server instead of the converted URL.
	changed, err := r.fixVia(context.Background(), &rec, srv.URL)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if !changed {
		t.Fatalf("expected record to change")
	}
	if !strings.Contains(rec.Body, "real file contents") {
		t.Fatalf("body not replaced: %q", rec.Body)
	}
}

func TestFixRecord_NonGitHubLeftAlone(t *testing.T) {
	r := &Refetcher{Client: &fetch.Client{MaxAttempts: 1}}
	rec := record.Record{FinalURL: "https://example.com/page", Body: "short"}
	changed, err := r.FixRecord(context.Background(), &rec)
	if err != nil || changed {
		t.Fatalf("non-github record must be untouched (changed=%v err=%v)", changed, err)
	}
}

func TestFixRecord_GoodBodyLeftAlone(t *testing.T) {
	r := &Refetcher{Client: &fetch.Client{MaxAttempts: 1}}
	rec := record.Record{
		FinalURL: "https://github.com/user/repo",
		Body:     strings.Repeat("already substantial content.\n", 100),
	}
	changed, err := r.FixRecord(context.Background(), &rec)
	if err != nil || changed {
		t.Fatalf("good record must be untouched (changed=%v err=%v)", changed, err)
	}
}

func TestFixFiles_WritesFixedRecord(t *testing.T) {
	raw := strings.Repeat("real readme prose for the repository.\n", 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(raw))
	}))
	defer srv.Close()

	dir := t.TempDir()
	rec := record.Record{
		SourceURL: srv.URL + "/user/repo",
		FinalURL:  srv.URL + "/user/repo",
		Body:      "Search code, repositories",
	}
	if err := rec.WriteFile(filepath.Join(dir, "web_repo.txt")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// The test server URL is not a github.com URL, so conversion is skipped
	// and the record is left alone: zero fixed, zero failed.
	r := &Refetcher{Client: &fetch.Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second}}
	fixed, failed := r.FixFiles(context.Background(), dir, []string{"web_repo.txt"})
	if fixed != 0 || failed != 0 {
		t.Fatalf("expected untouched batch, got fixed=%d failed=%d", fixed, failed)
	}
}
