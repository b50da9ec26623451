package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

const validSnapshot = `{
	"tabs": {
		"t1": {"id": "t1", "title": "alpha", "content": "hi", "config": {"closable": true, "reorderable": true, "persist": true, "max_tabs": 10, "max_content_size": 1000}}
	},
	"order": ["t1"]
}`

func TestCLIValidSnapshot(t *testing.T) {
	path := writeSnapshot(t, validSnapshot)
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-snapshot", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "ok (1 tabs)") {
		t.Fatalf("unexpected stdout: %s", stdout.String())
	}
}

func TestCLIMissingFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := cli(nil, &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}

func TestCLIUnreadableFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-snapshot", filepath.Join(t.TempDir(), "missing.json")}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}

func TestCLIRejectsMalformedJSON(t *testing.T) {
	path := writeSnapshot(t, "{not json")
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-snapshot", path}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
}

func TestCLIDetectsIntegrityProblems(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "dangling order entry",
			payload: `{"tabs": {}, "order": ["ghost"]}`,
			want:    "has no tab record",
		},
		{
			name:    "duplicate order entry",
			payload: `{"tabs": {"t1": {"id": "t1", "title": "a"}}, "order": ["t1", "t1"]}`,
			want:    "duplicated",
		},
		{
			name:    "tab missing from order",
			payload: `{"tabs": {"t1": {"id": "t1", "title": "a"}}, "order": []}`,
			want:    "missing from order",
		},
		{
			name:    "empty title",
			payload: `{"tabs": {"t1": {"id": "t1", "title": ""}}, "order": ["t1"]}`,
			want:    "empty title",
		},
		{
			name:    "mismatched id",
			payload: `{"tabs": {"t1": {"id": "other", "title": "a"}}, "order": ["t1"]}`,
			want:    "mismatched id",
		},
		{
			name:    "content over limit",
			payload: `{"tabs": {"t1": {"id": "t1", "title": "a", "content": "abcdef", "config": {"max_content_size": 3}}}, "order": ["t1"]}`,
			want:    "exceeds limit",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSnapshot(t, tc.payload)
			var stdout, stderr bytes.Buffer
			if code := cli([]string{"-snapshot", path}, &stdout, &stderr); code != 1 {
				t.Fatalf("expected exit 1, got %d", code)
			}
			if !strings.Contains(stderr.String(), tc.want) {
				t.Fatalf("expected %q in stderr, got %s", tc.want, stderr.String())
			}
		})
	}
}

func TestCLIPersistedFlag(t *testing.T) {
	payload := `{"tabs": {"t1": {"id": "t1", "title": "a", "config": {"persist": false}}}, "order": ["t1"]}`
	path := writeSnapshot(t, payload)
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-snapshot", path, "-persisted"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "lacks the persist flag") {
		t.Fatalf("unexpected stderr: %s", stderr.String())
	}
}
