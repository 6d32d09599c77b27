package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadDocumentsSingle(t *testing.T) {
	path := writeTemp(t, "scheme.json", `{
		"scheme_id": "pm-awas-yojana",
		"name": {"en": "PM Awas Yojana", "hi": "पीएम आवास योजना"}
	}`)

	docs, err := readDocuments(path)
	if err != nil {
		t.Fatalf("readDocuments: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	if docs[0].SchemeID != "pm-awas-yojana" {
		t.Errorf("SchemeID = %q", docs[0].SchemeID)
	}
}

func TestReadDocumentsArray(t *testing.T) {
	path := writeTemp(t, "schemes.json", `[
		{"scheme_id": "widow-pension"},
		{"scheme_id": "old-age-pension"}
	]`)

	docs, err := readDocuments(path)
	if err != nil {
		t.Fatalf("readDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if docs[1].SchemeID != "old-age-pension" {
		t.Errorf("second SchemeID = %q", docs[1].SchemeID)
	}
}

func TestReadDocumentsMalformed(t *testing.T) {
	path := writeTemp(t, "bad.json", `not json at all`)

	if _, err := readDocuments(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestCollectJSONFilesExpandsDirectories(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := collectJSONFiles([]string{dir})
	if err != nil {
		t.Fatalf("collectJSONFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %v, want the two .json files", files)
	}
}

func TestCollectJSONFilesMissingPath(t *testing.T) {
	if _, err := collectJSONFiles([]string{"/no/such/path.json"}); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
