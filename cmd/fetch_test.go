package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"testing"
	"time"
)

type mockArtifactService struct {
	zipData      []byte
	runID        int64
	lastWorkflow string
	lastName     string
	searches     int
	fetchErr     error
	searchErr    error
}

func (m *mockArtifactService) FetchArchive(_ context.Context, owner, repo string, runID int64, name string) ([]byte, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	m.lastName = name
	return m.zipData, nil
}

func (m *mockArtifactService) FindWorkflowRun(_ context.Context, owner, repo, workflowName, headSHA string) (int64, error) {
	if m.searchErr != nil {
		return 0, m.searchErr
	}
	m.searches++
	m.lastWorkflow = workflowName
	return m.runID, nil
}

func zipWithFiles(files map[string]string, t *testing.T) []byte {
	buf := new(bytes.Buffer)
	writer := zip.NewWriter(buf)
	for name, content := range files {
		f, err := writer.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFetchCmd(t *testing.T) {
	reportArchive := func(t *testing.T) []byte {
		return zipWithFiles(map[string]string{
			"coverage.xml": sampleCoverageXML,
			"pr_number":    "42\n",
		}, t)
	}

	t.Run("success", func(t *testing.T) {
		service := &mockArtifactService{zipData: reportArchive(t)}
		dir := t.TempDir()

		commandString := fmt.Sprintf("fetch --owner o --repo r --run-id 5 --dir %s", dir)
		output, err := Execute(commandString, CLIConfig{ArtifactService: service, APITimeout: time.Second})
		t.Log(output)
		if err != nil {
			t.Fatal(err)
		}

		if service.lastName != "report" {
			t.Fatalf("want artifact 'report', got %q", service.lastName)
		}
		if _, err := os.Stat(path.Join(dir, "coverage.xml")); err != nil {
			t.Fatal("coverage.xml not extracted:", err)
		}
		if _, err := os.Stat(path.Join(dir, "report.zip")); err != nil {
			t.Fatal("archive not saved:", err)
		}
		if !strings.Contains(output, "coverage.xml") {
			t.Fatal("'coverage.xml' not contained in", output)
		}
		if service.searches != 0 {
			t.Fatal("workflow run search should not happen with an explicit run ID")
		}
	})

	t.Run("search-when-run-id-missing", func(t *testing.T) {
		service := &mockArtifactService{zipData: reportArchive(t), runID: 11}
		dir := t.TempDir()

		commandString := fmt.Sprintf("fetch --owner o --repo r --dir %s", dir)
		_, err := Execute(commandString, CLIConfig{ArtifactService: service, APITimeout: time.Second})
		if err != nil {
			t.Fatal(err)
		}
		if service.searches != 1 {
			t.Fatalf("want 1 workflow run search, got %d", service.searches)
		}
		if service.lastWorkflow != "Build" {
			t.Fatalf("want workflow 'Build', got %q", service.lastWorkflow)
		}
	})

	t.Run("missing-coordinates", func(t *testing.T) {
		t.Setenv("GITHUB_REPOSITORY", "")
		_, err := Execute("fetch --run-id 5", CLIConfig{ArtifactService: &mockArtifactService{}, APITimeout: time.Second})
		if !errors.Is(err, ErrorUserInput) {
			t.Fatalf("want %v got %v", ErrorUserInput, err)
		}
	})

	t.Run("api-failure", func(t *testing.T) {
		service := &mockArtifactService{fetchErr: errors.New("artifact not found")}

		commandString := fmt.Sprintf("fetch --owner o --repo r --run-id 5 --dir %s", t.TempDir())
		_, err := Execute(commandString, CLIConfig{ArtifactService: service, APITimeout: time.Second})
		if !errors.Is(err, ErrorAPI) {
			t.Fatalf("want %v got %v", ErrorAPI, err)
		}
	})

	t.Run("bad-archive", func(t *testing.T) {
		service := &mockArtifactService{zipData: []byte("definitely not a zip")}

		commandString := fmt.Sprintf("fetch --owner o --repo r --run-id 5 --dir %s", t.TempDir())
		_, err := Execute(commandString, CLIConfig{ArtifactService: service, APITimeout: time.Second})
		if !errors.Is(err, ErrorEncoding) {
			t.Fatalf("want %v got %v", ErrorEncoding, err)
		}
	})
}
