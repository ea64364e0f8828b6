package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"testing"
	"time"
)

type mockCommentService struct {
	lastPR     int
	lastBody   string
	lastMarker string
	updates    int
	creates    int
	err        error
}

func (m *mockCommentService) Publish(_ context.Context, owner, repo string, prNumber int, body string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.creates++
	m.lastPR = prNumber
	m.lastBody = body
	return 1, nil
}

func (m *mockCommentService) PublishOrUpdate(_ context.Context, owner, repo string, prNumber int, marker, body string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.updates++
	m.lastPR = prNumber
	m.lastBody = body
	m.lastMarker = marker
	return 1, nil
}

func writeTempPRFile(content string, t *testing.T) string {
	filename := path.Join(t.TempDir(), "pr_number")
	if err := os.WriteFile(filename, []byte(content), 0o664); err != nil {
		t.Fatal(err)
	}
	return filename
}

func writeTempBody(t *testing.T) string {
	filename := path.Join(t.TempDir(), "report.md")
	if err := os.WriteFile(filename, []byte("# Test Coverage Report\nbody\n"), 0o664); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestCommentCmd(t *testing.T) {
	config := func(service CommentService) CLIConfig {
		return CLIConfig{CommentService: service, APITimeout: time.Second}
	}

	t.Run("pr-number-from-file", func(t *testing.T) {
		service := &mockCommentService{}
		prFilename := writeTempPRFile("42\n", t)

		commandString := fmt.Sprintf("comment --owner o --repo r --pr-file %s %s", prFilename, writeTempBody(t))
		output, err := Execute(commandString, config(service))
		t.Log(output)
		if err != nil {
			t.Fatal(err)
		}
		if service.lastPR != 42 {
			t.Fatalf("want pull request 42, got %d", service.lastPR)
		}
		if service.creates != 1 {
			t.Fatalf("want 1 create, got %d", service.creates)
		}
	})

	t.Run("pr-flag-overrides-file", func(t *testing.T) {
		service := &mockCommentService{}

		commandString := fmt.Sprintf("comment --owner o --repo r --pr 7 %s", writeTempBody(t))
		_, err := Execute(commandString, config(service))
		if err != nil {
			t.Fatal(err)
		}
		if service.lastPR != 7 {
			t.Fatalf("want pull request 7, got %d", service.lastPR)
		}
	})

	t.Run("update-mode", func(t *testing.T) {
		service := &mockCommentService{}
		prFilename := writeTempPRFile("42", t)

		commandString := fmt.Sprintf("comment --update --owner o --repo r --pr-file %s %s", prFilename, writeTempBody(t))
		_, err := Execute(commandString, config(service))
		if err != nil {
			t.Fatal(err)
		}
		if service.updates != 1 || service.creates != 0 {
			t.Fatalf("want a single update, got %d updates %d creates", service.updates, service.creates)
		}
		if service.lastMarker != DefaultCommentMarker {
			t.Fatalf("want marker %q, got %q", DefaultCommentMarker, service.lastMarker)
		}
	})

	t.Run("malformed-pr-file", func(t *testing.T) {
		service := &mockCommentService{}
		prFilename := writeTempPRFile("not-a-number", t)

		commandString := fmt.Sprintf("comment --owner o --repo r --pr-file %s %s", prFilename, writeTempBody(t))
		_, err := Execute(commandString, config(service))
		if !errors.Is(err, ErrorUserInput) {
			t.Fatalf("want %v got %v", ErrorUserInput, err)
		}
	})

	t.Run("missing-pr-file", func(t *testing.T) {
		service := &mockCommentService{}
		prFilename := path.Join(t.TempDir(), "pr_number")

		commandString := fmt.Sprintf("comment --owner o --repo r --pr-file %s %s", prFilename, writeTempBody(t))
		_, err := Execute(commandString, config(service))
		if !errors.Is(err, ErrorFileAccess) {
			t.Fatalf("want %v got %v", ErrorFileAccess, err)
		}
	})

	t.Run("api-failure", func(t *testing.T) {
		service := &mockCommentService{err: errors.New("403 Forbidden")}

		commandString := fmt.Sprintf("comment --owner o --repo r --pr 42 %s", writeTempBody(t))
		_, err := Execute(commandString, config(service))
		if !errors.Is(err, ErrorAPI) {
			t.Fatalf("want %v got %v", ErrorAPI, err)
		}
	})
}
