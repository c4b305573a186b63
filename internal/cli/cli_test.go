package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bastiangx/wordfix/pkg/correct"
	"github.com/bastiangx/wordfix/pkg/report"
)

func newEngine(t *testing.T) *correct.Engine {
	t.Helper()
	e, err := correct.NewEngine([]string{"hello", "world", "halo"})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestInputHandler(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("helo\n\n  zzzzz  \nwrld")
	h := NewInputHandler(newEngine(t), 2, 32, in, &out)
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	got := out.String()
	for _, want := range []string{"helo -> ", "hello", "zzzzz ", "(unchanged)", "wrld -> ", "world", " 1. hello"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestInputHandlerRejectsLongWords(t *testing.T) {
	var out bytes.Buffer
	h := NewInputHandler(newEngine(t), 0, 4, strings.NewReader("helooo\n"), &out)
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("long word produced output: %q", out.String())
	}
}

func TestRunBatch(t *testing.T) {
	store, err := report.NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}
	ctx := context.Background()

	var out bytes.Buffer
	in := strings.NewReader("helo\nzzzzz\n\nwrld\n")
	if err := RunBatch(ctx, newEngine(t), in, &out, store, "run-1"); err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	want := "File_Error Corrected\nhelo hello\nzzzzz zzzzz\nwrld world\n"
	if out.String() != want {
		t.Errorf("report = %q, want %q", out.String(), want)
	}

	var printed bytes.Buffer
	if err := PrintReport(ctx, store, "run-1", &printed); err != nil {
		t.Fatalf("PrintReport: %v", err)
	}
	if printed.String() != want {
		t.Errorf("stored report = %q, want %q", printed.String(), want)
	}

	if err := PrintReport(ctx, store, "nope", &printed); !errors.Is(err, report.ErrNotFound) {
		t.Errorf("PrintReport(missing) err = %v, want ErrNotFound", err)
	}
}

func TestRunBatchRequiresStore(t *testing.T) {
	var out bytes.Buffer
	err := RunBatch(context.Background(), newEngine(t), strings.NewReader("helo\n"), &out, nil, "run-1")
	if err == nil {
		t.Error("expected error when saving without a store")
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be written on error, got %q", out.String())
	}
	if err := PrintReport(context.Background(), nil, "run-1", &out); err == nil {
		t.Error("expected error when printing without a store")
	}
}
