package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func forcedHeadless() *HeadlessManager {
	hm := NewHeadlessManager()
	hm.ForceHeadless(true)
	return hm
}

func TestHeadlessForceOverride(t *testing.T) {
	t.Parallel()

	hm := NewHeadlessManager()
	hm.ForceHeadless(true)
	if !hm.IsHeadless() {
		t.Error("forced headless should report headless")
	}
	hm.ForceHeadless(false)
	if hm.IsHeadless() {
		t.Error("forced interactive should report interactive")
	}
}

func TestHuhPrompterHeadlessInputUsesDefault(t *testing.T) {
	t.Parallel()

	p := NewHuhPrompter(forcedHeadless())
	got, err := p.Input("Data directory", "/srv/data")
	if err != nil {
		t.Fatalf("Input() error: %v", err)
	}
	if got != "/srv/data" {
		t.Errorf("Input(): got %q, want default", got)
	}
}

func TestHuhPrompterHeadlessInputWithoutDefaultFails(t *testing.T) {
	t.Parallel()

	p := NewHuhPrompter(forcedHeadless())
	_, err := p.Input("Data directory", "")
	if !errors.Is(err, ErrHeadlessNoDefault) {
		t.Fatalf("Input() error: got %v, want ErrHeadlessNoDefault", err)
	}
}

func TestHuhPrompterHeadlessConfirmDeclines(t *testing.T) {
	t.Parallel()

	p := NewHuhPrompter(forcedHeadless())
	ok, err := p.Confirm("Integrate now?")
	if err != nil {
		t.Fatalf("Confirm() error: %v", err)
	}
	if ok {
		t.Error("headless confirm must decline, never imply consent")
	}
}

func TestHuhPrompterHeadlessTokenFails(t *testing.T) {
	t.Parallel()

	p := NewHuhPrompter(forcedHeadless())
	if _, err := p.Token("Type yes"); !errors.Is(err, ErrHeadlessNoDefault) {
		t.Fatalf("Token() error: got %v, want ErrHeadlessNoDefault", err)
	}
}

func TestStepHeadlessReportsOutcome(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Step(&buf, forcedHeadless(), "Building image", func() error { return nil })
	if err != nil {
		t.Fatalf("Step() error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Building image ...") || !strings.Contains(out, "done") {
		t.Errorf("headless step output missing markers: %q", out)
	}
}

func TestStepHeadlessPropagatesError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	wantErr := errors.New("build failed")
	err := Step(&buf, forcedHeadless(), "Building image", func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("Step() error: got %v, want %v", err, wantErr)
	}
	if !strings.Contains(buf.String(), "failed") {
		t.Errorf("failure not reported: %q", buf.String())
	}
}

func TestReportStepPassesResultThrough(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := reportStep(&buf, "Building image", nil); err != nil {
		t.Fatalf("reportStep(nil) error: %v", err)
	}
	if !strings.Contains(buf.String(), "Building image") {
		t.Errorf("success line missing: %q", buf.String())
	}

	buf.Reset()
	wantErr := errors.New("build failed")
	if err := reportStep(&buf, "Building image", wantErr); !errors.Is(err, wantErr) {
		t.Fatalf("reportStep must return the step's own error, got %v", err)
	}
	if !strings.Contains(buf.String(), "build failed") {
		t.Errorf("failure line missing: %q", buf.String())
	}
}

func TestMarkdownFallsBackGracefully(t *testing.T) {
	t.Parallel()

	out := Markdown("# Next steps\n\n- run `memdock status`\n")
	if !strings.Contains(out, "Next steps") {
		t.Errorf("rendered markdown lost content: %q", out)
	}
}
