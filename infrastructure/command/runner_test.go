package command

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func skipIfNoShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH")
	}
}

func TestExecCommandRunner_Run(t *testing.T) {
	skipIfNoShell(t)
	r := &ExecCommandRunner{}

	if err := r.Run(context.Background(), "sh", "-c", "exit 0"); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	err := r.Run(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	if err == nil {
		t.Fatal("Run() expected error, got nil")
	}

	var cmdErr *Error
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Run() error %T is not a *command.Error", err)
	}
	if cmdErr.Stderr != "boom" {
		t.Errorf("Stderr = %q, want %q", cmdErr.Stderr, "boom")
	}
	if !strings.HasPrefix(cmdErr.CommandLine(), "sh -c") {
		t.Errorf("CommandLine() = %q", cmdErr.CommandLine())
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Errorf("Run() error does not carry exit code 3: %v", err)
	}
}

func TestExecCommandRunner_RunTimeout(t *testing.T) {
	skipIfNoShell(t)
	r := &ExecCommandRunner{}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Run(ctx, "sh", "-c", "sleep 5")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want DeadlineExceeded", err)
	}
}

func TestExecCommandRunner_Output(t *testing.T) {
	skipIfNoShell(t)
	r := &ExecCommandRunner{}

	out, err := r.Output(context.Background(), "sh", "-c", "printf hello")
	if err != nil {
		t.Fatalf("Output() unexpected error: %v", err)
	}
	if string(out) != "hello" {
		t.Errorf("Output() = %q, want %q", out, "hello")
	}
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{max: 4}
	b.Write([]byte("abc"))
	b.Write([]byte("defg"))

	if got := b.String(); got != "defg" {
		t.Errorf("String() = %q, want %q", got, "defg")
	}
}
