package iocontext

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	ctx := context.Background()
	if StdoutOrDefault(ctx, os.Stdout) != os.Stdout {
		t.Error("stdout should fall back to the default")
	}
	if StderrOrDefault(ctx, os.Stderr) != os.Stderr {
		t.Error("stderr should fall back to the default")
	}
	if StdinOrDefault(ctx, os.Stdin) != os.Stdin {
		t.Error("stdin should fall back to the default")
	}
}

func TestWithIOAndStdinCompose(t *testing.T) {
	var stdout, stderr bytes.Buffer
	stdin := strings.NewReader("y\n")

	ctx := WithStdin(context.Background(), stdin)
	ctx = WithIO(ctx, &stdout, &stderr)

	if StdoutOrDefault(ctx, os.Stdout) != &stdout || StderrOrDefault(ctx, os.Stderr) != &stderr {
		t.Error("writers not returned from context")
	}
	if StdinOrDefault(ctx, os.Stdin) != stdin {
		t.Error("WithIO should keep the stdin set before it")
	}

	other := strings.NewReader("n\n")
	inner := WithStdin(ctx, other)
	if StdinOrDefault(inner, os.Stdin) != other || StdoutOrDefault(inner, os.Stdout) != &stdout {
		t.Error("WithStdin should override stdin only")
	}
	if StdinOrDefault(ctx, os.Stdin) != stdin {
		t.Error("the parent context must not change")
	}
}

func TestWithIONilWriterFallsBack(t *testing.T) {
	ctx := WithIO(context.Background(), nil, nil)
	if StdoutOrDefault(ctx, os.Stdout) != os.Stdout {
		t.Error("nil writer should fall back to the default")
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("buffers are never terminals")
	}
	if IsTerminal(nil) {
		t.Error("nil is not a terminal")
	}
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if IsTerminal(f) {
		t.Error("regular files are not terminals")
	}
}
