package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

var errNoEditor = errors.New("no editor configured: set $VISUAL or $EDITOR, or pass --prompt")

// editorCommand returns the user's editor command line.
func editorCommand() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	return nil
}

// editText opens initial in the user's editor and returns the saved text.
func editText(ctx context.Context, initial string, stdin io.Reader, stdout, stderr io.Writer) (string, error) {
	argv := editorCommand()
	if len(argv) == 0 {
		return "", errNoEditor
	}

	f, err := os.CreateTemp("", "adwizard-prompt-*.txt")
	if err != nil {
		return "", fmt.Errorf("create prompt file: %w", err)
	}
	path := f.Name()
	defer func() { _ = os.Remove(path) }()

	if _, err := f.WriteString(initial); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write prompt file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write prompt file: %w", err)
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run editor %s: %w", argv[0], err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
