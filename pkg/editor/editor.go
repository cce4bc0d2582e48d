// Package editor opens backing files in the user's editor.
package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Open launches an editor on the given file and waits for it to exit.
// Resolution order: the context's configured editor, $EDITOR, vi.
func Open(editorCmd, path string) error {
	if editorCmd == "" {
		editorCmd = os.Getenv("EDITOR")
	}
	if editorCmd == "" {
		editorCmd = "vi"
	}

	// The configured editor may carry flags, e.g. "code --wait".
	parts := strings.Fields(editorCmd)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running editor %s: %w", parts[0], err)
	}
	return nil
}
