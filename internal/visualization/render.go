package visualization

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrGraphvizMissing is returned when the Graphviz `dot` binary is not on PATH.
var ErrGraphvizMissing = errors.New("visualization: graphviz 'dot' not found in PATH")

// dotBinary is the Graphviz executable used by RenderImage.
var dotBinary = "dot"

// RenderImage pipes DOT source through Graphviz to write outPath in the given
// format (png, svg, pdf, ...). The output directory is created if needed.
func RenderImage(ctx context.Context, dot string, format, outPath string) error {
	bin, err := exec.LookPath(dotBinary)
	if err != nil {
		return ErrGraphvizMissing
	}
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(outPath), ".")
	}
	if format == "" {
		return fmt.Errorf("no output format given and none implied by %q", outPath)
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-T"+format, "-o", outPath)
	cmd.Stdin = strings.NewReader(dot)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("graphviz: %w: %s", err, msg)
		}
		return fmt.Errorf("graphviz: %w", err)
	}
	return nil
}
