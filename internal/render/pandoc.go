package render

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// Pandoc renders with a pandoc subprocess
type Pandoc struct {
	// Path defaults to "pandoc" looked up in PATH
	Path string
	// Timeout of zero means the call may run as long as ctx allows
	Timeout time.Duration
}

func (p *Pandoc) Name() string { return NamePandoc }

func (p *Pandoc) Render(ctx context.Context, markup string) (string, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	bin := p.Path
	if bin == "" {
		bin = "pandoc"
	}

	cmd := exec.CommandContext(ctx, bin, "--from=mediawiki", "--to=markdown", "--wrap=none")
	cmd.Stdin = strings.NewReader(markup)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return "", &Error{
			Renderer: NamePandoc,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}
	return stdout.String(), nil
}
