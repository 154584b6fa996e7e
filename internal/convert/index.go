package convert

import (
	"fmt"
	"path"
	"strings"

	"github.com/gerunddev/wikivault/internal/frontmatter"
	"github.com/gerunddev/wikivault/internal/logger"
	"github.com/gerunddev/wikivault/internal/normalize"
	"github.com/gerunddev/wikivault/internal/vault"
)

// IndexFile returns the vault-relative path of a tag's index note
func IndexFile(indexDir, tag string) string {
	return path.Join(indexDir, "_"+vault.SanitizeFilename(tag)+vault.NoteExt)
}

// IndexNote renders the index note listing pages under tag
func IndexNote(tag string, pages []string) (string, error) {
	header, err := frontmatter.Build("Index: "+normalize.DisplayTitle(tag), []string{tag}, nil)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("# " + normalize.TitleCase(normalize.DisplayTitle(tag)) + " Index\n\n")
	for _, title := range pages {
		b.WriteString("- [[" + normalize.DisplayTitle(title) + "]]\n")
	}
	return b.String(), nil
}

// BuildIndexes writes one index note per tag. It returns how many were
// written and the errors for those that were not.
func BuildIndexes(run *Run, writer *vault.Writer, indexDir string, log *logger.Logger) (int, []error) {
	if log == nil {
		log = logger.Discard()
	}

	var errs []error
	written := 0
	for _, tag := range run.Tags.Tags() {
		pages := run.Tags.Pages(tag)
		file := IndexFile(indexDir, tag)

		content, err := IndexNote(tag, pages)
		if err == nil {
			err = writer.WriteFile(file, []byte(content))
		}
		if err != nil {
			err = fmt.Errorf("failed to write index for %q: %w", tag, err)
			log.FileError(file, err)
			errs = append(errs, err)
			continue
		}

		written++
		log.IndexWritten(tag, file, len(pages))
	}
	return written, errs
}
