package trainer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/stonksapi/backend/internal/market"
)

// scriptTemplate is the body of a generated training artifact. Each
// artifact retrains one (symbol, interval) model by invoking the CLI,
// so the scheduler can launch it as a plain executable.
const scriptTemplate = `#!/bin/sh
# Generated training artifact. Regenerate with: %s create-model %s
exec %s train --symbol %s --interval %s
`

// WriteArtifacts generates the executable training artifacts for a
// symbol, one file per interval, under dir/<symbol>/. It refuses to
// overwrite an existing symbol directory.
func WriteArtifacts(dir, binary, symbol string, intervals []market.Interval) ([]string, error) {
	symbolDir := filepath.Join(dir, symbol)

	if _, err := os.Stat(symbolDir); err == nil {
		return nil, fmt.Errorf("training artifacts for %s already exist", symbol)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := os.MkdirAll(symbolDir, 0o755); err != nil {
		return nil, fmt.Errorf("create symbol dir: %w", err)
	}

	var written []string
	for _, interval := range intervals {
		name := fmt.Sprintf("%s_%s.sh", interval, symbol)
		path := filepath.Join(symbolDir, name)

		body := fmt.Sprintf(scriptTemplate, binary, symbol, binary, symbol, interval)
		if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
			return nil, fmt.Errorf("write artifact %s: %w", name, err)
		}

		written = append(written, path)
	}

	return written, nil
}
