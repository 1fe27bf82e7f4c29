package trainer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/stonksapi/backend/pkg/logger"
)

// Runner launches the per-symbol training artifacts as separate
// processes. Launches are fire-and-forget: the scheduler tick returns
// as soon as every artifact is handed to a worker slot, and exit
// status is logged rather than propagated.
type Runner struct {
	dir    string
	logger *logger.Logger

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewRunner creates a runner over the training-scripts directory with
// at most maxConcurrent training processes running at once.
func NewRunner(dir string, maxConcurrent int, log *logger.Logger) *Runner {
	return &Runner{
		dir:    dir,
		logger: log.WithField("component", "trainer.runner"),
		sem:    make(chan struct{}, maxConcurrent),
	}
}

// Discover lists the executable training artifacts, one directory per
// symbol. Non-executable files are skipped.
func (r *Runner) Discover() ([]string, error) {
	symbols, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read training scripts dir: %w", err)
	}

	var scripts []string
	for _, symbol := range symbols {
		if !symbol.IsDir() {
			continue
		}

		entries, err := os.ReadDir(filepath.Join(r.dir, symbol.Name()))
		if err != nil {
			return nil, fmt.Errorf("read symbol dir %s: %w", symbol.Name(), err)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				return nil, err
			}
			if info.Mode()&0o111 == 0 {
				continue
			}
			scripts = append(scripts, filepath.Join(r.dir, symbol.Name(), entry.Name()))
		}
	}

	sort.Strings(scripts)
	return scripts, nil
}

// RunAll launches every discovered artifact.
func (r *Runner) RunAll(ctx context.Context) error {
	return r.run(ctx, "")
}

// RunTagged launches only the artifacts whose filename carries the
// given interval tag, e.g. "1m".
func (r *Runner) RunTagged(ctx context.Context, tag string) error {
	return r.run(ctx, tag)
}

func (r *Runner) run(ctx context.Context, tag string) error {
	scripts, err := r.Discover()
	if err != nil {
		return err
	}

	launched := 0
	for _, script := range scripts {
		if tag != "" && !strings.HasPrefix(filepath.Base(script), tag+"_") {
			continue
		}
		r.launch(ctx, script)
		launched++
	}

	r.logger.WithFields(map[string]interface{}{
		"launched": launched,
		"tag":      tag,
	}).Info("Training batch launched")

	return nil
}

// RunScripts launches the given artifacts directly, bypassing
// discovery. Used when artifacts were just generated.
func (r *Runner) RunScripts(ctx context.Context, scripts []string) {
	for _, script := range scripts {
		r.launch(ctx, script)
	}
}

// launch hands a script to a worker slot. Blocks only when all slots
// are busy.
func (r *Runner) launch(ctx context.Context, script string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		select {
		case r.sem <- struct{}{}:
			defer func() { <-r.sem }()
		case <-ctx.Done():
			r.logger.WithField("script", script).Warn("Training launch cancelled")
			return
		}

		log := r.logger.WithField("script", script)
		log.Info("Training process started")

		cmd := exec.Command(script)
		cmd.Dir = filepath.Dir(script)
		out, err := cmd.CombinedOutput()
		if err != nil {
			log.WithError(err).WithField("output", strings.TrimSpace(string(out))).Error("Training process failed")
			return
		}

		log.Info("Training process finished")
	}()
}

// Wait blocks until every launched training process has exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}
