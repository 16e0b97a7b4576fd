package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/widarcfg/internal/state"
	"github.com/spf13/cobra"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Debounce time.Duration
	Initial  bool // Ingest the whole archive before watching
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-ingest observations as their files change",
		Long: `Watch the archive root and re-ingest every observation whose script or
VCI documents are written, created or removed. Changes arriving within the
debounce interval are ingested together as one run.`,
		Example: `  widarcfg watch --root /data/evla --debounce 2s`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, NewCommandContext(cmd), opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 500*time.Millisecond, "Quiet period before re-ingesting")
	cmd.Flags().BoolVar(&opts.Initial, "initial", true, "Ingest the whole archive before watching")
	return cmd
}

func runWatch(ctx context.Context, cmdCtx *CommandContext, opts *WatchOptions) error {
	if err := cmdCtx.Cfg.ValidateRoot(); err != nil {
		return err
	}
	store, err := cmdCtx.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	w := &archiveWatcher{
		cmdCtx:   cmdCtx,
		store:    store,
		root:     cmdCtx.Cfg.Root,
		debounce: opts.Debounce,
		initial:  opts.Initial,
		onRun: func(run *state.Run) {
			cmdCtx.Renderer.Success(fmt.Sprintf("Run %s: %d observations, %d rows, %d skipped",
				run.ID, run.Executions, run.Rows, run.Skipped))
		},
	}
	cmdCtx.Renderer.Muted(fmt.Sprintf("Watching %s (Ctrl+C to stop)", w.root))
	return w.Run(ctx)
}

// archiveWatcher re-ingests programs whose files change.
type archiveWatcher struct {
	cmdCtx   *CommandContext
	store    *state.Store
	root     string
	debounce time.Duration
	initial  bool

	onRun func(*state.Run)
	// ready is closed once the watches are in place.
	ready chan struct{}
}

// Run watches until ctx is done.
func (w *archiveWatcher) Run(ctx context.Context) error {
	logger := w.cmdCtx.Logger

	if w.initial {
		paths, err := w.cmdCtx.ProgramPaths(nil)
		if err != nil {
			return err
		}
		if err := w.ingest(ctx, paths); err != nil {
			return err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDir(watcher, w.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}
	if w.ready != nil {
		close(w.ready)
	}

	var (
		pending = make(map[string]bool)
		timer   *time.Timer
		flush   = make(chan struct{}, 1)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchDir(watcher, event.Name); err != nil {
						logger.Warn("failed to watch directory", "path", event.Name, "err", err)
					}
					// Files written before the watch was added produce no events.
					for _, p := range w.programsUnder(event.Name) {
						pending[p] = true
					}
					w.schedule(&timer, flush)
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			ext := filepath.Ext(event.Name)
			if ext != ".evla" && ext != ".vci" {
				continue
			}
			program, ok := w.programOf(event.Name)
			if !ok {
				continue
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			pending[program] = true
			w.schedule(&timer, flush)

		case <-flush:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(pending)
			if err := w.ingest(ctx, paths); err != nil {
				logger.Error("re-ingest failed", "err", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}

// schedule restarts the debounce timer.
func (w *archiveWatcher) schedule(timer **time.Timer, flush chan<- struct{}) {
	if *timer != nil {
		(*timer).Stop()
	}
	*timer = time.AfterFunc(w.debounce, func() {
		select {
		case flush <- struct{}{}:
		default:
		}
	})
}

func (w *archiveWatcher) ingest(ctx context.Context, paths []string) error {
	run, err := ingest(ctx, w.cmdCtx, w.store, w.root, paths)
	if err != nil {
		return err
	}
	if w.onRun != nil {
		w.onRun(run)
	}
	return nil
}

// programOf returns the program directory holding file, if file sits
// directly in a <year>/<month>/<project> directory under the root.
func (w *archiveWatcher) programOf(file string) (string, bool) {
	dir := filepath.Dir(file)
	rel, err := filepath.Rel(w.root, dir)
	if err != nil {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 || parts[0] == ".." {
		return "", false
	}
	if !w.cmdCtx.Cfg.IncludeTests && !strings.Contains(parts[2], "-") {
		return "", false
	}
	return dir, true
}

// programsUnder lists the programs at or below dir.
func (w *archiveWatcher) programsUnder(dir string) []string {
	all, err := w.cmdCtx.ProgramPaths(nil)
	if err != nil {
		return nil
	}
	var out []string
	for _, p := range all {
		if p == dir || strings.HasPrefix(p, dir+string(filepath.Separator)) {
			out = append(out, p)
		}
	}
	return out
}

// watchDir recursively adds a directory to the watcher.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
