package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/arttic"
	"github.com/aretw0/arttic/internal/tui"
	"github.com/muesli/termenv"
)

// RunWatch runs the session without a UI, printing connection changes,
// status changes and notices to w until a signal arrives.
func RunWatch(opts RunOptions, w io.Writer) error {
	logger := createLogger(opts.Debug)
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	app, err := Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("error initializing session: %w", err)
	}

	tui.PrintBanner(w, arttic.Version)
	printSystemMessage(w, "Watching %s", cfg.BackendURL)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	changes, unsubscribe := app.Session.Subscribe()
	defer unsubscribe()

	if err := app.Session.Start(sigCtx); err != nil {
		logger.Warn("bootstrap failed", "err", err)
	}
	defer app.Session.Close()

	watch(sigCtx, app.Session, changes, newWatcher(w))
	logCompletion(w, sigCtx.Signal())
	return nil
}

// watch prints every change until ctx is done. Dialogs are acknowledged
// once printed since nobody is there to dismiss them.
func watch(ctx context.Context, s *arttic.Session, changes <-chan struct{}, wt *watcher) {
	step := func() {
		st := s.Status()
		wt.observe(st)
		for range st.Dialogs {
			s.DismissDialog()
		}
	}
	step()
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			step()
		}
	}
}

// watcher prints what changed between two status copies.
type watcher struct {
	out        *termenv.Output
	connection string
	status     string
	notices    map[string]string
}

func newWatcher(w io.Writer) *watcher {
	return &watcher{out: termenv.NewOutput(w), notices: make(map[string]string)}
}

func (wt *watcher) observe(st arttic.Status) {
	if st.Connection != wt.connection {
		wt.connection = st.Connection
		wt.println("info", "connection "+st.Connection)
	}
	if st.StatusText != wt.status {
		wt.status = st.StatusText
		wt.println("info", "status: "+st.StatusText)
	}

	live := make(map[string]string, len(st.Notices))
	for _, n := range st.Notices {
		msg := n.Message
		if n.Progress != nil {
			msg = fmt.Sprintf("%s (%.0f%%)", msg, *n.Progress*100)
		}
		live[n.ID] = msg
		if wt.notices[n.ID] != msg {
			wt.println(string(n.Kind), msg)
		}
	}
	wt.notices = live

	for _, d := range st.Dialogs {
		wt.println("error", d.Title+": "+d.Message)
	}
}

func (wt *watcher) println(kind, message string) {
	fmt.Fprintln(wt.out, statusLine(wt.out, kind, message))
}
