package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/telemetry"
)

var eventsCmd = &cobra.Command{
	Use:   "events [session-id]",
	Short: "View the JSONL event log of a run session",
	Long: `Reads and formats the telemetry file of a run session.

Without a session id, shows the most recent session.
With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	follow, _ := cmd.Flags().GetBool("follow")
	e, err := loadEnv()
	if err != nil {
		return err
	}
	var sessionID string
	if len(args) == 1 {
		sessionID = args[0]
	}
	path, err := resolveEventsPath(e.telemetryDir(), sessionID)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("events: open %s: %w", path, err)
	}
	defer f.Close()

	style := e.cfg.Style()
	out := cmd.OutOrStdout()
	if err := telemetry.Decode(f, func(evt telemetry.Event) error {
		printEvent(out, evt, style)
		return nil
	}); err != nil {
		return fmt.Errorf("events: %s: %w", path, err)
	}

	if !follow {
		return nil
	}
	ctx, cancel := setupSignalContext(cmd.Context(), e.printer)
	defer cancel()
	return tailFollow(ctx, out, f, path, style)
}

// tailFollow watches the file for new data using fsnotify and prints new
// events until ctx is done.
func tailFollow(ctx context.Context, w io.Writer, f *os.File, path string, style bignum.Style) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("events: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("events: watch %s: %w", path, err)
	}

	reader := bufio.NewReader(f)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			for {
				line, err := reader.ReadString('\n')
				if line = strings.TrimSpace(line); line != "" {
					var evt telemetry.Event
					if jerr := json.Unmarshal([]byte(line), &evt); jerr != nil {
						fmt.Fprintf(w, "??? %s\n", line)
					} else {
						printEvent(w, evt, style)
					}
				}
				if err != nil {
					break
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("events: watch %s: %w", path, err)
		}
	}
}

// printEvent prints a human-readable line for one telemetry event.
func printEvent(w io.Writer, evt telemetry.Event, style bignum.Style) {
	parts := []string{fmt.Sprintf("[%s]", evt.Timestamp.Local().Format(time.TimeOnly)), evt.Kind}
	if evt.Subject != "" {
		parts = append(parts, evt.Subject)
	}
	if evt.Value != "" {
		if n, err := bignum.Parse(evt.Value); err == nil {
			parts = append(parts, "value="+n.Format(style))
		} else {
			parts = append(parts, "value="+evt.Value)
		}
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}

// resolveEventsPath finds the JSONL file for sessionID, or the most recently
// modified one when sessionID is empty. A unique prefix of a session id is
// accepted.
func resolveEventsPath(dir, sessionID string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("events: cannot read %s: %w", dir, err)
	}

	type candidate struct {
		name string
		mod  time.Time
	}
	var files []candidate
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		if sessionID != "" && !strings.HasPrefix(e.Name(), sessionID) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, candidate{name: e.Name(), mod: info.ModTime()})
	}

	switch {
	case len(files) == 0 && sessionID != "":
		return "", fmt.Errorf("events: no log for session %q in %s", sessionID, dir)
	case len(files) == 0:
		return "", fmt.Errorf("events: no JSONL files in %s", dir)
	case len(files) > 1 && sessionID != "":
		return "", fmt.Errorf("events: session %q is ambiguous (%d matches)", sessionID, len(files))
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })
	return filepath.Join(dir, files[len(files)-1].name), nil
}
