package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/tada-sync/internal/model"
	"github.com/Makepad-fr/tada-sync/internal/store"
	"github.com/Makepad-fr/tada-sync/internal/ui"
)

// ValidFormats defines the allowed ls output formats.
var ValidFormats = []string{"text", "json", "yaml"}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func writeTodos(w io.Writer, s *store.Store, format string, group bool) error {
	todos := s.Todos()
	switch format {
	case "json":
		b, err := json.MarshalIndent(todos, "", "  ")
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(todos); err != nil {
			return fmt.Errorf("yaml marshal: %w", err)
		}
		return enc.Close()
	default:
		return writeText(w, s, group)
	}
}

func writeText(w io.Writer, s *store.Store, group bool) error {
	th := ui.Current()
	done, pending := s.Stats()
	total := s.Len()

	fmt.Fprintf(w, "%s   %s %d  %s %d  %s %d\n",
		th.Title.Render("Todos"),
		th.Success.Render(th.SymDone), done,
		th.Pending.Render(th.SymPending), pending,
		th.Accent.Render("Total"), total)
	if total == 0 {
		fmt.Fprintln(w, th.Muted.Render("No todos."))
		return nil
	}
	fmt.Fprintln(w, th.Muted.Render(ui.ProgressBar(done, total, 20)))

	todos := s.Todos()
	if !group {
		for _, t := range todos {
			fmt.Fprintln(w, textLine(t))
		}
		return nil
	}
	for _, section := range []struct {
		name      string
		completed bool
	}{{"Pending", false}, {"Done", true}} {
		fmt.Fprintln(w, th.Accent.Render(section.name))
		for _, t := range todos {
			if t.Completed == section.completed {
				fmt.Fprintln(w, textLine(t))
			}
		}
	}
	return nil
}

func textLine(t model.Todo) string {
	th := ui.Current()
	box, title := th.BoxUnchecked, t.Title
	if t.Completed {
		box = th.Success.Render(th.BoxChecked)
		title = th.Done.Render(title)
	}
	return fmt.Sprintf("  %s %s %s", box, th.Muted.Render(fmt.Sprintf("#%d", t.ID)), title)
}
