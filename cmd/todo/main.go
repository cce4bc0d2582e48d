package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nextuponstream/todo/pkg/config"
	"github.com/nextuponstream/todo/pkg/editor"
	"github.com/nextuponstream/todo/pkg/render"
	"github.com/nextuponstream/todo/pkg/store"
	"github.com/nextuponstream/todo/pkg/tui"
)

const version = "0.2.0"

const usage = `Usage: todo <command> [flags]

Commands:
  add <title> [--tag T]... [--deadline D] [--body TEXT]   create a todo
  list [--tag T]... [--all]                               list todos
  show <id>                                               show one todo
  done <id>                                               mark a todo completed
  rm <id>                                                 delete a todo
  edit <id>                                               open a todo in your editor
  mv <id> <context>                                       move a todo to another context
  config <create-context|set-context|get-contexts|current-context>
  ui                                                      interactive mode
  --version                                               print version

Flags:
  --json                                                  machine-readable output

Deadlines accept 2006-01-02, "2006-01-02 15:04" or RFC3339.`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// usageError marks bad invocations so they exit 1 instead of 2.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...interface{}) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// exitCode maps error kinds to the documented exit codes: 1 for bad
// input and missing items, 2 for config and I/O failures.
func exitCode(err error) int {
	var ue usageError
	switch {
	case errors.As(err, &ue),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrAlreadyCompleted),
		errors.Is(err, store.ErrEmptyTitle):
		return 1
	default:
		return 2
	}
}

func run(args []string) error {
	jsonOutput := hasFlag(args, "--json")
	args = removeFlag(args, "--json")

	if len(args) == 0 {
		return usagef("%s", usage)
	}

	switch args[0] {
	case "--version", "version":
		fmt.Printf("todo %s\n", version)
		return nil
	case "help", "--help", "-h":
		fmt.Println(usage)
		return nil
	case "config":
		return cmdConfig(args[1:])
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}
	dir, err := cfg.ActiveDir()
	if err != nil {
		return fmt.Errorf("%w — run `todo config create-context --name <name> --dir <folder>` or set %s", err, config.EnvDir)
	}
	s, err := store.NewStore(dir)
	if err != nil {
		return err
	}

	switch args[0] {
	case "add":
		return cmdAdd(s, cfg, args[1:], jsonOutput)
	case "list":
		return cmdList(s, args[1:], jsonOutput)
	case "show":
		if len(args) < 2 {
			return usagef("usage: todo show <id>")
		}
		return cmdShow(s, args[1], jsonOutput)
	case "done":
		if len(args) < 2 {
			return usagef("usage: todo done <id>")
		}
		return cmdDone(s, args[1], jsonOutput)
	case "rm":
		if len(args) < 2 {
			return usagef("usage: todo rm <id>")
		}
		return cmdRemove(s, args[1], jsonOutput)
	case "edit":
		if len(args) < 2 {
			return usagef("usage: todo edit <id>")
		}
		return cmdEdit(s, cfg, args[1])
	case "mv":
		if len(args) < 3 {
			return usagef("usage: todo mv <id> <context>")
		}
		return cmdMove(s, cfg, args[1], args[2], jsonOutput)
	case "ui":
		return runTUI(s)
	default:
		return usagef("unknown command: %s\n\n%s", args[0], usage)
	}
}

func configPath() string {
	if p := os.Getenv(config.EnvConfig); p != "" {
		return p
	}
	return config.DefaultPath()
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func removeFlag(args []string, flag string) []string {
	var result []string
	for _, a := range args {
		if a != flag {
			result = append(result, a)
		}
	}
	return result
}

// Commands

func cmdAdd(s *store.Store, cfg *config.Config, args []string, jsonOut bool) error {
	var titleParts, tags []string
	var deadlineStr, body string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--tag", "-t":
			i++
			if i >= len(args) {
				return usagef("--tag requires a value")
			}
			tags = append(tags, args[i])
		case "--deadline", "-d":
			i++
			if i >= len(args) {
				return usagef("--deadline requires a value")
			}
			deadlineStr = args[i]
		case "--body", "-b":
			i++
			if i >= len(args) {
				return usagef("--body requires a value")
			}
			body = args[i]
		default:
			titleParts = append(titleParts, args[i])
		}
	}

	title := strings.Join(titleParts, " ")
	if strings.TrimSpace(title) == "" {
		return usagef("usage: todo add <title> [--tag T]... [--deadline D] [--body TEXT]")
	}

	var deadline *time.Time
	if deadlineStr != "" {
		ctx, _ := cfg.Active() // nil without a config file; Location falls back to local
		t, err := store.ParseDeadline(deadlineStr, ctx.Location())
		if err != nil {
			return usagef("%v", err)
		}
		deadline = &t
	}

	item, err := s.Create(title, tags, deadline, body)
	if err != nil {
		return err
	}

	if jsonOut {
		return outputJSON(itemToMap(item))
	}
	fmt.Printf("Created %s: %s\n", item.ID, item.Title)
	return nil
}

func cmdList(s *store.Store, args []string, jsonOut bool) error {
	opts := store.ListOptions{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--tag", "-t":
			i++
			if i >= len(args) {
				return usagef("--tag requires a value")
			}
			opts.Tags = append(opts.Tags, args[i])
		case "--all", "-a":
			opts.IncludeCompleted = true
		default:
			return usagef("unknown flag: %s", args[i])
		}
	}

	items, err := s.List(opts)
	if err != nil {
		return err
	}

	if jsonOut {
		return outputJSON(itemsToMap(items))
	}
	if len(items) == 0 {
		fmt.Println("No todos. Add one with `todo add <title>`.")
		return nil
	}
	fmt.Print(render.Render(items))
	return nil
}

func cmdShow(s *store.Store, id string, jsonOut bool) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}

	if jsonOut {
		return outputJSON(itemToMap(item))
	}
	fmt.Print(render.RenderItem(item))
	return nil
}

func cmdDone(s *store.Store, id string, jsonOut bool) error {
	item, err := s.Complete(id)
	if err != nil {
		return err
	}

	if jsonOut {
		return outputJSON(itemToMap(item))
	}
	fmt.Printf("✓ %s: %s\n", item.ID, item.Title)
	return nil
}

func cmdRemove(s *store.Store, id string, jsonOut bool) error {
	if err := s.Delete(id); err != nil {
		return err
	}

	if jsonOut {
		return outputJSON(map[string]string{"deleted": id})
	}
	fmt.Printf("Deleted %s\n", id)
	return nil
}

func cmdEdit(s *store.Store, cfg *config.Config, id string) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}
	ctx, _ := cfg.Active()
	editorCmd := ""
	if ctx != nil {
		editorCmd = ctx.Editor
	}
	return editor.Open(editorCmd, item.FilePath)
}

func cmdMove(s *store.Store, cfg *config.Config, id, contextName string, jsonOut bool) error {
	var destDir string
	for _, ctx := range cfg.Contexts {
		if ctx.Name == contextName {
			destDir = ctx.Dir
			break
		}
	}
	if destDir == "" {
		return usagef("no context named %q", contextName)
	}

	dest, err := store.NewStore(destDir)
	if err != nil {
		return err
	}
	item, err := s.Move(id, dest)
	if err != nil {
		return err
	}

	if jsonOut {
		return outputJSON(itemToMap(item))
	}
	fmt.Printf("Moved %s to %s (%s)\n", item.ID, contextName, destDir)
	return nil
}

func cmdConfig(args []string) error {
	if len(args) == 0 {
		return usagef("usage: todo config <create-context|set-context|get-contexts|current-context>")
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	switch args[0] {
	case "create-context":
		ctx := config.Context{}
		rest := args[1:]
		for i := 0; i < len(rest); i++ {
			switch rest[i] {
			case "--name", "-n":
				i++
				if i >= len(rest) {
					return usagef("--name requires a value")
				}
				ctx.Name = rest[i]
			case "--dir", "-f":
				i++
				if i >= len(rest) {
					return usagef("--dir requires a value")
				}
				ctx.Dir = rest[i]
			case "--editor", "-e":
				i++
				if i >= len(rest) {
					return usagef("--editor requires a value")
				}
				ctx.Editor = rest[i]
			case "--timezone":
				i++
				if i >= len(rest) {
					return usagef("--timezone requires a value")
				}
				ctx.Timezone = rest[i]
			default:
				return usagef("unknown flag: %s", rest[i])
			}
		}
		if err := cfg.CreateContext(ctx); err != nil {
			return usagef("%v", err)
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Context %q created and activated (config: %s)\n", ctx.Name, cfg.Path)
		return nil

	case "set-context":
		if len(args) < 2 {
			return usagef("usage: todo config set-context <name>")
		}
		if err := cfg.SetContext(args[1]); err != nil {
			return usagef("%v", err)
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Context set to %q\n", args[1])
		return nil

	case "get-contexts":
		if len(cfg.Contexts) == 0 {
			fmt.Println("No contexts. Create one with `todo config create-context --name <name> --dir <folder>`.")
			return nil
		}
		for _, ctx := range cfg.Contexts {
			marker := " "
			if ctx.Name == cfg.ActiveContext {
				marker = "*"
			}
			fmt.Printf("%s %s\t%s\n", marker, ctx.Name, ctx.Dir)
		}
		return nil

	case "current-context":
		ctx, err := cfg.Active()
		if err != nil {
			return err
		}
		fmt.Println(ctx.Name)
		return nil

	default:
		return usagef("unknown config command: %s", args[0])
	}
}

func runTUI(s *store.Store) error {
	m := tui.NewModel(s)
	p := tea.NewProgram(m, tea.WithAltScreen())

	cleanup, err := tui.StartWatcher(s.Dir, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file watcher failed: %v\n", err)
	} else {
		defer cleanup()
	}

	_, err = p.Run()
	return err
}

// JSON helpers

func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func itemToMap(item *store.Item) map[string]interface{} {
	m := map[string]interface{}{
		"id":      item.ID,
		"title":   item.Title,
		"tags":    item.Tags,
		"created": item.Created.Format(time.RFC3339),
		"body":    item.Body,
	}
	if item.Deadline != nil {
		m["deadline"] = item.Deadline.Format(time.RFC3339)
	}
	if item.Completed != nil {
		m["completed"] = item.Completed.Format(time.RFC3339)
	}
	return m
}

func itemsToMap(items []*store.Item) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		result = append(result, itemToMap(item))
	}
	return result
}
