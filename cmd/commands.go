package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nibzard/karen-go/internal/config"
	"github.com/nibzard/karen-go/internal/logging"
	"github.com/nibzard/karen-go/internal/storage"
	"github.com/nibzard/karen-go/internal/storage/jsonfile"
	"github.com/nibzard/karen-go/internal/ui"
)

// chatCommand runs the line-oriented session on stdin/stdout.
func chatCommand(ctx context.Context, cfg *config.Config, args []string) (err error) {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	s, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()

	if s.loadErr != nil {
		if err := ui.Print(stdout, s.dispatcher.Formatter().LoadingError()); err != nil {
			return err
		}
	}
	return s.dispatcher.Serve(ctx, stdin, stdout)
}

// tuiCommand runs the session in the bubbletea interface.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) (err error) {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	s, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()

	d := s.dispatcher
	intro := d.Formatter().Intro()
	if s.loadErr != nil {
		intro = d.Formatter().LoadingError() + "\n" + intro
	}
	handle := func(ctx context.Context, line string) (string, bool) {
		res := d.Execute(ctx, line)
		return res.Output, res.Exit
	}
	return ui.RunTUI(ctx, intro, handle, d.Tasks)
}

// execCommand runs one command line given as arguments.
func execCommand(ctx context.Context, cfg *config.Config, args []string) (err error) {
	line := strings.Join(args, " ")
	if strings.TrimSpace(line) == "" {
		return fmt.Errorf("exec requires a command line")
	}
	s, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()

	if s.loadErr != nil {
		return s.loadErr
	}
	res := s.dispatcher.Execute(ctx, line)
	if err := ui.Print(stdout, res.Output); err != nil {
		return err
	}
	if res.Err != nil {
		return fmt.Errorf("command rejected: %w", res.Err)
	}
	return res.SaveErr
}

// listCommand prints the stored list.
func listCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	return execCommand(ctx, cfg, []string{"list"})
}

// configCommand prints the effective configuration.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("karen config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showSources := fs.Bool("sources", false, "Show where each value came from")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*showSources {
		return cws.Config.WriteTOML(stdout)
	}

	fmt.Fprintf(stdout, "User config:    %s\n", orNone(cws.UserFile))
	fmt.Fprintf(stdout, "Project config: %s\n\n", orNone(cws.ProjectFile))
	fields := make([]string, 0, len(cws.Sources))
	for field := range cws.Sources {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(stdout, "%-16s %s\n", field, cws.Sources[field])
	}
	return nil
}

// historyCommand prints the latest session log.
func historyCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("karen history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	n := fs.Int("n", 0, "Number of events to show (0 = all)")
	listSessions := fs.Bool("sessions", false, "List session logs instead of showing one")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if *listSessions {
		sessions, err := logging.FindSessions(logDir)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Fprintln(stdout, "No session logs found.")
			return nil
		}
		for _, s := range sessions {
			fmt.Fprintf(stdout, "%s  %s\n", s.ModTime.Format("2006-01-02 15:04:05"), s.ID)
		}
		return nil
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No session logs found.")
		return nil
	}

	fmt.Fprintf(stdout, "Session: %s\n\n", logPath)
	return logging.WriteHistory(stdout, logPath, *n)
}

// doctorCommand checks the configuration and that stored tasks can be read.
func doctorCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}

	fmt.Fprintln(stdout, "Karen Doctor")
	fmt.Fprintln(stdout, "============")
	fmt.Fprintln(stdout)

	allOK := true

	fmt.Fprintf(stdout, "Project root: %s\n", cfg.ProjectRoot)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stdout, "  ❌ Config: %v\n\n", err)
		return fmt.Errorf("doctor failed: invalid config")
	}
	fmt.Fprintln(stdout, "  ✅ Config OK")
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "Storage: %s\n", cfg.Storage.Driver)
	if cfg.Storage.Driver == storage.DriverJSON {
		fmt.Fprintf(stdout, "  Task file: %s\n", cfg.DataFile)
		if !checkTaskFile(cfg) {
			allOK = false
		}
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Open: %v\n", err)
		allOK = false
	} else {
		tasks, err := store.Load(ctx)
		if err != nil {
			fmt.Fprintf(stdout, "  ❌ Load: %v\n", err)
			allOK = false
		} else {
			fmt.Fprintf(stdout, "  ✅ %d tasks loaded\n", len(tasks))
		}
		store.Close()
	}
	fmt.Fprintln(stdout)

	if !allOK {
		return fmt.Errorf("doctor failed: see above")
	}
	fmt.Fprintln(stdout, "All checks passed.")
	return nil
}

// checkTaskFile validates the JSON task file and prints each problem.
func checkTaskFile(cfg *config.Config) bool {
	f, err := jsonfile.Load(cfg.DataFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(stdout, "  ✅ No task file yet (created on first change)")
			return true
		}
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		return false
	}

	result := f.Validate(jsonfile.ValidationOptions{SchemaPath: cfg.SchemaFile})
	for _, w := range result.Warnings {
		fmt.Fprintf(stdout, "  ⚠️  %s\n", w)
	}
	if !result.Valid {
		for _, e := range result.Errors {
			fmt.Fprintf(stdout, "  ❌ %v\n", e)
		}
		return false
	}
	fmt.Fprintln(stdout, "  ✅ Task file valid")
	return true
}

// initCommand writes a starter config and an empty task file, skipping
// files that already exist.
func initCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("karen init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	force := fs.Bool("force", false, "Overwrite existing files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	configPath := filepath.Join(cfg.ProjectRoot, "karen.toml")
	if wrote, err := writeIfMissing(configPath, []byte(config.ExampleConfig()), *force); err != nil {
		return err
	} else if wrote {
		fmt.Fprintf(stdout, "Created %s\n", configPath)
	} else {
		fmt.Fprintf(stdout, "Skipped %s (exists)\n", configPath)
	}

	if cfg.Storage.Driver != storage.DriverJSON {
		return nil
	}
	if _, err := os.Stat(cfg.DataFile); err == nil && !*force {
		fmt.Fprintf(stdout, "Skipped %s (exists)\n", cfg.DataFile)
		return nil
	}
	empty := &jsonfile.File{SchemaVersion: jsonfile.SchemaVersion}
	if err := empty.Save(cfg.DataFile); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Created %s\n", cfg.DataFile)
	return nil
}

func writeIfMissing(path string, data []byte, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
