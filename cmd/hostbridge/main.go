package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/funvibe/hostbridge/internal/codec"
	"github.com/funvibe/hostbridge/internal/config"
	"github.com/funvibe/hostbridge/internal/demux"
	"github.com/funvibe/hostbridge/internal/journal"
	"github.com/funvibe/hostbridge/internal/launcher"
	"github.com/funvibe/hostbridge/internal/registry"
	"github.com/funvibe/hostbridge/internal/script"
	"github.com/funvibe/hostbridge/pkg/bridge"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("hostbridge"),
		kong.Description("Drive a scripted host application from the command line."),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

// loadConfig resolves the project config: explicit path, else upward
// search from the working directory. A missing config is not an error.
func loadConfig(explicit string) (*config.Config, error) {
	path := explicit
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

// Run evaluates a raw call expression inside the host.
func (c *ExecCmd) Run() error {
	cfg, err := loadConfig(c.Config)
	if err != nil {
		return err
	}

	if _, err := script.ParseExpression(c.Expr); err != nil {
		return fmt.Errorf("invalid call expression: %w", err)
	}

	host := c.Host
	if host == "" {
		host = cfg.Host
	}
	paths := append(append([]string(nil), cfg.ImportPaths...), c.Path...)
	verbose := c.Verbose || cfg.Verbose

	modules := append([]string(nil), c.Module...)
	modules = append(modules, codec.Module)
	sort.Strings(modules)

	runID := uuid.NewString()
	content := script.Synthesize(script.Spec{
		RunID:       runID,
		ImportPaths: paths,
		Modules:     modules,
		Call:        c.Expr,
	})

	l := launcher.New(
		launcher.WithHostPath(host),
		launcher.WithVerbose(verbose),
	)
	res, err := l.Run(runID, content)
	if err != nil {
		return err
	}

	fmt.Print(res.Stdout)

	verdict := demux.Classify(res.ExitCode, res.Stdout)
	if cfg.Journal.Enabled {
		recordRun(cfg.Journal.Path, res, c.Expr, verdict.Passed)
	}
	if !verdict.Passed {
		return fmt.Errorf("run %s failed (exit code %d)", runID, res.ExitCode)
	}
	return nil
}

func recordRun(path string, res *launcher.Result, callText string, passed bool) {
	j, err := journal.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hostbridge: journal: %v\n", err)
		return
	}
	defer j.Close()

	err = j.Record(journal.Entry{
		RunID:     res.RunID,
		Host:      res.HostPath,
		Call:      callText,
		ExitCode:  res.ExitCode,
		Passed:    passed,
		Output:    res.Stdout,
		StartedAt: time.Now().Add(-res.Duration),
		Duration:  res.Duration,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "hostbridge: journal: %v\n", err)
	}
}

// Run acts as the in-host dispatcher over the host CLI contract.
func (c *DispatchCmd) Run() error {
	os.Exit(bridge.HostMain(c.Args, registry.New(), os.Stdout))
	return nil
}

// Run lists recorded host runs.
func (c *JournalCmd) Run() error {
	path := c.Path
	if path == "" {
		cfg, err := loadConfig(c.Config)
		if err != nil {
			return err
		}
		path = cfg.Journal.Path
	}
	if path == "" {
		return fmt.Errorf("no journal configured: pass --path or enable journal in %s", config.ConfigFileName)
	}

	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.List(c.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("journal is empty")
		return nil
	}

	for _, e := range entries {
		verdict := "FAIL"
		if e.Passed {
			verdict = "PASS"
		}
		fmt.Printf("%s  %s  exit=%d  %s  %s\n",
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			verdict, e.ExitCode, e.Duration.Round(time.Millisecond), e.Call)
	}
	return nil
}

// Run prints version information.
func (c *VersionCmd) Run() error {
	fmt.Printf("hostbridge %s\n", version)
	return nil
}
