package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmrzaf/forumsetup/internal/app"
	"github.com/mmrzaf/forumsetup/internal/config"
	"github.com/mmrzaf/forumsetup/internal/dbconn"
	"github.com/mmrzaf/forumsetup/internal/dbparams"
	"github.com/mmrzaf/forumsetup/internal/domain"
	"github.com/mmrzaf/forumsetup/internal/infra/repos/installs"
	"github.com/mmrzaf/forumsetup/internal/install"
	"github.com/mmrzaf/forumsetup/internal/logging"
	"github.com/mmrzaf/forumsetup/internal/timeutil"
)

var (
	installFile string
	statePath   string
	logLevel    string
	format      string
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:           "forumsetup",
		Short:         "Resumable forum installer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&installFile, "install-file", cfg.InstallFile, "Install file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", cfg.StatePath, "Installer state database path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table|json|yaml)")

	rootCmd.AddCommand(paramsCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(runCmd(cfg))
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(resetCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newService() *app.InstallService {
	return app.NewInstallService(logging.NewLogger(logLevel), dbparams.RegisteredDrivers{})
}

func loadInstall() (*domain.InstallConfig, error) {
	return installs.NewFileRepository().Load(installFile)
}

// printStructured handles the json and yaml formats. It reports false for
// table output so the caller can render its own.
func printStructured(v any) (bool, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, err
		}
		fmt.Println(string(data))
		return true, nil
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, err
		}
		fmt.Print(string(data))
		return true, nil
	case "", "table":
		return false, nil
	default:
		return true, fmt.Errorf("unknown format %q", format)
	}
}

func paramsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Show the connection parameters resolved from the install file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadInstall()
			if err != nil {
				return err
			}
			p, err := newService().Params(cfg)
			if err != nil {
				return err
			}
			p = dbconn.RedactParams(p)
			if done, err := printStructured(p); done {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tVALUE")
			m := p.Map()
			for _, k := range []string{"driver", "host", "port", "dbname", "user", "password", "path"} {
				if v, ok := m[k]; ok {
					fmt.Fprintf(w, "%s\t%v\n", k, v)
				}
			}
			if _, dsn, err := dbconn.DSN(p); err == nil {
				fmt.Fprintf(w, "dsn\t%s\n", dbconn.RedactDSN(dsn))
			}
			return w.Flush()
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the database and search backend are reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadInstall()
			if err != nil {
				return err
			}
			report, checkErr := newService().Check(cmd.Context(), cfg)
			if report == nil {
				return checkErr
			}
			if done, err := printStructured(report); done {
				if err != nil {
					return err
				}
				return checkErr
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			db := report.Database
			fmt.Fprintf(w, "database\t%s\t%s\t%dms\n", okLabel(db.OK), db.Driver, db.LatencyMS)
			if db.ServerVer != "" {
				fmt.Fprintf(w, "server_version\t%s\n", db.ServerVer)
			}
			if db.Error != "" {
				fmt.Fprintf(w, "error\t%s\n", db.Error)
			}
			fmt.Fprintf(w, "can_create\t%s\n", okLabel(report.Capabilities.CanCreate))
			fmt.Fprintf(w, "can_insert\t%s\n", okLabel(report.Capabilities.CanInsert))
			fmt.Fprintf(w, "can_drop\t%s\n", okLabel(report.Capabilities.CanDrop))
			fmt.Fprintf(w, "search\t%s\t%s\n", report.Search, report.SearchVer)
			if report.SearchError != "" {
				fmt.Fprintf(w, "search_error\t%s\n", report.SearchError)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return checkErr
		},
	}
}

func runCmd(cfg *config.Config) *cobra.Command {
	var (
		maxExecution string
		memoryMB     int64
		maxPasses    int
		once         bool
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run or resume the install",
		RunE: func(cmd *cobra.Command, args []string) error {
			icfg, err := loadInstall()
			if err != nil {
				return err
			}
			budget, err := timeutil.ParseExecutionTime(maxExecution)
			if err != nil {
				return fmt.Errorf("invalid --max-execution-time: %w", err)
			}

			report, runErr := newService().Run(cmd.Context(), icfg, app.RunOptions{
				StatePath:        statePath,
				MaxExecutionTime: budget,
				MemoryLimit:      memoryMB << 20,
				MaxPasses:        maxPasses,
				Once:             once,
				Force:            force,
			})
			if report == nil {
				return runErr
			}
			if done, err := printStructured(report); done {
				if err != nil {
					return err
				}
				return runErr
			}
			printReport(report)
			return runErr
		},
	}

	cmd.Flags().StringVar(&maxExecution, "max-execution-time", cfg.MaxExecutionTime, "Time budget per pass in seconds or as a duration (0 for none)")
	cmd.Flags().Int64Var(&memoryMB, "memory-limit-mb", cfg.MemoryLimitMB, "Heap budget per pass in MiB (0 for none)")
	cmd.Flags().IntVar(&maxPasses, "max-passes", cfg.MaxPasses, "Give up after this many passes")
	cmd.Flags().BoolVar(&once, "once", false, "Stop after a single pass")
	cmd.Flags().BoolVar(&force, "force", false, "Resume even if the install file changed")
	return cmd
}

func statusCmd() *cobra.Command {
	var (
		limit int
		pass  string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show install progress and recent passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pass != "" {
				run, err := newService().Pass(statePath, pass)
				if err != nil {
					return err
				}
				if done, err := printStructured(run); done {
					return err
				}
				return printRuns(os.Stdout, []*domain.InstallRun{run})
			}

			icfg, err := loadInstall()
			if err != nil {
				return err
			}
			report, err := newService().Status(icfg, statePath, limit)
			if err != nil {
				return err
			}
			if done, err := printStructured(report); done {
				return err
			}
			printReport(report)

			if len(report.Runs) == 0 {
				return nil
			}
			fmt.Println()
			return printRuns(os.Stdout, report.Runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of passes to show")
	cmd.Flags().StringVar(&pass, "pass", "", "Show a single pass by id")
	return cmd
}

func printRuns(out io.Writer, runs []*domain.InstallRun) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PASS\tSTATUS\tNEXT\tSTARTED\tERROR")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(r.ID), r.Status, r.NextTask, r.StartedAt.Format("2006-01-02 15:04:05"), r.Error)
	}
	return w.Flush()
}

func shortID(id string) string {
	return id[:min(len(id), 8)]
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget install progress (the forum database is not touched)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newService().Reset(statePath); err != nil {
				return err
			}
			fmt.Printf("State %s cleared\n", statePath)
			return nil
		},
	}
}

func printReport(r *app.Report) {
	if r.InstallID != "" {
		fmt.Printf("Install %s", r.InstallID)
		if r.Passes > 0 {
			fmt.Printf(" (%d passes)", r.Passes)
		}
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tSTATE\tPROGRESS")
	for _, t := range r.Tasks {
		progress := ""
		if t.Total > 0 {
			progress = fmt.Sprintf("%d/%d", t.Cursor, t.Total)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, taskState(t.Done), progress)
	}
	w.Flush()

	for _, m := range r.Messages {
		c := color.New(color.FgYellow)
		if m.Level == install.MessageError {
			c = color.New(color.FgRed)
		}
		c.Printf("%s %s", m.Level, m.Key)
		if m.Detail != "" {
			fmt.Printf(": %s", m.Detail)
		}
		fmt.Println()
	}

	if r.Done {
		color.Green("Install complete")
	} else {
		color.Yellow("Install has work remaining")
	}
}

func taskState(done bool) string {
	if done {
		return color.GreenString("done")
	}
	return color.YellowString("pending")
}

func okLabel(v bool) string {
	if v {
		return color.GreenString("ok")
	}
	return color.RedString("fail")
}
