package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"inspectline/internal/app"
	"inspectline/internal/config"
	"inspectline/internal/db"
	"inspectline/internal/domain"
	"inspectline/internal/engine"
	"inspectline/internal/logging"
	"inspectline/internal/repo"
	"inspectline/internal/storeserver"
)

var rootCmd = &cobra.Command{
	Use:   "il",
	Short: "Inspectline CLI",
	Long: `Inspectline runs safety equipment inspections.
- Supervisors assign inspection tasks for breathing apparatus sets (BA-SET) and safety kits (SK).
- Inspectors fill in the checklist or material table and submit it for approval.
- Supervisors approve or reject with a reason; rejected tasks go back to the inspector.
Tasks move Pending -> PendingForApproval -> Approved | Rejected, and Rejected -> PendingForApproval.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("INSPECTLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor", "", "user id or name to act as")
	rootCmd.PersistentFlags().String("remote", "", "remote store base URL (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (overrides config)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor", rootCmd.PersistentFlags().Lookup("actor"))
	_ = viper.BindPFlag("remote", rootCmd.PersistentFlags().Lookup("remote"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func registerCommands() {
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(assetCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(serveCmd())
}

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "task", Short: "Assign, inspect and review tasks"}
	cmd.AddCommand(taskListCmd())
	cmd.AddCommand(taskGetCmd())
	cmd.AddCommand(taskSummaryCmd())
	cmd.AddCommand(taskAssignCmd())
	cmd.AddCommand(taskEditCmd())
	cmd.AddCommand(taskSubmitCmd())
	cmd.AddCommand(taskApproveCmd())
	cmd.AddCommand(taskRejectCmd())
	cmd.AddCommand(taskDeleteCmd())
	return cmd
}

func taskListCmd() *cobra.Command {
	var status, assignee, taskType string
	var inbox, review bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *app.Client) error {
				tasks, err := c.Engine.List(ctx)
				if err != nil {
					return err
				}
				var f repo.TaskFilters
				if status != "" {
					if f.Status, err = domain.ParseStatus(status); err != nil {
						return err
					}
				}
				if taskType != "" {
					if f.TaskType, err = domain.ParseTaskType(taskType); err != nil {
						return err
					}
				}
				f.AssignedTo = assignee
				switch {
				case inbox:
					id, err := c.Engine.Session.UserID()
					if err != nil {
						return fmt.Errorf("--inbox needs --actor: %w", err)
					}
					tasks = repo.InspectorInbox(tasks, id)
				case review:
					tasks = repo.ReviewQueue(tasks)
				}
				tasks = repo.Filter(tasks, f)
				if viper.GetBool("json") {
					if tasks == nil {
						tasks = []domain.Task{}
					}
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Type", "Asset", "Status", "Inspector", "Due", "Description"})
				for _, t := range tasks {
					asset, _ := t.Asset()
					inspector := t.AssignedToName
					if inspector == "" {
						inspector = t.AssignedTo
					}
					tw.AppendRow(table.Row{t.ID, t.TaskType, asset.ID, t.Status, inspector, t.DueDate, t.Description})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	cmd.Flags().StringVar(&assignee, "assignee", "", "inspector user id filter")
	cmd.Flags().StringVar(&taskType, "type", "", "task type filter (BA-SET or SK)")
	cmd.Flags().BoolVar(&inbox, "inbox", false, "tasks the acting inspector still has to submit")
	cmd.Flags().BoolVar(&review, "review", false, "tasks awaiting a review decision")
	return cmd
}

func taskGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a task as the reviewer sees it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *app.Client) error {
				t, err := c.Engine.Tasks.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(t)
				}
				return printJSONOrTable(domain.NewReviewView(t))
			})
		},
	}
}

func taskSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count tasks per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *app.Client) error {
				tasks, err := c.Engine.List(ctx)
				if err != nil {
					return err
				}
				counts := repo.CountByStatus(tasks)
				if viper.GetBool("json") {
					return printJSON(counts)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Status", "Tasks"})
				for _, st := range domain.Statuses() {
					tw.AppendRow(table.Row{st, counts[st]})
				}
				tw.AppendFooter(table.Row{"Total", len(tasks)})
				tw.Render()
				return nil
			})
		},
	}
}

type assignFlags struct {
	description string
	inspector   string
	due         string
	taskType    string
	assets      []string
}

func (f *assignFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.description, "description", "", "task description")
	cmd.Flags().StringVar(&f.inspector, "inspector", "", "inspector user id or name")
	cmd.Flags().StringVar(&f.due, "due", "", "due date")
	cmd.Flags().StringVar(&f.taskType, "type", string(domain.TaskTypeBASet), "task type (BA-SET or SK)")
	cmd.Flags().StringSliceVar(&f.assets, "asset", nil, "asset id (repeatable)")
}

func (f *assignFlags) request(ctx context.Context, c *app.Client) (engine.AssignmentRequest, error) {
	req := engine.AssignmentRequest{
		Description: f.description,
		DueDate:     f.due,
		TaskType:    domain.TaskType(strings.ToUpper(strings.TrimSpace(f.taskType))),
		AssetIDs:    f.assets,
	}
	if f.inspector != "" {
		u, err := c.Users.Lookup(ctx, f.inspector)
		if err != nil {
			return req, err
		}
		req.Inspector = &u
	}
	return req, nil
}

func taskAssignCmd() *cobra.Command {
	var f assignFlags
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Create one Pending task per selected asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *app.Client) error {
				req, err := f.request(ctx, c)
				if err != nil {
					return err
				}
				res, err := c.Engine.Assign(ctx, req)
				var partial *engine.PartialAssignmentError
				if errors.As(err, &partial) {
					fmt.Fprintf(os.Stderr, "warning: %d of %d tasks created before failure\n", partial.Created, partial.Total)
					_ = printTasks(res.Tasks)
					return err
				}
				if err != nil {
					return err
				}
				if !viper.GetBool("json") {
					fmt.Printf("%d task(s) assigned\n", res.Count())
				}
				return printTasks(res.Tasks)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func taskEditCmd() *cobra.Command {
	var f assignFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an existing assignment in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *app.Client) error {
				existing, err := c.Engine.Tasks.Get(ctx, args[0])
				if err != nil {
					return err
				}
				mergeAssignment(cmd, &f, existing)
				req, err := f.request(ctx, c)
				if err != nil {
					return err
				}
				req.Existing = &existing
				res, err := c.Engine.Assign(ctx, req)
				if err != nil {
					return err
				}
				return printTasks(res.Tasks)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

// mergeAssignment fills the flags the user did not pass from the existing task.
func mergeAssignment(cmd *cobra.Command, f *assignFlags, t domain.Task) {
	if !cmd.Flags().Changed("description") {
		f.description = t.Description
	}
	if !cmd.Flags().Changed("inspector") {
		f.inspector = t.AssignedTo
	}
	if !cmd.Flags().Changed("due") {
		f.due = t.DueDate
	}
	if !cmd.Flags().Changed("type") {
		f.taskType = string(t.TaskType)
	}
	if !cmd.Flags().Changed("asset") {
		if a, ok := t.Asset(); ok {
			f.assets = []string{a.ID}
		}
	}
}

func taskSubmitCmd() *cobra.Command {
	var (
		dataFile string
		checks   map[string]string
		readings domain.BAReadings
		remarks  string
		location string
	)
	cmd := &cobra.Command{
		Use:   "submit <id>",
		Short: "Submit inspection findings for approval",
		Long: `Submit the inspection of a Pending or Rejected task.
BA-SET tasks need all six checklist items (OK, NOT OK or N/A), e.g.
  il task submit 42 --check faceMask=OK --check harness="NOT OK" ...
SK tasks take the material table from --data (JSON); without it an empty table is sent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *app.Client) error {
				t, err := c.Engine.Tasks.Get(ctx, args[0])
				if err != nil {
					return err
				}
				var data domain.InspectionData
				if dataFile != "" {
					if data, err = readInspection(dataFile); err != nil {
						return err
					}
				}
				if len(checks) > 0 {
					if data.Checklist == nil {
						data.Checklist = map[string]domain.CheckResult{}
					}
					for k, v := range checks {
						data.Checklist[k] = domain.CheckResult(strings.ToUpper(v))
					}
				}
				if readings != (domain.BAReadings{}) {
					data.Readings = &readings
				}
				if t.TaskType == domain.TaskTypeSafetyKit && data.Materials == nil {
					data.Materials = domain.NewSafetyKitForm()
				}
				if remarks != "" {
					data.Remarks = remarks
				}
				if location != "" {
					if !json.Valid([]byte(location)) {
						return fmt.Errorf("--location must be JSON")
					}
					data.Location = json.RawMessage(location)
				}
				updated, err := c.Engine.SubmitInspection(ctx, t.ID, data)
				if err != nil {
					return err
				}
				return printJSONOrTable(domain.NewReviewView(updated))
			})
		},
	}
	cmd.Flags().StringVar(&dataFile, "data", "", "inspection data JSON file (- for stdin)")
	cmd.Flags().StringToStringVar(&checks, "check", nil, "checklist answer item=OK|NOT OK|N/A (repeatable)")
	cmd.Flags().StringVar(&readings.CylinderPressure, "cylinder-pressure", "", "BA cylinder pressure reading")
	cmd.Flags().StringVar(&readings.GaugePressure, "gauge-pressure", "", "BA gauge pressure reading")
	cmd.Flags().StringVar(&readings.FlowRate, "flow-rate", "", "BA flow rate reading")
	cmd.Flags().StringVar(&remarks, "remarks", "", "free text remarks")
	cmd.Flags().StringVar(&location, "location", "", "captured location as JSON")
	return cmd
}

func readInspection(path string) (domain.InspectionData, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return domain.InspectionData{}, err
	}
	var data domain.InspectionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.InspectionData{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return data, nil
}

func taskApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a submitted inspection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return decide(cmd.Context(), args[0], engine.DecisionApprove, "")
		},
	}
}

func taskRejectCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a submitted inspection with a reason",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return decide(cmd.Context(), args[0], engine.DecisionReject, reason)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "rejection reason shown to the inspector")
	return cmd
}

func decide(ctx context.Context, id string, d engine.Decision, reason string) error {
	return withClient(ctx, func(ctx context.Context, c *app.Client) error {
		t, err := c.Engine.Decide(ctx, id, d, reason)
		if err != nil {
			return err
		}
		return printJSONOrTable(t)
	})
}

func taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *app.Client) error {
				if err := c.Engine.DeleteTask(ctx, args[0]); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"deleted": args[0]})
				}
				fmt.Println("deleted", args[0])
				return nil
			})
		},
	}
}

func assetCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "asset", Short: "Browse the asset catalog"}
	var taskType string
	list := &cobra.Command{
		Use:   "list",
		Short: "List BA sets or safety kits",
		RunE: func(cmd *cobra.Command, args []string) error {
			tt, err := domain.ParseTaskType(strings.ToUpper(taskType))
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *app.Client) error {
				items, err := c.Engine.Assets.List(ctx, tt)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Serial", "Zone", "Location", "Next service"})
				for _, a := range items {
					tw.AppendRow(table.Row{a.ID, a.Name, a.SerialNumber, a.Zone, a.Location, a.NextServiceDate})
				}
				tw.Render()
				return nil
			})
		},
	}
	list.Flags().StringVar(&taskType, "type", string(domain.TaskTypeBASet), "asset collection (BA-SET or SK)")
	cmd.AddCommand(list)
	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Browse the user directory"}
	var eligible bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *app.Client) error {
				var (
					users []domain.User
					err   error
				)
				if eligible {
					users, err = c.Users.Eligible(ctx)
				} else {
					users, err = c.Users.List(ctx)
				}
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(users)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Department", "Role"})
				for _, u := range users {
					tw.AppendRow(table.Row{u.ID, u.Name, u.Department, u.Role})
				}
				tw.Render()
				return nil
			})
		},
	}
	list.Flags().BoolVar(&eligible, "eligible", false, "only accounts that can receive assignments")
	cmd.AddCommand(list)
	return cmd
}

func logCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Local workflow journal",
		Long:  "Every assignment, submission, decision and deletion made from this workspace.",
	}
	var n int
	var evtType, taskID string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Show the latest journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *app.Client) error {
				evts, err := c.Journal().Latest(ctx, n, evtType, taskID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(evts)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Time", "Type", "Task", "Actor", "Payload"})
				for _, e := range evts {
					tw.AppendRow(table.Row{e.ID, e.TS, e.Type, e.TaskID, e.ActorID, e.Payload})
				}
				tw.Render()
				return nil
			})
		},
	}
	tail.Flags().IntVarP(&n, "n", "n", 20, "number of entries")
	tail.Flags().StringVar(&evtType, "type", "", "event type filter")
	tail.Flags().StringVar(&taskID, "task", "", "task id filter")
	cmd.AddCommand(tail)
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect workspace config",
		Long:  "Config lives in inspectline.yml at the workspace root. Missing keys fall back to defaults.",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return printJSONOrTable(cfg)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate inspectline.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := config.Load(viper.GetString("workspace"))
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	})
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default inspectline.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath, seedFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference task store",
		Long:  "Serves tasks, BA sets, safety kits and users over HTTP from a sqlite file in the workspace.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") && cfg.Server.Addr != "" {
				addr = cfg.Server.Addr
			}
			if !cmd.Flags().Changed("base-path") && cfg.Server.BasePath != "" {
				basePath = cfg.Server.BasePath
			}
			if !cmd.Flags().Changed("seed") {
				seedFile = cfg.Server.SeedFile
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			s, closeStore, err := app.OpenStore(cmd.Context(), viper.GetString("workspace"), seedFile)
			if err != nil {
				return err
			}
			defer closeStore()
			handler, err := storeserver.New(storeserver.Config{Store: s, BasePath: basePath, Logger: logger})
			if err != nil {
				return err
			}
			fmt.Printf("Serving Inspectline store on http://%s%s (OpenAPI at %s/openapi.json)\n", addr, basePath, basePath)
			return storeserver.Serve(cmd.Context(), addr, handler, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v1", "API base path")
	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML file with ba_sets, safety_kits and users to preload")
	return cmd
}

// loadConfig reads inspectline.yml over the defaults and applies flag and
// INSPECTLINE_* overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOptional(viper.GetString("workspace"))
	if err != nil {
		return nil, err
	}
	if v := viper.GetString("remote"); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := viper.GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	return cfg, cfg.Validate()
}

func withClient(ctx context.Context, fn func(context.Context, *app.Client) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	c, err := app.OpenClient(ctx, app.Options{
		Workspace: viper.GetString("workspace"),
		Actor:     viper.GetString("actor"),
		Config:    cfg,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}

func printTasks(tasks []domain.Task) error {
	if viper.GetBool("json") {
		if tasks == nil {
			tasks = []domain.Task{}
		}
		return printJSON(tasks)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Type", "Asset", "Status", "Inspector", "Due"})
	sorted := append([]domain.Task(nil), tasks...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt < sorted[j].CreatedAt })
	for _, t := range sorted {
		asset, _ := t.Asset()
		tw.AppendRow(table.Row{t.ID, t.TaskType, asset.ID, t.Status, t.AssignedTo, t.DueDate})
	}
	tw.Render()
	return nil
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
