package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/evanschultz/todoboard/internal/adapters/server"
	"github.com/evanschultz/todoboard/internal/app"
	"github.com/evanschultz/todoboard/internal/backend"
	"github.com/evanschultz/todoboard/internal/config"
	"github.com/evanschultz/todoboard/internal/domain"
	"github.com/evanschultz/todoboard/internal/tui"
	"github.com/spf13/cobra"
)

// runBoard runs the interactive board.
func runBoard(cmd *cobra.Command, opts *globalOptions) error {
	env, err := opts.load("tui")
	if err != nil {
		return err
	}
	defer env.close(opts.stderr)
	session, _, err := env.newSession()
	if err != nil {
		return err
	}

	// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the board is active.
	env.logger.SetConsoleEnabled(false)
	m := tui.NewModel(
		session,
		tui.WithSource(env.cfg.Remote.BaseURL),
		tui.WithConfirmDelete(env.cfg.Board.ConfirmDelete),
		tui.WithCardFieldConfig(tui.CardFieldConfig{
			ShowDescription: env.cfg.Board.ShowDescription,
			ShowDates:       env.cfg.Board.ShowDates,
		}),
	)
	env.logger.Info("starting tui program loop", "base_url", env.cfg.Remote.BaseURL)
	if _, err := programFactory(m).Run(); err != nil {
		env.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	env.logger.Info("command flow complete", "command", "tui")
	return nil
}

func newListCommand(opts *globalOptions) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the board as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var only domain.Status
			if strings.TrimSpace(status) != "" {
				parsed, err := domain.ParseStatus(status)
				if err != nil {
					return asUserError(err)
				}
				only = parsed
			}
			env, err := opts.load("list")
			if err != nil {
				return err
			}
			defer env.close(opts.stderr)
			session, _, err := env.newSession()
			if err != nil {
				return err
			}
			if err := session.Load(cmd.Context()); err != nil {
				return asUserError(err)
			}
			writeBoardTable(cmd.OutOrStdout(), session.Board(), only)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only list one column (todo, in_progress, completed)")
	return cmd
}

// writeBoardTable renders board columns in status order, optionally limited to one status.
func writeBoardTable(w io.Writer, board app.Board, only domain.Status) {
	accent := lipgloss.Color("62")
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(accent)).
		Headers("ID", "Status", "Title", "Start", "End").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	count := 0
	for _, column := range board.Columns {
		if only != "" && column.Status != only {
			continue
		}
		for _, task := range column.Tasks {
			t.Row(task.ID.String(), column.Status.Label(), task.Title, domain.FormatDate(task.StartDate), domain.FormatDate(task.EndDate))
			count++
		}
	}
	_, _ = fmt.Fprintln(w, t.Render())
	_, _ = fmt.Fprintf(w, "%d tasks\n", count)
}

func newAddCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add TITLE...",
		Short: "Create a task in the To Do column",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load("add")
			if err != nil {
				return err
			}
			defer env.close(opts.stderr)
			session, _, err := env.newSession()
			if err != nil {
				return err
			}
			task, err := session.CreateTask(cmd.Context(), strings.Join(args, " "))
			if err != nil && task.ID == "" {
				return asUserError(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created #%s %s\n", task.ID, task.Title)
			return nil
		},
	}
}

func newMoveCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move ID STATUS",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseTaskID(args[0])
			if err != nil {
				return asUserError(err)
			}
			target, err := domain.ParseStatus(args[1])
			if err != nil {
				return asUserError(err)
			}
			env, err := opts.load("move")
			if err != nil {
				return err
			}
			defer env.close(opts.stderr)
			session, _, err := env.newSession()
			if err != nil {
				return err
			}
			if err := session.Load(cmd.Context()); err != nil {
				return asUserError(err)
			}
			result, err := session.MoveTask(cmd.Context(), id, target)
			if err != nil {
				return asUserError(err)
			}
			if !result.Moved {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "#%s already in %s\n", id, target.Label())
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "moved #%s to %s\n", id, target.Label())
			return nil
		},
	}
}

func newShowCommand(opts *globalOptions) *cobra.Command {
	var raw bool
	var width int
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one task with its rendered description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseTaskID(args[0])
			if err != nil {
				return asUserError(err)
			}
			env, err := opts.load("show")
			if err != nil {
				return err
			}
			defer env.close(opts.stderr)
			client, err := env.newClient()
			if err != nil {
				return err
			}
			task, err := client.Get(cmd.Context(), id)
			if err != nil {
				return asUserError(err)
			}
			writeTaskDetails(cmd.OutOrStdout(), task, raw, width)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the description without markdown rendering")
	cmd.Flags().IntVar(&width, "width", 80, "wrap width for the rendered description")
	return cmd
}

func writeTaskDetails(w io.Writer, task domain.Task, raw bool, width int) {
	title := lipgloss.NewStyle().Bold(true).Render(task.Title)
	_, _ = fmt.Fprintf(w, "#%s %s\n", task.ID, title)
	_, _ = fmt.Fprintf(w, "status: %s\n", task.Status.Label())
	_, _ = fmt.Fprintf(w, "start:  %s\n", orDash(domain.FormatDate(task.StartDate)))
	_, _ = fmt.Fprintf(w, "end:    %s\n", orDash(domain.FormatDate(task.EndDate)))
	if strings.TrimSpace(task.Description) == "" {
		return
	}
	_, _ = fmt.Fprintln(w)
	if raw {
		_, _ = fmt.Fprintln(w, task.Description)
		return
	}
	_, _ = fmt.Fprintln(w, tui.RenderMarkdown(task.Description, width))
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func newEditCommand(opts *globalOptions) *cobra.Command {
	var description, start, end string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a task's description and date range",
		Long:  "Edit a task's description and date range. Omitted flags keep their current value; an empty value clears the field.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseTaskID(args[0])
			if err != nil {
				return asUserError(err)
			}
			flags := cmd.Flags()
			if !flags.Changed("description") && !flags.Changed("start") && !flags.Changed("end") {
				return fmt.Errorf("nothing to edit: pass --description, --start or --end")
			}
			var startDate, endDate *domain.Date
			if flags.Changed("start") {
				if startDate, err = domain.ParseDate(start); err != nil {
					return asUserError(err)
				}
			}
			if flags.Changed("end") {
				if endDate, err = domain.ParseDate(end); err != nil {
					return asUserError(err)
				}
			}

			env, err := opts.load("edit")
			if err != nil {
				return err
			}
			defer env.close(opts.stderr)
			session, _, err := env.newSession()
			if err != nil {
				return err
			}
			if err := session.Load(cmd.Context()); err != nil {
				return asUserError(err)
			}
			buf, err := session.OpenEditor(cmd.Context(), id)
			if err != nil {
				return asUserError(err)
			}
			defer session.CloseEditor()
			if buf.Degraded {
				env.logger.Warn("editing cached copy; task server read failed", "task", id)
			}
			if flags.Changed("description") {
				buf.Description = description
			}
			if flags.Changed("start") {
				buf.StartDate = startDate
			}
			if flags.Changed("end") {
				buf.EndDate = endDate
			}
			task, err := session.SaveEditor(cmd.Context(), buf)
			if err != nil && task.ID == "" {
				return asUserError(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated #%s %s\n", task.ID, task.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "new description (markdown)")
	cmd.Flags().StringVar(&start, "start", "", "start date YYYY-MM-DD (empty clears)")
	cmd.Flags().StringVar(&end, "end", "", "end date YYYY-MM-DD (empty clears)")
	return cmd
}

func newRemoveCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseTaskID(args[0])
			if err != nil {
				return asUserError(err)
			}
			env, err := opts.load("rm")
			if err != nil {
				return err
			}
			defer env.close(opts.stderr)
			session, _, err := env.newSession()
			if err != nil {
				return err
			}
			if err := session.DeleteTask(cmd.Context(), id); err != nil {
				if _, ok := app.AsNetworkFailure(err); ok {
					return asUserError(err)
				}
				env.logger.Warn("refresh after delete failed", "task", id, "err", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted #%s\n", id)
			return nil
		},
	}
}

func newServeCommand(opts *globalOptions) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the in-memory reference task server (REST, MCP, metrics)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.load("serve")
			if err != nil {
				return err
			}
			defer env.close(opts.stderr)
			if strings.TrimSpace(bind) == "" {
				bind = env.cfg.Serve.Bind
			}
			env.logger.Info("command flow start", "command", "serve", "bind", bind)
			err = server.Run(cmd.Context(), server.Config{
				HTTPBind:      bind,
				MCPEndpoint:   env.cfg.Serve.MCPEndpoint,
				MetricsPath:   env.cfg.Serve.MetricsPath,
				ServerName:    "todoboard",
				ServerVersion: version,
			}, server.Dependencies{
				Tasks:  backend.NewStore(),
				Logger: env.logger,
			})
			if err != nil {
				env.logger.Error("command flow failed", "command", "serve", "err", err)
				return fmt.Errorf("run serve command: %w", err)
			}
			env.logger.Info("command flow complete", "command", "serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address (defaults to serve.bind)")
	return cmd
}

func newPathsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := opts.resolvePaths()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", paths.AppName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s (%s)\n", paths.ConfigPath, paths.ConfigSource)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

func newConfigCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := opts.resolvePaths()
			if err != nil {
				return err
			}
			path := paths.ConfigPath
			cfg := config.Default(paths.LogDir)
			if baseURL := strings.TrimSpace(opts.baseURL); baseURL != "" {
				cfg.Remote.BaseURL = baseURL
			}
			if err := config.Write(path, cfg, force); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.AddCommand(initCmd)
	return cmd
}
