package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/username/attendance-dashboard/internal/attendance"
	"github.com/username/attendance-dashboard/internal/export"
	"github.com/username/attendance-dashboard/internal/refresher"
	"github.com/username/attendance-dashboard/internal/server"
	"github.com/username/attendance-dashboard/pkg/dateutil"
)

func todayCmd() *cobra.Command {
	var dateStr, filterStr, search string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the attendance of one day (default: today)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}

			filter, err := attendance.ParseFilter(filterStr)
			if err != nil {
				return err
			}
			date, err := optionalDate(dateStr, a)
			if err != nil {
				return err
			}

			view, err := a.service.Today(cmd.Context(), date)
			if err != nil {
				return fmt.Errorf("failed to build today view: %w", err)
			}

			renderToday(os.Stdout, view, view.Rows(filter, search), a.cfg.Calendar.Location())
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "Date (YYYY-MM-DD), default today")
	cmd.Flags().StringVar(&filterStr, "filter", "present", "Rows to show: present, onTime, exceptions, absent, all")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive name filter")

	return cmd
}

func employeeCmd() *cobra.Command {
	var monthStr string

	cmd := &cobra.Command{
		Use:   "employee <uid>",
		Short: "Show one employee's month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			month, err := optionalMonth(monthStr, a)
			if err != nil {
				return err
			}

			res, err := a.service.EmployeeMonth(cmd.Context(), args[0], month)
			if err != nil {
				return fmt.Errorf("failed to build employee month: %w", err)
			}

			renderMonth(os.Stdout, res, a.cfg.Calendar.Location())
			return nil
		},
	}

	cmd.Flags().StringVar(&monthStr, "month", "", "Month (YYYY-MM), default current month")

	return cmd
}

func logCmd() *cobra.Command {
	var monthStr string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the merged monthly master log",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			month, err := optionalMonth(monthStr, a)
			if err != nil {
				return err
			}

			res, err := a.service.MasterLog(cmd.Context(), month)
			if err != nil {
				return err
			}

			renderLog(os.Stdout, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&monthStr, "month", "", "Month (YYYY-MM), default current month")

	return cmd
}

func calendarCmd() *cobra.Command {
	var monthStr string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show working days and holidays of a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			month, err := optionalMonth(monthStr, a)
			if err != nil {
				return err
			}
			if month.IsZero() {
				month = a.service.Now()
			}

			info := a.calendar.GetMonthInfo(month.Year(), month.Month(), a.cfg.Calendar.Location())
			renderCalendar(os.Stdout, info)
			return nil
		},
	}

	cmd.Flags().StringVar(&monthStr, "month", "", "Month (YYYY-MM), default current month")

	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reports to CSV or XLSX",
	}
	cmd.AddCommand(exportMonthCmd())
	cmd.AddCommand(exportLogCmd())
	return cmd
}

func exportMonthCmd() *cobra.Command {
	var monthStr, out string

	cmd := &cobra.Command{
		Use:   "month <uid>",
		Short: "Export one employee's month (.csv or .xlsx by extension)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			month, err := optionalMonth(monthStr, a)
			if err != nil {
				return err
			}

			res, err := a.service.EmployeeMonth(cmd.Context(), args[0], month)
			if err != nil {
				return fmt.Errorf("failed to build employee month: %w", err)
			}
			if out == "" {
				out = fmt.Sprintf("attendance-%s-%s.xlsx", res.UID, dateutil.FormatMonth(res.Month))
			}

			loc := a.cfg.Calendar.Location()
			var write func(io.Writer) error
			switch strings.ToLower(filepath.Ext(out)) {
			case ".csv":
				write = func(w io.Writer) error { return export.WriteMonthCSV(w, res.MonthAttendance, loc) }
			case ".xlsx":
				write = func(w io.Writer) error { return export.WriteMonthXLSX(w, res.MonthAttendance, loc) }
			default:
				return fmt.Errorf("unsupported export format %q, use .csv or .xlsx", filepath.Ext(out))
			}

			if err := export.SaveFile(out, write); err != nil {
				return err
			}
			if len(res.FailedDays) > 0 {
				logger.Warn("Some days could not be fetched and fell back to hints",
					zap.Strings("days", res.FailedDays))
			}
			fmt.Printf("Exported %s (%s) to %s\n", res.Name, dateutil.FormatMonth(res.Month), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&monthStr, "month", "", "Month (YYYY-MM), default current month")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (.csv or .xlsx)")

	return cmd
}

func exportLogCmd() *cobra.Command {
	var monthStr, out string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Export the merged master log to XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			month, err := optionalMonth(monthStr, a)
			if err != nil {
				return err
			}

			res, err := a.service.MasterLog(cmd.Context(), month)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("master-log-%s.xlsx", dateutil.FormatMonth(res.Month))
			}

			err = export.SaveFile(out, func(w io.Writer) error {
				return export.WriteLogXLSX(w, res.Month, res.MasterLog)
			})
			if err != nil {
				return err
			}
			fmt.Printf("Exported master log %s (%d employees) to %s\n", dateutil.FormatMonth(res.Month), len(res.Rows), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&monthStr, "month", "", "Month (YYYY-MM), default current month")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (.xlsx)")

	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API with a periodically refreshed today view",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ref := refresher.New(a.service, a.cfg.Refresh.GetInterval(), a.cfg.Calendar.Location(), logger)
			srv := server.New(a.service, ref, a.cfg.Server, logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return ref.Run(gctx) })
			g.Go(func() error { return srv.Run(gctx) })

			err = g.Wait()
			logger.Info("Shutdown complete")
			if err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
	return cmd
}

func optionalDate(s string, a *app) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return dateutil.ParseDate(s, a.cfg.Calendar.Location())
}

func optionalMonth(s string, a *app) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return dateutil.ParseMonth(s, a.cfg.Calendar.Location())
}
