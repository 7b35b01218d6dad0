package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/attendance-dashboard/internal/attendance"
	"github.com/username/attendance-dashboard/internal/calendar"
	"github.com/username/attendance-dashboard/internal/config"
	"github.com/username/attendance-dashboard/internal/dashboard"
	"github.com/username/attendance-dashboard/internal/sheetapi"
)

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "attendance-dashboard",
		Short:         "Attendance dashboard",
		Long:          "Classify check-in/check-out sheets into daily status, monthly summaries and a master log",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(configPath)
			if err != nil {
				logger = newLogger("", "info")
				return
			}
			logger = newLogger(cfg.Log.File, cfg.Log.Level)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ./config.yaml)")

	rootCmd.AddCommand(todayCmd())
	rootCmd.AddCommand(employeeCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the components every command needs
type app struct {
	cfg      *config.Config
	calendar *calendar.HolidayCalendar
	service  *dashboard.Service
}

func initializeApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Holiday calendar: configured festivals plus the optional festival file
	festivals, err := calendar.ParseFestivals(cfg.Calendar.FestivalHolidays)
	if err != nil {
		return nil, fmt.Errorf("invalid festival holidays: %w", err)
	}
	cal := calendar.New(cfg.Calendar.GetRestDay(), festivals, logger)
	if cfg.Calendar.FestivalFile != "" {
		fromFile, err := calendar.LoadFestivalFile(cfg.Calendar.FestivalFile, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load festival file: %w", err)
		}
		cal.AddFestivals(fromFile)
	}

	rules, err := cfg.Rules.Build()
	if err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	classifier := attendance.NewClassifier(rules, cal)

	client, err := sheetapi.NewClient(sheetapi.Options{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.GetTimeout(),
		Retries:        cfg.API.Retries,
		Backoff:        cfg.API.GetRetryBackoff(),
		MaxConcurrency: cfg.API.MaxConcurrency,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet client: %w", err)
	}

	logger.Info("Components initialized",
		zap.String("rest_day", cal.RestDay().String()),
		zap.Int("festivals", len(cal.Festivals())),
		zap.String("timezone", cfg.Calendar.Location().String()))

	return &app{
		cfg:      cfg,
		calendar: cal,
		service:  dashboard.NewService(client, classifier, cfg.Calendar.Location(), logger),
	}, nil
}

// newLogger writes JSON to stderr and, when file is set, to a rotated log
// file as well. Unknown levels fall back to info.
func newLogger(file, level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), lvl),
	}
	if file != "" {
		cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}), lvl))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}
