package calendar

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/attendance-dashboard/pkg/dateutil"
)

// LoadFestivalFile reads festival dates from a local text file.
//
// Format: one "YYYY-MM-DD [name]" entry per line; blank lines and lines
// starting with # are ignored. Malformed lines are logged and skipped.
func LoadFestivalFile(filePath string, logger *zap.Logger) ([]Festival, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open festival file: %w", err)
	}
	defer file.Close()

	var festivals []Festival
	scanner := bufio.NewScanner(file)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Example: 2025-10-20 Diwali
		parts := strings.SplitN(line, " ", 2)

		date, err := time.Parse(dateutil.DateLayout, parts[0])
		if err != nil {
			logger.Warn("Failed to parse festival date",
				zap.Int("line", lineNo),
				zap.String("date", parts[0]),
				zap.Error(err))
			continue
		}

		name := ""
		if len(parts) == 2 {
			name = strings.TrimSpace(parts[1])
		}
		festivals = append(festivals, Festival{Date: date, Name: name})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading festival file: %w", err)
	}

	logger.Info("Festival file loaded",
		zap.String("file", filePath),
		zap.Int("festivals", len(festivals)))

	return festivals, nil
}
