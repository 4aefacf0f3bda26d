package main

import (
	"context"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/futig/coverletter-backend/internal/builder"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logPath := os.Getenv("TUI_LOG_PATH")
	if logPath == "" {
		logPath = "coverletter-tui.log"
	}

	app, logger, err := builder.BuildTUI(ctx, logPath, os.Getenv("TUI_OUTPUT_DIR"))
	if err != nil {
		log.Fatal("Failed to build terminal app:", err)
	}
	defer logger.Sync()

	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		logger.Error("terminal app error", zap.Error(err))
		log.Fatal("Terminal app error:", err)
	}
}
