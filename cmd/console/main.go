package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/quest-engine/internal/logger"
)

type ConsoleConfig struct {
	APIBaseURL string
	DataDir    string // When set, play locally from this directory
	MapID      string
	Timeout    time.Duration
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		DataDir:    os.Getenv("LOCAL_DATA_DIR"),
		MapID:      getEnv("MAP_ID", "valley"),
		Timeout:    30 * time.Second,
	}

	game, err := openGame(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, game),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func openGame(cfg *ConsoleConfig) (Game, error) {
	if cfg.DataDir != "" {
		return newLocalGame(context.Background(), cfg.DataDir, logger.Discard())
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}
	if !testConnection(client, cfg.APIBaseURL) {
		return nil, fmt.Errorf("could not connect to API at %s; start it or set LOCAL_DATA_DIR to play offline", cfg.APIBaseURL)
	}
	return newRemoteGame(client, cfg.APIBaseURL), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
