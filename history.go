package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func getStateDir() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stateHome = filepath.Join(homeDir, ".local", "state")
	}
	return filepath.Join(stateHome, "fanseek")
}

// History is the tab-separated query log: timestamp, content types, query
type History struct {
	path    string
	max     int
	enabled bool
}

type HistoryEntry struct {
	Timestamp    time.Time
	ContentTypes []string
	Query        string
}

func newHistory(config *Config) *History {
	maxHistory := config.MaxHistory
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}
	dir := getStateDir()
	return &History{
		path:    filepath.Join(dir, "history"),
		max:     maxHistory,
		enabled: config.HistoryEnabled && dir != "",
	}
}

// Append records a query and trims the log to the configured size
func (h *History) Append(query string, contentTypes []string, now time.Time) error {
	query = strings.TrimSpace(query)
	if !h.enabled || query == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	types := strings.Join(contentTypes, ",")
	if types == "" {
		types = "web"
	}
	query = strings.ReplaceAll(query, "\t", " ")
	_, err = fmt.Fprintf(f, "%s\t%s\t%s\n", now.Format(time.RFC3339), types, query)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	return h.trim()
}

func (h *History) trim() error {
	lines, err := h.readLines()
	if err != nil {
		return err
	}
	if len(lines) <= h.max {
		return nil
	}

	lines = lines[len(lines)-h.max:]
	return os.WriteFile(h.path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

func (h *History) readLines() ([]string, error) {
	f, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines, scanner.Err()
}

// Load returns entries oldest first, skipping malformed lines
func (h *History) Load() ([]HistoryEntry, error) {
	lines, err := h.readLines()
	if err != nil {
		return nil, err
	}

	var entries []HistoryEntry
	for _, line := range lines {
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}

		ts, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			continue
		}

		entries = append(entries, HistoryEntry{
			Timestamp:    ts,
			ContentTypes: strings.Split(parts[1], ","),
			Query:        parts[2],
		})
	}

	return entries, nil
}

// Print writes the most recent limit entries (all when limit <= 0)
func (h *History) Print(w io.Writer, limit int) error {
	entries, err := h.Load()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No search history.")
		return nil
	}

	start := 0
	if limit > 0 && limit < len(entries) {
		start = len(entries) - limit
	}

	for _, entry := range entries[start:] {
		fmt.Fprintf(w, "  %s  %-18s %s\n",
			entry.Timestamp.Format("2006-01-02 15:04"),
			"["+strings.Join(entry.ContentTypes, ",")+"]",
			entry.Query)
	}

	return nil
}

func (h *History) Clear() error {
	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
