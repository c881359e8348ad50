// Package clipboard copies text to the system clipboard with command fallbacks
package clipboard

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// CopiedMsg reports the outcome of a Write command
type CopiedMsg struct {
	Text string
	Err  error
}

// Service provides clipboard operations across different platforms
type Service interface {
	// Write copies text to the system clipboard and returns a tea.Cmd reporting CopiedMsg
	Write(text string) tea.Cmd
}

// clipboardService implements the Service interface
type clipboardService struct {
	command string // user override, tried when the native clipboard fails
	logger  *slog.Logger

	// seams for tests
	writeAll   func(string) error
	runCommand func(parts []string, text string) error
}

// NewService creates a new clipboard service. command may be empty.
func NewService(command string, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &clipboardService{
		command:    command,
		logger:     logger,
		writeAll:   clipboard.WriteAll,
		runCommand: runWithStdin,
	}
}

// Write implements Service
func (s *clipboardService) Write(text string) tea.Cmd {
	return func() tea.Msg {
		return CopiedMsg{Text: text, Err: s.copy(text)}
	}
}

// copy tries the native clipboard, then the configured command, then platform tools
func (s *clipboardService) copy(text string) error {
	err := s.writeAll(text)
	if err == nil {
		s.logger.Debug("copied to clipboard", "text_length", len(text))
		return nil
	}
	s.logger.Warn("failed to copy to clipboard using primary method", "error", err)

	var candidates [][]string
	if s.command != "" {
		if parts := parseCommand(s.command); len(parts) > 0 {
			candidates = append(candidates, parts)
		}
	}
	candidates = append(candidates, defaultCommands()...)

	for _, parts := range candidates {
		if _, lookErr := exec.LookPath(parts[0]); lookErr != nil {
			continue
		}
		if runErr := s.runCommand(parts, text); runErr != nil {
			s.logger.Debug("clipboard command failed", "command", parts, "error", runErr)
			continue
		}
		s.logger.Debug("copied to clipboard", "command", parts, "text_length", len(text))
		return nil
	}

	return errors.New("no working clipboard (install wl-clipboard, xclip or xsel, or set clipboard.command)")
}

// defaultCommands lists copy tools in order of preference for this platform
func defaultCommands() [][]string {
	switch runtime.GOOS {
	case "windows":
		return [][]string{{"clip.exe"}}
	case "darwin":
		return [][]string{{"pbcopy"}}
	default:
		if isWSL() {
			return [][]string{{"clip.exe"}}
		}
		return [][]string{
			{"wl-copy"},
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}
	}
}

func runWithStdin(parts []string, text string) error {
	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", parts[0], err)
	}
	return nil
}

// parseCommand parses a command string into executable parts, respecting quotes
func parseCommand(command string) []string {
	var parts []string
	var current strings.Builder
	var inQuotes bool
	var quoteChar rune

	for _, char := range command {
		switch {
		case char == '\'' || char == '"':
			if !inQuotes {
				inQuotes = true
				quoteChar = char
			} else if char == quoteChar {
				inQuotes = false
			} else {
				current.WriteRune(char)
			}
		case char == ' ' && !inQuotes:
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

// isWSL checks if the application is running in Windows Subsystem for Linux
func isWSL() bool {
	versionBytes, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	version := strings.ToLower(string(versionBytes))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}
