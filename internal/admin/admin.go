// Package admin implements the finctl maintenance commands. Every command
// works directly on the configured store, without going through the web
// server.
package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/session"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// Globals are the flags shared by every command. Unset flags fall back to
// the same environment variables the server reads.
type Globals struct {
	Backend    string `help:"Storage backend (file, sqlite, memory)." env:"DATA_BACKEND" default:"file" enum:"file,sqlite,memory"`
	DataDir    string `help:"Data directory of the file backend." env:"DATA_DIR" default:"./usuarios_dados" type:"path"`
	SQLitePath string `help:"Database path of the sqlite backend." env:"SQLITE_DB_PATH" default:"./data/fintrack.db" type:"path"`
	LogLevel   string `help:"Log level." env:"LOG_LEVEL" default:"warn"`
}

// Deps is what commands run against. The binary builds it once after flag
// parsing; tests build it around an in-memory store.
type Deps struct {
	Store     storage.Store
	Publisher services.ChangePublisher
	Logger    *log.Logger
	Out       io.Writer
	In        io.Reader
	Now       func() time.Time
	// Sheets opens the spreadsheet mirror; nil when it is not configured.
	Sheets            func(ctx context.Context) (sheets.ReportWriter, error)
	ExportConcurrency int
	// BcryptCost overrides the password hashing cost when non-zero.
	BcryptCost int
}

var ErrAborted = errors.New("aborted")

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00875F", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#005FAF", Dark: "#5FAFFF"})
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render(successSymbol), message)
}

// PrintError writes a failure line; the binary uses it before exiting.
func PrintError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render(errorSymbol), errorStyle.Render(message))
}

func printInfof(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", infoStyle.Render(infoSymbol), fmt.Sprintf(format, args...))
}

func (d *Deps) logger() *log.Logger {
	if d.Logger == nil {
		return log.Discard()
	}
	return d.Logger
}

func (d *Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// ledgerService returns a service acting on behalf of username.
func (d *Deps) ledgerService(ctx context.Context, username string) (*services.LedgerService, context.Context) {
	svc := services.NewLedgerService(d.Store, d.Publisher, d.logger(), services.WithClock(d.now))
	return svc, session.WithUser(ctx, username)
}

// requireUser fails unless username is registered.
func (d *Deps) requireUser(ctx context.Context, username string) error {
	if _, err := d.Store.GetUser(ctx, username); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return fmt.Errorf("get user: %w", err)
	}
	return nil
}

// readLine reads one line from in, without the trailing newline.
func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword prompts on out and reads a password from in without echo
// when in is a terminal.
func readPassword(in io.Reader, out io.Writer, prompt string) (string, error) {
	_, _ = fmt.Fprint(out, prompt)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}
	pw, err := readLine(in)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}

// confirm asks a yes/no question; anything but "s" or "y" means no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprintf(out, "%s [s/N] ", question)
	answer, err := readLine(in)
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}
