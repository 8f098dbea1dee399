package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// ErrNoBrowser is returned when no opener command is installed
var ErrNoBrowser = errors.New("no supported browser found")

// Opener is a platform command that opens a URL in a browser
type Opener struct {
	Name    string
	Command string
	Args    []string // URL is appended
}

// command returns the argv for opening target
func (o Opener) command(target string) []string {
	args := make([]string, 0, len(o.Args)+1)
	args = append(args, o.Args...)
	return append(args, target)
}

var platformOpeners = map[string][]Opener{
	"darwin": {
		{Name: "default", Command: "open"},
	},
	"linux": {
		{Name: "xdg-open", Command: "xdg-open"},
		{Name: "sensible-browser", Command: "sensible-browser"},
		{Name: "chrome", Command: "google-chrome"},
		{Name: "firefox", Command: "firefox"},
	},
	"windows": {
		{Name: "default", Command: "rundll32", Args: []string{"url.dll,FileProtocolHandler"}},
	},
}

// Launcher opens the preview page in the user's browser
type Launcher struct {
	openers  []Opener
	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
	logger   *slog.Logger
}

var _ ports.BrowserLauncher = (*Launcher)(nil)

// NewLauncher creates a launcher for the current platform
func NewLauncher(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		openers:  platformOpeners[runtime.GOOS],
		lookPath: exec.LookPath,
		start:    startDetached,
		logger:   logger.With("adapter", "browser"),
	}
}

// Launch opens target unless noOpen is set. Only http and https URLs are
// accepted.
func (l *Launcher) Launch(target string, noOpen bool) error {
	if noOpen {
		return nil
	}

	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", target)
	}

	opener, err := l.selectOpener()
	if err != nil {
		return fmt.Errorf("browser selection: %w", err)
	}

	if err := l.start(opener.Command, opener.command(u.String())...); err != nil {
		return fmt.Errorf("launching %s: %w", opener.Name, err)
	}
	l.logger.Debug("Opened browser", slog.String("opener", opener.Name), slog.String("url", u.String()))
	return nil
}

// Detect returns the name of the opener Launch would use
func (l *Launcher) Detect() (string, error) {
	opener, err := l.selectOpener()
	if err != nil {
		return "", err
	}
	return opener.Name, nil
}

func (l *Launcher) selectOpener() (Opener, error) {
	for _, candidate := range l.openers {
		if _, err := l.lookPath(candidate.Command); err == nil {
			return candidate, nil
		}
	}
	return Opener{}, ErrNoBrowser
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...) // #nosec G204 - command comes from the fixed opener table
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
