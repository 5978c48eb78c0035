// Package notify shows desktop notifications through terminal-notifier.
package notify

import (
	"log/slog"
	"os/exec"
)

const (
	DefaultTitle  = "Fahrplan"
	DefaultBinary = "/opt/homebrew/bin/terminal-notifier"
	sender        = "com.runningwithcrayons.Alfred"
)

// Notifier sends notifications. Failures are logged and otherwise ignored.
type Notifier struct {
	Binary string
	Icon   string
	Logger *slog.Logger
	// run is replaced in tests.
	run func(name string, args ...string) error
}

// New returns a notifier using binary, or DefaultBinary when empty.
func New(binary string, logger *slog.Logger) *Notifier {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		Binary: binary,
		Icon:   "./icon.png",
		Logger: logger,
		run:    runCommand,
	}
}

// runCommand waits for the notifier so a failing exit status is reported.
func runCommand(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Args returns the command line for a notification.
func (n *Notifier) Args(title, subtitle, message string) []string {
	if title == "" {
		title = DefaultTitle
	}
	return []string{
		"-title", title,
		"-subtitle", subtitle,
		"-message", message,
		"-sender", sender,
		"-contentImage", n.Icon,
	}
}

// Send shows message with the default title.
func (n *Notifier) Send(message string) {
	n.SendWith(DefaultTitle, "", message)
}

// SendWith shows a notification with an explicit title and subtitle.
func (n *Notifier) SendWith(title, subtitle, message string) {
	if err := n.run(n.Binary, n.Args(title, subtitle, message)...); err != nil {
		n.Logger.Debug("notification failed", slog.String("binary", n.Binary), slog.String("error", err.Error()))
	}
}
