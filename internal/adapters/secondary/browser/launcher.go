// Package browser opens the presentation in a local browser at startup.
package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"deckview/internal/domain/ports"
)

// Browser describes one launchable browser on this platform.
type Browser struct {
	Name    string
	Command string
	Args    func(url string) []string
}

// Launcher picks and starts a browser. A preferred name from config wins
// when that browser is installed; otherwise the platform default is used.
type Launcher struct {
	preferred string
	browsers  []Browser
}

// NewLauncher creates a launcher with no browser preference.
func NewLauncher() *Launcher {
	return NewLauncherWithPreference("")
}

// NewLauncherWithPreference creates a launcher preferring the named browser.
// "default" and "" both mean no preference.
func NewLauncherWithPreference(name string) *Launcher {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "default" {
		name = ""
	}
	return &Launcher{
		preferred: name,
		browsers:  platformBrowsers(),
	}
}

// Launch opens url, unless noOpen suppresses it. The browser process is not
// waited on.
func (l *Launcher) Launch(url string, noOpen bool) error {
	if noOpen {
		return nil
	}

	browser, err := l.selectBrowser()
	if err != nil {
		return fmt.Errorf("browser selection: %w", err)
	}

	cmd := exec.Command(browser.Command, browser.Args(url)...) // #nosec G204 - command comes from the platform table
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching %s: %w", browser.Name, err)
	}
	go func() { _ = cmd.Wait() }()

	return nil
}

// Detect reports the browser Launch would use.
func (l *Launcher) Detect() (string, error) {
	browser, err := l.selectBrowser()
	if err != nil {
		return "", err
	}
	return browser.Name, nil
}

func (l *Launcher) selectBrowser() (*Browser, error) {
	if len(l.browsers) == 0 {
		return nil, errors.New("no browsers available on this platform")
	}

	if l.preferred != "" {
		for _, candidate := range l.browsers {
			if strings.EqualFold(candidate.Name, l.preferred) && available(candidate) {
				return &candidate, nil
			}
		}
		// Preference not installed: fall through to the platform order.
	}

	for _, candidate := range l.browsers {
		if available(candidate) {
			return &candidate, nil
		}
	}
	return nil, errors.New("no supported browsers found on this system")
}

func available(b Browser) bool {
	_, err := exec.LookPath(b.Command)
	return err == nil
}

func plainArgs(url string) []string { return []string{url} }

func platformBrowsers() []Browser {
	switch runtime.GOOS {
	case "darwin":
		return []Browser{
			macBrowser("Chrome", "Google Chrome"),
			macBrowser("Safari", "Safari"),
			macBrowser("Firefox", "Firefox"),
			{Name: "Default", Command: "open", Args: plainArgs},
		}
	case "linux":
		return []Browser{
			{Name: "Default", Command: "xdg-open", Args: plainArgs},
			{Name: "Chrome", Command: "google-chrome", Args: plainArgs},
			{Name: "Chromium", Command: "chromium", Args: plainArgs},
			{Name: "Firefox", Command: "firefox", Args: plainArgs},
		}
	case "windows":
		return []Browser{
			winBrowser("Default", nil),
			winBrowser("Chrome", []string{"chrome"}),
			winBrowser("Edge", []string{"msedge"}),
			winBrowser("Firefox", []string{"firefox"}),
		}
	default:
		return nil
	}
}

func macBrowser(name, app string) Browser {
	return Browser{
		Name:    name,
		Command: "open",
		Args: func(url string) []string {
			return []string{"-a", app, url}
		},
	}
}

func winBrowser(name string, extra []string) Browser {
	return Browser{
		Name:    name,
		Command: "cmd",
		Args: func(url string) []string {
			args := append([]string{"/c", "start"}, extra...)
			return append(args, url)
		},
	}
}

var _ ports.BrowserLauncher = (*Launcher)(nil)
