// terminal_status.go - Interactive key controls and the status line

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionChime
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.design/x/clipboard"
)

const (
	STATUS_INTERVAL = 250 * time.Millisecond
	STATUS_WIDTH    = 80

	KEY_CTRL_C = 0x03
)

var (
	statusTimeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700"))
	statusOnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	statusOffStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	statusLiveStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	statusAlertStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F5F"))
)

// chimeControl is the part of the engine the console drives.
type chimeControl interface {
	UpdateSettings(Settings)
	NotifyUserActivity()
	Snapshot() EngineSnapshot
}

// ChimeConsole maps keys to settings changes and renders the status line.
type ChimeConsole struct {
	engine chimeControl

	mu       sync.Mutex
	settings Settings
	lastLine string

	quit     chan struct{}
	quitOnce sync.Once

	clipboardOnce sync.Once
	clipboardOK   bool
}

func NewChimeConsole(engine chimeControl, settings Settings) *ChimeConsole {
	return &ChimeConsole{
		engine:   engine,
		settings: settings,
		quit:     make(chan struct{}),
	}
}

// Quit is closed when the user asks to leave.
func (c *ChimeConsole) Quit() <-chan struct{} { return c.quit }

func (c *ChimeConsole) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// HandleKey applies one key press. Any key counts as user activity.
func (c *ChimeConsole) HandleKey(b byte) {
	c.engine.NotifyUserActivity()
	switch b {
	case 'r', 'R':
		c.update(func(s Settings) Settings { return s.Toggle(GROUP_REFERENCE) })
	case 'h', 'H':
		c.update(func(s Settings) Settings { return s.Toggle(GROUP_HOUR) })
	case 'm', 'M':
		c.update(func(s Settings) Settings { return s.Toggle(GROUP_MINUTE) })
	case 's', 'S':
		c.update(func(s Settings) Settings { return s.Toggle(GROUP_SECOND) })
	case '+', '=':
		c.update(func(s Settings) Settings { return s.AdjustMaster(VOLUME_STEP) })
	case '-', '_':
		c.update(func(s Settings) Settings { return s.AdjustMaster(-VOLUME_STEP) })
	case 'c', 'C':
		c.copyStatus()
	case 'q', 'Q', KEY_CTRL_C:
		c.quitOnce.Do(func() { close(c.quit) })
	}
}

func (c *ChimeConsole) update(fn func(Settings) Settings) {
	c.mu.Lock()
	c.settings = fn(c.settings)
	s := c.settings
	c.mu.Unlock()
	c.engine.UpdateSettings(s)
}

// copyStatus puts the plain status line on the system clipboard.
func (c *ChimeConsole) copyStatus() {
	c.clipboardOnce.Do(func() {
		c.clipboardOK = clipboard.Init() == nil
	})
	if !c.clipboardOK {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(StatusText(c.engine.Snapshot())))
}

// Run redraws the status line until Quit or stop is closed. width reports
// the terminal width each frame.
func (c *ChimeConsole) Run(stop <-chan struct{}, width func() int) {
	ticker := time.NewTicker(STATUS_INTERVAL)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-c.quit:
			return
		case <-ticker.C:
			line := StyledStatus(c.engine.Snapshot(), width())
			c.mu.Lock()
			changed := line != c.lastLine
			c.lastLine = line
			c.mu.Unlock()
			if changed {
				fmt.Print("\r\033[K" + line)
			}
		}
	}
}

// liveDigits renders a pair as "3·5" with the sounding digit bracketed.
func liveDigits(tens, ones, live int, plain bool) string {
	t, o := fmt.Sprint(tens), fmt.Sprint(ones)
	mark := func(s string) string {
		if plain {
			return "[" + s + "]"
		}
		return statusLiveStyle.Render(s)
	}
	switch live {
	case 0:
		t = mark(t)
	case 1:
		o = mark(o)
	}
	return t + "·" + o
}

// livePositions returns which digit of each pair is sounding: 0 tens,
// 1 ones, -1 neither.
func livePositions(s EngineSnapshot) (minute, second int) {
	pos := func(tens, ones Channel) int {
		switch {
		case s.Gains[tens] > 0:
			return 0
		case s.Gains[ones] > 0:
			return 1
		}
		return -1
	}
	return pos(CH_MINUTE_TENS, CH_MINUTE_ONES), pos(CH_SECOND_TENS, CH_SECOND_ONES)
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

// StatusText is the unstyled status line.
func StatusText(s EngineSnapshot) string {
	if !s.HasTime {
		return "waiting for time"
	}
	minute, second := livePositions(s)
	g := s.Settings.Groups
	return fmt.Sprintf("%02d:%02d:%02d  ref %s  hour %s  min %s %s  sec %s %s  master %d%%  audio %s",
		s.Time.Hours, s.Time.Minutes, s.Time.Seconds,
		onOff(g[GROUP_REFERENCE].Enabled), onOff(g[GROUP_HOUR].Enabled),
		onOff(g[GROUP_MINUTE].Enabled), liveDigits(s.Time.MinuteTens(), s.Time.MinuteOnes(), minute, true),
		onOff(g[GROUP_SECOND].Enabled), liveDigits(s.Time.SecondTens(), s.Time.SecondOnes(), second, true),
		int(s.Settings.Master*100+0.5), s.Device)
}

// StyledStatus is the coloured status line truncated to width.
func StyledStatus(s EngineSnapshot, width int) string {
	if !s.HasTime {
		return statusOffStyle.Render("waiting for time")
	}
	toggle := func(name string, enabled bool) string {
		if enabled {
			return statusOnStyle.Render(name)
		}
		return statusOffStyle.Render(name)
	}
	minute, second := livePositions(s)
	g := s.Settings.Groups

	var b strings.Builder
	b.WriteString(statusTimeStyle.Render(fmt.Sprintf("%02d:%02d:%02d", s.Time.Hours, s.Time.Minutes, s.Time.Seconds)))
	b.WriteString("  " + toggle("ref", g[GROUP_REFERENCE].Enabled))
	b.WriteString("  " + toggle("hour", g[GROUP_HOUR].Enabled))
	b.WriteString("  " + toggle("min", g[GROUP_MINUTE].Enabled) + " " +
		liveDigits(s.Time.MinuteTens(), s.Time.MinuteOnes(), minute, false))
	b.WriteString("  " + toggle("sec", g[GROUP_SECOND].Enabled) + " " +
		liveDigits(s.Time.SecondTens(), s.Time.SecondOnes(), second, false))
	b.WriteString(fmt.Sprintf("  master %d%%", int(s.Settings.Master*100+0.5)))
	if s.Device != DEVICE_RUNNING {
		b.WriteString("  " + statusAlertStyle.Render("audio "+s.Device.String()))
	}
	if width <= 0 {
		width = STATUS_WIDTH
	}
	return lipgloss.NewStyle().MaxWidth(width - 1).Render(b.String())
}
