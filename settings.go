// settings.go - Group toggles, volumes and the Lua settings script

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
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

const (
	DEFAULT_MASTER = 0.8
	VOLUME_STEP    = 0.05
)

var ErrInvalidSettings = errors.New("invalid settings")

// GroupSettings is the toggle and volume of one user-facing group.
type GroupSettings struct {
	Enabled bool
	Volume  float64
}

// Settings is an immutable snapshot of everything the user can adjust.
type Settings struct {
	Master float64
	Groups [NUM_GROUPS]GroupSettings
}

func DefaultSettings() Settings {
	return Settings{
		Master: DEFAULT_MASTER,
		Groups: [NUM_GROUPS]GroupSettings{
			GROUP_REFERENCE: {Enabled: true, Volume: 0.35},
			GROUP_HOUR:      {Enabled: true, Volume: 0.35},
			GROUP_MINUTE:    {Enabled: true, Volume: 0.6},
			GROUP_SECOND:    {Enabled: true, Volume: 0.45},
		},
	}
}

// EffectiveVolume is the gain a group's voices are driven to.
func (s Settings) EffectiveVolume(g ChannelGroup) float64 {
	if g < 0 || g >= NUM_GROUPS || !s.Groups[g].Enabled {
		return 0
	}
	return clamp01(clamp01(s.Groups[g].Volume) * clamp01(s.Master))
}

// Enabled reports the toggle of group g.
func (s Settings) Enabled(g ChannelGroup) bool {
	return g >= 0 && g < NUM_GROUPS && s.Groups[g].Enabled
}

// Clamped returns a copy with every volume in 0..1.
func (s Settings) Clamped() Settings {
	s.Master = clamp01(s.Master)
	for i := range s.Groups {
		s.Groups[i].Volume = clamp01(s.Groups[i].Volume)
	}
	return s
}

// Toggle flips the enable flag of group g.
func (s Settings) Toggle(g ChannelGroup) Settings {
	if g >= 0 && g < NUM_GROUPS {
		s.Groups[g].Enabled = !s.Groups[g].Enabled
	}
	return s
}

// AdjustMaster nudges the master volume by delta, clamped to 0..1.
func (s Settings) AdjustMaster(delta float64) Settings {
	s.Master = clamp01(s.Master + delta)
	return s
}

// LoadSettingsFile runs a Lua settings script on top of the defaults.
//
//	master = 0.7
//	hour   = { enabled = true, volume = 0.4 }
//	second = false
func LoadSettingsFile(path string) (Settings, error) {
	L := lua.NewState()
	defer L.Close()
	if err := L.DoFile(path); err != nil {
		return Settings{}, fmt.Errorf("%w: %s: %v", ErrInvalidSettings, path, err)
	}
	return settingsFromLua(L, DefaultSettings())
}

// LoadSettingsString is LoadSettingsFile for an in-memory script.
func LoadSettingsString(src string) (Settings, error) {
	L := lua.NewState()
	defer L.Close()
	if err := L.DoString(src); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return settingsFromLua(L, DefaultSettings())
}

func settingsFromLua(L *lua.LState, s Settings) (Settings, error) {
	if lv := L.GetGlobal("master"); lv != lua.LNil {
		n, ok := lv.(lua.LNumber)
		if !ok {
			return Settings{}, fmt.Errorf("%w: master must be a number, got %s", ErrInvalidSettings, lv.Type())
		}
		s.Master = float64(n)
	}
	for g := range ChannelGroup(NUM_GROUPS) {
		lv := L.GetGlobal(g.String())
		switch v := lv.(type) {
		case lua.LBool:
			s.Groups[g].Enabled = bool(v)
		case *lua.LTable:
			gs, err := groupFromTable(g, v, s.Groups[g])
			if err != nil {
				return Settings{}, err
			}
			s.Groups[g] = gs
		default:
			if lv != lua.LNil {
				return Settings{}, fmt.Errorf("%w: %s must be a table or boolean, got %s", ErrInvalidSettings, g, lv.Type())
			}
		}
	}
	return s.Clamped(), nil
}

func groupFromTable(g ChannelGroup, t *lua.LTable, gs GroupSettings) (GroupSettings, error) {
	if lv := t.RawGetString("enabled"); lv != lua.LNil {
		b, ok := lv.(lua.LBool)
		if !ok {
			return gs, fmt.Errorf("%w: %s.enabled must be a boolean", ErrInvalidSettings, g)
		}
		gs.Enabled = bool(b)
	}
	if lv := t.RawGetString("volume"); lv != lua.LNil {
		n, ok := lv.(lua.LNumber)
		if !ok {
			return gs, fmt.Errorf("%w: %s.volume must be a number", ErrInvalidSettings, g)
		}
		gs.Volume = float64(n)
	}
	return gs, nil
}
