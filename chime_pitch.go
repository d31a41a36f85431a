// chime_pitch.go - Channel set and pitch tables for the time chime

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

// Channel identifies one of the six persistent tone sources. The set is
// fixed for the lifetime of the engine and doubles as the voice array index.
type Channel int

const (
	CH_REFERENCE Channel = iota
	CH_HOUR
	CH_MINUTE_TENS
	CH_MINUTE_ONES
	CH_SECOND_TENS
	CH_SECOND_ONES
	NUM_CHANNELS = 6
)

var channelNames = [NUM_CHANNELS]string{
	"reference", "hour", "minute-tens", "minute-ones", "second-tens", "second-ones",
}

func (ch Channel) String() string {
	if ch < 0 || ch >= NUM_CHANNELS {
		return "invalid"
	}
	return channelNames[ch]
}

// ChannelGroup is the user-facing toggle/volume unit. Minute and second
// groups each drive a tens/ones channel pair.
type ChannelGroup int

const (
	GROUP_REFERENCE ChannelGroup = iota
	GROUP_HOUR
	GROUP_MINUTE
	GROUP_SECOND
	NUM_GROUPS = 4
)

var groupNames = [NUM_GROUPS]string{"reference", "hour", "minute", "second"}

func (g ChannelGroup) String() string {
	if g < 0 || g >= NUM_GROUPS {
		return "invalid"
	}
	return groupNames[g]
}

// Group returns the toggle group a channel belongs to.
func (ch Channel) Group() ChannelGroup {
	switch ch {
	case CH_REFERENCE:
		return GROUP_REFERENCE
	case CH_HOUR:
		return GROUP_HOUR
	case CH_MINUTE_TENS, CH_MINUTE_ONES:
		return GROUP_MINUTE
	default:
		return GROUP_SECOND
	}
}

const (
	REFERENCE_HZ    = 130.81 // C3
	REFERENCE_VALUE = 1      // any non-zero value selects the reference pitch
	HOUR_ALIAS      = 12     // hour 0 plays the twelfth-hour pitch
)

// hourTable holds the chromatic degrees above the reference. Index 0 mirrors 12.
var hourTable = [13]float64{
	261.63, // 0 -> 12
	138.59, // C#3
	146.83, // D3
	155.56, // D#3
	164.81, // E3
	174.61, // F3
	185.00, // F#3
	196.00, // G3
	207.65, // G#3
	220.00, // A3
	233.08, // A#3
	246.94, // B3
	261.63, // C4
}

// Digit tables: index 0 is a rest and never looked up as a pitch.
var (
	minuteTensTable = [6]float64{0, 261.63, 293.66, 329.63, 349.23, 392.00}
	minuteOnesTable = [10]float64{0, 523.25, 587.33, 659.25, 698.46, 783.99, 880.00, 987.77, 1046.50, 1174.66}
	secondTensTable = [6]float64{0, 523.25, 587.33, 659.25, 698.46, 783.99}
	secondOnesTable = [10]float64{0, 1046.50, 1174.66, 1318.51, 1396.91, 1567.98, 1760.00, 1975.53, 2093.00, 2349.32}
)

// FrequencyFor maps a channel value to its pitch. ok is false for rests
// (digit 0) and for anything outside the table; callers mute on !ok.
func FrequencyFor(ch Channel, value int) (hz float64, ok bool) {
	switch ch {
	case CH_REFERENCE:
		return REFERENCE_HZ, true
	case CH_HOUR:
		if value == 0 {
			value = HOUR_ALIAS
		}
		if value < 1 || value >= len(hourTable) {
			return 0, false
		}
		return hourTable[value], true
	case CH_MINUTE_TENS:
		return digitLookup(minuteTensTable[:], value)
	case CH_MINUTE_ONES:
		return digitLookup(minuteOnesTable[:], value)
	case CH_SECOND_TENS:
		return digitLookup(secondTensTable[:], value)
	case CH_SECOND_ONES:
		return digitLookup(secondOnesTable[:], value)
	}
	return 0, false
}

func digitLookup(table []float64, digit int) (float64, bool) {
	if digit <= 0 || digit >= len(table) {
		return 0, false
	}
	return table[digit], true
}
