// This file is part of Famicore.
//
// Famicore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Famicore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Famicore.  If not, see <https://www.gnu.org/licenses/>.

// Package modalflag layers sub-mode selection on top of the flag package
// from the standard library. Arguments are parsed in stages: each call to
// NewMode() begins a fresh flag set for the sub-mode selected by the
// previous Parse().
package modalflag

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// Modes handles the command line arguments for a program with sub-modes.
// The Output field should be set before calling Parse() or help messages
// will not be seen.
type Modes struct {
	Output io.Writer

	flags *flag.FlagSet

	args    []string
	argsIdx int

	// sub-modes valid for the next Parse(). the first entry is the default
	subModes []string

	// modes selected by successive calls to Parse()
	path []string
}

func (md *Modes) String() string {
	return strings.Join(md.path, "/")
}

// Mode returns the most recently selected sub-mode.
func (md *Modes) Mode() string {
	if len(md.path) == 0 {
		return ""
	}
	return md.path[len(md.path)-1]
}

// NewArgs initialises the Modes instance with the command line arguments.
func (md *Modes) NewArgs(args []string) {
	md.args = args
	md.argsIdx = 0
	md.NewMode()
}

// NewMode begins a new flag set. Flags added after this point apply to the
// sub-mode selected by the previous Parse().
func (md *Modes) NewMode() {
	md.subModes = md.subModes[:0]
	md.flags = flag.NewFlagSet("", flag.ContinueOnError)
}

// AddSubModes lists the sub-modes valid for the next Parse(). The first is
// the default when no sub-mode argument is given. Comparison is case
// insensitive.
func (md *Modes) AddSubModes(subModes ...string) {
	for _, m := range subModes {
		md.subModes = append(md.subModes, strings.ToUpper(m))
	}
}

// ParseResult is returned from the Parse() function.
type ParseResult int

// a list of valid ParseResult values.
const (
	ParseContinue ParseResult = iota
	ParseHelp
	ParseError
)

// Parse the current layer of arguments. If sub-modes have been listed the
// first remaining argument is matched against them; an argument matching no
// sub-mode selects the default. Help requests are serviced internally and
// indicated with ParseHelp.
func (md *Modes) Parse() (ParseResult, error) {
	hw := &strings.Builder{}
	md.flags.SetOutput(hw)

	err := md.flags.Parse(md.args[md.argsIdx:])
	if err != nil {
		if err == flag.ErrHelp {
			md.help(hw.String())
			return ParseHelp, nil
		}

		// an unrecognised flag at this layer may belong to a sub-mode.
		// select the default sub-mode and let the next layer have it
		if len(md.subModes) > 0 {
			md.path = append(md.path, md.subModes[0])
			return ParseContinue, nil
		}
		return ParseError, err
	}

	if len(md.subModes) > 0 {
		mode := md.subModes[0]
		arg := strings.ToUpper(md.flags.Arg(0))
		for _, m := range md.subModes {
			if m == arg {
				mode = arg
				md.argsIdx++
				break // for loop
			}
		}
		md.path = append(md.path, mode)
	}

	return ParseContinue, nil
}

func (md *Modes) help(flagHelp string) {
	if md.Output == nil {
		return
	}

	if len(md.path) > 0 {
		fmt.Fprintf(md.Output, "Usage of %s mode:\n", md.String())
	} else {
		fmt.Fprintln(md.Output, "Usage:")
	}

	// the flag package's own output begins with a "Usage:" line of its own
	if lines := strings.SplitN(flagHelp, "\n", 2); len(lines) == 2 {
		md.Output.Write([]byte(lines[1]))
	}

	if len(md.subModes) > 0 {
		fmt.Fprintf(md.Output, "  available sub-modes: %s\n", strings.Join(md.subModes, ", "))
		fmt.Fprintf(md.Output, "    default: %s\n", md.subModes[0])
	}
}

// RemainingArgs returns the arguments left over after a call to Parse(),
// not including any selected sub-mode.
func (md *Modes) RemainingArgs() []string {
	return md.flags.Args()
}

// GetArg returns the numbered leftover argument.
func (md *Modes) GetArg(i int) string {
	return md.flags.Arg(i)
}

// AddBool flag for the next call to Parse().
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	return md.flags.Bool(name, value, usage)
}

// AddInt flag for the next call to Parse().
func (md *Modes) AddInt(name string, value int, usage string) *int {
	return md.flags.Int(name, value, usage)
}

// AddString flag for the next call to Parse().
func (md *Modes) AddString(name string, value string, usage string) *string {
	return md.flags.String(name, value, usage)
}
