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

package main

import (
	"fmt"
	"os"

	"github.com/hazyden/famicore/curated"
	"github.com/hazyden/famicore/digest"
	"github.com/hazyden/famicore/hardware/nes"
	"github.com/hazyden/famicore/logger"
	"github.com/hazyden/famicore/modalflag"
	"github.com/hazyden/famicore/performance"
	"github.com/hazyden/famicore/version"
	"github.com/hazyden/famicore/wavwriter"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("RUN", "PERFORMANCE", "VERSION")

	r, err := md.Parse()
	switch r {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Println(err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		err = emulate(md)
	case "PERFORMANCE":
		err = perform(md)
	case "VERSION":
		vrs, rev, _ := version.Version()
		fmt.Printf("%s %s (%s)\n", version.ApplicationName, vrs, rev)
	}

	if err != nil {
		fmt.Println(err)
		os.Exit(10)
	}
}

// emulate runs the console headless for a fixed number of frames and prints
// the video and audio fingerprints of the run.
func emulate(md *modalflag.Modes) error {
	md.NewMode()

	numFrames := md.AddInt("frames", 60, "number of frames to emulate")
	wavFile := md.AddString("wav", "", "record audio to wav file")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	r, err := md.Parse()
	switch r {
	case modalflag.ParseHelp:
		return nil
	case modalflag.ParseError:
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return curated.Errorf("runtime: no ROM file specified")
	case 1:
	default:
		return curated.Errorf("runtime: too many arguments (%s)", md.RemainingArgs())
	}

	rom, err := os.ReadFile(md.GetArg(0))
	if err != nil {
		return curated.Errorf("runtime: %v", err)
	}

	console := nes.NewNES()
	if err := console.AttachCartridge(rom); err != nil {
		return err
	}

	video := digest.NewVideo()
	audio := digest.NewAudio()

	var wav *wavwriter.WavWriter
	if *wavFile != "" {
		wav, err = wavwriter.New(*wavFile)
		if err != nil {
			return err
		}
	}

	for i := 0; i < *numFrames; i++ {
		if err := console.RunFrame(); err != nil {
			return err
		}

		video.NewFrame(console.Framebuffer())

		samples := console.ReadSamples()
		audio.SetAudio(samples)
		if wav != nil {
			if err := wav.SetAudio(samples); err != nil {
				return err
			}
		}
	}
	audio.FlushAudio()

	if wav != nil {
		if err := wav.EndMixing(); err != nil {
			return err
		}
	}

	fmt.Printf("frames: %d\n", *numFrames)
	fmt.Printf("video digest: %s\n", video.Hash())
	fmt.Printf("audio digest: %s\n", audio.Hash())

	return nil
}

// perform measures the console's frame rate against the NTSC specification.
func perform(md *modalflag.Modes) error {
	md.NewMode()

	duration := md.AddString("duration", "5s", "run duration (note: there is a 1s overhead)")
	profile := md.AddBool("profile", false, "produce cpu and memory profiling reports")
	stats := md.AddBool("statsview", false, "run the statistics viewer")

	r, err := md.Parse()
	switch r {
	case modalflag.ParseHelp:
		return nil
	case modalflag.ParseError:
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return curated.Errorf("performance: no ROM file specified")
	case 1:
	default:
		return curated.Errorf("performance: too many arguments (%s)", md.RemainingArgs())
	}

	rom, err := os.ReadFile(md.GetArg(0))
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	return performance.Check(os.Stdout, *profile, *stats, rom, *duration)
}
