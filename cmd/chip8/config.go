package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config defines program configuration.
type Config struct {
	ROM        string        // Path to the ROM file to load.
	Scale      int           // Window pixels per CHIP-8 pixel.
	CycleDelay time.Duration // Minimum time between two cycles.
	Trace      bool          // Dump CPU state to the terminal every frame?
	Mute       bool          // Disable the buzzer?
	Seed       int64         // RNG seed; 0 picks one from the clock.
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
func parseArgs() *Config {
	var c Config

	flag.Usage = func() {
		fmt.Printf("%s [options] <scale> <delay> <rom>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.BoolVar(&c.Trace, "trace", c.Trace, "Print CPU state every frame.")
	flag.BoolVar(&c.Mute, "mute", c.Mute, "Do not sound the buzzer.")
	flag.Int64Var(&c.Seed, "seed", c.Seed, "Seed for the random number generator.")
	flag.Parse()

	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(1)
	}

	scale, err := strconv.Atoi(flag.Arg(0))
	if err != nil || scale <= 0 {
		fmt.Fprintf(os.Stderr, "invalid scale %q\n", flag.Arg(0))
		os.Exit(1)
	}

	delay, err := strconv.Atoi(flag.Arg(1))
	if err != nil || delay < 0 {
		fmt.Fprintf(os.Stderr, "invalid delay %q\n", flag.Arg(1))
		os.Exit(1)
	}

	c.Scale = scale
	c.CycleDelay = time.Duration(delay) * time.Millisecond
	c.ROM = flag.Arg(2)
	return &c
}
