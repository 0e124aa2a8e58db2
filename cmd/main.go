package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	tm "github.com/buger/goterm"
	"github.com/p47t/chip8"
)

// Runs a ROM without a window and dumps the final machine state.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: main romfile [cycles]")
		os.Exit(1)
	}

	cycles := 1000
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n < 0 {
			log.Fatalf("invalid cycle count %q", os.Args[2])
		}
		cycles = n
	}

	sys := chip8.New(chip8.WithLogger(log.New(os.Stderr, "chip8: ", log.LstdFlags)))
	if err := sys.Load(os.Args[1]); err != nil {
		log.Fatal(err)
	}

	for i := 0; i < cycles; i++ {
		sys.Cycle()
	}

	sys.Print()
	tm.Println(screen(sys))
	tm.Flush()
}

func screen(sys *chip8.System) string {
	var sb strings.Builder
	for y := 0; y < chip8.GfxHeight; y++ {
		for x := 0; x < chip8.GfxWidth; x++ {
			if sys.GetPixel(uint8(x), uint8(y)) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
