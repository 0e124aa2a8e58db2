package main

import (
	"log"
	"runtime"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

func main() {
	cfg := parseArgs()

	var emu Emulator
	if err := emu.Initialize(cfg); err != nil {
		log.Fatal(err)
	}
	defer emu.Terminate()
	emu.Loop()
}
