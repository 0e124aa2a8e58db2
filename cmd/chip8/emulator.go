package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/p47t/chip8"
	"github.com/pkg/errors"
)

type Emulator struct {
	sys    *chip8.System
	cfg    *Config
	beeper *Beeper

	window                *glfw.Window
	fullScreenTriangleVAO uint32
	bufferTexture         uint32
	shaderProgram         uint32
}

const vertexShader = `
#version 330

noperspective out vec2 TexCoord;

void main(void) {
    TexCoord.x = (gl_VertexID == 2)? 2.0: 0.0;
    TexCoord.y = (gl_VertexID == 1)? 2.0: 0.0;

	gl_Position = vec4(2.0 * TexCoord - 1.0, 0.0, 1.0);
}
`

// The framebuffer is uploaded top row first, so flip vertically.
const fragmentShader = `
#version 330

uniform sampler2D buffer;
noperspective in vec2 TexCoord;

out vec3 outColor;

void main(void) {
	outColor = texture(buffer, vec2(TexCoord.x, 1.0 - TexCoord.y)).rgb;
}
`

var keyMap = map[glfw.Key]int{
	glfw.Key1: 0x1,
	glfw.Key2: 0x2,
	glfw.Key3: 0x3,
	glfw.Key4: 0xC,
	glfw.KeyQ: 0x4,
	glfw.KeyW: 0x5,
	glfw.KeyE: 0x6,
	glfw.KeyR: 0xD,
	glfw.KeyA: 0x7,
	glfw.KeyS: 0x8,
	glfw.KeyD: 0x9,
	glfw.KeyF: 0xE,
	glfw.KeyZ: 0xA,
	glfw.KeyX: 0x0,
	glfw.KeyC: 0xB,
	glfw.KeyV: 0xF,
}

func (emu *Emulator) Initialize(cfg *Config) (err error) {
	emu.cfg = cfg

	opts := []chip8.Option{chip8.WithLogger(log.New(os.Stderr, "chip8: ", log.LstdFlags))}
	if cfg.Seed != 0 {
		opts = append(opts, chip8.WithSeed(cfg.Seed))
	}
	emu.sys = chip8.New(opts...)
	if err := emu.sys.Load(cfg.ROM); err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return errors.Wrapf(err, "glfw.Init failed")
	}
	defer func() {
		if err != nil {
			glfw.Terminate()
		}
	}()

	// Create window
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	emu.window, err = glfw.CreateWindow(chip8.GfxWidth*cfg.Scale, chip8.GfxHeight*cfg.Scale, "Chip8", nil, nil)
	if err != nil {
		return errors.Wrapf(err, "glfw.CreateWindow failed")
	}
	emu.window.MakeContextCurrent()

	// Key handling
	emu.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
			return
		}
		c8Key, ok := keyMap[key]
		if !ok {
			return
		}
		switch action {
		case glfw.Press:
			emu.sys.OnKeyDown(c8Key)
		case glfw.Release:
			emu.sys.OnKeyUp(c8Key)
		}
	})

	// Initialize Glow
	if err := gl.Init(); err != nil {
		return errors.Wrapf(err, "gl.Init failed")
	}
	gl.ClearColor(0.0, 0.0, 0.0, 1.0)

	gl.GenVertexArrays(1, &emu.fullScreenTriangleVAO)
	gl.BindVertexArray(emu.fullScreenTriangleVAO)

	if err := emu.linkProgram(); err != nil {
		return err
	}

	gl.GenTextures(1, &emu.bufferTexture)
	gl.BindTexture(gl.TEXTURE_2D, emu.bufferTexture)

	fb := emu.sys.Framebuffer()
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, chip8.Pitch/int32(unsafe.Sizeof(fb[0])))
	gl.TexImage2D(
		gl.TEXTURE_2D, 0, gl.RGBA,
		chip8.GfxWidth, chip8.GfxHeight, 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&fb[0]))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	bufferLoc := gl.GetUniformLocation(emu.shaderProgram, gl.Str("buffer"+"\x00"))
	gl.Uniform1i(bufferLoc, 0)

	gl.Disable(gl.DEPTH_TEST)

	if !cfg.Mute {
		if emu.beeper, err = NewBeeper(); err != nil {
			log.Println("audio disabled:", err)
		}
	}
	return nil
}

func (emu *Emulator) linkProgram() error {
	emu.shaderProgram = gl.CreateProgram()

	vs, err := compileShader(vertexShader, gl.VERTEX_SHADER)
	if err != nil {
		return err
	}
	defer gl.DeleteShader(vs)
	gl.AttachShader(emu.shaderProgram, vs)
	defer gl.DetachShader(emu.shaderProgram, vs)

	fs, err := compileShader(fragmentShader, gl.FRAGMENT_SHADER)
	if err != nil {
		return err
	}
	defer gl.DeleteShader(fs)
	gl.AttachShader(emu.shaderProgram, fs)
	defer gl.DetachShader(emu.shaderProgram, fs)

	var status int32
	gl.LinkProgram(emu.shaderProgram)
	gl.GetProgramiv(emu.shaderProgram, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		return fmt.Errorf("failed to link shaderProgram")
	}
	gl.UseProgram(emu.shaderProgram)
	return nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))

		return 0, fmt.Errorf("failed to compile %v: %v", source, log)
	}

	return shader, nil
}

func (emu *Emulator) UpdateTexture() {
	fb := emu.sys.Framebuffer()
	gl.TexSubImage2D(
		gl.TEXTURE_2D, 0, 0, 0,
		chip8.GfxWidth, chip8.GfxHeight, gl.RGBA, gl.UNSIGNED_BYTE,
		unsafe.Pointer(&fb[0]))

	gl.BindVertexArray(emu.fullScreenTriangleVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
}

func (emu *Emulator) Loop() {
	lastCycle := time.Now()
	for !emu.window.ShouldClose() {
		glfw.PollEvents()

		if time.Since(lastCycle) < emu.cfg.CycleDelay {
			time.Sleep(time.Millisecond)
			continue
		}
		lastCycle = time.Now()

		emu.sys.Cycle()
		emu.beeper.SetActive(emu.sys.SoundActive())
		if emu.cfg.Trace {
			emu.sys.Print()
		}

		if emu.sys.IsDirty() {
			gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
			emu.UpdateTexture()
			emu.window.SwapBuffers()

			emu.sys.SetDirty(false)
		}
	}
}

func (emu *Emulator) Terminate() {
	emu.beeper.Close()
	gl.DeleteVertexArrays(1, &emu.fullScreenTriangleVAO)
	gl.DeleteTextures(1, &emu.bufferTexture)
	gl.DeleteProgram(emu.shaderProgram)
	glfw.Terminate()
}
