package main

import (
	"github.com/ebitengine/oto/v3"
	"github.com/pkg/errors"
)

const (
	beepSampleRate = 44100
	beepFrequency  = 440
	beepAmplitude  = 0x1000
)

// squareWave is an endless signed 16-bit mono tone.
type squareWave struct {
	pos int
}

func (w *squareWave) Read(p []byte) (int, error) {
	period := beepSampleRate / beepFrequency
	n := len(p) &^ 1
	for i := 0; i < n; i += 2 {
		s := int16(beepAmplitude)
		if w.pos < period/2 {
			s = -s
		}
		p[i] = byte(s)
		p[i+1] = byte(uint16(s) >> 8)
		w.pos = (w.pos + 1) % period
	}
	return n, nil
}

// Beeper plays a tone while the sound timer runs. A nil Beeper is silent.
type Beeper struct {
	ctx    *oto.Context
	player *oto.Player
}

func NewBeeper() (*Beeper, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   beepSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "oto.NewContext failed")
	}
	<-ready

	return &Beeper{
		ctx:    ctx,
		player: ctx.NewPlayer(&squareWave{}),
	}, nil
}

func (b *Beeper) SetActive(on bool) {
	if b == nil {
		return
	}
	switch {
	case on && !b.player.IsPlaying():
		b.player.Play()
	case !on && b.player.IsPlaying():
		b.player.Pause()
	}
}

func (b *Beeper) Close() {
	if b == nil {
		return
	}
	b.player.Close()
}
