package main

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// MidiInput bridges a hardware MIDI port to the engine's command queue.
// The listener callback runs on the driver's thread and only ever calls
// Enqueue, which is the lock-free producer side of the queue.
type MidiInput struct {
	drv  *rtmididrv.Driver
	in   drivers.In
	stop func()
}

// OpenMidiInput opens the first input port whose name contains portName
// (case-insensitive); an empty portName picks the first available port.
func OpenMidiInput(e *Engine, portName string) (*MidiInput, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midi driver: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("midi inputs: %w", err)
	}
	var found drivers.In
	for _, in := range ins {
		if portName == "" ||
			strings.Contains(strings.ToLower(in.String()), strings.ToLower(portName)) {
			found = in
			break
		}
	}
	if found == nil {
		drv.Close()
		return nil, fmt.Errorf("no MIDI input matching %q", portName)
	}
	if err := found.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("open MIDI port %s: %w", found, err)
	}

	stop, err := midi.ListenTo(found, func(msg midi.Message, timestampms int32) {
		handleMidiMessage(e, msg)
	}, midi.HandleError(func(listenErr error) {
		logger.Warn("MIDI listener error", "port", found.String(), "err", listenErr)
		e.Enqueue(AllNotesOff())
	}))
	if err != nil {
		found.Close()
		drv.Close()
		return nil, fmt.Errorf("midi listen: %w", err)
	}

	logger.Info("MIDI input connected", "port", found.String())
	return &MidiInput{drv: drv, in: found, stop: stop}, nil
}

func (m *MidiInput) Close() {
	if m.stop != nil {
		m.stop()
	}
	if m.in != nil {
		m.in.Close()
	}
	if m.drv != nil {
		m.drv.Close()
	}
}

// handleMidiMessage translates one wire message into engine commands.
func handleMidiMessage(e *Engine, msg midi.Message) {
	var ch, key, vel uint8
	var cc, val uint8
	var rel int16
	var abs uint16

	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		if vel == 0 {
			// Running-status NoteOff.
			e.Enqueue(NoteOff(key, 0))
			return
		}
		logger.Debug("note on", "note", pitchName(key), "velocity", vel)
		e.Enqueue(NoteOn(key, velocityCurve(vel)))
	case msg.GetNoteOff(&ch, &key, &vel):
		logger.Debug("note off", "note", pitchName(key))
		e.Enqueue(NoteOff(key, velocityCurve(vel)))
	case msg.GetPitchBend(&ch, &rel, &abs):
		e.Enqueue(ParamUpdate(map[string]any{
			"pitch_bend": float64(rel) / 8192.0,
		}))
	case msg.GetControlChange(&ch, &cc, &val):
		handleControlChange(e, cc, val)
	}
}

// handleControlChange maps a handful of standard controllers onto engine
// parameters; everything else is ignored.
func handleControlChange(e *Engine, cc, val uint8) {
	norm := float64(val) / 127.0
	switch cc {
	case 1: // mod wheel
		e.Enqueue(ParamUpdate(map[string]any{"lfo_depth": norm}))
	case 7: // channel volume
		e.Enqueue(ParamUpdate(map[string]any{"volume": norm}))
	case 71: // resonance
		e.Enqueue(ParamUpdate(map[string]any{"resonance": norm * 0.9}))
	case 74: // brightness
		// Exponential sweep over the audible range.
		cutoff := 20.0 * semitoneRatio(Smp(norm)*120)
		e.Enqueue(ParamUpdate(map[string]any{"cutoff": cutoff}))
	case 120, 123: // all sound off / all notes off
		e.Enqueue(AllNotesOff())
	}
}
