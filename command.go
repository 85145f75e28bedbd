package main

import "sync/atomic"

// CommandKind discriminates the command union.
type CommandKind uint8

const (
	CmdNoteOn CommandKind = iota
	CmdNoteOff
	CmdParamUpdate
	CmdAllNotesOff
	CmdMuteGate
)

func (k CommandKind) String() string {
	switch k {
	case CmdNoteOn:
		return "NoteOn"
	case CmdNoteOff:
		return "NoteOff"
	case CmdParamUpdate:
		return "ParamUpdate"
	case CmdAllNotesOff:
		return "AllNotesOff"
	case CmdMuteGate:
		return "MuteGate"
	}
	return "Unknown"
}

// Command is an immutable note or parameter event. Producers build one,
// enqueue it, and never touch it again; the render thread consumes it
// exactly once at the next buffer boundary.
type Command struct {
	Kind     CommandKind
	Note     uint8
	Velocity Smp
	Params   map[string]any
}

func NoteOn(note uint8, velocity Smp) Command {
	return Command{Kind: CmdNoteOn, Note: note, Velocity: velocity}
}

func NoteOff(note uint8, velocity Smp) Command {
	return Command{Kind: CmdNoteOff, Note: note, Velocity: velocity}
}

func ParamUpdate(params map[string]any) Command {
	return Command{Kind: CmdParamUpdate, Params: params}
}

func AllNotesOff() Command {
	return Command{Kind: CmdAllNotesOff}
}

func MuteGate() Command {
	return Command{Kind: CmdMuteGate}
}

type commandNode struct {
	cmd  Command
	next *commandNode
}

// CommandQueue is an unbounded multi-producer/single-consumer FIFO.
// Push is a lock-free CAS loop; Drain swaps the whole list out with a
// single atomic exchange and replays it in FIFO order. This is the only
// synchronization point between producers and the render thread.
type CommandQueue struct {
	head atomic.Pointer[commandNode]
}

// Push enqueues a command. It never blocks and never fails.
func (q *CommandQueue) Push(cmd Command) {
	n := &commandNode{cmd: cmd}
	for {
		old := q.head.Load()
		n.next = old
		if q.head.CompareAndSwap(old, n) {
			return
		}
	}
}

// Drain pops every queued command and applies each in FIFO order.
// Called exactly once per render buffer, before any sample is produced.
// An empty queue is the common case, not an error.
func (q *CommandQueue) Drain(apply func(Command)) {
	node := q.head.Swap(nil)
	if node == nil {
		return
	}
	// The list comes out newest-first; reverse it to restore push order.
	var fifo *commandNode
	for node != nil {
		next := node.next
		node.next = fifo
		fifo = node
		node = next
	}
	for n := fifo; n != nil; n = n.next {
		apply(n.cmd)
	}
}
