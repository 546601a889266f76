// Package fragment reassembles AC application messages split across
// multiple transport packets. This is a message-level reassembly distinct
// from IP fragmentation: the AC transport header carries its own
// group/count/index fields for splitting application payloads that exceed
// one UDP datagram.
package fragment

import (
	"bytes"
	"time"

	"github.com/amoeba/ac-pcap-parser/internal/core"
)

// Config bounds how much in-flight fragment state the assembler holds.
type Config struct {
	// MaxGroups caps the number of concurrently tracked fragment groups.
	// Exceeding it evicts the oldest group before admitting a new one.
	MaxGroups int
	// GroupTTL is how long a group may sit incomplete, measured against
	// capture-record timestamps, before it is dropped as stale.
	GroupTTL time.Duration
}

// DefaultConfig mirrors the defaults used when no configuration is supplied.
func DefaultConfig() Config {
	return Config{MaxGroups: 4096, GroupTTL: 30 * time.Second}
}

type group struct {
	key       core.FragmentKey
	total     uint16
	parts     map[uint16][]byte
	firstSeen time.Time
	lastSeen  time.Time
}

// Assembler reassembles fragmented application messages. It is not safe for
// concurrent use; the pipeline drives it synchronously, one capture record
// at a time, so there is no background eviction goroutine — staleness is
// checked inline against each record's own timestamp. Only the group the
// new fragment belongs to is checked: a group that receives no further
// fragment stays tracked until it is evicted for capacity, and neither that
// eviction nor the group's age is reported.
type Assembler struct {
	cfg    Config
	groups map[core.FragmentKey]*group
	order  []core.FragmentKey // insertion order, for oldest-first eviction
}

// New returns an Assembler configured with cfg.
func New(cfg Config) *Assembler {
	return &Assembler{
		cfg:    cfg,
		groups: make(map[core.FragmentKey]*group),
	}
}

// Result is what Add reports about a newly arrived fragment.
type Result struct {
	// Complete holds the reassembled application payload when the group
	// just finished; nil otherwise.
	Complete []byte
	// Err is set when the fragment was rejected: a conflicting byte range
	// for an already-seen index (core.ErrFragmentConflict), or the group
	// aged out before completion (core.ErrStalePartial). The assembler has
	// already dropped the group's prior partial state either way.
	Err error
}

// Add feeds one fragmented datagram into its group. streamID identifies the
// session/direction the fragment belongs to; hdr is the fragment sub-header
// from the transport frame; ts is the capture timestamp used for TTL
// bookkeeping; data is the fragment's payload bytes.
func (a *Assembler) Add(streamID uint64, hdr core.FragmentHeader, ts time.Time, data []byte) Result {
	key := core.FragmentKey{StreamID: streamID, GroupID: hdr.GroupID}

	g, ok := a.groups[key]
	if !ok {
		if a.cfg.MaxGroups > 0 && len(a.groups) >= a.cfg.MaxGroups {
			a.evictOldest()
		}
		g = &group{
			key:       key,
			total:     hdr.FragmentCount,
			parts:     make(map[uint16][]byte, hdr.FragmentCount),
			firstSeen: ts,
		}
		a.groups[key] = g
		a.order = append(a.order, key)
	}

	if a.cfg.GroupTTL > 0 && ts.Sub(g.firstSeen) > a.cfg.GroupTTL {
		a.drop(key)
		return Result{Err: core.ErrStalePartial}
	}

	if existing, seen := g.parts[hdr.FragmentIndex]; seen {
		// Retransmission of an already-seen fragment is expected and must
		// be idempotent; only a genuine byte mismatch is an error.
		if !bytes.Equal(existing, data) {
			a.drop(key)
			return Result{Err: core.ErrFragmentConflict}
		}
		return Result{}
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	g.parts[hdr.FragmentIndex] = buf
	g.lastSeen = ts

	if uint16(len(g.parts)) < g.total {
		return Result{}
	}

	complete := make([]byte, 0, estimateSize(g))
	for i := uint16(0); i < g.total; i++ {
		part, ok := g.parts[i]
		if !ok {
			// Count reached but an index is missing: duplicate indices
			// were reported for the same count. Treat as still-incomplete.
			return Result{}
		}
		complete = append(complete, part...)
	}

	a.drop(key)
	return Result{Complete: complete}
}

func estimateSize(g *group) int {
	n := 0
	for _, p := range g.parts {
		n += len(p)
	}
	return n
}

func (a *Assembler) drop(key core.FragmentKey) {
	delete(a.groups, key)
	for i, k := range a.order {
		if k == key {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

func (a *Assembler) evictOldest() {
	if len(a.order) == 0 {
		return
	}
	oldest := a.order[0]
	a.drop(oldest)
}

// ActiveGroups reports the number of incomplete groups currently tracked,
// for diagnostics.
func (a *Assembler) ActiveGroups() int {
	return len(a.groups)
}

