package fragment

import (
	"errors"
	"testing"
	"time"

	"github.com/amoeba/ac-pcap-parser/internal/core"
)

func TestAssemblerReassemblesInOrder(t *testing.T) {
	a := New(DefaultConfig())
	ts := time.Unix(0, 0)

	r := a.Add(1, core.FragmentHeader{GroupID: 1, FragmentCount: 3, FragmentIndex: 0}, ts, []byte("AAA"))
	if r.Complete != nil || r.Err != nil {
		t.Fatalf("unexpected result: %+v", r)
	}

	r = a.Add(1, core.FragmentHeader{GroupID: 1, FragmentCount: 3, FragmentIndex: 2}, ts, []byte("CCC"))
	if r.Complete != nil || r.Err != nil {
		t.Fatalf("unexpected result: %+v", r)
	}

	r = a.Add(1, core.FragmentHeader{GroupID: 1, FragmentCount: 3, FragmentIndex: 1}, ts, []byte("BBB"))
	if r.Err != nil {
		t.Fatalf("Add: %v", r.Err)
	}
	if string(r.Complete) != "AAABBBCCC" {
		t.Fatalf("Complete = %q, want AAABBBCCC", r.Complete)
	}

	if a.ActiveGroups() != 0 {
		t.Fatalf("ActiveGroups = %d, want 0", a.ActiveGroups())
	}
}

func TestAssemblerIdempotentRetransmission(t *testing.T) {
	a := New(DefaultConfig())
	ts := time.Unix(0, 0)

	a.Add(1, core.FragmentHeader{GroupID: 1, FragmentCount: 2, FragmentIndex: 0}, ts, []byte("AA"))
	r := a.Add(1, core.FragmentHeader{GroupID: 1, FragmentCount: 2, FragmentIndex: 0}, ts, []byte("AA"))
	if r.Err != nil || r.Complete != nil {
		t.Fatalf("retransmission rejected: %+v", r)
	}
}

func TestAssemblerConflict(t *testing.T) {
	a := New(DefaultConfig())
	ts := time.Unix(0, 0)

	a.Add(1, core.FragmentHeader{GroupID: 1, FragmentCount: 2, FragmentIndex: 0}, ts, []byte("AA"))
	r := a.Add(1, core.FragmentHeader{GroupID: 1, FragmentCount: 2, FragmentIndex: 0}, ts, []byte("ZZ"))
	if !errors.Is(r.Err, core.ErrFragmentConflict) {
		t.Fatalf("err = %v, want ErrFragmentConflict", r.Err)
	}
	if a.ActiveGroups() != 0 {
		t.Fatalf("ActiveGroups = %d, want 0 after conflict drop", a.ActiveGroups())
	}
}

func TestAssemblerStaleGroupDropped(t *testing.T) {
	cfg := Config{MaxGroups: 10, GroupTTL: 5 * time.Second}
	a := New(cfg)
	start := time.Unix(0, 0)

	a.Add(1, core.FragmentHeader{GroupID: 1, FragmentCount: 2, FragmentIndex: 0}, start, []byte("AA"))
	late := start.Add(10 * time.Second)
	r := a.Add(1, core.FragmentHeader{GroupID: 1, FragmentCount: 2, FragmentIndex: 1}, late, []byte("BB"))
	if !errors.Is(r.Err, core.ErrStalePartial) {
		t.Fatalf("err = %v, want ErrStalePartial", r.Err)
	}
}

func TestAssemblerDirectionsDoNotCollide(t *testing.T) {
	a := New(DefaultConfig())
	ts := time.Unix(0, 0)

	c2s := uint64(1)<<8 | uint64(core.DirectionClientToServer)
	s2c := uint64(1)<<8 | uint64(core.DirectionServerToClient)

	// Same group id, complementary indices: if the two directions shared a
	// group, the second fragment would complete it as "CS".
	a.Add(c2s, core.FragmentHeader{GroupID: 1, FragmentCount: 2, FragmentIndex: 0}, ts, []byte("C"))
	r := a.Add(s2c, core.FragmentHeader{GroupID: 1, FragmentCount: 2, FragmentIndex: 1}, ts, []byte("S"))
	if r.Complete != nil {
		t.Fatalf("Complete = %q, want nil", r.Complete)
	}
	if a.ActiveGroups() != 2 {
		t.Fatalf("ActiveGroups = %d, want 2", a.ActiveGroups())
	}
}

func TestAssemblerEvictsOldestWhenFull(t *testing.T) {
	cfg := Config{MaxGroups: 1, GroupTTL: 0}
	a := New(cfg)
	ts := time.Unix(0, 0)

	a.Add(1, core.FragmentHeader{GroupID: 1, FragmentCount: 2, FragmentIndex: 0}, ts, []byte("A"))
	a.Add(1, core.FragmentHeader{GroupID: 2, FragmentCount: 2, FragmentIndex: 0}, ts, []byte("B"))

	if a.ActiveGroups() != 1 {
		t.Fatalf("ActiveGroups = %d, want 1", a.ActiveGroups())
	}
}
