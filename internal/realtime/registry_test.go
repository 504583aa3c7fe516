package realtime

import (
	"fmt"
	"sync"
	"testing"
)

type fakeMember struct {
	id string
}

func (f *fakeMember) ID() string                        { return f.id }
func (f *fakeMember) Send(event string, data any) error { return nil }

func TestRegistryJoinIsIdempotent(t *testing.T) {
	r := NewRegistry()
	m := &fakeMember{id: "conn-1"}

	if first := r.Join(42, m); !first {
		t.Fatal("first join should report a new channel")
	}
	if first := r.Join(42, m); first {
		t.Fatal("repeated join should not report a new channel")
	}

	if got := len(r.Members(42)); got != 1 {
		t.Fatalf("expected 1 member, got %d", got)
	}
}

func TestRegistryMultipleConnectionsPerSubject(t *testing.T) {
	r := NewRegistry()
	r.Join(42, &fakeMember{id: "phone"})
	r.Join(42, &fakeMember{id: "laptop"})

	if got := len(r.Members(42)); got != 2 {
		t.Fatalf("expected 2 members, got %d", got)
	}

	if emptied := r.Leave(42, "phone"); emptied {
		t.Fatal("channel with a remaining connection should not report empty")
	}
	if emptied := r.Leave(42, "laptop"); !emptied {
		t.Fatal("removing the last connection should report empty")
	}
	if got := len(r.Members(42)); got != 0 {
		t.Fatalf("expected empty channel, got %d members", got)
	}
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Join(7, &fakeMember{id: "conn-7"})

	subjectID, emptied := r.Remove("conn-7")
	if subjectID != 7 || !emptied {
		t.Fatalf("expected subject 7 emptied, got subject %d emptied=%v", subjectID, emptied)
	}

	// Racing disconnect handlers call Remove twice; the second is a no-op.
	subjectID, emptied = r.Remove("conn-7")
	if subjectID != 0 || emptied {
		t.Fatalf("second remove should be a no-op, got subject %d emptied=%v", subjectID, emptied)
	}

	if r.ConnectionCount() != 0 {
		t.Fatalf("expected no connections, got %d", r.ConnectionCount())
	}
}

func TestRegistryRemoveUnknownConnection(t *testing.T) {
	r := NewRegistry()
	if subjectID, emptied := r.Remove("nope"); subjectID != 0 || emptied {
		t.Fatal("removing an unknown connection must be a no-op")
	}
}

func TestRegistryMembersOfUnknownSubjectIsEmpty(t *testing.T) {
	r := NewRegistry()
	if got := r.Members(99); len(got) != 0 {
		t.Fatalf("expected empty set, got %d", len(got))
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			subject := int64(i % 5)
			id := fmt.Sprintf("conn-%d", i)
			r.Join(subject, &fakeMember{id: id})
			r.Members(subject)
			r.Remove(id)
		}(i)
	}
	wg.Wait()

	if r.ConnectionCount() != 0 {
		t.Fatalf("expected all connections removed, got %d", r.ConnectionCount())
	}
}
