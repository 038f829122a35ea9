package process

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nachos/pkg/synch"
)

const blockWindow = 50 * time.Millisecond

// newTestTable creates a table whose launcher records started processes.
func newTestTable(t *testing.T, size int) (*Table, *[]int) {
	t.Helper()

	var mu sync.Mutex
	started := make([]int, 0)
	table, err := NewTable(size, "scheduler", WithLauncher(func(p *PCB) error {
		mu.Lock()
		defer mu.Unlock()
		started = append(started, p.ID)
		return nil
	}))
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	return table, &started
}

// TestSlotStateTransitions tests valid and invalid state transitions.
func TestSlotStateTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    SlotState
		to      SlotState
		wantErr bool
	}{
		{"Free to Allocated", StateFree, StateAllocated, false},
		{"Allocated to ExitedPendingJoin", StateAllocated, StateExitedPendingJoin, false},
		{"ExitedPendingJoin to Reclaimed", StateExitedPendingJoin, StateReclaimed, false},
		{"Allocated to Reclaimed", StateAllocated, StateReclaimed, true},
		{"Reclaimed to Allocated", StateReclaimed, StateAllocated, true},
		{"Free to ExitedPendingJoin", StateFree, StateExitedPendingJoin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPCB(1, 0, "test")
			p.state = tt.from
			err := p.TransitionTo(tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("TransitionTo() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestPCBWaitCounter tests the saturating wait counter.
func TestPCBWaitCounter(t *testing.T) {
	p := NewPCB(1, 0, "test")

	p.DecWait()
	if p.WaitCount() != 0 {
		t.Errorf("WaitCount() = %d, want 0 after DecWait on zero", p.WaitCount())
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.IncWait()
		}()
	}
	wg.Wait()
	if p.WaitCount() != 100 {
		t.Errorf("WaitCount() = %d, want 100", p.WaitCount())
	}

	p.DecWait()
	if p.WaitCount() != 99 {
		t.Errorf("WaitCount() = %d, want 99", p.WaitCount())
	}
}

// TestPCBHandshake tests the join/exit handshake on a single PCB.
func TestPCBHandshake(t *testing.T) {
	p := NewPCB(3, 0, "child")
	ctx := context.Background()

	exited := make(chan error, 1)
	go func() {
		p.SetExitCode(42)
		p.SignalJoin()
		exited <- p.WaitExit(ctx)
	}()

	rc, err := p.WaitJoin(ctx)
	if err != nil {
		t.Fatalf("WaitJoin() error = %v", err)
	}
	if rc.Value != 42 {
		t.Errorf("exit code = %d, want 42", rc.Value)
	}

	select {
	case <-exited:
		t.Fatal("WaitExit() returned before SignalExit")
	case <-time.After(blockWindow):
	}

	p.SignalExit(rc)
	if err := <-exited; err != nil {
		t.Errorf("WaitExit() error = %v", err)
	}
	if !p.Joined() {
		t.Error("Joined() = false after SignalExit")
	}
}

// TestTableRootSlot tests the pre-seeded root process.
func TestTableRootSlot(t *testing.T) {
	table, _ := newTestTable(t, MaxProcess)

	root, err := table.Get(RootID)
	if err != nil {
		t.Fatalf("Get(0) error = %v", err)
	}
	if root.ParentID != NoParent {
		t.Errorf("root ParentID = %d, want %d", root.ParentID, NoParent)
	}
	if name, _ := table.GetFileName(RootID); name != "scheduler" {
		t.Errorf("GetFileName(0) = %q, want scheduler", name)
	}
	if table.Count() != 1 {
		t.Errorf("Count() = %d, want 1", table.Count())
	}
	if err := table.Remove(RootID); !errors.Is(err, ErrRootReserved) {
		t.Errorf("Remove(0) error = %v, want ErrRootReserved", err)
	}
}

// TestNewTableInvalid tests constructor validation.
func TestNewTableInvalid(t *testing.T) {
	if _, err := NewTable(0, "scheduler"); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("NewTable(0) error = %v, want ErrInvalidSize", err)
	}
	if _, err := NewTable(4, ""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("NewTable(empty) error = %v, want ErrInvalidName", err)
	}
}

// TestExecUpdate tests process creation and its validation.
func TestExecUpdate(t *testing.T) {
	table, started := newTestTable(t, MaxProcess)

	id, err := table.ExecUpdate(RootID, "ping")
	if err != nil {
		t.Fatalf("ExecUpdate() error = %v", err)
	}
	if id != 1 {
		t.Errorf("ExecUpdate() = %d, want 1", id)
	}

	p, err := table.Get(id)
	if err != nil {
		t.Fatalf("Get(%d) error = %v", id, err)
	}
	if p.ParentID != RootID {
		t.Errorf("ParentID = %d, want %d", p.ParentID, RootID)
	}
	if p.Name() != "ping" {
		t.Errorf("Name() = %q, want ping", p.Name())
	}
	if p.State() != StateAllocated || !p.IsAlive() {
		t.Errorf("State() = %v, want %v", p.State(), StateAllocated)
	}
	if len(*started) != 1 || (*started)[0] != id {
		t.Errorf("launcher started %v, want [%d]", *started, id)
	}

	tests := []struct {
		name    string
		caller  int
		exec    string
		wantErr error
	}{
		{"empty name", RootID, "", ErrInvalidName},
		{"root program", RootID, "scheduler", ErrSelfExec},
		{"own name", id, "ping", ErrSelfExec},
		{"unknown caller", 7, "pong", ErrInvalidPID},
		{"out of range caller", 99, "pong", ErrInvalidPID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := table.Count()
			got, err := table.ExecUpdate(tt.caller, tt.exec)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ExecUpdate() error = %v, want %v", err, tt.wantErr)
			}
			if got != -1 {
				t.Errorf("ExecUpdate() = %d, want -1", got)
			}
			if table.Count() != before {
				t.Errorf("Count() = %d, want %d (no slot consumed)", table.Count(), before)
			}
		})
	}
}

// TestExecExhaustion tests that a full table rejects Exec and stays intact.
func TestExecExhaustion(t *testing.T) {
	table, _ := newTestTable(t, 4)

	ids := make([]int, 0)
	for _, name := range []string{"a", "b", "c"} {
		id, err := table.ExecUpdate(RootID, name)
		if err != nil {
			t.Fatalf("ExecUpdate(%s) error = %v", name, err)
		}
		ids = append(ids, id)
	}

	before := table.Processes()

	if _, err := table.ExecUpdate(RootID, "d"); !errors.Is(err, ErrNoFreeSlot) {
		t.Fatalf("ExecUpdate() error = %v, want ErrNoFreeSlot", err)
	}

	after := table.Processes()
	if len(after) != len(before) {
		t.Fatalf("Processes() len = %d, want %d", len(after), len(before))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("slot %d PCB changed after failed Exec", before[i].ID)
		}
	}
	for _, id := range ids {
		if !table.IsExist(id) {
			t.Errorf("IsExist(%d) = false", id)
		}
	}
}

// TestExecLaunchFailure tests that a failed launch releases the slot.
func TestExecLaunchFailure(t *testing.T) {
	errBoom := errors.New("boom")
	table, err := NewTable(4, "scheduler", WithLauncher(func(p *PCB) error {
		return errBoom
	}))
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	if _, err := table.ExecUpdate(RootID, "ping"); !errors.Is(err, errBoom) {
		t.Fatalf("ExecUpdate() error = %v, want %v", err, errBoom)
	}
	if table.IsExist(1) {
		t.Error("slot 1 still allocated after launch failure")
	}
	if table.Count() != 1 {
		t.Errorf("Count() = %d, want 1", table.Count())
	}
}

// TestJoinExit tests that Join blocks until Exit and returns the exit code.
func TestJoinExit(t *testing.T) {
	table, _ := newTestTable(t, MaxProcess)
	ctx := context.Background()

	id, err := table.ExecUpdate(RootID, "child")
	if err != nil {
		t.Fatalf("ExecUpdate() error = %v", err)
	}

	joined := make(chan int, 1)
	go func() {
		code, err := table.JoinUpdate(ctx, RootID, id)
		if err != nil {
			t.Errorf("JoinUpdate() error = %v", err)
		}
		joined <- code
	}()

	select {
	case <-joined:
		t.Fatal("JoinUpdate() returned before Exit")
	case <-time.After(blockWindow):
	}

	code, err := table.ExitUpdate(ctx, id, 7)
	if err != nil {
		t.Fatalf("ExitUpdate() error = %v", err)
	}
	if code != 7 {
		t.Errorf("ExitUpdate() = %d, want 7", code)
	}

	select {
	case got := <-joined:
		if got != 7 {
			t.Errorf("JoinUpdate() = %d, want 7", got)
		}
	case <-time.After(time.Second):
		t.Fatal("JoinUpdate() did not return")
	}

	if table.IsExist(id) {
		t.Error("child slot not reclaimed")
	}
}

// TestExitBeforeJoin tests that an exited child parks until its parent joins.
func TestExitBeforeJoin(t *testing.T) {
	table, _ := newTestTable(t, MaxProcess)
	ctx := context.Background()

	id, _ := table.ExecUpdate(RootID, "child")

	exited := make(chan int, 1)
	go func() {
		code, _ := table.ExitUpdate(ctx, id, 3)
		exited <- code
	}()

	select {
	case <-exited:
		t.Fatal("ExitUpdate() returned without a join")
	case <-time.After(blockWindow):
	}

	p, err := table.Get(id)
	if err != nil {
		t.Fatalf("parked child not in table: %v", err)
	}
	if p.State() != StateExitedPendingJoin {
		t.Errorf("State() = %v, want %v", p.State(), StateExitedPendingJoin)
	}
	if p.IsAlive() {
		t.Error("IsAlive() = true for an exited process")
	}
	lifetime := p.Lifetime()
	if lifetime <= 0 || lifetime != p.ExitedAt.Sub(p.CreatedAt) {
		t.Errorf("Lifetime() = %v, want time until exit", lifetime)
	}

	// A second exit fails without touching the parked process
	if code, err := table.ExitUpdate(ctx, id, 9); !errors.Is(err, ErrInvalidTransition) || code != -1 {
		t.Errorf("second ExitUpdate() = %d, %v, want -1, ErrInvalidTransition", code, err)
	}
	if p.ExitCode() != 3 {
		t.Errorf("ExitCode() = %d after second exit, want 3", p.ExitCode())
	}

	code, err := table.JoinUpdate(ctx, RootID, id)
	if err != nil || code != 3 {
		t.Fatalf("JoinUpdate() = %d, %v, want 3, nil", code, err)
	}

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("ExitUpdate() did not return after join")
	}
	if p.State() != StateReclaimed {
		t.Errorf("State() = %v, want %v", p.State(), StateReclaimed)
	}
	if p.ReclaimedAt.Before(p.ExitedAt) || p.Lifetime() != lifetime {
		t.Errorf("Lifetime() changed after reclaim: %v, want %v", p.Lifetime(), lifetime)
	}
}

// TestJoinValidation tests that bad joins fail without blocking or mutating.
func TestJoinValidation(t *testing.T) {
	table, _ := newTestTable(t, MaxProcess)
	ctx := context.Background()

	a, _ := table.ExecUpdate(RootID, "A")
	b, _ := table.ExecUpdate(RootID, "B")

	tests := []struct {
		name    string
		caller  int
		target  int
		wantErr error
	}{
		{"negative id", RootID, -1, ErrInvalidPID},
		{"out of range id", RootID, MaxProcess, ErrInvalidPID},
		{"free slot", RootID, 5, ErrInvalidPID},
		{"sibling join", b, a, ErrNotParent},
		{"child joins parent", a, RootID, ErrNotParent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan error, 1)
			go func() {
				_, err := table.JoinUpdate(ctx, tt.caller, tt.target)
				done <- err
			}()

			select {
			case err := <-done:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("JoinUpdate() error = %v, want %v", err, tt.wantErr)
				}
			case <-time.After(time.Second):
				t.Fatal("JoinUpdate() blocked on an invalid join")
			}
		})
	}

	for _, id := range []int{RootID, a, b} {
		p, _ := table.Get(id)
		if p.WaitCount() != 0 {
			t.Errorf("pid %d WaitCount() = %d, want 0", id, p.WaitCount())
		}
	}
}

// TestSlotReuse tests that a reclaimed id is handed out again.
func TestSlotReuse(t *testing.T) {
	table, _ := newTestTable(t, 3)
	ctx := context.Background()

	first, _ := table.ExecUpdate(RootID, "a")
	second, _ := table.ExecUpdate(RootID, "b")

	go table.ExitUpdate(ctx, first, 0)
	if _, err := table.JoinUpdate(ctx, RootID, first); err != nil {
		t.Fatalf("JoinUpdate() error = %v", err)
	}

	deadline := time.After(time.Second)
	for table.IsExist(first) {
		select {
		case <-deadline:
			t.Fatal("slot never reclaimed")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	id, err := table.ExecUpdate(RootID, "c")
	if err != nil {
		t.Fatalf("ExecUpdate() error = %v", err)
	}
	if id != first {
		t.Errorf("ExecUpdate() = %d, want reused slot %d", id, first)
	}
	if id == second {
		t.Errorf("ExecUpdate() returned still-allocated slot %d", second)
	}
}

// TestRootExitHalts tests that the root exit triggers the halter.
func TestRootExitHalts(t *testing.T) {
	halted := false
	table, err := NewTable(MaxProcess, "scheduler", WithHalter(func() { halted = true }))
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	code, err := table.ExitUpdate(context.Background(), RootID, 5)
	if err != nil || code != 0 {
		t.Errorf("ExitUpdate(root) = %d, %v, want 0, nil", code, err)
	}
	if !halted {
		t.Error("halter not called")
	}
	if !table.IsExist(RootID) {
		t.Error("root slot released by exit")
	}
}

// TestHaltReleasesBlocked tests that cancellation releases join and exit waits.
func TestHaltReleasesBlocked(t *testing.T) {
	table, _ := newTestTable(t, MaxProcess)
	ctx, cancel := context.WithCancelCause(context.Background())

	a, _ := table.ExecUpdate(RootID, "a")
	b, _ := table.ExecUpdate(RootID, "b")

	errs := make(chan error, 2)
	go func() {
		_, err := table.JoinUpdate(ctx, RootID, a)
		errs <- err
	}()
	go func() {
		_, err := table.ExitUpdate(ctx, b, 1)
		errs <- err
	}()

	time.Sleep(blockWindow)
	cancel(synch.ErrHalted)

	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			if !errors.Is(err, synch.ErrHalted) {
				t.Errorf("blocked call error = %v, want ErrHalted", err)
			}
		case <-time.After(time.Second):
			t.Fatal("blocked call not released")
		}
	}

	table.Teardown()
	if table.Count() != 0 {
		t.Errorf("Count() = %d after Teardown, want 0", table.Count())
	}
}

// TestWaitCounterProtocol tests the counter updates made by join and exit.
func TestWaitCounterProtocol(t *testing.T) {
	table, _ := newTestTable(t, MaxProcess)
	ctx := context.Background()
	root, _ := table.Get(RootID)

	id, _ := table.ExecUpdate(RootID, "child")

	joined := make(chan struct{})
	go func() {
		table.JoinUpdate(ctx, RootID, id)
		close(joined)
	}()

	deadline := time.After(time.Second)
	for root.WaitCount() != 1 {
		select {
		case <-deadline:
			t.Fatalf("WaitCount() = %d, want 1 while joining", root.WaitCount())
		default:
			time.Sleep(time.Millisecond)
		}
	}

	table.ExitUpdate(ctx, id, 0)
	<-joined

	if root.WaitCount() != 0 {
		t.Errorf("WaitCount() = %d, want 0 after exit", root.WaitCount())
	}
}
