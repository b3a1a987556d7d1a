package fsm

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type status string

const (
	statusNew      status = "new"
	statusApproved status = "approved"
	statusPaid     status = "paid"
	statusShipped  status = "shipped"
	statusDone     status = "done"
	statusCanceled status = "canceled"
)

func newOrderMachine() *Machine[status] {
	return New(Config[status]{
		Terminal: []status{statusDone, statusCanceled},
		Transitions: []Transition[status]{
			{Name: "approve", Sources: []status{statusNew}, Target: statusApproved},
			{Name: "pay", Sources: []status{statusApproved}, Target: statusPaid},
			{Name: "ship", Sources: []status{statusPaid}, Target: statusShipped},
			{Name: "complete", Sources: []status{statusShipped}, Target: statusDone},
			{Name: "cancel", AnySource: true, Target: statusCanceled},
		},
	})
}

func TestApplyExhaustiveTable(t *testing.T) {
	machine := newOrderMachine()
	states := []status{statusNew, statusApproved, statusPaid, statusShipped, statusDone, statusCanceled}

	legal := map[string]map[status]status{
		"approve":  {statusNew: statusApproved},
		"pay":      {statusApproved: statusPaid},
		"ship":     {statusPaid: statusShipped},
		"complete": {statusShipped: statusDone},
		"cancel": {
			statusNew:      statusCanceled,
			statusApproved: statusCanceled,
			statusPaid:     statusCanceled,
			statusShipped:  statusCanceled,
		},
	}

	for _, name := range machine.Transitions() {
		for _, from := range states {
			t.Run(fmt.Sprintf("%s from %s", name, from), func(t *testing.T) {
				target, err := machine.Apply(name, from)
				want, ok := legal[name][from]
				if ok {
					if err != nil {
						t.Fatalf("expected %s from %s to succeed, got %v", name, from, err)
					}
					if target != want {
						t.Fatalf("expected target %s, got %s", want, target)
					}
					return
				}
				if err == nil {
					t.Fatalf("expected %s from %s to fail", name, from)
				}
				if !IsIllegalTransition(err) {
					t.Fatalf("expected illegal transition error, got %v", err)
				}
			})
		}
	}
}

func TestCanMatchesApply(t *testing.T) {
	machine := newOrderMachine()
	states := []status{statusNew, statusApproved, statusPaid, statusShipped, statusDone, statusCanceled}

	for _, name := range machine.Transitions() {
		for _, from := range states {
			_, err := machine.Apply(name, from)
			if got := machine.Can(name, from); got != (err == nil) {
				t.Fatalf("Can(%s, %s)=%v disagrees with Apply error %v", name, from, got, err)
			}
		}
	}
}

func TestApplyUnknownTransition(t *testing.T) {
	machine := newOrderMachine()
	_, err := machine.Apply("refund", statusPaid)
	if err == nil || !IsIllegalTransition(err) {
		t.Fatalf("expected illegal transition for unknown name, got %v", err)
	}
	if !strings.Contains(err.Error(), "refund") {
		t.Fatalf("error should name the transition: %v", err)
	}
}

func TestIllegalTransitionErrorDetails(t *testing.T) {
	machine := newOrderMachine()
	_, err := machine.Apply("pay", statusNew)
	var illegal *IllegalTransitionError[status]
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if illegal.Current != statusNew || illegal.Transition != "pay" {
		t.Fatalf("unexpected error details: %+v", illegal)
	}
	if len(illegal.Allowed) != 1 || illegal.Allowed[0] != statusApproved {
		t.Fatalf("expected allowed sources [approved], got %v", illegal.Allowed)
	}
	for _, fragment := range []string{"pay", "new", "approved"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error message missing %q: %v", fragment, err)
		}
	}
}

func TestCancelFromTerminalFails(t *testing.T) {
	machine := newOrderMachine()
	for _, from := range []status{statusDone, statusCanceled} {
		if machine.Can("cancel", from) {
			t.Fatalf("cancel must not be allowed from terminal state %s", from)
		}
		if _, err := machine.Apply("cancel", from); !IsIllegalTransition(err) {
			t.Fatalf("expected illegal transition from %s, got %v", from, err)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	machine := newOrderMachine()
	if !machine.IsTerminal(statusDone) || !machine.IsTerminal(statusCanceled) {
		t.Fatal("done and canceled must be terminal")
	}
	if machine.IsTerminal(statusNew) {
		t.Fatal("new must not be terminal")
	}
}

func TestIsIllegalTransitionRejectsOtherErrors(t *testing.T) {
	if IsIllegalTransition(errors.New("boom")) {
		t.Fatal("plain errors must not match")
	}
	if IsIllegalTransition(nil) {
		t.Fatal("nil must not match")
	}
}

func TestNewPanicsOnDuplicateTransition(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate transition name")
		}
	}()
	New(Config[status]{Transitions: []Transition[status]{
		{Name: "approve", Sources: []status{statusNew}, Target: statusApproved},
		{Name: "approve", Sources: []status{statusPaid}, Target: statusShipped},
	}})
}
