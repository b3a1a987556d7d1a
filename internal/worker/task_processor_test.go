package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	domainErrors "github.com/ntroshin/orderflow/internal/domain/errors"
	"github.com/ntroshin/orderflow/internal/domain/model"
	testhelpers "github.com/ntroshin/orderflow/internal/test"
)

func TestNewTaskProcessorDefaults(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	proc := NewTaskProcessor(&testhelpers.WorkerFacadeStub{}, time.Second, 0, 0, 0, logger)
	if proc.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", proc.batchSize)
	}
	if proc.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", proc.workers)
	}
	if proc.maxAttempts != 1 {
		t.Fatalf("expected max attempts default to 1, got %d", proc.maxAttempts)
	}
}

func waitForCompletions(t *testing.T, facade *testhelpers.WorkerFacadeStub, want int) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		facade.Lock()
		done := len(facade.Completions) >= want
		facade.Unlock()
		if done {
			return
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for task processing")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestTaskProcessorCompletesNotifyTask(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	notified := make(chan int64, 1)
	facade := &testhelpers.WorkerFacadeStub{
		Batches: [][]model.Task{{{ID: 1, Kind: model.TaskNotifyApprovers, OrderID: 9, Attempts: 1}}},
		NotifyFn: func(_ context.Context, orderID int64) error {
			notified <- orderID
			return nil
		},
	}
	proc := NewTaskProcessor(facade, 10*time.Millisecond, 1, 1, 5, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc.Start(ctx)
	waitForCompletions(t, facade, 1)
	proc.Stop()

	select {
	case orderID := <-notified:
		if orderID != 9 {
			t.Fatalf("unexpected order id %d", orderID)
		}
	default:
		t.Fatal("expected notify to run")
	}

	facade.Lock()
	defer facade.Unlock()
	if facade.Completions[0].TaskID != 1 || facade.Completions[0].Error != "" {
		t.Fatalf("expected clean completion, got %+v", facade.Completions[0])
	}
}

func TestTaskProcessorDispatchesInvoiceTask(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	invoiced := make(chan int64, 1)
	facade := &testhelpers.WorkerFacadeStub{
		Batches: [][]model.Task{{{ID: 2, Kind: model.TaskSendInvoice, OrderID: 4, Attempts: 1}}},
		InvoiceFn: func(_ context.Context, orderID int64) error {
			invoiced <- orderID
			return nil
		},
	}
	proc := NewTaskProcessor(facade, 10*time.Millisecond, 1, 1, 5, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc.Start(ctx)
	waitForCompletions(t, facade, 1)
	proc.Stop()

	select {
	case orderID := <-invoiced:
		if orderID != 4 {
			t.Fatalf("unexpected order id %d", orderID)
		}
	default:
		t.Fatal("expected invoice to run")
	}
}

func TestTaskProcessorKeepsTransientFailurePending(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := &testhelpers.WorkerFacadeStub{
		Batches: [][]model.Task{{{ID: 3, Kind: model.TaskNotifyApprovers, OrderID: 9, Attempts: 2}}},
		NotifyFn: func(context.Context, int64) error {
			return fmt.Errorf("gateway 502: %w", domainErrors.ErrDeliveryFailure)
		},
	}
	proc := NewTaskProcessor(facade, 10*time.Millisecond, 1, 1, 5, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc.Start(ctx)
	waitForCompletions(t, facade, 1)
	proc.Stop()

	facade.Lock()
	defer facade.Unlock()
	completion := facade.Completions[0]
	if completion.Failed {
		t.Fatalf("transient failure must stay pending, got %+v", completion)
	}
	if completion.Error == "" {
		t.Fatal("expected error to be recorded")
	}
}

func TestTaskProcessorRetriesNonDeliveryTransientError(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := &testhelpers.WorkerFacadeStub{
		Batches: [][]model.Task{{{ID: 6, Kind: model.TaskNotifyApprovers, OrderID: 9, Attempts: 1}}},
		NotifyFn: func(context.Context, int64) error {
			return fmt.Errorf("load order: connection reset by peer")
		},
	}
	proc := NewTaskProcessor(facade, 10*time.Millisecond, 1, 1, 5, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc.Start(ctx)
	waitForCompletions(t, facade, 1)
	proc.Stop()

	facade.Lock()
	defer facade.Unlock()
	completion := facade.Completions[0]
	if completion.Failed {
		t.Fatalf("first attempt must stay pending for retry, got %+v", completion)
	}
	if completion.Error == "" {
		t.Fatal("expected error to be recorded")
	}
}

func TestTaskProcessorFailsVanishedOrderImmediately(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := &testhelpers.WorkerFacadeStub{
		Batches: [][]model.Task{{{ID: 7, Kind: model.TaskSendInvoice, OrderID: 55, Attempts: 1}}},
		InvoiceFn: func(context.Context, int64) error {
			return domainErrors.ErrNotFound
		},
	}
	proc := NewTaskProcessor(facade, 10*time.Millisecond, 1, 1, 5, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc.Start(ctx)
	waitForCompletions(t, facade, 1)
	proc.Stop()

	facade.Lock()
	defer facade.Unlock()
	completion := facade.Completions[0]
	if !completion.Failed {
		t.Fatalf("missing order cannot succeed later, got %+v", completion)
	}
}

func TestTaskProcessorFailsTaskAfterMaxAttempts(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := &testhelpers.WorkerFacadeStub{
		Batches: [][]model.Task{{{ID: 4, Kind: model.TaskNotifyApprovers, OrderID: 9, Attempts: 5}}},
		NotifyFn: func(context.Context, int64) error {
			return fmt.Errorf("gateway down: %w", domainErrors.ErrDeliveryFailure)
		},
	}
	proc := NewTaskProcessor(facade, 10*time.Millisecond, 1, 1, 5, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc.Start(ctx)
	waitForCompletions(t, facade, 1)
	proc.Stop()

	facade.Lock()
	defer facade.Unlock()
	completion := facade.Completions[0]
	if !completion.Failed {
		t.Fatalf("expected permanent failure, got %+v", completion)
	}
}

func TestTaskProcessorFailsUnknownKind(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := &testhelpers.WorkerFacadeStub{
		Batches: [][]model.Task{{{ID: 5, Kind: "mystery", OrderID: 9, Attempts: 1}}},
	}
	proc := NewTaskProcessor(facade, 10*time.Millisecond, 1, 1, 5, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc.Start(ctx)
	waitForCompletions(t, facade, 1)
	proc.Stop()

	facade.Lock()
	defer facade.Unlock()
	if !facade.Completions[0].Failed {
		t.Fatalf("unknown kind must fail permanently, got %+v", facade.Completions[0])
	}
}
