package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"newsdesk/mocks"
)

func TestSupervisor_WorkerFinishesCleanly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	worker := mocks.NewMockWorker(ctrl)
	worker.EXPECT().Run(gomock.Any()).Return(nil).Times(1)

	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("supervisor did not return after the worker finished")
	}
}

func TestSupervisor_RestartsOnError(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var runs atomic.Int32
	worker := mocks.NewMockWorker(ctrl)
	worker.EXPECT().Run(gomock.Any()).
		DoAndReturn(func(context.Context) error {
			if runs.Add(1) < 3 {
				return fmt.Errorf("transient failure")
			}
			return nil
		}).
		Times(3)

	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)
	sup.Run(context.Background())

	req.Equal(int32(3), runs.Load())
}

func TestSupervisor_RestartsOnPanic(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var runs atomic.Int32
	worker := mocks.NewMockWorker(ctrl)
	worker.EXPECT().Run(gomock.Any()).
		DoAndReturn(func(context.Context) error {
			if runs.Add(1) == 1 {
				panic("worker exploded")
			}
			return nil
		}).
		Times(2)

	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)
	sup.Run(context.Background())

	req.Equal(int32(2), runs.Load())
}

func TestSupervisor_StopCancelsBlockedWorkers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	started := make(chan struct{})
	worker := mocks.NewMockWorker(ctrl)
	worker.EXPECT().Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}).
		Times(1)

	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("worker never started")
	}

	sup.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("supervisor did not drain after Stop")
	}
}

func TestSupervisor_ParentContextCancelStops(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	worker := mocks.NewMockWorker(ctrl)
	worker.EXPECT().Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}).
		Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop with its parent context")
	}
}
