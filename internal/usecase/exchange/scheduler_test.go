package exchange

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/humanistic-tech/exchange-service/internal/domain"
	exchangedto "github.com/humanistic-tech/exchange-service/internal/usecase/dto/exchange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingUsecase records ProcessPending passes and can hold a pass open to
// exercise the in-flight shutdown guarantee.
type countingUsecase struct {
	mu     sync.Mutex
	passes int

	passStarted chan struct{}
	passRelease chan struct{}
}

func (c *countingUsecase) ProcessPending(ctx context.Context) error {
	if c.passStarted != nil {
		c.passStarted <- struct{}{}
		<-c.passRelease
	}
	c.mu.Lock()
	c.passes++
	c.mu.Unlock()
	return nil
}

func (c *countingUsecase) passCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.passes
}

func (c *countingUsecase) CreateTransaction(*exchangedto.CreateTransactionInput) (*domain.Transaction, error) {
	return nil, nil
}

func (c *countingUsecase) GetTransactionByID(string) (*domain.Transaction, error) {
	return nil, nil
}

func (c *countingUsecase) GetRoutes(context.Context) ([]domain.Route, error) {
	return nil, nil
}

func TestScheduler_RunsPasses(t *testing.T) {
	uc := &countingUsecase{}
	s := NewScheduler(uc, time.Millisecond)
	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return uc.passCount() >= 3
	}, time.Second, time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_StopWaitsForInFlightPass(t *testing.T) {
	uc := &countingUsecase{
		passStarted: make(chan struct{}),
		passRelease: make(chan struct{}),
	}
	s := NewScheduler(uc, time.Millisecond)
	s.Start(context.Background())

	<-uc.passStarted

	stopped := make(chan error, 1)
	go func() { stopped <- s.Stop(context.Background()) }()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a pass was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(uc.passRelease)
	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the pass completed")
	}
	assert.Equal(t, 1, uc.passCount())
}

func TestScheduler_NoPassesAfterStop(t *testing.T) {
	uc := &countingUsecase{}
	s := NewScheduler(uc, time.Millisecond)
	s.Start(context.Background())
	require.NoError(t, s.Stop(context.Background()))

	settled := uc.passCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, settled, uc.passCount())
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	uc := &countingUsecase{}
	s := NewScheduler(uc, time.Millisecond)
	s.Start(context.Background())

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_StopHonorsContextDeadline(t *testing.T) {
	uc := &countingUsecase{
		passStarted: make(chan struct{}),
		passRelease: make(chan struct{}),
	}
	s := NewScheduler(uc, time.Millisecond)
	s.Start(context.Background())

	<-uc.passStarted

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Release the pass so the goroutine can exit.
	close(uc.passRelease)
	require.NoError(t, s.Stop(context.Background()))
}

var _ ExchangeUsecase = (*countingUsecase)(nil)
