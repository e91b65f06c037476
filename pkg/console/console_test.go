package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"levelbook/pkg/obs"
	"levelbook/pkg/orderbook"
	"levelbook/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New(&obs.Client{}, nil)
	ctx := context.Background()
	require.NoError(t, reg.Apply(ctx, "BTCUSD", 5299, 16000, orderbook.Ask))
	require.NoError(t, reg.Apply(ctx, "BTCUSD", 5420, 17080, orderbook.Ask))
	require.NoError(t, reg.Apply(ctx, "BTCUSD", 3759, 194950, orderbook.Bid))
	require.NoError(t, reg.Apply(ctx, "BTCUSD", 4160, 65456, orderbook.Bid))
	return reg
}

func run(t *testing.T, reg *registry.Registry, input string) string {
	t.Helper()
	var out bytes.Buffer
	err := New(reg, strings.NewReader(input), &out, &obs.Client{}).Run(context.Background())
	require.NoError(t, err)
	return out.String()
}

func TestConsolePrintsTopLevel(t *testing.T) {
	out := run(t, seededRegistry(t), "1\nBTCUSD\n")

	assert.Contains(t, out, "Enter 1-5:")
	assert.Contains(t, out, "Enter instrument:")
	assert.Contains(t, out, "0: 654.56 41.6 | 52.99 160.00\n")
	assert.NotContains(t, out, "1949.50")
}

func TestConsolePrintsAllQuotes(t *testing.T) {
	out := run(t, seededRegistry(t), "2\nBTCUSD\n")

	assert.Contains(t, out, "0: 654.56 41.6 | 52.99 160.00\n1: 1949.50 37.59 | 54.2 170.80\n")
}

func TestConsoleAggregates(t *testing.T) {
	reg := seededRegistry(t)

	assert.Contains(t, run(t, reg, "3\nBTCUSD\n1\n"), "\n47.29500000\n")
	assert.Contains(t, run(t, reg, "4\nBTCUSD\n1\n"), "\n814.56\n")
	assert.Contains(t, run(t, reg, "5\nBTCUSD\n1\n"), "\n43.83728148\n")
}

func TestConsoleUnknownInstrument(t *testing.T) {
	out := run(t, seededRegistry(t), "1\nETHUSD\n")

	assert.Contains(t, out, "No data exists for this instrument ETHUSD\n")
}

func TestConsoleRecoversFromBadInput(t *testing.T) {
	out := run(t, seededRegistry(t), "x\n9\nBTCUSD\n3\nBTCUSD\n0\n1\nBTCUSD\n")

	assert.Contains(t, out, "Exception occurred For input string: \"x\"\n")
	assert.Contains(t, out, "Invalid action choice\n")
	assert.Contains(t, out, "Exception occurred number of levels must be positive, got 0\n")
	assert.Contains(t, out, "0: 654.56 41.6 | 52.99 160.00\n")
}

func TestConsoleStopsWhileWaitingForInput(t *testing.T) {
	reg := seededRegistry(t)
	in, writer := io.Pipe()
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(reg, in, io.Discard, &obs.Client{}).Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run still waiting on input after cancel")
	}
}
