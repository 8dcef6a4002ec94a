package quorum

import (
	"context"
	"os"
	"testing"

	"github.com/iov-one/quorum/quorumtest/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContextLogger(t *testing.T) {
	bg := context.Background()

	newLogger := log.NewTMLogger(os.Stdout)
	ctx := WithLogger(bg, newLogger)
	assert.Equal(t, DefaultLogger, GetLogger(bg))
	assert.Equal(t, newLogger, GetLogger(ctx))

	ctx2 := WithLogInfo(ctx, "foo", "bar")
	if GetLogger(ctx2) == GetLogger(ctx) {
		t.Fatal("log info must produce a new logger")
	}
}

func TestContextGasMeter(t *testing.T) {
	bg := context.Background()

	m := GetGasMeter(bg)
	assert.Equal(t, true, m.IsInfinite())

	limited := NewGasMeter(100)
	ctx := WithGasMeter(bg, limited)
	GetGasMeter(ctx).ConsumeGas(40, "test")
	assert.Equal(t, int64(40), limited.GasConsumed())
	assert.Equal(t, int64(60), limited.Remaining())
}

func TestContextHeight(t *testing.T) {
	bg := context.Background()

	_, ok := GetHeight(bg)
	assert.Equal(t, false, ok)

	h, ok := GetHeight(WithHeight(bg, 7))
	assert.Equal(t, true, ok)
	assert.Equal(t, int64(7), h)
}
