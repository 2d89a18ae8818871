package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/domain/shipping/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMemoryQuoteCache_SetGetFlush(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryQuoteCache(time.Minute, time.Minute)

	_, found, err := c.Get(ctx, "rates:fedex:abc")
	require.NoError(t, err)
	assert.False(t, found)

	quotes := []shipping.RateQuote{{Carrier: shipping.CarrierFedEx, ServiceType: "FEDEX_GROUND", TotalCharge: 12.5}}
	require.NoError(t, c.Set(ctx, "rates:fedex:abc", quotes, time.Minute))

	got, found, err := c.Get(ctx, "rates:fedex:abc")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, quotes, got)

	got[0].TotalCharge = 99
	again, _, _ := c.Get(ctx, "rates:fedex:abc")
	assert.Equal(t, 12.5, again[0].TotalCharge)

	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestMemoryQuoteCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryQuoteCache(time.Minute, time.Minute)

	require.NoError(t, c.Set(ctx, "k", []shipping.RateQuote{{Carrier: shipping.CarrierDHL}}, 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDecodeQuotes(t *testing.T) {
	quotes, err := decodeQuotes([]byte(`[{"carrier":"ups","service_type":"03","total_charge":20}]`))
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, shipping.CarrierUPS, quotes[0].Carrier)

	_, err = decodeQuotes([]byte("not json"))
	assert.Error(t, err)
}

func TestCachedConfigProvider_MemoizesUntilInvalidated(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockConfigProvider(ctrl)
	ctx := context.Background()

	first := &shipping.ConfigSnapshot{Commissions: map[shipping.CarrierCode]float64{shipping.CarrierUPS: 5}}
	second := &shipping.ConfigSnapshot{Commissions: map[shipping.CarrierCode]float64{shipping.CarrierUPS: 7}}
	gomock.InOrder(
		source.EXPECT().Snapshot(gomock.Any()).Return(first, nil),
		source.EXPECT().Snapshot(gomock.Any()).Return(second, nil),
	)

	p := NewCachedConfigProvider(source, time.Minute, nil)

	got, err := p.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, first, got)

	got, err = p.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, first, got)

	p.Invalidate()
	got, err = p.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, second, got)
}

func TestCachedConfigProvider_DoesNotCacheErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockConfigProvider(ctrl)
	snapshot := &shipping.ConfigSnapshot{}
	gomock.InOrder(
		source.EXPECT().Snapshot(gomock.Any()).Return(nil, errors.New("db down")),
		source.EXPECT().Snapshot(gomock.Any()).Return(snapshot, nil),
	)

	p := NewCachedConfigProvider(source, time.Minute, nil)

	_, err := p.Snapshot(context.Background())
	assert.Error(t, err)

	got, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Same(t, snapshot, got)
}
