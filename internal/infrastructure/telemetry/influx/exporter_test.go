package influx

import (
	"context"
	"errors"
	"testing"
	"time"

	"neko-signal-bot/internal/types"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriteAPI struct {
	points []*write.Point
	err    error
}

func (m *mockWriteAPI) WritePoint(ctx context.Context, point ...*write.Point) error {
	if m.err != nil {
		return m.err
	}
	m.points = append(m.points, point...)
	return nil
}

func (m *mockWriteAPI) WriteRecord(ctx context.Context, line ...string) error { return nil }
func (m *mockWriteAPI) EnableBatching()                                      {}
func (m *mockWriteAPI) Flush(ctx context.Context) error                      { return nil }

func snapshot() types.MarketSnapshot {
	return types.MarketSnapshot{
		Symbol:     "BTCUSDT",
		Close:      100.5,
		Volume:     1200,
		OFI:        0.2,
		CVD:        350,
		VWAP:       99.8,
		Score:      4,
		TradeState: "IDLE",
		Timestamp:  time.Date(2026, 4, 1, 13, 0, 0, 0, time.UTC),
	}
}

func TestPointLayout(t *testing.T) {
	e := NewExporterWithAPI(&mockWriteAPI{}, "", 0)
	p := e.Point(snapshot())

	assert.Equal(t, "market_data", p.Name())
	assert.True(t, p.Time().Equal(snapshot().Timestamp))

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, map[string]string{"symbol": "BTCUSDT", "trade_state": "IDLE"}, tags)

	fields := map[string]interface{}{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.Len(t, fields, 6)
	assert.Equal(t, 100.5, fields["close"])
	assert.Equal(t, 99.8, fields["vwap"])
	assert.EqualValues(t, 4, fields["score"])
}

func TestExportIsFireAndForget(t *testing.T) {
	mock := &mockWriteAPI{err: errors.New("unauthorized")}
	e := NewExporterWithAPI(mock, "market_data", time.Second)

	assert.NoError(t, e.Export(snapshot()))
	assert.Empty(t, mock.points)
}

func TestExportWrites(t *testing.T) {
	mock := &mockWriteAPI{}
	e := NewExporterWithAPI(mock, "market_data", time.Second)

	require.NoError(t, e.Export(snapshot()))
	require.Len(t, mock.points, 1)
}

func TestWriteWrapsError(t *testing.T) {
	mock := &mockWriteAPI{err: errors.New("timeout")}
	e := NewExporterWithAPI(mock, "market_data", time.Second)
	err := e.Write(context.Background(), snapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BTCUSDT")
}
