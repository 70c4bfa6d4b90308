package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishtrace/pkg/clients/marketplace"
)

type fakeClient struct {
	calls []reading
	fail  string
}

func (f *fakeClient) ReportQuantity(_ context.Context, _ string, fish string, qty int) (*marketplace.StockEntry, error) {
	f.calls = append(f.calls, reading{Fish: fish, Quantity: qty})
	if fish == f.fail {
		return nil, errors.New("boom")
	}
	return &marketplace.StockEntry{Name: fish, Quantity: &qty}, nil
}

func (f *fakeClient) Health(context.Context) error { return nil }

func TestParseReadings(t *testing.T) {
	got, err := parseReadings([]string{"Tilapia=5", " Nile Perch = 0"})
	require.NoError(t, err)
	assert.Equal(t, []reading{{Fish: "Tilapia", Quantity: 5}, {Fish: "Nile Perch", Quantity: 0}}, got)

	for _, bad := range [][]string{nil, {"Tilapia"}, {"=3"}, {"Tilapia=-1"}, {"Tilapia=lots"}} {
		_, err := parseReadings(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestRunOnce(t *testing.T) {
	client := &fakeClient{fail: "Catfish"}
	readings := []reading{{Fish: "Tilapia", Quantity: 2}, {Fish: "Catfish", Quantity: 1}}

	err := run(context.Background(), client, "v1", readings, 0, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Catfish")
	assert.Len(t, client.calls, 2)
}

func TestRunStopsOnCancel(t *testing.T) {
	client := &fakeClient{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, client, "v1", []reading{{Fish: "Tilapia", Quantity: 2}}, time.Hour, zap.NewNop())
	assert.NoError(t, err)
	assert.Len(t, client.calls, 1)
}
