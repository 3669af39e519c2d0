package settings

import (
	"testing"

	"github.com/mselser95/sportsbook-boot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeChannel struct {
	connects    int
	disconnects int
}

func (c *fakeChannel) Connect()    { c.connects++ }
func (c *fakeChannel) Disconnect() { c.disconnects++ }

func newTestFeed(t *testing.T) *Feed {
	t.Helper()
	f, err := New(zaptest.NewLogger(t))
	require.NoError(t, err)
	return f
}

func TestFeed_Defaults(t *testing.T) {
	f := newTestFeed(t)

	assert.Equal(t, types.MaintenanceUnknown, f.Maintenance().Get().Status)
	assert.Equal(t, types.VersionInfo{}, f.Version().Get())
}

func TestFeed_HandleMessage(t *testing.T) {
	tests := []struct {
		name            string
		raw             string
		wantMaintenance types.Maintenance
		wantVersion     types.VersionInfo
	}{
		{
			name:            "maintenance-on",
			raw:             `{"type":"maintenance","enabled":true,"message":"closed for upgrade"}`,
			wantMaintenance: types.MaintenanceOn("closed for upgrade"),
		},
		{
			name:            "maintenance-off",
			raw:             `{"type":"maintenance","enabled":false}`,
			wantMaintenance: types.MaintenanceOff(),
		},
		{
			name:        "version",
			raw:         `{"type":"version","required":"2.1.0","current":"2.3.0"}`,
			wantVersion: types.VersionInfo{Required: "2.1.0", Current: "2.3.0"},
		},
		{
			name: "maintenance-without-flag",
			raw:  `{"type":"maintenance","message":"?"}`,
		},
		{
			name: "unknown-type",
			raw:  `{"type":"promo","banner":"x"}`,
		},
		{
			name: "invalid-json",
			raw:  `{"type":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFeed(t)

			f.HandleMessage([]byte(tt.raw))

			assert.Equal(t, tt.wantMaintenance, f.Maintenance().Get())
			assert.Equal(t, tt.wantVersion, f.Version().Get())
		})
	}
}

func TestFeed_StartStop(t *testing.T) {
	f := newTestFeed(t)
	require.Error(t, f.Start(), "start without channel")

	ch := &fakeChannel{}
	f.Attach(ch)
	require.NoError(t, f.Start())
	f.Stop()

	assert.Equal(t, 1, ch.connects)
	assert.Equal(t, 1, ch.disconnects)
}
