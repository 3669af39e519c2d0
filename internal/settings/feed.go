package settings

import (
	"errors"

	json "github.com/goccy/go-json"
	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
)

// Channel is the connection the feed reads from.
type Channel interface {
	Connect()
	Disconnect()
}

// message is a business settings socket frame.
type message struct {
	Type     string `json:"type"`
	Enabled  *bool  `json:"enabled,omitempty"`
	Message  string `json:"message,omitempty"`
	Required string `json:"required,omitempty"`
	Current  string `json:"current,omitempty"`
}

// Feed publishes the maintenance flag and version bounds pushed by the
// business settings socket.
type Feed struct {
	logger      *zap.Logger
	channel     Channel
	maintenance *observable.Value[types.Maintenance]
	version     *observable.Value[types.VersionInfo]
}

// New creates a feed with unknown maintenance and empty version bounds.
// Call Attach before Start.
func New(logger *zap.Logger) (*Feed, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Feed{
		logger:      logger,
		maintenance: observable.NewValue(types.Maintenance{}),
		version:     observable.NewValue(types.VersionInfo{}),
	}, nil
}

// Attach sets the channel whose messages are passed to HandleMessage.
func (f *Feed) Attach(ch Channel) {
	f.channel = ch
}

// Start connects the settings channel.
func (f *Feed) Start() error {
	if f.channel == nil {
		return errors.New("settings channel not attached")
	}
	f.channel.Connect()
	return nil
}

// Stop disconnects the settings channel.
func (f *Feed) Stop() {
	if f.channel != nil {
		f.channel.Disconnect()
	}
}

// Maintenance returns the observable maintenance status.
func (f *Feed) Maintenance() *observable.Value[types.Maintenance] {
	return f.maintenance
}

// Version returns the observable version bounds.
func (f *Feed) Version() *observable.Value[types.VersionInfo] {
	return f.version
}

// HandleMessage decodes one settings frame. Unknown types are ignored.
func (f *Feed) HandleMessage(raw []byte) {
	var msg message
	err := json.Unmarshal(raw, &msg)
	if err != nil {
		MessagesTotal.WithLabelValues("invalid").Inc()
		f.logger.Warn("settings-message-invalid", zap.Error(err), zap.Int("bytes", len(raw)))
		return
	}

	switch msg.Type {
	case "maintenance":
		if msg.Enabled == nil {
			MessagesTotal.WithLabelValues("invalid").Inc()
			f.logger.Warn("settings-maintenance-missing-flag")
			return
		}
		MessagesTotal.WithLabelValues(msg.Type).Inc()

		ev := types.MaintenanceOff()
		if *msg.Enabled {
			ev = types.MaintenanceOn(msg.Message)
		}
		f.logger.Debug("maintenance-update", zap.Stringer("status", ev.Status), zap.String("message", ev.Message))
		f.maintenance.Set(ev)

	case "version":
		MessagesTotal.WithLabelValues(msg.Type).Inc()
		f.logger.Debug("version-update",
			zap.String("required", msg.Required),
			zap.String("current", msg.Current))
		f.version.Set(types.VersionInfo{Required: msg.Required, Current: msg.Current})

	default:
		MessagesTotal.WithLabelValues("unknown").Inc()
		f.logger.Debug("settings-message-ignored", zap.String("type", msg.Type))
	}
}
