package boot

import (
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"github.com/mselser95/sportsbook-boot/pkg/versioncheck"
	"go.uber.org/zap"
)

// StartRuntimeMonitoring subscribes to the maintenance and version feeds for
// the rest of the session. The presentation layer calls it after the first
// Ready; repeated calls within a session have no effect.
func (o *Orchestrator) StartRuntimeMonitoring() {
	o.command("start-runtime-monitoring", func() {
		if o.runtimeStarted {
			return
		}
		o.runtimeStarted = true
		o.logger.Info("runtime-monitoring-started")

		watch(o, subRuntimeMaintenance, o.deps.Maintenance.Maintenance(), o.handleRuntimeMaintenance)
		watch(o, subRuntimeVersion, o.deps.Version.Version(), o.deferVersion)
	})
}

func (o *Orchestrator) handleRuntimeMaintenance(m types.Maintenance) {
	current := o.state.Get()
	if current.IsError() || current.Is(types.StateNetworkUnavailable) {
		return
	}

	switch m.Status {
	case types.MaintenanceEnabled:
		o.setState(types.MaintenanceMode(m.Message))

	case types.MaintenanceDisabled:
		if !current.Is(types.StateMaintenanceMode) {
			return
		}
		// The boot-time check owns the exit while it is still gating.
		if _, gating := o.tokens[subBootMaintenance]; gating {
			return
		}
		o.setState(o.settledState())
	}
}

// deferVersion re-delivers a version snapshot after the settling delay, so
// transient server values are not acted upon immediately.
func (o *Orchestrator) deferVersion(v types.VersionInfo) {
	sess := o.currentSession()
	sess.AfterFunc(o.cfg.VersionSettleDelay, func() {
		o.post(sess.ID(), "version-settled", func() {
			o.handleVersion(v)
		})
	})
}

func (o *Orchestrator) handleVersion(v types.VersionInfo) {
	decision, err := versioncheck.Compare(o.cfg.InstalledVersion, v.Required, v.Current)
	if err != nil {
		o.logger.Warn("version-snapshot-ignored", zap.Error(err))
		return
	}
	if decision == versioncheck.DecisionIgnore {
		o.logger.Debug("version-snapshot-incomplete",
			zap.String("server-required", v.Required),
			zap.String("server-current", v.Current))
		return
	}

	VersionDecisionsTotal.WithLabelValues(decision.String()).Inc()
	o.versionDecision = decision
	o.settledCurrent = v.Current

	current := o.state.Get()
	switch current.Kind {
	case types.StateReady, types.StateUpdateAvailable, types.StateUpdateRequired:
	default:
		o.logger.Debug("version-decision-deferred",
			zap.Stringer("decision", decision),
			zap.Stringer("state", current))
		return
	}

	if decision == versioncheck.DecisionUpdateAvailable && v.Current == o.dismissedCurrent {
		o.logger.Debug("update-available-already-dismissed", zap.String("server-current", v.Current))
	}
	o.setState(o.settledState())
}
