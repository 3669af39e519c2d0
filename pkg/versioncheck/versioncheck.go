package versioncheck

import (
	"fmt"

	"github.com/hashicorp/go-version"
)

// Decision is the outcome of comparing the installed version against server bounds.
type Decision int

const (
	// DecisionIgnore means the snapshot is incomplete or unparseable.
	DecisionIgnore Decision = iota
	// DecisionNone means the installed version satisfies both bounds.
	DecisionNone
	// DecisionUpdateAvailable means installed < current but >= required.
	DecisionUpdateAvailable
	// DecisionUpdateRequired means installed < required.
	DecisionUpdateRequired
)

func (d Decision) String() string {
	switch d {
	case DecisionNone:
		return "none"
	case DecisionUpdateAvailable:
		return "update_available"
	case DecisionUpdateRequired:
		return "update_required"
	default:
		return "ignore"
	}
}

// Compare compares installed against the server-required and server-current
// versions segment by segment ("2.10.0" > "2.9.1"). A missing bound means no
// constraint and yields DecisionIgnore without error.
func Compare(installed, required, current string) (Decision, error) {
	if installed == "" || required == "" || current == "" {
		return DecisionIgnore, nil
	}

	inst, err := version.NewVersion(installed)
	if err != nil {
		return DecisionIgnore, fmt.Errorf("parse installed version %q: %w", installed, err)
	}

	req, err := version.NewVersion(required)
	if err != nil {
		return DecisionIgnore, fmt.Errorf("parse required version %q: %w", required, err)
	}

	cur, err := version.NewVersion(current)
	if err != nil {
		return DecisionIgnore, fmt.Errorf("parse current version %q: %w", current, err)
	}

	if inst.LessThan(req) {
		return DecisionUpdateRequired, nil
	}

	if inst.LessThan(cur) {
		return DecisionUpdateAvailable, nil
	}

	return DecisionNone, nil
}

// Parse validates a version string.
func Parse(v string) (*version.Version, error) {
	parsed, err := version.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("parse version %q: %w", v, err)
	}
	return parsed, nil
}
