package tracker

import (
	"time"

	"github.com/mj1618/composebox/internal/model"
)

// Reason says why a scan was requested.
type Reason string

const (
	ReasonTimer     Reason = "timer"
	ReasonFocus     Reason = "focus"
	ReasonLaunch    Reason = "launch"
	ReasonTerminate Reason = "terminate"
	ReasonManual    Reason = "manual"
	ReasonRetry     Reason = "retry"
)

// UpdateKind classifies coordinator output.
type UpdateKind string

const (
	UpdatePosition UpdateKind = "position"
	UpdateHide     UpdateKind = "hide"
	UpdateError    UpdateKind = "error"
	UpdateCommand  UpdateKind = "command"
)

// Source says where a position came from.
type Source string

const (
	SourceScan  Source = "scan"
	SourceSaved Source = "saved"
)

// CommandKind is a shell request routed through the coordinator.
type CommandKind string

const (
	CommandCapture CommandKind = "capture"
	CommandClose   CommandKind = "close"
	CommandCustom  CommandKind = "custom"
)

// Command is a shell request. Name identifies a custom action.
type Command struct {
	Kind CommandKind `yaml:"kind"           json:"kind"`
	Name string      `yaml:"name,omitempty" json:"name,omitempty"`
}

// Update is one message from the coordinator to the shell.
type Update struct {
	Kind     UpdateKind     `yaml:"kind"               json:"kind"`
	App      string         `yaml:"app,omitempty"      json:"app,omitempty"`
	Reason   Reason         `yaml:"reason,omitempty"   json:"reason,omitempty"`
	Point    *model.Point   `yaml:"point,omitempty"    json:"point,omitempty"`
	Source   Source         `yaml:"source,omitempty"   json:"source,omitempty"`
	Strategy model.Strategy `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	Attempts int            `yaml:"attempts,omitempty" json:"attempts,omitempty"`
	Command  *Command       `yaml:"command,omitempty"  json:"command,omitempty"`
	Text     string         `yaml:"text,omitempty"     json:"text,omitempty"`
	Error    string         `yaml:"error,omitempty"    json:"error,omitempty"`
	At       time.Time      `yaml:"at"                 json:"at"`

	// Err is the error behind an UpdateError.
	Err error `yaml:"-" json:"-"`
}
