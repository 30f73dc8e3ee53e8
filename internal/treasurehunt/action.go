package treasurehunt

import (
	"encoding/json"
	"fmt"
)

type ActionType string

const (
	ActionStartGame    ActionType = "START_GAME"
	ActionStopGame     ActionType = "STOP_GAME"
	ActionResetGame    ActionType = "RESET_GAME"
	ActionResetDevices ActionType = "RESET_DEVICES"
	ActionQRAccess     ActionType = "QR_ACCESS"
)

// Action is one of QRAccess, StartGame, StopGame, ResetGame or ResetDevices.
type Action interface {
	Type() ActionType
	action()
}

// QRAccess records a device scanning a QR code.
type QRAccess struct {
	DeviceID string `json:"deviceId"`
	Team     Team   `json:"team"`
	QRID     string `json:"qrId"`
}

type StartGame struct{}

type StopGame struct{}

// ResetGame zeroes scores and scan history. What happens to devices depends
// on the reducer's DevicePolicy.
type ResetGame struct{}

// ResetDevices forgets every device but keeps team aggregates and QR history.
type ResetDevices struct{}

func (QRAccess) Type() ActionType     { return ActionQRAccess }
func (StartGame) Type() ActionType    { return ActionStartGame }
func (StopGame) Type() ActionType     { return ActionStopGame }
func (ResetGame) Type() ActionType    { return ActionResetGame }
func (ResetDevices) Type() ActionType { return ActionResetDevices }

func (QRAccess) action()     {}
func (StartGame) action()    {}
func (StopGame) action()     {}
func (ResetGame) action()    {}
func (ResetDevices) action() {}

// ParseAction decodes the wire form {type, payload}. Payloads of admin
// actions are ignored; the reducer computes their effect.
func ParseAction(typ ActionType, payload json.RawMessage) (Action, error) {
	switch typ {
	case ActionQRAccess:
		var a QRAccess
		if len(payload) == 0 || string(payload) == "null" {
			return nil, fmt.Errorf("%w: QR_ACCESS requires deviceId, team, and qrId", ErrInvalidInput)
		}
		if err := json.Unmarshal(payload, &a); err != nil {
			return nil, fmt.Errorf("%w: decoding QR_ACCESS payload: %v", ErrInvalidInput, err)
		}
		return a, nil
	case ActionStartGame:
		return StartGame{}, nil
	case ActionStopGame:
		return StopGame{}, nil
	case ActionResetGame:
		return ResetGame{}, nil
	case ActionResetDevices:
		return ResetDevices{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionType, typ)
	}
}
