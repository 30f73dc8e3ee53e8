package treasurehunt

import (
	"fmt"
	"slices"
	"time"
)

// DevicePolicy selects what RESET_GAME does with known devices.
type DevicePolicy string

const (
	// DevicePolicyPreserve keeps each device's team binding and creation
	// time but clears its scan history.
	DevicePolicyPreserve DevicePolicy = "preserve"
	// DevicePolicyClear forgets every device.
	DevicePolicyClear DevicePolicy = "clear"
)

func ParseDevicePolicy(s string) (DevicePolicy, error) {
	switch p := DevicePolicy(s); p {
	case DevicePolicyPreserve, DevicePolicyClear:
		return p, nil
	case "":
		return DevicePolicyPreserve, nil
	default:
		return "", fmt.Errorf("unknown device reset policy %q", s)
	}
}

// UnmarshalText lets DevicePolicy be parsed from configuration.
func (p *DevicePolicy) UnmarshalText(text []byte) error {
	v, err := ParseDevicePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Reducer validates actions and computes their deltas. It holds only
// configuration; Apply may be called concurrently.
type Reducer struct {
	DevicePolicy DevicePolicy
	// StrictTeams rejects a scan whose team differs from the team the device
	// was first seen with. When false the device's original team is credited
	// and the requested team is ignored.
	StrictTeams bool
	Now         func() time.Time
}

// Apply validates action against s and returns the changes it makes.
// s is never modified.
func (r Reducer) Apply(s State, action Action) (Delta, error) {
	switch a := action.(type) {
	case QRAccess:
		return r.qrAccess(s, a)
	case StartGame:
		return setActive(true), nil
	case StopGame:
		return setActive(false), nil
	case ResetGame:
		return r.resetGame(s), nil
	case ResetDevices:
		return Delta{Devices: map[string]DeviceData{}, ReplaceDevices: true}, nil
	case nil:
		return Delta{}, fmt.Errorf("%w: nil action", ErrUnknownActionType)
	default:
		return Delta{}, fmt.Errorf("%w: %T", ErrUnknownActionType, action)
	}
}

func (r Reducer) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

func setActive(active bool) Delta {
	return Delta{GameActive: &active}
}

func (r Reducer) qrAccess(s State, a QRAccess) (Delta, error) {
	if a.DeviceID == "" || a.Team == "" || a.QRID == "" {
		return Delta{}, fmt.Errorf("%w: QR_ACCESS requires deviceId, team, and qrId", ErrInvalidInput)
	}
	if !a.Team.Valid() {
		return Delta{}, fmt.Errorf("%w: unknown team %q", ErrInvalidInput, a.Team)
	}

	qr, ok := s.QRCodes[a.QRID]
	if !ok {
		return Delta{}, fmt.Errorf("%w: %s", ErrUnknownQRCode, a.QRID)
	}
	if !s.GameActive {
		return Delta{}, ErrGameNotActive
	}

	device, exists := s.Devices[a.DeviceID]
	if exists && slices.Contains(device.QRAccesses, a.QRID) {
		return Delta{}, fmt.Errorf("%w: %s", ErrDuplicateScan, a.QRID)
	}
	if exists && r.StrictTeams && device.Team != a.Team {
		return Delta{}, fmt.Errorf("%w: %s", ErrTeamMismatch, device.Team)
	}

	// A device's first scan counts toward uniqueDevices. That includes a
	// device kept by a preserving reset, whose history is empty again.
	firstScan := !exists || len(device.QRAccesses) == 0

	if exists {
		device.QRAccesses = append(append([]string{}, device.QRAccesses...), a.QRID)
	} else {
		device = DeviceData{
			Team:       a.Team,
			QRAccesses: []string{a.QRID},
			CreatedAt:  r.now(),
		}
	}

	team := s.Teams[device.Team]
	team.Score += qr.Point
	team.TotalAccesses++
	if firstScan {
		team.UniqueDevices++
	}

	// After RESET_DEVICES a forgotten device may already be listed.
	foundBy := append([]string{}, qr.FoundBy...)
	if !slices.Contains(foundBy, a.DeviceID) {
		foundBy = append(foundBy, a.DeviceID)
	}
	qr.FoundBy = foundBy

	return Delta{
		Teams:   map[Team]TeamData{device.Team: team},
		QRCodes: map[string]QRCodeData{a.QRID: qr},
		Devices: map[string]DeviceData{a.DeviceID: device},
	}, nil
}

func (r Reducer) resetGame(s State) Delta {
	d := Delta{
		Teams:          make(map[Team]TeamData, len(Teams)),
		QRCodes:        make(map[string]QRCodeData, len(s.QRCodes)),
		Devices:        map[string]DeviceData{},
		ReplaceDevices: true,
	}
	for _, t := range Teams {
		d.Teams[t] = TeamData{Name: s.Teams[t].Name}
	}
	for id, qr := range s.QRCodes {
		d.QRCodes[id] = QRCodeData{Point: qr.Point, FoundBy: []string{}}
	}
	if r.DevicePolicy != DevicePolicyClear {
		for id, dev := range s.Devices {
			d.Devices[id] = DeviceData{
				Team:       dev.Team,
				QRAccesses: []string{},
				CreatedAt:  dev.CreatedAt,
			}
		}
	}
	return d
}
