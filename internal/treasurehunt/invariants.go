package treasurehunt

import (
	"errors"
	"fmt"
	"slices"
)

// CheckInvariants reports every structural inconsistency in s. States that
// went through RESET_DEVICES may legitimately list forgotten devices in
// foundBy, or list a device whose history was since restarted; pass
// allowForgotten to only check the device side.
func (s State) CheckInvariants(allowForgotten bool) error {
	var errs []error

	if len(s.Teams) != len(Teams) {
		errs = append(errs, fmt.Errorf("expected %d teams, got %d", len(Teams), len(s.Teams)))
	}
	for _, t := range Teams {
		td, ok := s.Teams[t]
		if !ok {
			errs = append(errs, fmt.Errorf("team %s missing", t))
			continue
		}
		if td.Score < 0 || td.TotalAccesses < 0 || td.UniqueDevices < 0 {
			errs = append(errs, fmt.Errorf("team %s has negative aggregates", t))
		}
		if td.TotalAccesses < td.UniqueDevices {
			errs = append(errs, fmt.Errorf("team %s: totalAccesses %d < uniqueDevices %d", t, td.TotalAccesses, td.UniqueDevices))
		}
	}

	for id, qr := range s.QRCodes {
		if qr.Point <= 0 {
			errs = append(errs, fmt.Errorf("qr %s has non-positive point %d", id, qr.Point))
		}
		for i, dev := range qr.FoundBy {
			if slices.Contains(qr.FoundBy[:i], dev) {
				errs = append(errs, fmt.Errorf("qr %s lists device %s twice", id, dev))
			}
			if allowForgotten {
				continue
			}
			d, ok := s.Devices[dev]
			if !ok {
				errs = append(errs, fmt.Errorf("qr %s found by unknown device %s", id, dev))
				continue
			}
			if !slices.Contains(d.QRAccesses, id) {
				errs = append(errs, fmt.Errorf("qr %s lists device %s which has no matching access", id, dev))
			}
		}
	}

	for id, d := range s.Devices {
		if !d.Team.Valid() {
			errs = append(errs, fmt.Errorf("device %s has invalid team %q", id, d.Team))
		}
		for i, qrID := range d.QRAccesses {
			if slices.Contains(d.QRAccesses[:i], qrID) {
				errs = append(errs, fmt.Errorf("device %s lists qr %s twice", id, qrID))
			}
			qr, ok := s.QRCodes[qrID]
			if !ok {
				errs = append(errs, fmt.Errorf("device %s accessed unknown qr %s", id, qrID))
				continue
			}
			if !slices.Contains(qr.FoundBy, id) {
				errs = append(errs, fmt.Errorf("device %s accessed qr %s which does not list it", id, qrID))
			}
		}
	}

	return errors.Join(errs...)
}
