package treasurehunt

// Delta is the set of changes a successful action makes to the state. Map
// entries replace the entry with the same key; keys not present are left
// untouched unless ReplaceDevices is set, in which case Devices becomes the
// complete device set.
type Delta struct {
	GameActive     *bool                 `json:"gameActive,omitempty"`
	Teams          map[Team]TeamData     `json:"teams,omitempty"`
	QRCodes        map[string]QRCodeData `json:"qrCodes,omitempty"`
	Devices        map[string]DeviceData `json:"devices,omitempty"`
	ReplaceDevices bool                  `json:"replaceDevices,omitempty"`
}

// ApplyTo returns s with d applied. s itself is not modified.
func (d Delta) ApplyTo(s State) State {
	next := s.Clone()
	if d.GameActive != nil {
		next.GameActive = *d.GameActive
	}
	for k, v := range d.Teams {
		next.Teams[k] = v
	}
	for k, v := range d.QRCodes {
		v.FoundBy = append([]string{}, v.FoundBy...)
		next.QRCodes[k] = v
	}
	if d.ReplaceDevices {
		next.Devices = make(map[string]DeviceData, len(d.Devices))
	}
	for k, v := range d.Devices {
		v.QRAccesses = append([]string{}, v.QRAccesses...)
		next.Devices[k] = v
	}
	return next
}

// Empty reports whether applying d would change nothing at all.
func (d Delta) Empty() bool {
	return d.GameActive == nil && len(d.Teams) == 0 && len(d.QRCodes) == 0 &&
		len(d.Devices) == 0 && !d.ReplaceDevices
}
