package treasurehunt

import "errors"

// Rejections. None of them leave the state modified.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownQRCode     = errors.New("unknown qr code")
	ErrGameNotActive     = errors.New("game is not active")
	ErrDuplicateScan     = errors.New("qr code already accessed by this device")
	ErrUnknownActionType = errors.New("unknown action type")
	ErrTeamMismatch      = errors.New("device is bound to another team")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidInput, "INVALID_INPUT"},
	{ErrUnknownQRCode, "UNKNOWN_QR_CODE"},
	{ErrGameNotActive, "GAME_NOT_ACTIVE"},
	{ErrDuplicateScan, "DUPLICATE_SCAN"},
	{ErrUnknownActionType, "UNKNOWN_ACTION_TYPE"},
	{ErrTeamMismatch, "TEAM_MISMATCH"},
}

// Code returns the stable wire code for a rejection, or "" if err is not one.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// IsRejection reports whether err is an expected gameplay rejection rather
// than a system fault.
func IsRejection(err error) bool {
	return Code(err) != ""
}
