package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

func TestNewDevice(t *testing.T) {
	r, _ := testRouter(t)

	w := do(t, r, http.MethodPost, "/api/devices", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	a := decode[NewDeviceResponse](t, w).DeviceID

	b := decode[NewDeviceResponse](t, do(t, r, http.MethodPost, "/api/devices", nil)).DeviceID
	if !strings.HasPrefix(a, "dev_") {
		t.Errorf("expected dev_ prefix, got %q", a)
	}
	if a == b {
		t.Errorf("expected distinct device ids, got %q twice", a)
	}
}

func TestScanFlow(t *testing.T) {
	r, _ := testRouter(t)

	w := do(t, r, http.MethodPost, "/api/hunts/demo/scan", scan("dev_1", treasurehunt.TeamRed, "A001"))
	expectError(t, w, http.StatusConflict, "GAME_NOT_ACTIVE")

	w = do(t, r, http.MethodPost, "/api/admin/hunts/demo/start", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !decode[AdminActionResponse](t, w).State.GameActive {
		t.Fatal("expected game to be active after start")
	}

	w = do(t, r, http.MethodPost, "/api/hunts/demo/scan", scan("dev_1", treasurehunt.TeamRed, "A003"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[ScanResponse](t, w)
	if resp.Point != 20 {
		t.Errorf("expected point 20, got %d", resp.Point)
	}
	if resp.Team != treasurehunt.TeamRed {
		t.Errorf("expected team red, got %q", resp.Team)
	}
	if len(resp.Device.QRAccesses) != 1 || resp.Device.QRAccesses[0] != "A003" {
		t.Errorf("expected device accesses [A003], got %v", resp.Device.QRAccesses)
	}
	if got := resp.Scoreboard.Teams[0]; got.Team != treasurehunt.TeamRed || got.Score != 20 {
		t.Errorf("expected red standing at 20, got %+v", got)
	}

	w = do(t, r, http.MethodPost, "/api/hunts/demo/scan", scan("dev_1", treasurehunt.TeamRed, "A003"))
	expectError(t, w, http.StatusConflict, "DUPLICATE_SCAN")

	w = do(t, r, http.MethodPost, "/api/hunts/demo/scan", scan("dev_1", treasurehunt.TeamRed, "Z999"))
	expectError(t, w, http.StatusNotFound, "UNKNOWN_QR_CODE")

	w = do(t, r, http.MethodPost, "/api/hunts/demo/scan", scan("dev_2", "blue", "A001"))
	expectError(t, w, http.StatusBadRequest, "INVALID_INPUT")

	w = do(t, r, http.MethodPost, "/api/hunts/demo/scan", scan(" ", treasurehunt.TeamRed, "A001"))
	expectError(t, w, http.StatusBadRequest, "INVALID_INPUT")

	w = do(t, r, http.MethodPost, "/api/hunts/nope/scan", scan("dev_1", treasurehunt.TeamRed, "A001"))
	expectError(t, w, http.StatusNotFound, "HUNT_NOT_FOUND")

	// A bound device keeps crediting its original team.
	w = do(t, r, http.MethodPost, "/api/hunts/demo/scan", scan("dev_1", treasurehunt.TeamYellow, "A004"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode[ScanResponse](t, w).Team; got != treasurehunt.TeamRed {
		t.Errorf("expected credited team red, got %q", got)
	}
}

func TestScanInvalidBody(t *testing.T) {
	r, _ := testRouter(t)

	req := do(t, r, http.MethodPost, "/api/hunts/demo/scan", "not an object")
	expectError(t, req, http.StatusBadRequest, "INVALID_INPUT")
}

func TestHuntStateAndScoreboard(t *testing.T) {
	r, _ := testRouter(t)

	w := do(t, r, http.MethodGet, "/api/hunts/demo/state", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	st := decode[HuntStateResponse](t, w)
	if st.HuntID != "demo" || st.Version != 1 {
		t.Errorf("expected demo at version 1, got %s at %d", st.HuntID, st.Version)
	}
	if len(st.State.QRCodes) != 5 {
		t.Errorf("expected 5 qr codes, got %d", len(st.State.QRCodes))
	}
	if st.State.GameActive {
		t.Error("expected new hunt to be inactive")
	}

	w = do(t, r, http.MethodGet, "/api/hunts/demo/scoreboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	sb := decode[ScoreboardResponse](t, w).Scoreboard
	if len(sb.Teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(sb.Teams))
	}
	if len(sb.QRCodes) != 5 || sb.QRCodes[0].ID != "A001" {
		t.Errorf("expected 5 codes starting at A001, got %+v", sb.QRCodes)
	}

	w = do(t, r, http.MethodGet, "/api/hunts/missing/state", nil)
	expectError(t, w, http.StatusNotFound, "HUNT_NOT_FOUND")
}

func TestDeviceProgress(t *testing.T) {
	r, _ := testRouter(t)
	do(t, r, http.MethodPost, "/api/admin/hunts/demo/start", nil)
	do(t, r, http.MethodPost, "/api/hunts/demo/scan", scan("dev_y", treasurehunt.TeamYellow, "A001"))
	do(t, r, http.MethodPost, "/api/hunts/demo/scan", scan("dev_y", treasurehunt.TeamYellow, "A005"))

	w := do(t, r, http.MethodGet, "/api/hunts/demo/devices/dev_y", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[DeviceProgressResponse](t, w)
	if resp.Team != treasurehunt.TeamYellow {
		t.Errorf("expected yellow, got %q", resp.Team)
	}
	if resp.Points != 60 {
		t.Errorf("expected 60 points, got %d", resp.Points)
	}
	if len(resp.QRAccesses) != 2 {
		t.Errorf("expected 2 accesses, got %v", resp.QRAccesses)
	}

	w = do(t, r, http.MethodGet, "/api/hunts/demo/devices/dev_unknown", nil)
	expectError(t, w, http.StatusNotFound, "DEVICE_NOT_FOUND")
}
