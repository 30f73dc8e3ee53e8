package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/treasurehunt/internal/handler/health"
	"github.com/playperu/treasurehunt/internal/huntstore"
)

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "TreasureHunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the two-team QR treasure hunt.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of the hunt store backends.")
	getHealthz.AddRespStructure(health.Report{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Report{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/devices
	postDevice, _ := r.NewOperationContext(http.MethodPost, "/api/devices")
	postDevice.SetSummary("Register device")
	postDevice.SetDescription("Mints a device identifier for a new browser or phone.")
	postDevice.AddRespStructure(NewDeviceResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	_ = r.AddOperation(postDevice)

	// GET /api/hunts/{huntID}/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/hunts/{huntID}/state")
	getState.SetSummary("Get hunt state")
	getState.SetDescription("Returns the full game state of a hunt.")
	getState.AddReqStructure(HuntPathRequest{})
	getState.AddRespStructure(HuntStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getState)

	// GET /api/hunts/{huntID}/scoreboard
	getScoreboard, _ := r.NewOperationContext(http.MethodGet, "/api/hunts/{huntID}/scoreboard")
	getScoreboard.SetSummary("Get scoreboard")
	getScoreboard.SetDescription("Returns team standings and per-code find counts.")
	getScoreboard.AddReqStructure(HuntPathRequest{})
	getScoreboard.AddRespStructure(ScoreboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getScoreboard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getScoreboard)

	// POST /api/hunts/{huntID}/scan
	postScan, _ := r.NewOperationContext(http.MethodPost, "/api/hunts/{huntID}/scan")
	postScan.SetSummary("Scan QR code")
	postScan.SetDescription("Records that a device scanned a QR code and credits its team.")
	postScan.AddReqStructure(ScanRequest{})
	postScan.AddRespStructure(ScanResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postScan.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postScan.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postScan.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postScan.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(postScan)

	// GET /api/hunts/{huntID}/devices/{deviceID}
	getDevice, _ := r.NewOperationContext(http.MethodGet, "/api/hunts/{huntID}/devices/{deviceID}")
	getDevice.SetSummary("Get device progress")
	getDevice.SetDescription("Returns a device's team and the codes it has found.")
	getDevice.AddReqStructure(DevicePathRequest{})
	getDevice.AddRespStructure(DeviceProgressResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getDevice.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getDevice)

	// GET /api/hunts/{huntID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/hunts/{huntID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream: a snapshot, then one event per committed action.")
	getEvents.AddReqStructure(HuntPathRequest{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws/hunts/{huntID}/scoreboard
	getWS, _ := r.NewOperationContext(http.MethodGet, "/ws/hunts/{huntID}/scoreboard")
	getWS.SetSummary("Scoreboard websocket")
	getWS.SetDescription("Upgrades to a WebSocket that pushes hunt events as JSON text messages.")
	getWS.AddReqStructure(HuntPathRequest{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// GET /api/admin/hunts
	listHunts, _ := r.NewOperationContext(http.MethodGet, "/api/admin/hunts")
	listHunts.SetSummary("List hunts")
	listHunts.AddRespStructure([]AdminHuntSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listHunts)

	// POST /api/admin/hunts
	createHunt, _ := r.NewOperationContext(http.MethodPost, "/api/admin/hunts")
	createHunt.SetSummary("Create hunt")
	createHunt.SetDescription("Creates a hunt from team names and a QR code to point table.")
	createHunt.AddReqStructure(AdminCreateHuntRequest{})
	createHunt.AddRespStructure(huntstore.Hunt{}, openapi.WithHTTPStatus(http.StatusCreated))
	createHunt.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createHunt.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(createHunt)

	// POST /api/admin/hunts/{huntID}/actions
	postAction, _ := r.NewOperationContext(http.MethodPost, "/api/admin/hunts/{huntID}/actions")
	postAction.SetSummary("Dispatch action")
	postAction.SetDescription("Applies any action in its {type, payload} form.")
	postAction.AddReqStructure(AdminActionRequest{})
	postAction.AddRespStructure(AdminActionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postAction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAction)

	for _, op := range []struct{ path, summary string }{
		{"/api/admin/hunts/{huntID}/start", "Start game"},
		{"/api/admin/hunts/{huntID}/stop", "Stop game"},
		{"/api/admin/hunts/{huntID}/reset", "Reset game"},
		{"/api/admin/hunts/{huntID}/reset-devices", "Reset devices"},
	} {
		oc, _ := r.NewOperationContext(http.MethodPost, op.path)
		oc.SetSummary(op.summary)
		oc.AddReqStructure(HuntPathRequest{})
		oc.AddRespStructure(AdminActionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
