package httpapi

import (
	"net/http"
	"strings"

	"safezone/internal/domain"
	"safezone/internal/service"

	"go.uber.org/zap"
)

const devicesPath = "/api/devices"

// DeviceHandler 设备 Handler
type DeviceHandler struct {
	deviceService service.DeviceService
	logger        *zap.Logger
}

// NewDeviceHandler 创建设备 Handler
func NewDeviceHandler(deviceService service.DeviceService, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{
		deviceService: deviceService,
		logger:        logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *DeviceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == devicesPath:
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ListDevices(w, r)
	case strings.HasSuffix(path, "/location"):
		id, ok := pathID(strings.TrimSuffix(path, "/location"), devicesPath+"/")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.UpdateLocation(w, r, id)
	default:
		id, ok := pathID(path, devicesPath+"/")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetDevice(w, r, id)
	}
}

// ListDevices 查询设备列表
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.deviceService.ListDevices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(devices))
}

func (h *DeviceHandler) GetDevice(w http.ResponseWriter, r *http.Request, id string) {
	d, err := h.deviceService.GetDevice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(d))
}

// UpdateLocation 上报位置，返回设备和触发的越界事件
func (h *DeviceHandler) UpdateLocation(w http.ResponseWriter, r *http.Request, id string) {
	var body domain.LocationUpdate
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	resp, err := h.deviceService.UpdateLocation(r.Context(), service.UpdateLocationRequest{
		DeviceID: id,
		Update:   body,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if len(resp.Events) > 0 {
		h.logger.Info("Location update produced geofence events",
			zap.String("device_id", id),
			zap.Int("events", len(resp.Events)),
		)
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *DeviceHandler) MockLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.deviceService.MockLocations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(locs))
}
