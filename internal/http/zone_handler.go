package httpapi

import (
	"net/http"
	"strings"
	"time"

	"safezone/internal/domain"
	"safezone/internal/service"

	"go.uber.org/zap"
)

const zonesPath = "/api/zones"

// ZoneHandler 区域管理 Handler
type ZoneHandler struct {
	zoneService service.ZoneService
	authService service.AuthService
	logger      *zap.Logger
}

// NewZoneHandler 创建区域管理 Handler
func NewZoneHandler(zoneService service.ZoneService, authService service.AuthService, logger *zap.Logger) *ZoneHandler {
	return &ZoneHandler{
		zoneService: zoneService,
		authService: authService,
		logger:      logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ZoneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == zonesPath:
		switch r.Method {
		case http.MethodGet:
			h.ListZones(w, r)
		case http.MethodPost:
			h.CreateZone(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case path == zonesPath+"/export":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ExportZones(w, r)
	case strings.HasSuffix(path, "/toggle"):
		id, ok := pathID(strings.TrimSuffix(path, "/toggle"), zonesPath+"/")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ToggleZone(w, r, id)
	default:
		id, ok := pathID(path, zonesPath+"/")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.GetZone(w, r, id)
		case http.MethodPut:
			h.UpdateZone(w, r, id)
		case http.MethodDelete:
			h.DeleteZone(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

// ListZones 查询区域列表
func (h *ZoneHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.zoneService.ListZones(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(zones))
}

func (h *ZoneHandler) GetZone(w http.ResponseWriter, r *http.Request, id string) {
	z, err := h.zoneService.GetZone(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(z))
}

// CreateZone createdBy 取当前会话用户
func (h *ZoneHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in domain.ZoneInput
	if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	user, err := h.authService.SessionUser(ctx, bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}

	z, err := h.zoneService.CreateZone(ctx, service.CreateZoneRequest{Input: in, CreatedBy: user.ID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(z))
}

// UpdateZone 部分更新：请求体合并到已保存的字段上，未提交的字段保持原值
func (h *ZoneHandler) UpdateZone(w http.ResponseWriter, r *http.Request, id string) {
	current, err := h.zoneService.GetZone(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	in := domain.InputFromZone(*current)
	if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	z, err := h.zoneService.UpdateZone(r.Context(), service.UpdateZoneRequest{ZoneID: id, Input: in})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(z))
}

func (h *ZoneHandler) ToggleZone(w http.ResponseWriter, r *http.Request, id string) {
	z, err := h.zoneService.ToggleZone(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(z))
}

func (h *ZoneHandler) DeleteZone(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.zoneService.DeleteZone(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"id": id, "success": true}))
}

// ExportZones 导出 xlsx
func (h *ZoneHandler) ExportZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.zoneService.ListZones(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := GenerateZoneExport(zones)
	if err != nil {
		h.logger.Error("GenerateZoneExport failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	filename := "zones_" + time.Now().Format("20060102_150405") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
