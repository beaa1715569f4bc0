package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	r.mux.ServeHTTP(rec, req)
	r.logger.Debug("http request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)),
	)
}

// RegisterZoneRoutes /api/zones
func (r *Router) RegisterZoneRoutes(h *ZoneHandler) {
	r.HandleHandler("/api/zones", h)
	r.HandleHandler("/api/zones/", h)
}

// RegisterDeviceRoutes /api/devices 与模拟位置
func (r *Router) RegisterDeviceRoutes(h *DeviceHandler) {
	r.HandleHandler("/api/devices", h)
	r.HandleHandler("/api/devices/", h)
	r.Handle("/api/geolocation/mock-locations", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.MockLocations(w, req)
	})
}

// RegisterAuthRoutes 验证码登录与当前用户权限
func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.Handle("/api/auth/send-code", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.SendCode(w, req)
	})
	r.Handle("/api/auth/verify-code", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.VerifyCode(w, req)
	})
	r.Handle("/api/user/permissions", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Permissions(w, req)
	})
	r.Handle("/api/user/me", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Me(w, req)
	})
}

// RegisterGeocodeRoutes 离线地理编码
func (r *Router) RegisterGeocodeRoutes(h *GeocodeHandler) {
	get := func(fn http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			if req.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			fn(w, req)
		}
	}
	r.Handle("/api/geocode/autocomplete", get(h.Autocomplete))
	r.Handle("/api/geocode/search", get(h.Search))
	r.Handle("/api/geocode/reverse", get(h.Reverse))
}
