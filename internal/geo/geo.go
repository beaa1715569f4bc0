// Package geo 提供区域相关的球面距离与半径计算，全部为纯函数。
package geo

import (
	"fmt"
	"math"
)

const (
	// EarthRadius 地球平均半径（米）
	EarthRadius = 6371000.0

	MinRadius     = 100.0
	MaxRadius     = 5000.0
	DefaultRadius = 250.0
	RadiusStep    = 50.0
)

// Point WGS84 坐标（度）
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Distance 两点之间的大圆距离（haversine，米）
// 不校验输入范围
func Distance(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// 浮点误差可能让 h 略微超出 [0,1]
	h = math.Min(1, math.Max(0, h))
	return 2 * EarthRadius * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Contains 点是否位于圆形区域内（距离 <= 半径视为在内）
func Contains(center Point, radius float64, p Point) bool {
	return Distance(center, p) <= radius
}

// ClampRadius 将半径限制在 [MinRadius, MaxRadius]
func ClampRadius(r float64) float64 {
	if math.IsNaN(r) {
		return MinRadius
	}
	return math.Max(MinRadius, math.Min(MaxRadius, r))
}

// AdjustRadius 按步长调整半径后再做限制
func AdjustRadius(r, delta float64) float64 {
	return ClampRadius(r + delta)
}

// FormatDistance 展示用距离：1000 米以下 "250m"，以上 "1.2km"
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%dm", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
