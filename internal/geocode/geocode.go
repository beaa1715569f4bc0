// Package geocode 离线地理编码：固定样本点上的自动补全、正向和反向查询。
package geocode

import (
	"strings"
	"unicode/utf8"

	"safezone/internal/geo"
)

const (
	MinQueryLen       = 2
	MaxAutocompletion = 6
)

// Result 地址与坐标
type Result struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Point 结果坐标
func (r Result) Point() geo.Point {
	return geo.Point{Lat: r.Lat, Lon: r.Lng}
}

// SamplePoints 华沙样本点
var SamplePoints = []Result{
	{Address: "Dom rodzinny, Warszawa", Lat: 52.2297, Lng: 21.0122},
	{Address: "Szkoła Podstawowa nr 5, Warszawa", Lat: 52.2315, Lng: 21.005},
	{Address: "Praca - Biuro Centrum, Warszawa", Lat: 52.2341, Lng: 21.0168},
	{Address: "Park Łazienki Królewskie, Warszawa", Lat: 52.2149, Lng: 21.0362},
	{Address: "Sklep Spożywczy, Warszawa", Lat: 52.2264, Lng: 21.0001},
	{Address: "Basen Miejski, Warszawa", Lat: 52.2222, Lng: 21.018},
	{Address: "Stadion, Warszawa", Lat: 52.239, Lng: 21.045},
}

// Geocoder 在给定样本点上查询
type Geocoder struct {
	points []Result
}

// New points 为空时使用 SamplePoints
func New(points []Result) *Geocoder {
	if len(points) == 0 {
		points = SamplePoints
	}
	return &Geocoder{points: points}
}

// Autocomplete 不区分大小写的子串匹配，查询去除空白后少于 2 个字符时返回空
func (g *Geocoder) Autocomplete(query string) []Result {
	q := strings.TrimSpace(query)
	out := []Result{}
	if utf8.RuneCountInString(q) < MinQueryLen {
		return out
	}
	q = strings.ToLower(q)
	for _, p := range g.points {
		if strings.Contains(strings.ToLower(p.Address), q) {
			out = append(out, p)
			if len(out) == MaxAutocompletion {
				break
			}
		}
	}
	return out
}

// Geocode 先完全匹配，再子串匹配
func (g *Geocoder) Geocode(address string) (Result, bool) {
	a := strings.ToLower(strings.TrimSpace(address))
	if a == "" {
		return Result{}, false
	}
	for _, p := range g.points {
		if strings.ToLower(p.Address) == a {
			return p, true
		}
	}
	for _, p := range g.points {
		if strings.Contains(strings.ToLower(p.Address), a) {
			return p, true
		}
	}
	return Result{}, false
}

// Reverse 大圆距离最近的样本点
func (g *Geocoder) Reverse(lat, lng float64) Result {
	target := geo.Point{Lat: lat, Lon: lng}
	best := g.points[0]
	bestDist := geo.Distance(target, best.Point())
	for _, p := range g.points[1:] {
		if d := geo.Distance(target, p.Point()); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// MockLocation 设备模拟位置（GET /api/geolocation/mock-locations）
type MockLocation struct {
	DeviceID  string  `json:"deviceId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}
