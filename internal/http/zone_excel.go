package httpapi

import (
	"bytes"
	"fmt"
	"strings"

	"safezone/internal/domain"
	"safezone/internal/notification"

	"github.com/xuri/excelize/v2"
)

const zoneSheetName = "Zones"

// ZoneExportHeader 导出表头
var ZoneExportHeader = []string{
	"Name",
	"Type",
	"Address",
	"Latitude",
	"Longitude",
	"Radius (m)",
	"Active",
	"Devices",
	"Notified",
	"Created By",
	"Created At",
}

var zoneColumnWidths = []float64{20, 10, 36, 12, 12, 12, 8, 16, 10, 12, 20}

func zoneRow(z domain.Zone) []any {
	s := notification.Summarize(z)
	return []any{
		z.Name,
		string(z.Type),
		z.Address,
		z.Coordinates.Latitude,
		z.Coordinates.Longitude,
		z.Coordinates.Radius,
		z.IsActive,
		strings.Join(z.Devices, ", "),
		fmt.Sprintf("%d / %d", s.Notified, s.Total),
		z.CreatedBy,
		z.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GenerateZoneExport 生成区域导出 Excel 文件；zones 为空时只有表头
func GenerateZoneExport(zones []domain.Zone) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(zoneSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	// 删除默认的 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(zoneSheetName, "A1", &ZoneExportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(ZoneExportHeader), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(zoneSheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range zoneColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(zoneSheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, z := range zones {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		row := zoneRow(z)
		if err := f.SetSheetRow(zoneSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write zone %s: %w", z.ID, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write excel file: %w", err)
	}
	return buf.Bytes(), nil
}
