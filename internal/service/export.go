package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/Claudio1052/Limpeza/internal/metrics"
	"github.com/Claudio1052/Limpeza/internal/models"

	"github.com/xuri/excelize/v2"
)

// exportHeader is the fixed column set shared by the CSV and Excel exports.
var exportHeader = []string{
	"ID", "Name", "Phone", "Email", "Address", "Service Type",
	"Bedrooms", "Cleaning Date", "Cleaning Time", "Status", "Created At",
}

// ExportFileName names the download after the current date.
func (s *RequestService) ExportFileName(ext string) string {
	return fmt.Sprintf("limpeza-%s.%s", s.clock.Now().Format(models.DateLayout), ext)
}

// ExportCSV serializes every request matching the filters, unpaginated.
// Fields are escaped per RFC 4180, so embedded quotes and commas survive a
// round trip.
func (s *RequestService) ExportCSV(ctx context.Context, filters models.ListFilters) ([]byte, error) {
	requests, err := s.exportSet(ctx, filters)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, &BackendError{Op: "write csv header", Err: err}
	}
	for _, req := range requests {
		if err := w.Write(exportRow(req)); err != nil {
			return nil, &BackendError{Op: "write csv row", Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, &BackendError{Op: "flush csv", Err: err}
	}

	metrics.IncExport("csv")
	s.logger.Info().Int("rows", len(requests)).Msg("CSV export generated")
	return buf.Bytes(), nil
}

// ExportExcel serializes the same data set as an .xlsx workbook.
func (s *RequestService) ExportExcel(ctx context.Context, filters models.ListFilters) ([]byte, error) {
	requests, err := s.exportSet(ctx, filters)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Service Requests"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, &BackendError{Op: "create sheet", Err: err}
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, title)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, req := range requests {
		for col, value := range exportRow(req) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "K", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, &BackendError{Op: "write workbook", Err: err}
	}

	metrics.IncExport("xlsx")
	s.logger.Info().Int("rows", len(requests)).Msg("Excel export generated")
	return buf.Bytes(), nil
}

func (s *RequestService) exportSet(ctx context.Context, filters models.ListFilters) ([]*models.ServiceRequest, error) {
	q := s.buildQuery(filters)

	requests, _, err := s.store.ListRequests(ctx, q)
	if err != nil {
		return nil, &BackendError{Op: "export requests", Err: err}
	}
	return requests, nil
}

func exportRow(req *models.ServiceRequest) []string {
	return []string{
		req.ID,
		req.FullName,
		req.Phone,
		req.Email,
		req.Address,
		req.ServiceType,
		strconv.Itoa(req.Bedrooms),
		req.CleaningDate,
		req.CleaningTime,
		req.Status,
		req.CreatedAt.Format(time.RFC3339),
	}
}
