package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/Claudio1052/Limpeza/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportCSV(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	createRequest(t, svc, func(in *RequestInput) {
		in.FullName = `Jo "JJ" O'Neil, Jr.`
		in.Address = "12 Smith Ave, Unit 3"
	})
	createRequest(t, svc, func(in *RequestInput) { in.FullName = "Ana Costa" })

	data, err := svc.ExportCSV(ctx, models.ListFilters{})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus two rows")

	assert.Equal(t, exportHeader, records[0])

	// Embedded quotes and commas survive the round trip
	names := []string{records[1][1], records[2][1]}
	assert.Contains(t, names, `Jo "JJ" O'Neil, Jr.`)
	assert.Contains(t, names, "Ana Costa")
}

func TestExportCSVRespectsFilters(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	confirmed := createRequest(t, svc, nil)
	_, err := svc.Update(ctx, confirmed.ID, map[string]any{"status": models.StatusConfirmed})
	require.NoError(t, err)
	createRequest(t, svc, nil)

	data, err := svc.ExportCSV(ctx, models.ListFilters{Status: models.StatusConfirmed})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, confirmed.ID, records[1][0])
	assert.Equal(t, models.StatusConfirmed, records[1][9])
}

func TestExportCSVIsUnpaginated(t *testing.T) {
	svc, _ := setupService(t)

	for i := 0; i < 25; i++ {
		createRequest(t, svc, nil)
	}

	data, err := svc.ExportCSV(context.Background(), models.ListFilters{})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 26)
}

func TestExportFileName(t *testing.T) {
	svc, _ := setupService(t)

	assert.Equal(t, "limpeza-2026-08-26.csv", svc.ExportFileName("csv"))
	assert.Equal(t, "limpeza-2026-08-26.xlsx", svc.ExportFileName("xlsx"))
}

func TestExportExcel(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	createRequest(t, svc, func(in *RequestInput) { in.FullName = "Maria Silva" })

	data, err := svc.ExportExcel(ctx, models.ListFilters{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Service Requests")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "Maria Silva", rows[1][1])
}
