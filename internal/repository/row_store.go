package repository

import (
	"context"

	"github.com/noah-isme/absensi-karyawan/pkg/sheets"
)

// Column headers of the employee sheet.
const (
	ColEmployeeID   = "ID_Karyawan"
	ColEmployeeName = "Nama_Karyawan"
)

// Column headers of the attendance sheet.
const (
	ColTimestamp  = "Tanggal"
	ColStatus     = "Status_Kehadiran"
	ColProduction = "Produksi"
)

// Payload keys accepted by the append endpoint.
const (
	KeyEmployeeName = "nama_karyawan"
	KeyDate         = "tanggal"
	KeyEmployeeID   = "id_karyawan"
	KeyStatus       = "status"
	KeyProduction   = "produksi"
	KeyID           = "id"
)

// payloadColumns maps append payload keys to the header they land in.
var payloadColumns = map[string]string{
	KeyEmployeeName: ColEmployeeName,
	KeyDate:         ColTimestamp,
	KeyEmployeeID:   ColEmployeeID,
	KeyStatus:       ColStatus,
	KeyProduction:   ColProduction,
}

// RowStore is the two-operation backend every sheet lives in. The spreadsheet
// client satisfies it directly.
type RowStore interface {
	Fetch(ctx context.Context, sheet string) ([]sheets.Row, error)
	Append(ctx context.Context, sheet string, row sheets.Row) (sheets.Row, error)
}

var _ RowStore = (*sheets.Client)(nil)
