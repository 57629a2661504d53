// Package export renders admin reports.
package export

import (
	"fmt"

	"openhouse/internal/store"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var headers = []string{"Date", "Time", "Visitor", "Email", "Phone", "Notes", "Booked at"}

// BookingsWorkbook builds an .xlsx with one row per booking, ordered the way
// the paired view is (slot date, then time). Caller owns closing the file.
func BookingsWorkbook(views []store.BookingView) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating header style: %w", err)
	}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, view := range views {
		row := i + 2
		values := []interface{}{
			view.DisplayDate,
			view.DisplayTime,
			view.Booking.Name,
			view.Booking.Email,
			view.Booking.Phone,
			view.Booking.Notes,
			view.Booking.BookedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 28)
	_ = f.SetColWidth(sheetName, "B", "G", 20)
	_ = f.DeleteSheet("Sheet1")

	return f, nil
}
