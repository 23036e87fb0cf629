package calendar

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/studysync/studysync/internal/path"
)

const scheduleSheet = "Schedule"

// WriteScheduleXLSX renders sessions as a spreadsheet, one row per session.
func WriteScheduleXLSX(sessions []path.Session) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(scheduleSheet)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	headers := []string{"#", "Module", "Topic", "Description", "Scheduled", "Duration (min)", "Resources"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(scheduleSheet, cell, header); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	for i, session := range sessions {
		scheduled := ""
		if !session.ScheduledTime.IsZero() {
			scheduled = session.ScheduledTime.Format("2006-01-02 15:04")
		}
		row := []any{
			session.SessionNumber,
			session.ModuleTitle,
			session.SessionTopic,
			session.SessionDescription,
			scheduled,
			session.DurationMinutes,
			len(session.Resources),
		}
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(scheduleSheet, cell, value); err != nil {
				return nil, fmt.Errorf("writing row %d: %w", i+1, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
