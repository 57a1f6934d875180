package parser

import (
	"campaign-kpi/errors"
	"campaign-kpi/metrics"
	"campaign-kpi/models"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order for the date column.
var dateLayouts = []string{models.DateLayout, "01/02/2006", "2006/01/02"}

// Parse reads CSV data from the reader and returns one CampaignRecord per row.
// Rows are "campaign_id, date, hours". Lines starting with '#' are
// headers/comments. Dates are ISO "2006-01-02", with "01/02/2006" and
// "2006/01/02" also accepted.
// Hours are parsed but not range-checked; negative or NaN values reach the
// engine, which rejects them as integrity faults.
func Parse(r io.Reader) ([]models.CampaignRecord, error) {
	started := time.Now()
	defer func() {
		metrics.ParserDurationSeconds.Observe(time.Since(started).Seconds())
	}()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var data []models.CampaignRecord
	lineNum := 0

	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues("csv").Inc()
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}

		// Handle headers/comments
		if len(record) > 0 && strings.HasPrefix(strings.TrimSpace(record[0]), "#") {
			continue
		}

		cr, err := parseRecord(record)
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues(errorType(err)).Inc()
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    err,
			}
		}

		data = append(data, cr)
		metrics.ParserRecordsTotal.Inc()
	}

	return data, nil
}

func parseRecord(record []string) (models.CampaignRecord, error) {
	if len(record) != 3 {
		return models.CampaignRecord{}, errors.ErrInvalidFieldCount
	}

	cr := models.CampaignRecord{}

	id, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil || id < 0 {
		return cr, fmt.Errorf("%w: %q", errors.ErrInvalidCampaign, record[0])
	}
	cr.CampaignID = id

	cr.Date, err = parseDate(strings.TrimSpace(record[1]))
	if err != nil {
		return cr, fmt.Errorf("%w: %v", errors.ErrInvalidDate, err)
	}

	cr.Hours, err = strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return cr, fmt.Errorf("%w: %v", errors.ErrInvalidHours, err)
	}

	return cr, nil
}

func parseDate(value string) (models.Date, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return models.DateOf(t), nil
		}
		lastErr = err
	}
	return models.Date{}, lastErr
}

// errorType labels err for the parser error metric.
func errorType(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrInvalidFieldCount):
		return "field_count"
	case stderrors.Is(err, errors.ErrInvalidCampaign):
		return "campaign"
	case stderrors.Is(err, errors.ErrInvalidDate):
		return "date"
	case stderrors.Is(err, errors.ErrInvalidHours):
		return "hours"
	default:
		return "other"
	}
}
