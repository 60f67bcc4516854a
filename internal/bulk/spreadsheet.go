// Package bulk parses the admin column-sync and seller order-upload
// spreadsheets. Parsing is pure; all writes stay in the handlers.
package bulk

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"uex-courier-api-server/internal/lifecycle"
	"uex-courier-api-server/internal/models"

	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptySheet    = errors.New("spreadsheet contains no data rows")
	ErrUnknownColumn = errors.New("target column is not in the allowed set")
)

// TargetColumn names one shipment field the admin bulk sync may
// overwrite, together with its mongo field and value validation.
type TargetColumn struct {
	Name  string
	Field string
	// Parse validates a raw cell value and returns the typed value to
	// write. Status values are handled separately through the
	// lifecycle engine and return the canonical string here.
	Parse func(raw string) (interface{}, error)
}

// AllowedColumns is the fixed allow-list of the bulk sync endpoint.
var AllowedColumns = map[string]TargetColumn{
	"current_status": {
		Name:  "current_status",
		Field: "currentStatus",
		Parse: func(raw string) (interface{}, error) {
			status, ok := lifecycle.Normalize(strings.TrimSpace(raw))
			if !ok {
				return nil, fmt.Errorf("%q is not a valid status", raw)
			}
			return status, nil
		},
	},
	"payment_status": {
		Name:  "payment_status",
		Field: "paymentStatus",
		Parse: func(raw string) (interface{}, error) {
			v := strings.ToLower(strings.TrimSpace(raw))
			if v != models.PaymentStatusPending && v != models.PaymentStatusPaid {
				return nil, fmt.Errorf("%q is not a valid payment status", raw)
			}
			return v, nil
		},
	},
	"weight": {
		Name:  "weight",
		Field: "weightKG",
		Parse: parsePositiveFloat,
	},
	"delivery_boy_id": {
		Name:  "delivery_boy_id",
		Field: "driverID",
		Parse: func(raw string) (interface{}, error) {
			v := strings.TrimSpace(raw)
			if v == "" {
				return nil, errors.New("driver id must not be empty")
			}
			return v, nil
		},
	},
	"receiver_phone": {
		Name:  "receiver_phone",
		Field: "receiver.phone",
		Parse: func(raw string) (interface{}, error) {
			v := strings.TrimSpace(raw)
			if v == "" {
				return nil, errors.New("phone must not be empty")
			}
			return v, nil
		},
	},
	"cost": {
		Name:  "cost",
		Field: "cost",
		Parse: parsePositiveFloat,
	},
}

func parsePositiveFloat(raw string) (interface{}, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", raw)
	}
	if v < 0 {
		return nil, fmt.Errorf("%v must not be negative", v)
	}
	return v, nil
}

// SyncRow is one parsed row of a column-sync upload: the AWB reference
// key and the raw value for the chosen column.
type SyncRow struct {
	Row   int // 1-based spreadsheet row, for error reporting
	AWB   string
	Value string
}

// ParseSyncSheet reads the first sheet of an xlsx upload. Column A is
// the AWB, column B the value. A header row containing "awb" is
// skipped.
func ParseSyncSheet(r io.Reader) ([]SyncRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}

	var out []SyncRow
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		awbCell := strings.TrimSpace(row[0])
		if awbCell == "" {
			continue
		}
		if i == 0 && strings.EqualFold(awbCell, "awb") {
			continue
		}
		out = append(out, SyncRow{Row: i + 1, AWB: awbCell, Value: strings.TrimSpace(row[1])})
	}
	if len(out) == 0 {
		return nil, ErrEmptySheet
	}
	return out, nil
}

// shipmentHeader maps recognized header names of the seller order
// upload onto field setters.
var shipmentHeader = map[string]func(*ShipmentRow, string){
	"sender_name":      func(s *ShipmentRow, v string) { s.Sender.Name = v },
	"sender_phone":     func(s *ShipmentRow, v string) { s.Sender.Phone = v },
	"sender_address":   func(s *ShipmentRow, v string) { s.Sender.Address = v },
	"sender_city":      func(s *ShipmentRow, v string) { s.Sender.City = v },
	"sender_state":     func(s *ShipmentRow, v string) { s.Sender.State = v },
	"sender_pincode":   func(s *ShipmentRow, v string) { s.Sender.Pincode = v },
	"receiver_name":    func(s *ShipmentRow, v string) { s.Receiver.Name = v },
	"receiver_phone":   func(s *ShipmentRow, v string) { s.Receiver.Phone = v },
	"receiver_address": func(s *ShipmentRow, v string) { s.Receiver.Address = v },
	"receiver_city":    func(s *ShipmentRow, v string) { s.Receiver.City = v },
	"receiver_state":   func(s *ShipmentRow, v string) { s.Receiver.State = v },
	"receiver_pincode": func(s *ShipmentRow, v string) { s.Receiver.Pincode = v },
	"package_type":     func(s *ShipmentRow, v string) { s.PackageType = v },
	"payment_mode":     func(s *ShipmentRow, v string) { s.PaymentMode = v },
	"weight":           func(s *ShipmentRow, v string) { s.rawWeight = v },
	"cod_amount":       func(s *ShipmentRow, v string) { s.rawCOD = v },
	"declared_value":   func(s *ShipmentRow, v string) { s.rawDeclared = v },
}

// ShipmentRow is one parsed row of a seller bulk order upload.
type ShipmentRow struct {
	Row           int
	Sender        models.Party
	Receiver      models.Party
	PackageType   string
	PaymentMode   string
	WeightKG      float64
	CODAmount     float64
	DeclaredValue float64

	rawWeight   string
	rawCOD      string
	rawDeclared string
}

// RowError ties a validation failure to its spreadsheet row.
type RowError struct {
	Row int    `json:"row"`
	Err string `json:"error"`
}

// ParseShipmentSheet reads a seller order upload. The first row must
// be a header using the recognized column names; unknown columns are
// ignored. Rows failing validation are returned as RowErrors, valid
// rows as ShipmentRows; one bad row never sinks the batch.
func ParseShipmentSheet(r io.Reader) ([]ShipmentRow, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, ErrEmptySheet
	}

	setters := make([]func(*ShipmentRow, string), len(rows[0]))
	for i, name := range rows[0] {
		setters[i] = shipmentHeader[strings.ToLower(strings.TrimSpace(name))]
	}

	var (
		parsed []ShipmentRow
		errs   []RowError
	)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isEmptyRow(row) {
			continue
		}
		var s ShipmentRow
		s.Row = rowNum
		for col, cell := range row {
			if col < len(setters) && setters[col] != nil {
				setters[col](&s, strings.TrimSpace(cell))
			}
		}
		if err := s.validate(); err != nil {
			errs = append(errs, RowError{Row: rowNum, Err: err.Error()})
			continue
		}
		parsed = append(parsed, s)
	}
	if len(parsed) == 0 && len(errs) == 0 {
		return nil, nil, ErrEmptySheet
	}
	return parsed, errs, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (s *ShipmentRow) validate() error {
	if s.Sender.Name == "" || s.Receiver.Name == "" {
		return errors.New("sender_name and receiver_name are required")
	}
	if s.Receiver.Phone == "" || s.Receiver.Address == "" {
		return errors.New("receiver_phone and receiver_address are required")
	}
	if s.PackageType == "" {
		return errors.New("package_type is required")
	}

	switch s.PaymentMode {
	case models.PaymentModePrepaid, models.PaymentModeCOD:
	default:
		return fmt.Errorf("payment_mode must be %q or %q", models.PaymentModePrepaid, models.PaymentModeCOD)
	}

	w, err := parsePositiveFloat(s.rawWeight)
	if err != nil {
		return fmt.Errorf("weight: %v", err)
	}
	s.WeightKG = w.(float64)

	if s.rawCOD != "" {
		v, err := parsePositiveFloat(s.rawCOD)
		if err != nil {
			return fmt.Errorf("cod_amount: %v", err)
		}
		s.CODAmount = v.(float64)
	}
	if s.rawDeclared != "" {
		v, err := parsePositiveFloat(s.rawDeclared)
		if err != nil {
			return fmt.Errorf("declared_value: %v", err)
		}
		s.DeclaredValue = v.(float64)
	}

	// COD amount and declared value are mutually exclusive with the
	// payment mode; the UI used to enforce this, the server does now.
	if s.PaymentMode == models.PaymentModeCOD {
		if s.CODAmount <= 0 {
			return errors.New("cod_amount must be positive for COD shipments")
		}
		s.DeclaredValue = 0
	} else {
		if s.CODAmount > 0 {
			return errors.New("cod_amount must be zero for Prepaid shipments")
		}
	}
	return nil
}
