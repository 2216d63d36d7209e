// Package importer reads legacy submission logs exported from spreadsheets.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/storeduty/internal/catalog"
	"github.com/julianstephens/storeduty/internal/constants"
	"github.com/julianstephens/storeduty/internal/logger"
	"github.com/julianstephens/storeduty/internal/models"
)

const maxXLSRows = 100000

// fieldAliases maps record fields to the other header names they appear
// under. The Chinese names are the columns of the original live log.
var fieldAliases = map[string][]string{
	models.FieldTimestamp:    {"time", "時間"},
	models.FieldDate:         {"日期"},
	models.FieldStoreID:      {"store", "門市"},
	models.FieldEmployeeName: {"employee", "員工員編"},
	models.FieldTaskID:       {"task", "任務項目"},
	models.FieldStatus:       {"狀態"},
	models.FieldEvidence:     {"上傳照片"},
	models.FieldPoints:       {"系統計點"},
}

func fieldFor(header string) (string, bool) {
	h := normalizeHeader(header)
	for _, field := range models.RecordFields {
		if h == field {
			return field, true
		}
	}
	for field, aliases := range fieldAliases {
		for _, alias := range aliases {
			if h == alias {
				return field, true
			}
		}
	}
	return "", false
}

// legacyStatus maps the original log's status labels, which carry an emoji
// prefix.
func legacyStatus(v string) (string, bool) {
	label := strings.TrimSpace(strings.TrimLeft(v, "✅❌⚠️ "))
	switch label {
	case "已提交":
		return constants.StatusSubmitted, true
	case "判定不實":
		return constants.StatusMajorFault, true
	case "照片模糊":
		return constants.StatusMinorFault, true
	}
	return "", false
}

// evidence flags from the legacy log are yes/no markers, not photo references
func isEvidenceMarker(v string) bool {
	switch strings.ToLower(v) {
	case "有", "無", "yes", "no":
		return true
	}
	return false
}

type Importer struct {
	catalog catalog.Catalog
	loc     *time.Location
}

// New builds an Importer. Store and task names are resolved to ids through cat;
// timestamps without a zone are read in loc.
func New(cat catalog.Catalog, loc *time.Location) *Importer {
	if loc == nil {
		loc = time.Local
	}
	return &Importer{catalog: cat, loc: loc}
}

// ImportFile reads the first sheet of an .xlsx or .xls file. Rows without an
// id get one derived from the file name, row number and content, so importing
// the same file twice yields the same ids.
func (im *Importer) ImportFile(path, ingestDay string) ([]models.Submission, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return im.ImportRows(rows, filepath.Base(path), ingestDay)
}

// ImportRows decodes a header row followed by data rows.
func (im *Importer) ImportRows(rows [][]string, source, ingestDay string) ([]models.Submission, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet is empty")
	}

	columns := make(map[int]string)
	for i, h := range rows[0] {
		if field, ok := fieldFor(h); ok {
			columns[i] = field
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no recognised columns in header %v", rows[0])
	}

	subs := []models.Submission{}
	for n, row := range rows[1:] {
		rec := make(models.Record, len(columns))
		for i, field := range columns {
			rec[field] = cellValue(row, i)
		}
		if isBlank(rec) {
			continue
		}
		im.normalize(rec)
		if rec.Get(models.FieldID) == "" {
			key := fmt.Sprintf("%s:%d:%s", source, n+2, strings.Join(row, "\x1f"))
			rec[models.FieldID] = uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
		}
		subs = append(subs, models.DecodeSubmission(rec, im.loc, ingestDay))
	}

	logger.Debug("Imported rows", "source", source, "rows", len(rows)-1, "submissions", len(subs))
	return subs, nil
}

func (im *Importer) normalize(rec models.Record) {
	if v := rec.Get(models.FieldStoreID); v != "" {
		rec[models.FieldStoreID] = im.storeID(v)
	}
	if v := rec.Get(models.FieldTaskID); v != "" {
		rec[models.FieldTaskID] = im.taskID(v)
	}
	if v, ok := legacyStatus(rec.Get(models.FieldStatus)); ok {
		rec[models.FieldStatus] = v
	}
	if isEvidenceMarker(rec.Get(models.FieldEvidence)) {
		rec[models.FieldEvidence] = ""
	}
	if v := rec.Get(models.FieldTimestamp); v != "" {
		rec[models.FieldTimestamp] = excelTimestamp(v)
	}
}

func (im *Importer) storeID(v string) string {
	if _, ok := im.catalog.Stores.Get(v); ok {
		return v
	}
	for _, s := range im.catalog.Stores.Stores() {
		if s.Name == v {
			return s.ID
		}
	}
	return v
}

func (im *Importer) taskID(v string) string {
	if _, ok := im.catalog.Tasks.Get(v); ok {
		return v
	}
	for _, t := range im.catalog.Tasks.Tasks() {
		if t.Name == v {
			return t.ID
		}
	}
	return v
}

// excelTimestamp converts a numeric date serial to the store-local format and
// leaves anything else untouched.
func excelTimestamp(v string) string {
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return t.Format(constants.TimestampFormat)
}

func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		workbook, err := xls.OpenReader(f, "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		return workbook.ReadAllCells(maxXLSRows), nil
	case ".xlsx", ".xlsm":
		file, err := excelize.OpenFile(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		return file.GetRows(sheetName)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

func normalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	return strings.ReplaceAll(h, " ", "_")
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(rec models.Record) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
