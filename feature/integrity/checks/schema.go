package checks

import (
	"fmt"
	"reflect"
	"strings"

	"masterdata-importer/core/database"
	"masterdata-importer/feature/masterdata/models"

	"gorm.io/gorm"
)

// SchemaReport is the result of comparing the entity table with its model.
type SchemaReport struct {
	Table          string   `json:"table"`
	Matched        bool     `json:"matched"`
	MissingColumns []string `json:"missing_columns"`
	KeyMismatches  []string `json:"key_mismatches"`
	Errors         []string `json:"errors"`
}

// CheckSchema verifies the master_entities table using the GORM model as the
// source of truth.
func CheckSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	model := models.EntityRow{}
	report := &SchemaReport{
		Table:          model.TableName(),
		Matched:        true,
		MissingColumns: []string{},
		KeyMismatches:  []string{},
		Errors:         []string{},
	}

	actualCols, err := database.GetTableColumns(db, report.Table)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		report.Matched = false
		return report, nil
	}
	if len(actualCols) == 0 {
		report.Errors = append(report.Errors, fmt.Sprintf("table %s does not exist", report.Table))
		report.Matched = false
		return report, nil
	}

	actual := make(map[string]database.ColumnInfo, len(actualCols))
	for _, col := range actualCols {
		actual[col.Field] = col
	}

	typ := reflect.TypeOf(model)
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("gorm")
		colName := parseGormColumn(tag)
		if colName == "" {
			continue
		}

		col, ok := actual[colName]
		if !ok {
			report.MissingColumns = append(report.MissingColumns, colName)
			report.Matched = false
			continue
		}
		if hasGormFlag(tag, "primaryKey") && col.Key != "pri" {
			report.KeyMismatches = append(report.KeyMismatches, fmt.Sprintf("%s: expected primary key", colName))
			report.Matched = false
		}
	}

	return report, nil
}

func parseGormColumn(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}

func hasGormFlag(tag, flag string) bool {
	for _, p := range strings.Split(tag, ";") {
		if p == flag {
			return true
		}
	}
	return false
}
