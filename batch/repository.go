// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uber/h3-go/v4"

	"github.com/jusomap/jusomap/geocode"
	"github.com/jusomap/jusomap/spatial"
)

// GeocodedRecord is one resolved (or failed) address as persisted in DuckDB.
type GeocodedRecord struct {
	Address        string              `json:"address"`
	MatchedAddress string              `json:"matched_address,omitempty"`
	Point          *spatial.Point      `json:"point"`
	PredictedType  geocode.AddressType `json:"predicted_type"`
	UsedType       geocode.AddressType `json:"used_type"`
	Success        bool                `json:"success"`
	Region         string              `json:"region"`
	CreatedAt      time.Time           `json:"created_at"`
	H3Res7         int64               `json:"-"`
	H3Res8         int64               `json:"-"`
}

func (record *GeocodedRecord) computeH3() error {
	if record.Point == nil {
		record.H3Res7 = 0
		record.H3Res8 = 0

		return nil
	}

	latLng := h3.NewLatLng(record.Point.Lat, record.Point.Lng)

	for res := 7; res <= 8; res++ {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		switch res {
		case 7:
			record.H3Res7 = int64(cell)
		case 8:
			record.H3Res8 = int64(cell)
		}
	}

	return nil
}

// RegionCount is one row of the per-region success summary.
type RegionCount struct {
	Region  string `json:"region"`
	Total   int    `json:"total"`
	Success int    `json:"success"`
}

// Repository handles persistence of geocoding results.
type Repository interface {
	// CreateSchema creates the geocoded table
	CreateSchema() error

	// BulkInsert inserts a slice of records into the database
	BulkInsert(records []*GeocodedRecord) error

	// Count returns the total number of stored records
	Count() (int, error)

	// RegionSummary aggregates stored records per region
	RegionSummary() ([]*RegionCount, error)

	// LoadCSV reads a CSV file into an all-text table
	LoadCSV(path string) (*Table, error)

	// ExportCSV writes a table to a CSV file with a header row
	ExportCSV(table *Table, path string) error

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlGeocodeRepository struct {
	db *sql.DB
}

// NewRepository creates a repository over an open DuckDB connection.
func NewRepository(db *sql.DB) Repository {
	return &sqlGeocodeRepository{db: db}
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlGeocodeRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlGeocodeRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	_, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS geocoded_seq START 1;

		CREATE TABLE IF NOT EXISTS geocoded (
			id INTEGER PRIMARY KEY DEFAULT nextval('geocoded_seq'),
			address VARCHAR NOT NULL,
			matched_address VARCHAR,
			point POINT_2D,
			predicted_type VARCHAR NOT NULL,
			used_type VARCHAR NOT NULL,
			success BOOLEAN NOT NULL,
			region VARCHAR NOT NULL,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)

	return err
}

func (r *sqlGeocodeRepository) BulkInsert(records []*GeocodedRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO geocoded(
			address,
			matched_address,
			point,
			predicted_type,
			used_type,
			success,
			region,
			h3_res7,
			h3_res8,
			created_at
		)
		VALUES (?, ?, ST_Point(?, ?), ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return err
	}
	defer stmt.Close()

	for _, record := range records {
		if err = record.computeH3(); err != nil {
			return err
		}

		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now()
		}

		matched := &record.MatchedAddress
		if len(*matched) == 0 {
			matched = nil
		}

		// ST_Point propagates NULL, so failed rows store a NULL point
		var lng, lat any
		if record.Point != nil {
			lng = record.Point.Lng
			lat = record.Point.Lat
		}

		_, err := stmt.Exec(
			record.Address,
			matched,
			lng,
			lat,
			string(record.PredictedType),
			string(record.UsedType),
			record.Success,
			record.Region,
			record.H3Res7,
			record.H3Res8,
			record.CreatedAt,
		)
		if err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return err
		}
	}

	return tx.Commit()
}

func (r *sqlGeocodeRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM geocoded",
	).Scan(&count)

	return count, err
}

func (r *sqlGeocodeRepository) RegionSummary() ([]*RegionCount, error) {
	rows, err := r.db.Query(`
		SELECT region,
		       COUNT(*),
		       SUM(CASE WHEN success THEN 1 ELSE 0 END)
		FROM geocoded
		GROUP BY region
		ORDER BY COUNT(*) DESC, region
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summary []*RegionCount

	for rows.Next() {
		count := &RegionCount{}
		if err := rows.Scan(&count.Region, &count.Total, &count.Success); err != nil {
			return nil, err
		}

		summary = append(summary, count)
	}

	return summary, rows.Err()
}

// quoteLiteral escapes a string for inlining into a DuckDB statement.
// Paths show up inside read_csv_auto and COPY, which take no placeholders.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (r *sqlGeocodeRepository) LoadCSV(path string) (*Table, error) {
	// ALL_VARCHAR keeps lot numbers and postal codes as text
	rows, err := r.db.Query(fmt.Sprintf(
		"SELECT * FROM read_csv_auto(%s, ALL_VARCHAR=TRUE)", quoteLiteral(path),
	))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	table := &Table{Columns: columns}

	values := make([]sql.NullString, len(columns))
	scanArgs := make([]any, len(columns))

	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}

		row := make([]string, len(columns))
		for i, value := range values {
			if value.Valid {
				row[i] = value.String
			}
		}

		table.Rows = append(table.Rows, row)
	}

	return table, rows.Err()
}

func (r *sqlGeocodeRepository) ExportCSV(table *Table, path string) error {
	columnDefs := make([]string, len(table.Columns))
	for i, column := range table.Columns {
		columnDefs[i] = quoteIdent(column) + " VARCHAR"
	}

	_, err := r.db.Exec(fmt.Sprintf(
		"CREATE OR REPLACE TEMP TABLE csv_export (%s)", strings.Join(columnDefs, ", "),
	))
	if err != nil {
		return err
	}

	defer func() {
		_, _ = r.db.Exec("DROP TABLE IF EXISTS csv_export")
	}()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(table.Columns)), ", ")

	stmt, err := r.db.Prepare("INSERT INTO csv_export VALUES (" + placeholders + ")")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range table.Rows {
		args := make([]any, len(table.Columns))
		for i := range table.Columns {
			args[i] = cell(row, i)
		}

		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}

	_, err = r.db.Exec(fmt.Sprintf(
		"COPY (SELECT * FROM csv_export) TO %s (HEADER, DELIMITER ',')", quoteLiteral(path),
	))
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// RecordsFromTable converts the annotated output of a processing run back
// into persistable records.
func RecordsFromTable(table *Table, addressColumn string) ([]*GeocodedRecord, error) {
	addressIndex := table.ColumnIndex(addressColumn)
	if addressIndex < 0 {
		return nil, fmt.Errorf("address column %q not found", addressColumn)
	}

	latIndex := table.ColumnIndex("latitude")
	lngIndex := table.ColumnIndex("longitude")
	successIndex := table.ColumnIndex("geocoding_success")
	predictedIndex := table.ColumnIndex("ai_predicted_type")
	usedIndex := table.ColumnIndex("actual_used_type")
	matchedIndex := table.ColumnIndex("matched_address")

	if latIndex < 0 || lngIndex < 0 || successIndex < 0 ||
		predictedIndex < 0 || usedIndex < 0 || matchedIndex < 0 {
		return nil, fmt.Errorf("table is missing geocoding result columns")
	}

	records := make([]*GeocodedRecord, 0, len(table.Rows))

	for _, row := range table.Rows {
		address := cell(row, addressIndex)

		record := &GeocodedRecord{
			Address:        address,
			MatchedAddress: cell(row, matchedIndex),
			PredictedType:  geocode.AddressType(cell(row, predictedIndex)),
			UsedType:       geocode.AddressType(cell(row, usedIndex)),
			Success:        cell(row, successIndex) == "true",
			Region:         geocode.DetectRegion(address),
		}

		if record.Region == "" {
			record.Region = otherRegionLabel
		}

		if record.Success {
			lat, err := strconv.ParseFloat(cell(row, latIndex), 64)
			if err != nil {
				return nil, fmt.Errorf("parsing latitude %q: %w", cell(row, latIndex), err)
			}

			lng, err := strconv.ParseFloat(cell(row, lngIndex), 64)
			if err != nil {
				return nil, fmt.Errorf("parsing longitude %q: %w", cell(row, lngIndex), err)
			}

			record.Point = &spatial.Point{Lat: lat, Lng: lng}
		}

		records = append(records, record)
	}

	return records, nil
}
