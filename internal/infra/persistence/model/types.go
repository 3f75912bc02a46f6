// Package model contains the GORM-specific structs mapped to database tables.
package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// GeoJSONMultiPolygon stores a multipolygon as a GeoJSON jsonb column.
// Scanning accepts both Polygon and MultiPolygon documents; polygons are
// normalized to a single-element multipolygon.
type GeoJSONMultiPolygon orb.MultiPolygon

// Value implements driver.Valuer by encoding the geometry as GeoJSON.
func (g GeoJSONMultiPolygon) Value() (driver.Value, error) {
	data, err := geojson.NewGeometry(orb.MultiPolygon(g)).MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "marshal geometry to GeoJSON")
	}

	return data, nil
}

// Scan implements sql.Scanner by decoding a GeoJSON document.
func (g *GeoJSONMultiPolygon) Scan(value any) error {
	if value == nil {
		*g = nil

		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("unsupported geometry column type %T", value)
	}

	geom, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return errors.Wrap(err, "unmarshal GeoJSON geometry")
	}

	switch shape := geom.Geometry().(type) {
	case orb.MultiPolygon:
		*g = GeoJSONMultiPolygon(shape)
	case orb.Polygon:
		*g = GeoJSONMultiPolygon(orb.MultiPolygon{shape})
	default:
		return errors.Errorf("unsupported geometry type %q", geom.Type)
	}

	return nil
}

// JSONMap stores a flat string map as a jsonb column.
type JSONMap map[string]string

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "marshal json map")
	}

	return data, nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil

		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("unsupported json map column type %T", value)
	}

	return errors.Wrap(json.Unmarshal(data, m), "unmarshal json map")
}
