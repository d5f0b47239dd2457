/*-------------------------------------------------------------------------
 *
 * jsonb.go
 *    JSONB column mapping for application metadata
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/db/jsonb.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

/* JSONBMap maps a JSONB column to a Go map */
type JSONBMap map[string]interface{}

/* Value implements driver.Valuer */
func (j JSONBMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

/* Scan implements sql.Scanner */
func (j *JSONBMap) Scan(src interface{}) error {
	if src == nil {
		*j = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONBMap", src)
	}

	return json.Unmarshal(data, j)
}

/* FromMap converts a plain map, keeping nil as nil */
func FromMap(m map[string]interface{}) JSONBMap {
	if m == nil {
		return nil
	}
	return JSONBMap(m)
}

/* ToMap converts back to a plain map */
func (j JSONBMap) ToMap() map[string]interface{} {
	if j == nil {
		return nil
	}
	return map[string]interface{}(j)
}
