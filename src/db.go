package main

import (
	"database/sql"
	"encoding/json"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// Feature holds one measurement row: ID and the JSON blob of its fields.
type Feature struct {
	ID   int
	Data map[string]interface{}
}

// Layer groups features of one type and supplies the type tag used when a
// blank row has to be appended.
type Layer struct {
	ID   int
	Name string
	Type string
}

// initializeDB creates/opens the sqlite project database and ensures the
// required tables exist.
func initializeDB(path string) *sql.DB {
	// open DB (fatal on error so callers don't have to handle nil)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		db, err = sql.Open("sqlite3", "file:"+path+"?mode=rwc")
		if err != nil {
			log.Fatalf("unable to open or create database: %v", err)
		}
	}

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}

	createLayers := `
	CREATE TABLE IF NOT EXISTS layers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT,
		type TEXT
	);
	`
	if _, err := db.Exec(createLayers); err != nil {
		log.Fatalf("failed ensuring layers table exists: %v", err)
	}

	createFeatures := `
	CREATE TABLE IF NOT EXISTS features (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		layer_id INTEGER,
		data TEXT
	);
	`
	if _, err := db.Exec(createFeatures); err != nil {
		log.Fatalf("failed ensuring features table exists: %v", err)
	}

	return db
}

// insertLayer creates a layer and returns its id.
func insertLayer(db *sql.DB, name, layerType string) (int64, error) {
	res, err := db.Exec("INSERT INTO layers (name, type) VALUES (?, ?)", name, layerType)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// getAllLayers returns all layers in creation order.
func getAllLayers(db *sql.DB) ([]Layer, error) {
	rows, err := db.Query("SELECT id, name, type FROM layers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Layer
	for rows.Next() {
		var l Layer
		if err := rows.Scan(&l.ID, &l.Name, &l.Type); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// renameLayer updates a layer's display name.
func renameLayer(db *sql.DB, id int, name string) error {
	_, err := db.Exec("UPDATE layers SET name = ? WHERE id = ?", name, id)
	return err
}

// deleteLayer removes a layer and all of its features.
func deleteLayer(db *sql.DB, id int) error {
	if _, err := db.Exec("DELETE FROM features WHERE layer_id = ?", id); err != nil {
		return err
	}
	_, err := db.Exec("DELETE FROM layers WHERE id = ?", id)
	return err
}

// deleteAllLayers clears layers and features (used when importing a project).
func deleteAllLayers(db *sql.DB) error {
	if _, err := db.Exec("DELETE FROM features"); err != nil {
		return err
	}
	_, err := db.Exec("DELETE FROM layers")
	return err
}

// insertFeature inserts a feature json blob and returns the inserted id.
func insertFeature(db *sql.DB, layerID int, data map[string]interface{}) (int64, error) {
	js, err := json.Marshal(data)
	if err != nil {
		return 0, err
	}
	res, err := db.Exec("INSERT INTO features (layer_id, data) VALUES (?, ?)", layerID, string(js))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// appendBlankFeature appends a zero-value row matching the layer type's
// shape. This is the row-append requested when tab navigation runs past the
// last cell of the last row.
func appendBlankFeature(db *sql.DB, layerType string, layerID int) (int64, error) {
	return insertFeature(db, layerID, blankFeature(layerType))
}

// getFeatures returns a layer's features with JSON data parsed, ordered by id
// so grid row indices are stable.
func getFeatures(db *sql.DB, layerID int) ([]Feature, error) {
	rows, err := db.Query("SELECT id, data FROM features WHERE layer_id = ? ORDER BY id", layerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Feature
	for rows.Next() {
		var id int
		var dataStr string
		if err := rows.Scan(&id, &dataStr); err != nil {
			return nil, err
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(dataStr), &m); err != nil {
			m = map[string]interface{}{}
		}
		out = append(out, Feature{ID: id, Data: m})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// updateFeatureField loads a feature's JSON blob, updates one field and
// writes it back. Only called with values that already passed validation, so
// a row is never left partially written.
func updateFeatureField(db *sql.DB, id int, field string, value interface{}) error {
	var dataStr string
	if err := db.QueryRow("SELECT data FROM features WHERE id = ?", id).Scan(&dataStr); err != nil {
		return err
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(dataStr), &m); err != nil {
		m = map[string]interface{}{}
	}
	m[field] = value
	js, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = db.Exec("UPDATE features SET data = ? WHERE id = ?", string(js), id)
	return err
}

// deleteFeature deletes a feature by id.
func deleteFeature(db *sql.DB, id int) error {
	_, err := db.Exec("DELETE FROM features WHERE id = ?", id)
	return err
}

// mergeWithSchema returns a copy of data overlaid on the zero-value row for
// the layer type, so rows imported from older project files always carry
// every column.
func mergeWithSchema(layerType string, data map[string]interface{}) map[string]interface{} {
	m := blankFeature(layerType)
	if data == nil {
		return m
	}
	for k, v := range data {
		if _, ok := m[k]; ok {
			m[k] = v
		}
	}
	return m
}
