// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db stores profiling sessions in a SQL database.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/perfview/profstat"
)

// DB is a high-level interface to a database of profiling sessions.
// It's safe for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertSession  *sql.Stmt
	insertFunction *sql.Stmt
	insertSlice    *sql.Stmt
	findSession    *sql.Stmt
}

// ErrNotFound is returned by LoadSession and DeleteSession when the
// named session is not in the database.
var ErrNotFound = errors.New("session not found")

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to configure its connections.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
//
// Functions and Slices keep the record order of the session file in
// their Seq columns. Only callee slices are stored; the "other" slice
// is recomputed on load.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Sessions (
	SessionID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Name VARCHAR(255) NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS Functions (
	SessionID BIGINT UNSIGNED,
	Seq BIGINT UNSIGNED,
	Name VARCHAR(1024),
	AverageNS BIGINT,
	TimesRun BIGINT,
	PRIMARY KEY (SessionID, Seq),
	FOREIGN KEY (SessionID) REFERENCES Sessions(SessionID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS Slices (
	SessionID BIGINT UNSIGNED,
	Seq BIGINT UNSIGNED,
	SliceSeq BIGINT UNSIGNED,
	Label VARCHAR(1024),
	Percentage DOUBLE,
	PRIMARY KEY (SessionID, Seq, SliceSeq),
	FOREIGN KEY (SessionID, Seq) REFERENCES Functions(SessionID, Seq) ON UPDATE CASCADE ON DELETE CASCADE
);
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	for _, s := range []struct {
		stmt **sql.Stmt
		q    string
	}{
		{&db.insertSession, "INSERT INTO Sessions(Name) VALUES (?)"},
		{&db.insertFunction, "INSERT INTO Functions(SessionID, Seq, Name, AverageNS, TimesRun) VALUES (?, ?, ?, ?, ?)"},
		{&db.insertSlice, "INSERT INTO Slices(SessionID, Seq, SliceSeq, Label, Percentage) VALUES (?, ?, ?, ?, ?)"},
		{&db.findSession, "SELECT SessionID FROM Sessions WHERE Name = ?"},
	} {
		if *s.stmt, err = db.sql.Prepare(s.q); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores s, replacing any stored session of the same
// name. The write is atomic: on error the database is unchanged.
func (db *DB) InsertSession(ctx context.Context, s *profstat.Session) (err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if err := deleteSession(ctx, tx, tx.StmtContext(ctx, db.findSession), s.Name()); err != nil && err != ErrNotFound {
		return err
	}
	res, err := tx.StmtContext(ctx, db.insertSession).ExecContext(ctx, s.Name())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	insertFunction := tx.StmtContext(ctx, db.insertFunction)
	insertSlice := tx.StmtContext(ctx, db.insertSlice)
	for seq, f := range s.Functions() {
		if _, err := insertFunction.ExecContext(ctx, id, seq, f.Name(), f.Average(), f.TimesRun()); err != nil {
			return err
		}
		if f.Breakdown() == nil {
			continue
		}
		for i, sl := range f.Breakdown().Callees() {
			if _, err := insertSlice.ExecContext(ctx, id, seq, i, sl.Label, sl.Percentage); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteSession removes the named session. It returns ErrNotFound if
// there is no such session.
func (db *DB) DeleteSession(ctx context.Context, name string) (err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	return deleteSession(ctx, tx, tx.StmtContext(ctx, db.findSession), name)
}

// deleteSession deletes the rows of the named session. Children are
// deleted explicitly so that it does not depend on the engine
// enforcing foreign keys.
func deleteSession(ctx context.Context, tx *sql.Tx, find *sql.Stmt, name string) error {
	var id int64
	err := find.QueryRowContext(ctx, name).Scan(&id)
	if err == sql.ErrNoRows {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	for _, q := range []string{
		"DELETE FROM Slices WHERE SessionID = ?",
		"DELETE FROM Functions WHERE SessionID = ?",
		"DELETE FROM Sessions WHERE SessionID = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}

// SessionNames returns the names of all stored sessions in lexical
// order.
func (db *DB) SessionNames(ctx context.Context) ([]string, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT Name FROM Sessions ORDER BY Name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CountSessions returns the number of stored sessions.
func (db *DB) CountSessions() (int, error) {
	var n int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Sessions").Scan(&n)
	return n, err
}

type function struct {
	name      string
	averageNS int64
	timesRun  int64
	callees   []profstat.Slice
}

// LoadSession reads the named session back. Functions come back in
// their original order with their breakdowns, including the "other"
// slice. It returns ErrNotFound if there is no such session.
func (db *DB) LoadSession(ctx context.Context, name string) (*profstat.Session, error) {
	var id int64
	err := db.findSession.QueryRowContext(ctx, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	// Each result set is drained and closed before the next query so
	// that a single-connection pool does not deadlock.
	var funcs []*function
	rows, err := db.sql.QueryContext(ctx, "SELECT Name, AverageNS, TimesRun FROM Functions WHERE SessionID = ? ORDER BY Seq", id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		f := new(function)
		if err := rows.Scan(&f.name, &f.averageNS, &f.timesRun); err != nil {
			rows.Close()
			return nil, err
		}
		funcs = append(funcs, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.sql.QueryContext(ctx, "SELECT Seq, Label, Percentage FROM Slices WHERE SessionID = ? ORDER BY Seq, SliceSeq", id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var seq int64
		var sl profstat.Slice
		if err := rows.Scan(&seq, &sl.Label, &sl.Percentage); err != nil {
			rows.Close()
			return nil, err
		}
		if seq < 0 || seq >= int64(len(funcs)) {
			rows.Close()
			return nil, fmt.Errorf("session %q: slice of missing function %d", name, seq)
		}
		funcs[seq].callees = append(funcs[seq].callees, sl)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats := make([]*profstat.FunctionStat, len(funcs))
	for i, f := range funcs {
		stats[i] = profstat.NewFunctionStat(f.name, f.averageNS, f.timesRun, profstat.NewBreakdown(f.callees))
	}
	return profstat.NewSession(name, stats), nil
}

// LoadRegistry loads every stored session, in lexical name order.
func (db *DB) LoadRegistry(ctx context.Context) (*profstat.Registry, error) {
	names, err := db.SessionNames(ctx)
	if err != nil {
		return nil, err
	}
	sessions := make([]*profstat.Session, 0, len(names))
	for _, name := range names {
		s, err := db.LoadSession(ctx, name)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return profstat.NewRegistry(sessions...)
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.insertSession, db.insertFunction, db.insertSlice, db.findSession} {
		if stmt == nil {
			continue
		}
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
