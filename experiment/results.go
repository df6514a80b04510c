package experiment

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go-ml.dev/pkg/assess/model"
)

// TimestampLayout is the results log timestamp with microseconds
const TimestampLayout = "2006-01-02 15:04:05.000000"

/*
Record is a row of the results log
*/
type Record struct {
	Time       time.Time
	Classifier string
	Dataset    string
	Score      float64
	Params     model.Params
}

/*
Line renders the record as "<ts>",<clf>,<ds>,<score>,"<params>"
*/
func (r Record) Line() string {
	return fmt.Sprintf("\"%s\",%s,%s,%s,\"%s\"\n",
		r.Time.Format(TimestampLayout),
		r.Classifier,
		r.Dataset,
		strconv.FormatFloat(r.Score, 'g', -1, 64),
		r.Params.String())
}

/*
Log appends records to the results file and optionally mirrors them into sqlite table test_results
*/
type Log struct {
	path string
	db   *sql.DB
}

const createResults = `CREATE TABLE IF NOT EXISTS test_results (
	ts TEXT NOT NULL,
	classifier TEXT NOT NULL,
	dataset TEXT NOT NULL,
	score REAL,
	params TEXT
)`

/*
OpenLog opens the results log in dir, dbPath is optional
*/
func OpenLog(dir, dbPath string) (*Log, error) {
	l := &Log{path: filepath.Join(dir, ResultsFile)}
	if dbPath == "" {
		return l, nil
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open results database %q", dbPath)
	}
	if _, err = db.Exec(createResults); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to create results table in %q", dbPath)
	}
	l.db = db
	return l, nil
}

/*
Append writes the record line to the results file and mirrors it into the database when it is open
*/
func (l *Log) Append(r Record) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %q", l.path)
	}
	if _, err = f.WriteString(r.Line()); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to append %q", l.path)
	}
	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %q", l.path)
	}
	if l.db != nil {
		_, err = l.db.Exec(`INSERT INTO test_results (ts, classifier, dataset, score, params) VALUES (?, ?, ?, ?, ?)`,
			r.Time.Format(TimestampLayout), r.Classifier, r.Dataset, r.Score, r.Params.String())
		if err != nil {
			return errors.Wrap(err, "failed to insert test result")
		}
	}
	return nil
}

/*
Records reads back mirrored records of the dataset, it requires the results database
*/
func (l *Log) Records(dataset string) ([]Record, error) {
	if l.db == nil {
		return nil, errors.Errorf("results database is not configured")
	}
	rows, err := l.db.Query(`SELECT ts, classifier, dataset, score FROM test_results WHERE dataset = ? ORDER BY ts`, dataset)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()
	var rs []Record
	for rows.Next() {
		var r Record
		var ts string
		if err = rows.Scan(&ts, &r.Classifier, &r.Dataset, &r.Score); err != nil {
			return nil, errors.WithStack(err)
		}
		if r.Time, err = time.ParseInLocation(TimestampLayout, ts, time.Local); err != nil {
			return nil, errors.WithStack(err)
		}
		rs = append(rs, r)
	}
	return rs, errors.WithStack(rows.Err())
}

/*
Close closes the results database if any
*/
func (l *Log) Close() error {
	if l.db == nil {
		return nil
	}
	return errors.WithStack(l.db.Close())
}
