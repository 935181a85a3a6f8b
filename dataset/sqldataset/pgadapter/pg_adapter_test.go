package pgadapter

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestColumnName(t *testing.T) {
	Convey("Given a PostgreSQL adapter", t, func() {
		a, err := New("postgresql://localhost/arbor?sslmode=disable")
		So(err, ShouldBeNil)
		defer a.Close()
		Convey("column names are quoted as identifiers", func() {
			name, err := a.ColumnName("temperature")
			So(err, ShouldBeNil)
			So(name, ShouldEqual, `"temperature"`)
			name, err = a.ColumnName("wind speed")
			So(err, ShouldBeNil)
			So(name, ShouldEqual, `"wind speed"`)
		})
		Convey("quotes inside column names are escaped", func() {
			name, err := a.ColumnName(`say "hi"`)
			So(err, ShouldBeNil)
			So(name, ShouldEqual, `"say ""hi"""`)
		})
		Convey("empty column names are rejected", func() {
			_, err := a.ColumnName("")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestInsertStatement(t *testing.T) {
	Convey("Placeholders are numbered across every row", t, func() {
		stmt := insertStatement(`"weather"`, `"outlook", "play"`, 3, 2)
		So(stmt, ShouldEqual, `INSERT INTO "weather" ("outlook", "play") VALUES ($1, $2), ($3, $4), ($5, $6)`)
	})
	Convey("A single row of a single column gets a single placeholder", t, func() {
		So(insertStatement(`"t"`, `"c"`, 1, 1), ShouldEqual, `INSERT INTO "t" ("c") VALUES ($1)`)
	})
}
