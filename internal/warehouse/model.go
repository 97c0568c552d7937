// Package warehouse derives the star-schema tables from the cleaned staging
// table: Dim_Student, Dim_Time and Fact_Academic_Performance.
package warehouse

import "studentdw/internal/transformer/builtin"

// Output table names.
const (
	TableDimStudent = "Dim_Student"
	TableDimTime    = "Dim_Time"
	TableFact       = "Fact_Academic_Performance"
)

// DimStudent is one row of Dim_Student. Nil pointers are NULLs.
type DimStudent struct {
	StudentKey  int64
	StudentID   *string
	Gender      *string
	Major       *string
	PreviousGPA *float64
	AgeGroup    *string
}

// DimTime is one row of Dim_Time.
type DimTime struct {
	TimeKey      int64
	Semester     *string
	Year         int
	AcademicYear string
}

// Fact is one row of Fact_Academic_Performance. StudentKey and TimeKey are
// nil when the natural key found no dimension row.
type Fact struct {
	AcademicPerformanceKey int64
	StudentKey             *int64
	TimeKey                *int64
	ExamScore              *float64
	AttendancePercentage   *float64
	DropoutRisk            *string
}

// Model is the complete output of one transform run.
type Model struct {
	Students []DimStudent
	Times    []DimTime
	Facts    []Fact
	Report   Report
}

// Report summarizes what cleaning did. None of it is an error.
type Report struct {
	StagingRows  int
	DistinctRows int
	Imputations  []builtin.Imputation
	Violations   []builtin.Violation
}

// Integrity counts fact rows whose foreign keys did not resolve.
type Integrity struct {
	MissingStudent int
	MissingTime    int
}

// OK reports whether every fact row resolved both keys.
func (i Integrity) OK() bool { return i.MissingStudent == 0 && i.MissingTime == 0 }

// Verify checks every fact foreign key against the dimension keys.
func (m *Model) Verify() Integrity {
	students := make(map[int64]struct{}, len(m.Students))
	for _, s := range m.Students {
		students[s.StudentKey] = struct{}{}
	}
	times := make(map[int64]struct{}, len(m.Times))
	for _, t := range m.Times {
		times[t.TimeKey] = struct{}{}
	}

	var out Integrity
	for _, f := range m.Facts {
		if f.StudentKey == nil {
			out.MissingStudent++
		} else if _, ok := students[*f.StudentKey]; !ok {
			out.MissingStudent++
		}
		if f.TimeKey == nil {
			out.MissingTime++
		} else if _, ok := times[*f.TimeKey]; !ok {
			out.MissingTime++
		}
	}
	return out
}
