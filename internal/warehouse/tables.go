package warehouse

import (
	"studentdw/internal/ddl"
	"studentdw/pkg/records"
)

// Table pairs a table definition with its rows, in the shape the loader
// writes.
type Table struct {
	Def  ddl.TableDef
	Data *records.Table
}

var (
	dimStudentDef = ddl.TableDef{
		Name: TableDimStudent,
		Columns: []ddl.ColumnDef{
			{Name: "student_key", Type: ddl.TypeInt, PrimaryKey: true},
			{Name: "student_id", Type: ddl.TypeText, Nullable: true},
			{Name: "gender", Type: ddl.TypeText, Nullable: true},
			{Name: "major", Type: ddl.TypeText, Nullable: true},
			{Name: "previous_gpa", Type: ddl.TypeFloat, Nullable: true},
			{Name: "age_group", Type: ddl.TypeText, Nullable: true},
		},
	}
	dimTimeDef = ddl.TableDef{
		Name: TableDimTime,
		Columns: []ddl.ColumnDef{
			{Name: "time_key", Type: ddl.TypeInt, PrimaryKey: true},
			{Name: "semester", Type: ddl.TypeText, Nullable: true},
			{Name: "year", Type: ddl.TypeInt},
			{Name: "academic_year", Type: ddl.TypeText},
		},
	}
	factDef = ddl.TableDef{
		Name: TableFact,
		Columns: []ddl.ColumnDef{
			{Name: "academic_performance_key", Type: ddl.TypeInt, PrimaryKey: true},
			{Name: "student_key", Type: ddl.TypeInt, Nullable: true},
			{Name: "time_key", Type: ddl.TypeInt, Nullable: true},
			{Name: "exam_score", Type: ddl.TypeFloat, Nullable: true},
			{Name: "attendance_percentage", Type: ddl.TypeFloat, Nullable: true},
			{Name: "dropout_risk", Type: ddl.TypeText, Nullable: true},
		},
	}
)

// TableDefs returns the three table definitions in load order.
func TableDefs() []ddl.TableDef {
	return []ddl.TableDef{dimStudentDef, dimTimeDef, factDef}
}

// Tables renders the model as loadable tables in load order: dimensions
// first, then facts.
func (m *Model) Tables() []Table {
	students := &records.Table{Name: TableDimStudent, Columns: dimStudentDef.ColumnNames()}
	for _, s := range m.Students {
		students.Rows = append(students.Rows, records.Record{
			"student_key":  s.StudentKey,
			"student_id":   ptr(s.StudentID),
			"gender":       ptr(s.Gender),
			"major":        ptr(s.Major),
			"previous_gpa": ptr(s.PreviousGPA),
			"age_group":    ptr(s.AgeGroup),
		})
	}

	times := &records.Table{Name: TableDimTime, Columns: dimTimeDef.ColumnNames()}
	for _, t := range m.Times {
		times.Rows = append(times.Rows, records.Record{
			"time_key":      t.TimeKey,
			"semester":      ptr(t.Semester),
			"year":          int64(t.Year),
			"academic_year": t.AcademicYear,
		})
	}

	facts := &records.Table{Name: TableFact, Columns: factDef.ColumnNames()}
	for _, f := range m.Facts {
		facts.Rows = append(facts.Rows, records.Record{
			"academic_performance_key": f.AcademicPerformanceKey,
			"student_key":              ptr(f.StudentKey),
			"time_key":                 ptr(f.TimeKey),
			"exam_score":               ptr(f.ExamScore),
			"attendance_percentage":    ptr(f.AttendancePercentage),
			"dropout_risk":             ptr(f.DropoutRisk),
		})
	}

	return []Table{
		{Def: dimStudentDef, Data: students},
		{Def: dimTimeDef, Data: times},
		{Def: factDef, Data: facts},
	}
}

// ptr unwraps a nullable field into a cell value.
func ptr[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
