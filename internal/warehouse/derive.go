package warehouse

import (
	"fmt"
	"strconv"
	"strings"

	"studentdw/pkg/records"
)

// DefaultYear is used when a semester label carries no parsable year.
const DefaultYear = 2024

// AgeGroup buckets an age into (17,20], (20,23] and (23,100]. Anything else,
// including a missing age, has no group.
func AgeGroup(age *float64) *string {
	if age == nil {
		return nil
	}
	a := *age
	var g string
	switch {
	case a > 17 && a <= 20:
		g = "18-20"
	case a > 20 && a <= 23:
		g = "21-23"
	case a > 23 && a <= 100:
		g = ">23"
	default:
		return nil
	}
	return &g
}

// SemesterYear returns the integer second token of a label such as
// "Fall 2023". ok is false, and the year DefaultYear, when there is no
// second token or it is not an integer.
func SemesterYear(label string) (year int, ok bool) {
	f := strings.Fields(label)
	if len(f) < 2 {
		return DefaultYear, false
	}
	y, err := strconv.Atoi(f[1])
	if err != nil {
		return DefaultYear, false
	}
	return y, true
}

// AcademicYear formats "{year}/{year+1}".
func AcademicYear(year int) string {
	return fmt.Sprintf("%d/%d", year, year+1)
}

// BuildDimStudent emits one row per distinct student_id in table order,
// numbering student_key from 1.
func BuildDimStudent(clean *records.Table) []DimStudent {
	out := make([]DimStudent, 0, clean.Len())
	seen := make(map[string]struct{}, clean.Len())
	for _, r := range clean.Rows {
		k := records.FormatValue(r["student_id"])
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, DimStudent{
			StudentKey:  int64(len(out) + 1),
			StudentID:   str(r["student_id"]),
			Gender:      str(r["gender"]),
			Major:       str(r["major"]),
			PreviousGPA: num(r["previous_gpa"]),
			AgeGroup:    AgeGroup(num(r["age"])),
		})
	}
	return out
}

// BuildDimTime emits one row per distinct semester in order of first
// appearance, numbering time_key from 1.
func BuildDimTime(clean *records.Table) []DimTime {
	var out []DimTime
	seen := map[string]struct{}{}
	for _, r := range clean.Rows {
		k := records.FormatValue(r["semester"])
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		sem := str(r["semester"])
		label := ""
		if sem != nil {
			label = *sem
		}
		year, _ := SemesterYear(label)
		out = append(out, DimTime{
			TimeKey:      int64(len(out) + 1),
			Semester:     sem,
			Year:         year,
			AcademicYear: AcademicYear(year),
		})
	}
	return out
}

// BuildFacts emits one fact per cleaned row, numbering
// academic_performance_key from 1. Foreign keys are resolved by a left join
// on student_id and semester; an unmatched key stays nil.
func BuildFacts(clean *records.Table, students []DimStudent, times []DimTime) []Fact {
	studentKeys := make(map[string]int64, len(students))
	for _, s := range students {
		studentKeys[records.FormatValue(deref(s.StudentID))] = s.StudentKey
	}
	timeKeys := make(map[string]int64, len(times))
	for _, t := range times {
		timeKeys[records.FormatValue(deref(t.Semester))] = t.TimeKey
	}

	out := make([]Fact, 0, clean.Len())
	for i, r := range clean.Rows {
		f := Fact{
			AcademicPerformanceKey: int64(i + 1),
			ExamScore:              num(r["exam_score"]),
			AttendancePercentage:   num(r["attendance_percentage"]),
			DropoutRisk:            str(r["dropout_risk"]),
		}
		if k, ok := studentKeys[records.FormatValue(r["student_id"])]; ok {
			f.StudentKey = &k
		}
		if k, ok := timeKeys[records.FormatValue(r["semester"])]; ok {
			f.TimeKey = &k
		}
		out = append(out, f)
	}
	return out
}

func str(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return &t
	default:
		s := records.FormatValue(t)
		return &s
	}
}

func num(v any) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}

// deref turns a nil pointer into an untyped nil so FormatValue renders it
// the same way as a missing cell.
func deref(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
