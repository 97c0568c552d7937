package warehouse

import (
	"studentdw/internal/transformer"
	"studentdw/internal/transformer/builtin"
	"studentdw/pkg/records"
)

// CategoricalColumns are filled with their mode. dropout_risk is a label,
// never a number, so it belongs here.
var CategoricalColumns = []string{
	"gender", "major", "diet_quality", "exercise_frequency",
	"parental_education_level", "internet_quality",
	"extracurricular_participation", "semester", "study_environment",
	"access_to_tutoring", "family_income_range", "parental_support_level",
	"motivation_level", "learning_style", "social_activity", "dropout_risk",
}

// NumericColumns are coerced to float64 and filled with their median.
var NumericColumns = []string{
	"age", "study_hours_per_day", "social_media_hours", "netflix_hours",
	"attendance_percentage", "sleep_hours", "mental_health_rating",
	"previous_gpa", "stress_level", "screen_time", "exam_anxiety_score",
	"time_management_score", "exam_score",
}

// DropoutRiskLevels is the expected vocabulary of dropout_risk.
var DropoutRiskLevels = []string{"Low", "Medium", "High"}

// RequiredColumns lists every input column the cleaning chain reads.
func RequiredColumns() []string {
	out := []string{"student_id", "part_time_job"}
	out = append(out, CategoricalColumns...)
	return append(out, NumericColumns...)
}

// CleaningChain returns the ordered cleaning steps. rep collects the
// imputation and vocabulary findings.
func CleaningChain(rep *Report) transformer.Chain {
	return transformer.Chain{
		builtin.RequireColumns{Columns: RequiredColumns()},
		builtin.DeDup{Keys: []string{"student_id"}, Policy: "keep-first"},
		builtin.ImputeMode{
			Columns: CategoricalColumns,
			Observe: func(i builtin.Imputation) { rep.Imputations = append(rep.Imputations, i) },
		},
		builtin.ImputeMedian{
			Columns: NumericColumns,
			Observe: func(i builtin.Imputation) { rep.Imputations = append(rep.Imputations, i) },
		},
		builtin.NormalizeGender{Column: "gender"},
		builtin.MapValues{Column: "part_time_job", Mapping: map[string]string{"0": "No", "1": "Yes"}},
		builtin.Enum{
			Column:  "dropout_risk",
			Allowed: DropoutRiskLevels,
			Reject:  func(v builtin.Violation) { rep.Violations = append(rep.Violations, v) },
		},
	}
}

// Clean runs the cleaning chain over staging without modifying it.
func Clean(staging *records.Table) (*records.Table, Report, error) {
	rep := Report{StagingRows: staging.Len()}
	out, err := CleaningChain(&rep).Apply(staging)
	if err != nil {
		return nil, Report{}, err
	}
	rep.DistinctRows = out.Len()
	return out, rep, nil
}

// Build cleans staging and derives the three warehouse tables.
func Build(staging *records.Table) (*Model, error) {
	clean, rep, err := Clean(staging)
	if err != nil {
		return nil, err
	}
	students := BuildDimStudent(clean)
	times := BuildDimTime(clean)
	return &Model{
		Students: students,
		Times:    times,
		Facts:    BuildFacts(clean, students, times),
		Report:   rep,
	}, nil
}
