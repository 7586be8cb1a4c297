// internal/models/profile.go
package models

import (
	"net/url"
	"strings"
	"unicode/utf8"

	apperrors "unipath-planner/internal/common/errors"
	"unipath-planner/internal/common/validation"
)

// Grade is the student's academic year.
type Grade string

const (
	GradeFreshman  Grade = "大一"
	GradeSophomore Grade = "大二"
	GradeJunior    Grade = "大三"
	GradeSenior    Grade = "大四"
)

// Grades lists the accepted grades in display order.
var Grades = []Grade{GradeFreshman, GradeSophomore, GradeJunior, GradeSenior}

func (g Grade) Valid() bool {
	for _, known := range Grades {
		if g == known {
			return true
		}
	}
	return false
}

// Profile is one prospective student's submission.
type Profile struct {
	Name             string `json:"name"`
	Contact          string `json:"contact"`
	University       string `json:"university"`
	Major            string `json:"major"`
	Grade            Grade  `json:"grade"`
	Rank             string `json:"rank"`         // rank or GPA, free text
	EnglishLevel     string `json:"englishLevel"` // CET-4/6, IELTS ...
	Awards           string `json:"awards,omitempty"`
	Research         string `json:"research,omitempty"`
	TargetDirection  string `json:"targetDirection"`
	Confusion        string `json:"confusion"`
	IsNewEngineering bool   `json:"isNewEngineering"`
}

const maxFieldLength = 2000

func maxLen() *int {
	n := maxFieldLength
	return &n
}

// ProfileSchema is the accepted shape of a profile arriving as JSON.
func ProfileSchema() validation.JSONSchema {
	text := func(desc string) validation.Property {
		return validation.Property{Type: "string", Description: desc, MaxLength: maxLen()}
	}
	grades := make([]string, len(Grades))
	for i, g := range Grades {
		grades[i] = string(g)
	}

	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"name":             text("student name"),
			"contact":          text("phone or WeChat"),
			"university":       text("current university"),
			"major":            text("current major"),
			"grade":            {Type: "string", Enum: grades},
			"rank":             text("rank or GPA"),
			"englishLevel":     text("English proficiency"),
			"awards":           text("competition awards"),
			"research":         text("research experience"),
			"targetDirection":  text("target direction"),
			"confusion":        text("the question the student most wants answered"),
			"isNewEngineering": {Type: "boolean"},
		},
		Required:             []string{"name", "contact", "university", "major", "grade", "rank", "englishLevel", "targetDirection", "confusion"},
		AdditionalProperties: false,
	}
}

var profileValidator = validation.MustCompile(ProfileSchema())

// ValidateRaw checks a decoded JSON object against ProfileSchema.
func ValidateRaw(raw map[string]interface{}) error {
	result := profileValidator.Validate(raw)
	if !result.Valid {
		return apperrors.NewInvalidProfileError(result.Fields()).
			WithMetadata("errors", result.GetErrorMessages())
	}
	return nil
}

// Validate checks required fields, field lengths and the grade. awards and
// research may be blank.
func (p Profile) Validate() error {
	var missing []string
	fields := []struct {
		field    string
		value    string
		optional bool
	}{
		{"name", p.Name, false},
		{"contact", p.Contact, false},
		{"university", p.University, false},
		{"major", p.Major, false},
		{"rank", p.Rank, false},
		{"englishLevel", p.EnglishLevel, false},
		{"awards", p.Awards, true},
		{"research", p.Research, true},
		{"targetDirection", p.TargetDirection, false},
		{"confusion", p.Confusion, false},
	}
	for _, f := range fields {
		switch {
		case !f.optional && strings.TrimSpace(f.value) == "":
			missing = append(missing, f.field)
		case utf8.RuneCountInString(f.value) > maxFieldLength:
			missing = append(missing, f.field)
		}
	}
	if !p.Grade.Valid() {
		missing = append(missing, "grade")
	}

	if len(missing) > 0 {
		return apperrors.NewInvalidProfileError(missing)
	}
	return nil
}

// ProfileFromForm maps an HTML form submission onto a Profile.
func ProfileFromForm(form url.Values) Profile {
	return Profile{
		Name:             strings.TrimSpace(form.Get("name")),
		Contact:          strings.TrimSpace(form.Get("contact")),
		University:       strings.TrimSpace(form.Get("university")),
		Major:            strings.TrimSpace(form.Get("major")),
		Grade:            Grade(strings.TrimSpace(form.Get("grade"))),
		Rank:             strings.TrimSpace(form.Get("rank")),
		EnglishLevel:     strings.TrimSpace(form.Get("englishLevel")),
		Awards:           strings.TrimSpace(form.Get("awards")),
		Research:         strings.TrimSpace(form.Get("research")),
		TargetDirection:  strings.TrimSpace(form.Get("targetDirection")),
		Confusion:        strings.TrimSpace(form.Get("confusion")),
		IsNewEngineering: formBool(form.Get("isNewEngineering")),
	}
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "是", "yes":
		return true
	}
	return false
}
