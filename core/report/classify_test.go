package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollegeFromCourse(t *testing.T) {
	t.Run("every program code maps to its college", func(t *testing.T) {
		for _, pc := range programCodes {
			assert.Equal(t, pc.college, CollegeFromCourse(pc.code+" 2A"), "code %s", pc.code)
		}
	})

	tests := []struct {
		course string
		want   string
	}{
		{"BSCS 2A", CollegeComputerStudies},
		{"BSN-3B", CollegeNursing},
		{"BSIT 10B", CollegeComputerStudies},
		{"BSCpE 1A", CollegeEngineeringArch},
		{"ABPsych 4C", CollegeArtsHumanities},
		// prefix fallback
		{"BSA2015 3A", CollegeAccountingBiz},
		// substring heuristics
		{"MgtSci 2A", CollegeAccountingBiz},
		{"TeachCert 1", CollegeTeacherEducation},
		{"Nursing 2B", CollegeNursing},
		{"PharmD 4A", CollegePharmacyChem},
		{"MusTheory 1A", CollegeMusic},
		// total over junk
		{"XYZ 9", UnknownCollege},
		{"", UnknownCollege},
		{"1234", UnknownCollege},
	}
	for _, tt := range tests {
		t.Run(tt.course, func(t *testing.T) {
			assert.Equal(t, tt.want, CollegeFromCourse(tt.course))
		})
	}
}

func TestCollegeAbbr(t *testing.T) {
	assert.Equal(t, "CCS", CollegeAbbr(CollegeComputerStudies))
	assert.Equal(t, "CHESFS", CollegeAbbr(CollegeHumanEnvSciences))
	assert.Equal(t, UnknownCollege, CollegeAbbr(UnknownCollege))
}

func TestCollegeForTag(t *testing.T) {
	assert.Equal(t, CollegeComputerStudies, CollegeForTag("ccs"))
	assert.Equal(t, CollegeNursing, CollegeForTag("CN"))
	assert.Equal(t, "", CollegeForTag("nope"))
}

func TestYearLevel(t *testing.T) {
	tests := []struct {
		course string
		want   string
	}{
		{"BSCS 1A", "1st Year"},
		{"BSN 2B", "2nd Year"},
		{"BSIT-3C", "3rd Year"},
		{"AB 4D", "4th Year"},
		{"BSIT 10B", "1st Year"},
		{"BSCS 5E", "Other"},
		{"BSCS", "Other"},
		{"", "Other"},
	}
	for _, tt := range tests {
		t.Run(tt.course, func(t *testing.T) {
			assert.Equal(t, tt.want, YearLevel(tt.course))
		})
	}
}
