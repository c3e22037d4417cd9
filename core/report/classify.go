package report

import (
	"regexp"
	"strings"
)

// Full college names, in the fixed bucket order charts and summary
// statistics iterate in. UnknownCollege always comes last.
const (
	CollegeArtsHumanities    = "College of Arts and Humanities"
	CollegeMedicalBiological = "College of Medical and Biological Science"
	CollegeComputerStudies   = "College of Computer Studies"
	CollegeAccountingBiz     = "College of Accounting and Business Education"
	CollegeEngineeringArch   = "College of Engineering and Architecture"
	CollegeHumanEnvSciences  = "College of Human Environmental Sciences and Food Studies"
	CollegeMusic             = "College of Music"
	CollegeNursing           = "College of Nursing"
	CollegePharmacyChem      = "College of Pharmacy and Chemistry"
	CollegeTeacherEducation  = "College of Teacher Education"
	UnknownCollege           = "Unknown College"
)

var AllColleges = []string{
	CollegeArtsHumanities,
	CollegeMedicalBiological,
	CollegeComputerStudies,
	CollegeAccountingBiz,
	CollegeEngineeringArch,
	CollegeHumanEnvSciences,
	CollegeMusic,
	CollegeNursing,
	CollegePharmacyChem,
	CollegeTeacherEducation,
	UnknownCollege,
}

type programCode struct {
	code    string
	college string
}

// program code -> college, ordered so the prefix fallback scan is
// deterministic.
var programCodes = []programCode{
	{"BSA", CollegeAccountingBiz},
	{"BSMA", CollegeAccountingBiz},
	{"BSAIS", CollegeAccountingBiz},
	{"BSBA", CollegeAccountingBiz},
	{"BSREM", CollegeAccountingBiz},

	{"AB", CollegeArtsHumanities},
	{"ABCOM", CollegeArtsHumanities},
	{"ABELS", CollegeArtsHumanities},
	{"ABPhilo", CollegeArtsHumanities},
	{"ABPsych", CollegeArtsHumanities},

	{"BSCS", CollegeComputerStudies},
	{"BSIS", CollegeComputerStudies},
	{"BSIT", CollegeComputerStudies},

	{"BSArch", CollegeEngineeringArch},
	{"BSCE", CollegeEngineeringArch},
	{"BSCpE", CollegeEngineeringArch},
	{"BSECE", CollegeEngineeringArch},

	{"BSND", CollegeHumanEnvSciences},
	{"BSHRM", CollegeHumanEnvSciences},
	{"BSTM", CollegeHumanEnvSciences},

	{"BSBio", CollegeMedicalBiological},
	{"BSMLS", CollegeMedicalBiological},

	{"BM", CollegeMusic},

	{"BSN", CollegeNursing},

	{"BSP", CollegePharmacyChem},
	{"BSChem", CollegePharmacyChem},

	{"BECE", CollegeTeacherEducation},
	{"BEEd", CollegeTeacherEducation},
	{"BSEd", CollegeTeacherEducation},
	{"BSNE", CollegeTeacherEducation},
	{"BPE", CollegeTeacherEducation},
}

// substring heuristics applied when no program code matches, in
// priority order.
var collegeHints = []struct {
	hints   []string
	college string
}{
	{[]string{"BA", "Acct", "Fin", "Mgt", "HRM"}, CollegeAccountingBiz},
	{[]string{"Arch", "CE", "CpE", "ECE"}, CollegeEngineeringArch},
	{[]string{"Ed", "Edu", "Teach"}, CollegeTeacherEducation},
	{[]string{"CS", "IS", "IT"}, CollegeComputerStudies},
	{[]string{"Nurs"}, CollegeNursing},
	{[]string{"Pharm", "Chem"}, CollegePharmacyChem},
	{[]string{"Bio", "MLS", "Lab"}, CollegeMedicalBiological},
	{[]string{"ND", "HRM", "TM"}, CollegeHumanEnvSciences},
	{[]string{"AB", "Arts", "Com", "Psych", "Phil"}, CollegeArtsHumanities},
	{[]string{"Mus", "BM"}, CollegeMusic},
}

// CollegeFromCourse classifies a free-text course/year/section string
// into one of the eleven college buckets. It is total: any input maps
// somewhere, with UnknownCollege as the catch-all.
func CollegeFromCourse(courseYearSection string) string {
	code := courseYearSection
	if i := strings.IndexAny(code, " -"); i >= 0 {
		code = code[:i]
	}

	for _, pc := range programCodes {
		if pc.code == code {
			return pc.college
		}
	}
	for _, pc := range programCodes {
		if strings.HasPrefix(code, pc.code) {
			return pc.college
		}
	}
	for _, h := range collegeHints {
		for _, hint := range h.hints {
			if strings.Contains(code, hint) {
				return h.college
			}
		}
	}
	return UnknownCollege
}

// CollegeAbbr shortens a full college name for chart labels and
// summary display. UnknownCollege stays as is.
func CollegeAbbr(name string) string {
	switch name {
	case CollegeArtsHumanities:
		return "CAH"
	case CollegeMedicalBiological:
		return "CMBS"
	case CollegeComputerStudies:
		return "CCS"
	case CollegeAccountingBiz:
		return "CABE"
	case CollegeEngineeringArch:
		return "CEA"
	case CollegeHumanEnvSciences:
		return "CHESFS"
	case CollegeMusic:
		return "CM"
	case CollegeNursing:
		return "CN"
	case CollegePharmacyChem:
		return "CPC"
	case CollegeTeacherEducation:
		return "CTE"
	}
	return name
}

var collegeTags = map[string]string{
	"cah":    CollegeArtsHumanities,
	"cmbs":   CollegeMedicalBiological,
	"ccs":    CollegeComputerStudies,
	"cabe":   CollegeAccountingBiz,
	"cea":    CollegeEngineeringArch,
	"chesfs": CollegeHumanEnvSciences,
	"cm":     CollegeMusic,
	"cn":     CollegeNursing,
	"cpc":    CollegePharmacyChem,
	"cte":    CollegeTeacherEducation,
}

// CollegeForTag resolves a short filter tag ("ccs", "cn", ...) to the
// full college name. Unknown tags resolve to "".
func CollegeForTag(tag string) string {
	return collegeTags[strings.ToLower(tag)]
}

// The year digit is the first digit followed by digits then a letter,
// eg. the "2" of "BSCS 2A".
var yearRx = regexp.MustCompile(`(\d)\d*[A-Za-z]`)

// YearLevel extracts the year label from a course/year/section string.
func YearLevel(courseYearSection string) string {
	m := yearRx.FindStringSubmatch(courseYearSection)
	if m == nil {
		return "Other"
	}
	switch m[1] {
	case "1":
		return "1st Year"
	case "2":
		return "2nd Year"
	case "3":
		return "3rd Year"
	case "4":
		return "4th Year"
	}
	return "Other"
}
