package customizer

import (
	"path/filepath"
	"strings"
	"unicode"

	"job-applier/internal/models"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldAccents turns "Société Générale" into "Societe Generale".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

var (
	companyReplacer = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")
	titleReplacer   = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")
)

// safeSegment keeps a segment inside its parent directory: empty, "." and
// ".." become "_", and a leading dot is replaced so nothing lands hidden.
func safeSegment(s string) string {
	switch s {
	case "", ".", "..":
		return "_"
	}
	if strings.HasPrefix(s, ".") {
		return "_" + s[1:]
	}
	return s
}

// CompanySegment is the directory name for a company.
func CompanySegment(company string) string {
	return safeSegment(strings.ToLower(companyReplacer.Replace(foldAccents(company))))
}

// TitleSegment is the file name stem for a job title.
func TitleSegment(title string) string {
	return safeSegment(strings.ToLower(titleReplacer.Replace(foldAccents(title))))
}

// OutputPath is <outputDir>/<company>/<title>_<semantic type>.md. It is a
// pure function; directory creation happens in Prepare.
func OutputPath(outputDir, company, title, templateKey string) string {
	name := TitleSegment(title) + "_" + models.SemanticType(templateKey) + ".md"
	return filepath.Join(outputDir, CompanySegment(company), name)
}
