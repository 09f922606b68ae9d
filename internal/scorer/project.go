// Package scorer maps spectral indices and a project type onto a
// development-suitability score with recommendations and warnings.
package scorer

import "github.com/rotisserie/eris"

// ProjectType is the declared development intent for the analyzed site.
type ProjectType string

const (
	Residential  ProjectType = "residential"
	Commercial   ProjectType = "commercial"
	Industrial   ProjectType = "industrial"
	Mixed        ProjectType = "mixed"
	Agricultural ProjectType = "agricultural"
)

// ParseProjectType validates a raw project type string.
func ParseProjectType(s string) (ProjectType, error) {
	switch ProjectType(s) {
	case Residential, Commercial, Industrial, Mixed, Agricultural:
		return ProjectType(s), nil
	default:
		return "", eris.Errorf("scorer: unknown project type %q (want residential, commercial, industrial, mixed, or agricultural)", s)
	}
}
