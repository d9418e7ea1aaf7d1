package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ArtifactName builds a collision-free download name for an export
// artifact, e.g. "attendance_20260824_150405_1a2b3c4d.xlsx".
func ArtifactName(kind, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.%s", kind, now.UTC().Format("20060102_150405"), uuid.NewString()[:8], ext)
}
