package artifact

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
)

var (
	reCueIndex = regexp.MustCompile(`^\d+$`)
	reCueTime  = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}`)
)

// ExportTranscript renders raw subtitle content as a cleaned dialogue docx
// at <outputDir>/<baseName>/<baseName>-transcript.docx. Cue numbers and
// timestamps are stripped; repeated lines (rolling captions) appear once.
func ExportTranscript(outputDir, baseName, srt string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	titleRun(doc.AddParagraph(""), baseName, 16)
	doc.AddParagraph("")

	seen := make(map[string]bool)
	for _, line := range strings.Split(srt, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || reCueIndex.MatchString(trimmed) || reCueTime.MatchString(trimmed) {
			continue
		}
		if seen[trimmed] {
			continue
		}
		seen[trimmed] = true

		p := doc.AddParagraph("")
		p.AddText(trimmed).Font(docxFont).Size(docxFontSize).Color("000000")
	}

	dir := filepath.Join(outputDir, baseName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return doc.SaveTo(filepath.Join(dir, baseName+"-transcript.docx"))
}
