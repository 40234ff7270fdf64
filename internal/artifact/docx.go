package artifact

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	docxFont     = "Times New Roman"
	docxFontSize = 13
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[-*]\s+(.+)$`)
	reOrdered = regexp.MustCompile(`^\d+\.\s+(.+)$`)
)

// renderDocx converts the markdown the completion models produce into a
// styled docx document at outputPath.
func renderDocx(title, markdown, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	titleRun(doc.AddParagraph(""), title, 16)

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			titleRun(doc.AddParagraph(""), m[2], headingSize(len(m[1])))
			continue
		}
		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			richText(doc.AddParagraph(""), "• "+m[1])
			continue
		}
		if m := reOrdered.FindStringSubmatch(trimmed); m != nil {
			richText(doc.AddParagraph(""), trimmed)
			continue
		}

		richText(doc.AddParagraph(""), trimmed)
	}

	return doc.SaveTo(outputPath)
}

func headingSize(level int) uint64 {
	if level >= 1 && level <= 3 {
		return uint64(17 - level)
	}
	return docxFontSize
}

func titleRun(p *docx.Paragraph, text string, size uint64) {
	p.AddText(stripInlineMarkup(text)).Font(docxFont).Size(size).Color("000000").Bold(true)
}

// richText renders a line, emitting **bold** spans as bold runs.
func richText(p *docx.Paragraph, text string) {
	plain := reBold.Split(text, -1)
	bold := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range plain {
		if part != "" {
			p.AddText(stripInlineMarkup(part)).Font(docxFont).Size(docxFontSize).Color("000000")
		}
		if i < len(bold) {
			p.AddText(stripInlineMarkup(bold[i][1])).Font(docxFont).Size(docxFontSize).Color("000000").Bold(true)
		}
	}
}

func stripInlineMarkup(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
