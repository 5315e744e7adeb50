package gemini

import (
	"strings"

	"github.com/pilegoblin/gembot/internal/history"
	"google.golang.org/genai"
)

// ToContents turns history records into chat contents, one text part each.
func ToContents(records []history.Record) []*genai.Content {
	if len(records) == 0 {
		return nil
	}
	contents := make([]*genai.Content, 0, len(records))
	for _, r := range records {
		role := genai.RoleUser
		if r.Role == history.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(r.Text, role))
	}
	return contents
}

// ToRecords flattens chat contents into records. Text parts of a content are
// joined; thoughts and contents without text are dropped.
func ToRecords(contents []*genai.Content) []history.Record {
	records := make([]history.Record, 0, len(contents))
	for _, c := range contents {
		if c == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Parts {
			if p == nil || p.Thought || p.Text == "" {
				continue
			}
			sb.WriteString(p.Text)
		}
		if sb.Len() == 0 {
			continue
		}

		role := history.RoleUser
		if c.Role == string(genai.RoleModel) {
			role = history.RoleModel
		}
		records = append(records, history.Record{Role: role, Text: sb.String()})
	}
	return records
}
