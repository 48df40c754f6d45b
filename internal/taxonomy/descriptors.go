package taxonomy

import (
	"fmt"
	"strings"

	"github.com/sashasgithome/finance-bot-test/internal/ledger"
)

// BuildDescriptors renders, per category identifier, the unique
// subheaders, notes and detail texts found in the customer's ledger. The
// result is the raw material the generator prompt summarizes into themes.
func BuildDescriptors(led *ledger.Ledger) string {
	var blocks []string
	for _, id := range led.CategoryIDs() {
		var subheaders, notes, details []string
		seenSub := make(map[string]bool)
		seenNotes := make(map[string]bool)
		seenDetails := make(map[string]bool)

		for _, row := range led.Rows {
			if row.CategoryID != id {
				continue
			}
			if !seenSub[row.Subheader] {
				seenSub[row.Subheader] = true
				subheaders = append(subheaders, row.Subheader)
			}
			if !seenNotes[row.Notes] {
				seenNotes[row.Notes] = true
				notes = append(notes, row.Notes)
			}
			if !seenDetails[row.DetailInformation] {
				seenDetails[row.DetailInformation] = true
				details = append(details, row.DetailInformation)
			}
		}

		block := fmt.Sprintf("ID %d:\nSubheaders: [%s]\nNotes: [%s]\nDetails: [%s]",
			id,
			strings.Join(subheaders, ", "),
			strings.Join(notes, ", "),
			strings.Join(details, ", "))
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}
