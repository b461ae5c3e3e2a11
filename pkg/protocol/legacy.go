package protocol

import "fmt"

// LegacyChip is the flat chip shape consumed by components that predate
// the typed envelope. ReplyText and FollowUpID carry enough context that
// tapping the chip can be replayed as a plain user text message.
type LegacyChip struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	ReplyText  string `json:"replyText"`
	FollowUpID string `json:"followUpId,omitempty"`
}

// LegacyCard is the flat card shape for pre-protocol components.
type LegacyCard struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Lines    []string `json:"lines,omitempty"`
}

// LegacyMessage is the flattened rendering of a normalized envelope.
type LegacyMessage struct {
	Text  string       `json:"text"`
	Cards []LegacyCard `json:"cards"`
	Chips []LegacyChip `json:"chips"`
}

// ToLegacy flattens a normalized ChatResponse into the older card/chip
// shape. Quick replies and follow-up options collapse into a single chip
// list; the consumer does not need to know the distinction.
func ToLegacy(resp *ChatResponse) *LegacyMessage {
	if resp == nil {
		return nil
	}
	msg := &LegacyMessage{
		Text:  resp.AssistantText,
		Cards: make([]LegacyCard, 0, len(resp.Cards)),
		Chips: make([]LegacyChip, 0, len(resp.SuggestedQuickReplies)),
	}

	for _, c := range resp.Cards {
		lc := LegacyCard{
			ID:       c.ID,
			Type:     c.Type,
			Title:    c.Title,
			Subtitle: c.Subtitle,
		}
		for _, sec := range c.Sections {
			if sec.Body != "" {
				lc.Lines = append(lc.Lines, sec.Body)
			}
			lc.Lines = append(lc.Lines, sec.Items...)
		}
		msg.Cards = append(msg.Cards, lc)
	}

	for _, q := range resp.FollowUpQuestions {
		for _, o := range q.Options {
			reply := o.Value
			if reply == "" {
				reply = o.Label
			}
			msg.Chips = append(msg.Chips, LegacyChip{
				ID:         o.ID,
				Label:      o.Label,
				ReplyText:  reply,
				FollowUpID: q.ID,
			})
		}
	}
	for i, r := range resp.SuggestedQuickReplies {
		msg.Chips = append(msg.Chips, LegacyChip{
			ID:        quickReplyID(i),
			Label:     r,
			ReplyText: r,
		})
	}

	return msg
}

func quickReplyID(i int) string {
	return fmt.Sprintf("quick_reply_%d", i)
}
