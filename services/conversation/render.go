package conversation

import (
	"medibot/models"
)

// Controls exposed on every record of an expanded list.
const (
	ControlEdit   = "edit"
	ControlCancel = "cancel"
)

// RecordView is one appointment inside an expanded list.
type RecordView struct {
	models.Appointment
	Controls []string `json:"controls"`
}

// MessageView is a transcript message as rendered. Expanded view messages carry the
// records the cache holds at render time, not the ones it held when they were
// activated.
type MessageView struct {
	models.Message
	Expanded bool         `json:"expanded,omitempty"`
	Records  []RecordView `json:"records,omitempty"`
}

// Transcript is a full render of the conversation.
type Transcript struct {
	Messages []MessageView `json:"messages"`
	Busy     bool          `json:"busy"`
	Loading  bool          `json:"loading"`
	Error    string        `json:"error,omitempty"`
}

// Render snapshots the transcript with live record lists.
func (o *Orchestrator) Render() Transcript {
	o.mu.RLock()
	msgs := make([]models.Message, len(o.messages))
	for i, m := range o.messages {
		msgs[i] = m.Clone()
	}
	expanded := make(map[string]bool, len(o.expanded))
	for id := range o.expanded {
		expanded[id] = true
	}
	busy := o.busy
	o.mu.RUnlock()

	var records []RecordView
	if len(expanded) > 0 {
		records = recordViews(o.cache.Records())
	}

	out := Transcript{
		Messages: make([]MessageView, 0, len(msgs)),
		Busy:     busy,
		Loading:  o.cache.IsLoading(),
	}
	if err := o.cache.LastError(); err != nil {
		out.Error = userFacing(err)
	}
	for _, m := range msgs {
		view := MessageView{Message: m}
		if expanded[m.ID] {
			view.Expanded = true
			view.Records = records
		}
		out.Messages = append(out.Messages, view)
	}
	return out
}

// RenderMessage renders a single message.
func (o *Orchestrator) RenderMessage(id string) (MessageView, error) {
	o.mu.RLock()
	idx := o.indexLocked(id)
	if idx < 0 {
		o.mu.RUnlock()
		return MessageView{}, ErrMessageNotFound
	}
	view := MessageView{Message: o.messages[idx].Clone(), Expanded: o.expanded[id]}
	o.mu.RUnlock()

	if view.Expanded {
		view.Records = recordViews(o.cache.Records())
	}
	return view, nil
}

func recordViews(list []models.Appointment) []RecordView {
	out := make([]RecordView, 0, len(list))
	for _, a := range list {
		out = append(out, RecordView{Appointment: a, Controls: []string{ControlEdit, ControlCancel}})
	}
	return out
}
