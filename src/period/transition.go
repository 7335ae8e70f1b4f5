package period

import (
	"encoding/json"
	"fmt"

	"cloud.google.com/go/civil"
)

// Action names accepted by Apply.
const (
	ActionSetMode  = "set_mode"
	ActionNavigate = "navigate"
	ActionSetRange = "set_range"
)

// Transition is one requested state change, as received from a client.
type Transition struct {
	Action    string `json:"action"`
	Mode      string `json:"mode,omitempty"`
	Direction int    `json:"direction,omitempty"`
	From      string `json:"from_date,omitempty"`
	To        string `json:"to_date,omitempty"`
}

// Apply runs t against the controller. The controller is left untouched when
// an error is returned.
func (c *Controller) Apply(t Transition) error {
	switch t.Action {
	case ActionSetMode:
		return c.SetMode(Mode(t.Mode))
	case ActionNavigate:
		return c.Navigate(t.Direction)
	case ActionSetRange:
		r, err := ParseDateRange(t.From, t.To)
		if err != nil {
			return err
		}
		return c.SetCustomRange(r.From, r.To)
	}
	return fmt.Errorf("unknown action %q", t.Action)
}

type selectionJSON struct {
	Mode   Mode        `json:"mode"`
	Offset int         `json:"offset"`
	From   *civil.Date `json:"from_date"`
	To     *civil.Date `json:"to_date"`
}

func (s Selection) MarshalJSON() ([]byte, error) {
	out := selectionJSON{Mode: s.Mode, Offset: s.Offset}
	if !s.From.IsZero() {
		out.From = &s.From
	}
	if !s.To.IsZero() {
		out.To = &s.To
	}
	return json.Marshal(out)
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	var in struct {
		Mode   string `json:"mode"`
		Offset int    `json:"offset"`
		From   string `json:"from_date"`
		To     string `json:"to_date"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	m, err := ParseMode(in.Mode)
	if err != nil {
		return err
	}
	r, err := ParseDateRange(in.From, in.To)
	if err != nil {
		return err
	}
	*s = Selection{Mode: m, Offset: in.Offset, From: r.From, To: r.To}.normalized()
	return nil
}
