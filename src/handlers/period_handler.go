package handlers

import (
	"net/http"
	"spendtracker/src/period"
	"spendtracker/src/util"

	"cloud.google.com/go/civil"
)

// PeriodView describes a resolved period selection.
type PeriodView struct {
	Selection period.Selection `json:"selection"`
	Range     period.DateRange `json:"range"`
	Label     string           `json:"label"`
	Query     string           `json:"query"`
	Today     civil.Date       `json:"today"`
}

func describePeriod(sel period.Selection, today civil.Date, settings Settings) PeriodView {
	r := period.Resolve(sel, today, settings.WeekStart)
	return PeriodView{
		Selection: sel,
		Range:     r,
		Label:     period.Label(sel, today, settings.WeekStart),
		Query:     r.QueryValues().Encode(),
		Today:     today,
	}
}

// GetPeriod resolves mode, offset, from_date and to_date against today.
func GetPeriod(settings Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel, err := selectionParams(r, period.ModeAll)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		util.WriteJSON(w, http.StatusOK, describePeriod(sel, settings.today(), settings), "")
	}
}

// TransitionPeriod applies one transition to the posted selection. A
// rejected transition returns 400 and the selection is not changed.
func TransitionPeriod(settings Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Selection  period.Selection  `json:"selection"`
			Transition period.Transition `json:"transition"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		ctrl := period.ControllerFrom(req.Selection, settings.WeekStart)
		if err := ctrl.Apply(req.Transition); err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		util.WriteJSON(w, http.StatusOK, describePeriod(ctrl.Selection(), settings.today(), settings), "")
	}
}
