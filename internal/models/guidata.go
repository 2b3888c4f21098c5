package models

// GuiData is the structured replay model produced by the analyzer. Its
// shape is fixed by the analyzer's output protocol, so it is modeled as an
// explicit record rather than an open map.
type GuiData struct {
	TournamentInfo TournamentInfo `json:"tournamentInfo"`
	Players        []Player       `json:"players"`
	Actions        []Action       `json:"actions"`
	Board          []string       `json:"board"`
	Result         HandResult     `json:"result"`
}

type TournamentInfo struct {
	Name   string `json:"name"`
	Blinds string `json:"blinds"`
	Ante   int    `json:"ante"`
}

type Player struct {
	Seat  int      `json:"seat"`
	Name  string   `json:"name"`
	Stack float64  `json:"stack"`
	Cards []string `json:"cards"`
}

// Action is one entry of the ordered action list. Amount is omitted for
// actions that carry no chips (check, fold).
type Action struct {
	Street string   `json:"street"`
	Player string   `json:"player"`
	Action string   `json:"action"`
	Amount *float64 `json:"amount,omitempty"`
}

type HandResult struct {
	Winner      string  `json:"winner"`
	Pot         float64 `json:"pot"`
	WinningHand string  `json:"winningHand"`
}
