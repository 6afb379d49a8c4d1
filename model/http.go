package model

type RenderRequestBody struct {
	Song       Song            `json:"song"`
	Settings   *EffectSettings `json:"settings,omitempty"`
	Instrument string          `json:"instrument,omitempty"`
}

type WheelResponse struct {
	Position   int    `json:"position"`
	Major      string `json:"major"`
	Minor      string `json:"minor"`
	Diminished string `json:"diminished"`
}

type MembershipEntry struct {
	Numeral  string `json:"numeral"`
	Position int    `json:"position"`
	Ring     string `json:"ring"`
	Symbol   string `json:"symbol"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
