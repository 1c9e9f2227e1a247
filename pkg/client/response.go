package client

import (
	"encoding/json"
	"fmt"
)

// Upstream retcode sentinels.
const (
	RetSuccess        = 0
	RetAlreadyClaimed = -5003
	RetInvalidCookie  = -100
)

// endpointRetryCodes are retcodes that signal the current endpoint is bad and
// a fallback should be tried.
var endpointRetryCodes = map[int]bool{
	-500001: true,
	-1:      true,
	-10001:  true,
}

// APIResponse is the upstream envelope: retcode, message and an
// operation-specific data object.
type APIResponse struct {
	Retcode int             `json:"retcode"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// OK reports whether the retcode is a non-error outcome. The already-claimed
// sentinel counts as success.
func (r *APIResponse) OK() bool {
	return r.Retcode == RetSuccess || r.Retcode == RetAlreadyClaimed
}

// CheckinInfo is today's check-in state for one game.
type CheckinInfo struct {
	IsSign        bool `json:"is_sign"`
	TotalSignDay  int  `json:"total_sign_day"`
	SignCntMissed int  `json:"sign_cnt_missed"`
}

// Award is one reward entry.
type Award struct {
	Name  string `json:"name"`
	Count int    `json:"cnt"`
}

// signData is the claim response payload.
type signData struct {
	Award Award `json:"award"`
}

// homeData is the monthly reward calendar payload.
type homeData struct {
	Awards []Award `json:"awards"`
}

// DecodeInfo decodes the data object of an info response.
func (r *APIResponse) DecodeInfo() (*CheckinInfo, error) {
	var info CheckinInfo
	if err := json.Unmarshal(r.Data, &info); err != nil {
		return nil, fmt.Errorf("decode check-in info: %w", err)
	}
	return &info, nil
}

// DecodeAward decodes the award object of a claim response.
func (r *APIResponse) DecodeAward() (*Award, error) {
	var data signData
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return nil, fmt.Errorf("decode claim award: %w", err)
	}
	return &data.Award, nil
}

// DecodeAwards decodes the reward calendar of a home response.
func (r *APIResponse) DecodeAwards() ([]Award, error) {
	var data homeData
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return nil, fmt.Errorf("decode reward calendar: %w", err)
	}
	return data.Awards, nil
}
