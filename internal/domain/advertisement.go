package domain

import "encoding/json"

type Advertisement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	LinkURL     string `json:"link_url,omitempty"`
	IsActive    bool   `json:"is_active"`
	Order       int    `json:"order"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// UnmarshalJSON acepta "link" como alias de "link_url".
func (a *Advertisement) UnmarshalJSON(data []byte) error {
	type alias Advertisement
	aux := struct {
		*alias
		Link string `json:"link"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if a.LinkURL == "" {
		a.LinkURL = aux.Link
	}
	return nil
}
