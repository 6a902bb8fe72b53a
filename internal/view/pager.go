package view

import "allowance-client/internal/domain"

// Control es un boton de navegacion.
type Control struct {
	Label   string
	Enabled bool
}

// String muestra [Label] si esta habilitado y (Label) si no.
func (c Control) String() string {
	if c.Enabled {
		return "[" + c.Label + "]"
	}
	return "(" + c.Label + ")"
}

type PagerState struct {
	Previous Control
	Next     Control
	Current  int
	Total    int
	// Visible es falso cuando hay una sola pagina.
	Visible bool
}

// Pager deriva los controles de la pagina que informa el servidor.
func Pager(page domain.HistoryPage, requested int) PagerState {
	current := page.CurrentPage
	if current < 1 {
		current = requested
	}
	if current < 1 {
		current = 1
	}
	total := page.TotalPages
	if total < 1 {
		total = 1
	}
	return PagerState{
		Previous: Control{Label: "Previous", Enabled: page.HasPrevious},
		Next:     Control{Label: "Next", Enabled: page.HasNext},
		Current:  current,
		Total:    total,
		Visible:  total > 1,
	}
}

// Move devuelve la pagina destino, o la actual si el control esta deshabilitado.
func (p PagerState) Move(forward bool) int {
	switch {
	case forward && p.Next.Enabled:
		return p.Current + 1
	case !forward && p.Previous.Enabled:
		return p.Current - 1
	default:
		return p.Current
	}
}
