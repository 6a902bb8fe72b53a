package domain

// Session es la identidad autenticada del usuario y sus tokens.
// IsAuthenticated es verdadero si y solo si hay access token.
type Session struct {
	User            *User  `json:"user"`
	AccessToken     string `json:"accessToken"`
	RefreshToken    string `json:"refreshToken"`
	IsAuthenticated bool   `json:"-"`
}

// Credentials es el triple que se persiste en almacenamiento durable.
type Credentials struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SessionFrom construye la sesion en memoria a partir del registro durable.
func SessionFrom(c Credentials) Session {
	return Session{
		User:            c.User,
		AccessToken:     c.AccessToken,
		RefreshToken:    c.RefreshToken,
		IsAuthenticated: c.AccessToken != "",
	}
}

func (s Session) Credentials() Credentials {
	return Credentials{
		User:         s.User,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}
