package store

import (
	"context"

	"go.uber.org/zap"

	"allowance-client/internal/api"
	"allowance-client/internal/domain"
)

// ErrNotAuthenticated se devuelve antes de llamar a endpoints protegidos.
const ErrNotAuthenticated = api.GuardError("Please log in to continue.")

// Login autentica y reemplaza la sesion completa. Si falla la persistencia la
// sesion en memoria queda activa y se devuelve el error.
func (s *Store) Login(ctx context.Context, in domain.LoginInput) (domain.Session, error) {
	resp, err := s.auth.Login(ctx, in)
	if err != nil {
		return domain.Session{}, err
	}
	return s.adopt(ctx, resp)
}

// Register valida la confirmacion en el cliente antes de llamar al backend.
func (s *Store) Register(ctx context.Context, in domain.RegisterInput) (domain.Session, error) {
	resp, err := s.auth.Register(ctx, in)
	if err != nil {
		return domain.Session{}, err
	}
	return s.adopt(ctx, resp)
}

// adopt instala las credenciales nuevas y descarta todo lo cacheado con la
// identidad anterior.
func (s *Store) adopt(ctx context.Context, resp domain.AuthResponse) (domain.Session, error) {
	user := resp.User
	err := s.session.SetCredentials(ctx, domain.Credentials{
		User:         &user,
		AccessToken:  resp.Access,
		RefreshToken: resp.Refresh,
	})
	s.cache.Reset()
	if err != nil {
		return s.session.Session(), err
	}
	s.logger.Info("session started", zap.String("username", user.Username))
	return s.session.Session(), nil
}

// Logout limpia la sesion y el cache. La sesion queda cerrada aunque falle el
// borrado del registro durable.
func (s *Store) Logout(ctx context.Context) error {
	err := s.session.Logout(ctx)
	s.cache.Reset()
	return err
}

func (s *Store) RequireAuth() error {
	if !s.session.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

func (s *Store) Rates(ctx context.Context) ([]domain.Rate, error) {
	return s.rates.List(ctx)
}

func (s *Store) Ads(ctx context.Context) ([]domain.Advertisement, error) {
	return s.ads.List(ctx)
}

func (s *Store) Calculate(ctx context.Context, in domain.TransferInput) (domain.Calculation, error) {
	if err := s.RequireAuth(); err != nil {
		return domain.Calculation{}, err
	}
	return s.transactions.Calculate(ctx, in)
}

func (s *Store) Send(ctx context.Context, in domain.TransferInput) (domain.Transaction, error) {
	if err := s.RequireAuth(); err != nil {
		return domain.Transaction{}, err
	}
	tx, err := s.transactions.Send(ctx, in)
	if err != nil {
		return domain.Transaction{}, err
	}
	s.logger.Info("transfer sent", zap.String("transaction_id", tx.Ref()), zap.String("status", tx.Status))
	return tx, nil
}

func (s *Store) History(ctx context.Context, page int) (domain.HistoryPage, error) {
	if err := s.RequireAuth(); err != nil {
		return domain.HistoryPage{}, err
	}
	return s.transactions.History(ctx, page)
}

func (s *Store) Detail(ctx context.Context, id string) (domain.Transaction, error) {
	if err := s.RequireAuth(); err != nil {
		return domain.Transaction{}, err
	}
	return s.transactions.Detail(ctx, id)
}
