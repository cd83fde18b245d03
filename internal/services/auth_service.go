package services

import (
	"context"
	"log"
	"regexp"
	"time"

	"vastra_back_end/internal/cache"
	"vastra_back_end/internal/models"
	"vastra_back_end/internal/utils"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// Clés du registre OTP, scellées par usage : un code signup ne peut pas servir
// à un login et inversement.
const (
	otpPurposeSignup = "signup:"
	otpPurposeLogin  = "login:"
)

// AuthService — orchestrateur des deux protocoles en deux étapes
// (demande de code / vérification de code) pour l'inscription et la connexion.
// Les codes sont à usage unique et vivent 5 minutes dans le registre injecté.
type AuthService struct {
	users  UserStore
	ledger cache.OTPLedger
	sms    SMSDispatcher
}

func NewAuthService(users UserStore, ledger cache.OTPLedger, sms SMSDispatcher) *AuthService {
	return &AuthService{users: users, ledger: ledger, sms: sms}
}

// RequestSignupCode — étape 1 de l'inscription. Le code n'est stocké qu'APRÈS
// l'envoi réussi du SMS : un échec d'envoi ne laisse aucune trace.
func (s *AuthService) RequestSignupCode(ctx context.Context, phone string) error {
	if !phonePattern.MatchString(phone) {
		return &ValidationError{Msg: "le numéro de téléphone doit faire exactement 10 chiffres"}
	}

	existing, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if existing != nil {
		return &ConflictError{Msg: "un compte existe déjà avec ce numéro"}
	}

	code := utils.GenerateOTP()
	if err := s.sms.DispatchCode(ctx, phone, code); err != nil {
		return &DeliveryError{Msg: "envoi du code impossible", Err: err}
	}

	return s.ledger.Set(ctx, otpPurposeSignup+phone, code)
}

// VerifySignupCode — étape 2 : vérifie le code, crée le compte et consomme
// l'entrée. L'existence de l'utilisateur est revérifiée après le match pour
// couvrir la course entre deux vérifications concurrentes.
func (s *AuthService) VerifySignupCode(ctx context.Context, phone, code string) (*models.User, error) {
	if !phonePattern.MatchString(phone) {
		return nil, &ValidationError{Msg: "le numéro de téléphone doit faire exactement 10 chiffres"}
	}

	key := otpPurposeSignup + phone
	stored, ok := s.ledger.Get(ctx, key)
	if !ok {
		return nil, &ExpiredError{Msg: "code expiré ou jamais demandé"}
	}
	if stored != code {
		return nil, &InvalidCodeError{Msg: "code incorrect"}
	}

	existing, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &ConflictError{Msg: "un compte existe déjà avec ce numéro"}
	}

	now := time.Now()
	user := &models.User{
		Phone:     phone,
		Role:      "user",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.ledger.Delete(ctx, key)
	log.Printf("🆕 Compte créé pour %s", phone)
	return user, nil
}

// RequestLoginCode — étape 1 de la connexion.
func (s *AuthService) RequestLoginCode(ctx context.Context, phone string) error {
	if !phonePattern.MatchString(phone) {
		return &ValidationError{Msg: "le numéro de téléphone doit faire exactement 10 chiffres"}
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if user == nil {
		return &NotFoundError{Resource: "utilisateur"}
	}
	if user.IsBlocked {
		return &ForbiddenError{Msg: "compte bloqué"}
	}

	code := utils.GenerateOTP()
	if err := s.sms.DispatchCode(ctx, phone, code); err != nil {
		return &DeliveryError{Msg: "envoi du code impossible", Err: err}
	}

	return s.ledger.Set(ctx, otpPurposeLogin+phone, code)
}

// VerifyLoginCode — étape 2 : l'état du compte est revalidé (il a pu être
// bloqué ou supprimé entre les deux étapes), puis le code est consommé.
func (s *AuthService) VerifyLoginCode(ctx context.Context, phone, code string) (*models.User, error) {
	if !phonePattern.MatchString(phone) {
		return nil, &ValidationError{Msg: "le numéro de téléphone doit faire exactement 10 chiffres"}
	}

	key := otpPurposeLogin + phone
	stored, ok := s.ledger.Get(ctx, key)
	if !ok {
		return nil, &ExpiredError{Msg: "code expiré ou jamais demandé"}
	}
	if stored != code {
		return nil, &InvalidCodeError{Msg: "code incorrect"}
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "utilisateur"}
	}
	if user.IsBlocked {
		return nil, &ForbiddenError{Msg: "compte bloqué"}
	}

	s.ledger.Delete(ctx, key)
	log.Printf("✅ Connexion de %s", phone)
	return user, nil
}
