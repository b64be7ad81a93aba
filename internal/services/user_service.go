package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lmoren/taskdeck-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// supportedLanguages enumerates the accepted preferred_language values.
var supportedLanguages = map[string]bool{"en": true, "es": true, "fr": true}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	FirstName         string
	LastName          string
	Email             string
	Password          string
	ConfirmPassword   string
	PreferredLanguage string
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(input RegisterInput) (models.User, error)
	Authenticate(email, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	UpdateProfile(id string, patch models.UserPatch) (models.User, error)
	ListUsers() ([]models.User, error)
	DeleteUser(id string) error
}

// UserService provides business logic for account management.
type UserService struct {
	db             *sql.DB
	minPasswordLen int
	eventService   EventServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, minPasswordLen int, eventService EventServiceProvider) *UserService {
	return &UserService{
		db:             db,
		minPasswordLen: minPasswordLen,
		eventService:   eventService,
	}
}

const userColumns = "id, first_name, last_name, email, preferred_language, created_at, updated_at"

// Register validates the input, hashes the password and persists the user.
// Email uniqueness is enforced by the UNIQUE column; there is no pre-check,
// so concurrent duplicate registrations serialize at the insert.
func (s *UserService) Register(input RegisterInput) (models.User, error) {
	if input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Password == "" {
		return models.User{}, fmt.Errorf("%w: firstName, lastName, email and password are required", ErrValidation)
	}
	if input.ConfirmPassword != "" && input.ConfirmPassword != input.Password {
		return models.User{}, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	if len(input.Password) < s.minPasswordLen {
		return models.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, s.minPasswordLen)
	}

	lang := input.PreferredLanguage
	if lang == "" {
		lang = "en"
	}
	if !supportedLanguages[lang] {
		return models.User{}, fmt.Errorf("%w: unsupported preferred language %q", ErrValidation, lang)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:                uuid.New().String(),
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Email:             input.Email,
		PasswordHash:      string(hashedPassword),
		PreferredLanguage: lang,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, first_name, last_name, email, password_hash, preferred_language, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.PreferredLanguage, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}

	s.eventService.CreateEvent("user.register", "info", fmt.Sprintf("User %s registered.", user.Email), &user.ID)

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials. Unknown emails and wrong
// passwords produce the same error so accounts cannot be enumerated.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT "+userColumns+", password_hash FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PreferredLanguage, &user.CreatedAt, &user.UpdatedAt, &user.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	s.eventService.CreateEvent("user.login", "info", fmt.Sprintf("User %s logged in.", user.Email), &user.ID)

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PreferredLanguage, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// UpdateProfile applies only the supplied fields and always refreshes the
// update timestamp. Each present field maps to a fixed column assignment.
func (s *UserService) UpdateProfile(id string, patch models.UserPatch) (models.User, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if patch.FirstName != nil {
		if *patch.FirstName == "" {
			return models.User{}, fmt.Errorf("%w: firstName cannot be empty", ErrValidation)
		}
		sets = append(sets, "first_name = ?")
		args = append(args, *patch.FirstName)
	}
	if patch.LastName != nil {
		if *patch.LastName == "" {
			return models.User{}, fmt.Errorf("%w: lastName cannot be empty", ErrValidation)
		}
		sets = append(sets, "last_name = ?")
		args = append(args, *patch.LastName)
	}
	if patch.PreferredLanguage != nil {
		if !supportedLanguages[*patch.PreferredLanguage] {
			return models.User{}, fmt.Errorf("%w: unsupported preferred language %q", ErrValidation, *patch.PreferredLanguage)
		}
		sets = append(sets, "preferred_language = ?")
		args = append(args, *patch.PreferredLanguage)
	}
	if len(sets) == 0 {
		return models.User{}, fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := s.db.Exec("UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return models.User{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.User{}, err
	}
	if affected == 0 {
		return models.User{}, ErrUserNotFound
	}
	return s.GetUserByID(id)
}

// ListUsers retrieves all users, newest first, without password hashes.
func (s *UserService) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query("SELECT " + userColumns + " FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PreferredLanguage, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteUser removes a user; their tasks go with them via the FK cascade.
func (s *UserService) DeleteUser(id string) error {
	res, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
