package auth

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"meal-manager/internal"
	"meal-manager/internal/users"
)

// PasswordCost is the bcrypt work factor used for every stored password.
const PasswordCost = 10

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ErrPasswordTooLong is returned for passwords over bcrypt's 72 byte limit.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

func HashPassword(password string) (string, error) {
	pwd, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *users.User `json:"user"`
}

// Login returns users.ErrNotFound for an unknown email and ErrInvalidCredentials
// when the password does not match.
func (r *Login) Login(ctx context.Context, db *mongo.Database, issuer *Issuer) (*LoginResult, error) {
	if r.Email == "" || r.Password == "" {
		return nil, ErrMissingCredentials
	}

	u := users.User{Email: r.Email}
	user, err := u.FromEmail(ctx, db)
	if err != nil {
		return nil, err
	}

	if !CheckPassword(user.Password, r.Password) {
		internal.ErrorFormat{Package: "internal.auth", Level: log.WarnLevel, Function: "auth.Login", ObjectID: user.ID, Message: "invalid password"}.Print()
		return nil, ErrInvalidCredentials
	}

	t, err := issuer.Issue(user.Email, user.Role)
	if err != nil {
		return nil, internal.ErrorFormat{Package: "internal.auth", Level: log.ErrorLevel, Function: "auth.Login", ObjectID: user.ID, Message: "unable to generate session token", Error: err}.ToError()
	}

	return &LoginResult{Message: "Login successful", Token: t, User: user}, nil
}

// Register is the registration body: the profile plus a plaintext password.
type Register struct {
	Email       string          `json:"email"`
	Password    string          `json:"password"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Role        string          `json:"role"`
	RentedSit   string          `json:"rented_sit"`
	SitRent     internal.Amount `json:"sit_rent"`
	JoiningDate string          `json:"joining_date"`
}

// Register stores a new user with a hashed password and returns its id.
func (r *Register) Register(ctx context.Context, db *mongo.Database) (primitive.ObjectID, error) {
	if r.Email == "" || r.Password == "" {
		return primitive.NilObjectID, ErrMissingCredentials
	}

	pwd, err := HashPassword(r.Password)
	if err != nil {
		return primitive.NilObjectID, err
	}

	user := users.User{
		Email:       r.Email,
		Password:    pwd,
		Name:        r.Name,
		Phone:       r.Phone,
		Role:        r.Role,
		RentedSit:   r.RentedSit,
		SitRent:     r.SitRent,
		JoiningDate: r.JoiningDate,
	}
	if err = user.Create(ctx, db); err != nil {
		return primitive.NilObjectID, err
	}

	return user.ID, nil
}

// Profile is a partial update; zero values keep what is stored.
type Profile struct {
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Password    string          `json:"password"`
	Role        string          `json:"role"`
	RentedSit   string          `json:"rented_sit"`
	SitRent     internal.Amount `json:"sit_rent"`
	JoiningDate string          `json:"joining_date"`
}

// Merge applies p over current. The password is only re-hashed when a plaintext
// is supplied that does not already verify against the stored hash.
func (p *Profile) Merge(current users.User) (users.User, error) {
	merged := current
	merged.Name = orString(p.Name, current.Name)
	merged.Email = orString(p.Email, current.Email)
	merged.Phone = orString(p.Phone, current.Phone)
	merged.Role = orString(p.Role, current.Role)
	merged.RentedSit = orString(p.RentedSit, current.RentedSit)
	merged.JoiningDate = orString(p.JoiningDate, current.JoiningDate)
	if p.SitRent != 0 {
		merged.SitRent = p.SitRent
	}

	if p.Password != "" && !CheckPassword(current.Password, p.Password) {
		pwd, err := HashPassword(p.Password)
		if err != nil {
			return current, err
		}
		merged.Password = pwd
	}

	return merged, nil
}

// UpdateProfile loads the user, merges p over it and writes the result back.
func UpdateProfile(ctx context.Context, db *mongo.Database, id primitive.ObjectID, p *Profile) (int64, error) {
	u := users.User{ID: id}
	current, err := u.FromID(ctx, db)
	if err != nil {
		return 0, err
	}

	merged, err := p.Merge(*current)
	if err != nil {
		return 0, internal.ErrorFormat{Package: "internal.auth", Level: log.ErrorLevel, Function: "auth.UpdateProfile", ObjectID: id, Message: "unable to hash password", Error: err}.ToError()
	}

	return merged.Update(ctx, db)
}

func orString(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
