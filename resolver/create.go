package resolver

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HaslienFotografene/haslien-short-2/model"
)

const (
	maxPathLength        = 100
	maxDescriptionLength = 400
	maxPassphraseLength  = 100
)

var pathPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validation failures surfaced to the API client, first violated constraint
// in field-declaration order.
var (
	ErrPathRequired      = errors.New("url is required")
	ErrPathTooLong       = errors.New("url must be 100 characters or fewer")
	ErrPathInvalid       = errors.New("url may only contain letters, digits, '-' and '_'")
	ErrDestRequired      = errors.New("dest is required")
	ErrDescTooLong       = errors.New("desc must be 400 characters or fewer")
	ErrPassphraseTooLong = errors.New("passphrase must be 100 characters or fewer")
	ErrUserIncomplete    = errors.New("user requires both username and password")
	ErrUserFlagsNegative = errors.New("user flags cannot be negative")
)

// NewDocument validates a creation request and builds the document to store.
// The flag bitmask is derived from which optional gates the request carries.
// The embedded user's password is hashed before it ever touches the store.
func (r *Resolver) NewDocument(req model.CreateRequest) (*model.ShortURL, error) {
	if req.Path == "" {
		return nil, ErrPathRequired
	}
	if len(req.Path) > maxPathLength {
		return nil, ErrPathTooLong
	}
	if !pathPattern.MatchString(req.Path) {
		return nil, ErrPathInvalid
	}
	if req.Destination == "" {
		return nil, ErrDestRequired
	}
	if len(req.Description) > maxDescriptionLength {
		return nil, ErrDescTooLong
	}
	if len(req.Passphrase) > maxPassphraseLength {
		return nil, ErrPassphraseTooLong
	}

	var users []model.User
	if req.User != nil {
		if req.User.Username == "" || req.User.Password == "" {
			return nil, ErrUserIncomplete
		}
		if req.User.Flags < 0 {
			return nil, ErrUserFlagsNegative
		}

		hash, err := HashPassword(req.User.Password)
		if err != nil {
			return nil, err
		}
		users = append(users, model.User{
			ID:       uuid.New().String(),
			Username: req.User.Username,
			Password: hash,
			Flags:    req.User.Flags,
		})
	}

	now := time.Now()
	return &model.ShortURL{
		ID:          uuid.New().String(),
		Path:        strings.ToLower(req.Path),
		Destination: req.Destination,
		Description: req.Description,
		Created:     now,
		Modified:    now,
		Uses:        0,
		Passphrase:  req.Passphrase,
		Users:       users,
		Flags:       r.bits.Compose(req.Passphrase != "", req.User != nil, req.Frame),
	}, nil
}
